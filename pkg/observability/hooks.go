// Package observability provides hooks for metrics, tracing, and logging.
//
// Nothing in the gallery core imports a metrics backend. Consumers register
// hooks at startup and the pipeline, layout engine, caches and image probe
// call them as they work.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnLayoutStart(ctx, n)
//	// ... place items ...
//	observability.Pipeline().OnLayoutComplete(ctx, n, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the generate/filter/layout/render pipeline.
type PipelineHooks interface {
	// Generate events
	OnGenerateStart(ctx context.Context, images int)
	OnGenerateComplete(ctx context.Context, records int, duration time.Duration)

	// Filter events
	OnFilterComplete(ctx context.Context, total, visible int, duration time.Duration)

	// Layout events
	OnLayoutStart(ctx context.Context, items int)
	OnLayoutComplete(ctx context.Context, items int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the masonry engine.
type LayoutHooks interface {
	// OnMeasure records one image measurement and how it ended
	// ("loaded", "failed" or "timed-out").
	OnMeasure(ctx context.Context, outcome string, duration time.Duration)

	// OnReposition records a full Configure-Reset-Place pass.
	OnReposition(ctx context.Context, columns, items int, duration time.Duration)

	// OnAppend records an incremental placement of new items.
	OnAppend(ctx context.Context, items int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from outgoing HTTP requests (remote image probes).
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnGenerateStart(context.Context, int)                             {}
func (NoopPipelineHooks) OnGenerateComplete(context.Context, int, time.Duration)           {}
func (NoopPipelineHooks) OnFilterComplete(context.Context, int, int, time.Duration)        {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)      {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnMeasure(context.Context, string, time.Duration)      {}
func (NoopLayoutHooks) OnReposition(context.Context, int, int, time.Duration) {}
func (NoopLayoutHooks) OnAppend(context.Context, int, time.Duration)          {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// registry holds the active hooks. Reads vastly outnumber writes, which
// happen once at startup.
type registry struct {
	mu       sync.RWMutex
	pipeline PipelineHooks
	layout   LayoutHooks
	cache    CacheHooks
	http     HTTPHooks
}

var hooks = registry{
	pipeline: NoopPipelineHooks{},
	layout:   NoopLayoutHooks{},
	cache:    NoopCacheHooks{},
	http:     NoopHTTPHooks{},
}

// set stores h in slot unless h is nil.
func set[T any](slot *T, h T) {
	if any(h) == nil {
		return
	}
	hooks.mu.Lock()
	*slot = h
	hooks.mu.Unlock()
}

func get[T any](slot *T) T {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return *slot
}

// SetPipelineHooks registers pipeline hooks. Call it once at startup; nil
// is ignored.
func SetPipelineHooks(h PipelineHooks) { set(&hooks.pipeline, h) }

// SetLayoutHooks registers masonry engine hooks.
func SetLayoutHooks(h LayoutHooks) { set(&hooks.layout, h) }

// SetCacheHooks registers cache hooks.
func SetCacheHooks(h CacheHooks) { set(&hooks.cache, h) }

// SetHTTPHooks registers outgoing HTTP hooks.
func SetHTTPHooks(h HTTPHooks) { set(&hooks.http, h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return get(&hooks.pipeline) }

// Layout returns the registered layout hooks.
func Layout() LayoutHooks { return get(&hooks.layout) }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return get(&hooks.cache) }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return get(&hooks.http) }

// Reset restores the no-op hooks. Tests use it to undo registrations.
func Reset() {
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	hooks.pipeline = NoopPipelineHooks{}
	hooks.layout = NoopLayoutHooks{}
	hooks.cache = NoopCacheHooks{}
	hooks.http = NoopHTTPHooks{}
}
