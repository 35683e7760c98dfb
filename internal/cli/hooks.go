package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rigwall/pkg/observability"
)

// debugHooks logs cache traffic and image measurements at debug level, so
// -v shows why a run was fast or slow.
type debugHooks struct {
	observability.NoopLayoutHooks
	observability.NoopCacheHooks
	observability.NoopHTTPHooks

	logger *log.Logger
}

func (h debugHooks) OnMeasure(_ context.Context, outcome string, d time.Duration) {
	if outcome != "loaded" {
		h.logger.Debug("image measure", "outcome", outcome, "duration", d)
	}
}

func (h debugHooks) OnReposition(_ context.Context, columns, items int, d time.Duration) {
	h.logger.Debug("reposition", "columns", columns, "items", items, "duration", d)
}

func (h debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http failed", "method", method, "host", host, "path", path, "err", err)
}

// registerHooks routes library events to the CLI logger.
func (c *CLI) registerHooks() {
	h := debugHooks{logger: c.Logger}
	observability.SetLayoutHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}
