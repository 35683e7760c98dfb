package masonry

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rigwall/pkg/observability"
)

// ErrNotConfigured is returned by [Engine.Append] before the first
// [Engine.Reposition].
var ErrNotConfigured = errors.New("masonry: append before first reposition")

// Engine keeps column heights between layout passes.
//
// Reposition and Append form one critical section. A call that arrives while
// another is measuring waits for it, so a full reposition never interleaves
// with an incremental append. An Engine is safe for concurrent use.
type Engine struct {
	measurer Measurer
	opts     MeasureOptions
	logger   *log.Logger

	mu         sync.Mutex
	cols       *Columns
	placements []Placement
}

// Option configures an Engine.
type Option func(*Engine)

// WithMeasurer sets the image measurer. Without one, declared heights are used.
func WithMeasurer(m Measurer) Option {
	return func(e *Engine) { e.measurer = m }
}

// WithTimeout bounds the wait for each image.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.opts.Timeout = d }
}

// WithConcurrency limits concurrent measurements per batch.
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.opts.Limit = n }
}

// WithCover keeps loaded images at their declared height. See
// [MeasureOptions.Cover].
func WithCover() Option {
	return func(e *Engine) { e.opts.Cover = true }
}

// WithLogger sets the logger for measurement warnings.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns an unconfigured engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	e.opts.Logger = e.logger
	e.opts.setDefaults()
	return e
}

// Reposition runs Configure-Reset-Place-Finalize over boxes in order.
func (e *Engine) Reposition(ctx context.Context, cfg Config, boxes []Box) (Layout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	ms, err := MeasureAll(ctx, e.measurer, boxes, cfg.ItemWidth, e.opts)
	if err != nil {
		return Layout{}, err
	}

	e.cols = NewColumns(cfg)
	e.placements = make([]Placement, 0, len(boxes))
	e.place(ms)

	e.logger.Debug("repositioned", "columns", cfg.Columns, "items", len(boxes), "height", e.cols.Finalize())
	observability.Layout().OnReposition(ctx, cfg.Columns, len(boxes), time.Since(start))
	return e.snapshot(), nil
}

// Append places boxes on top of the existing column heights. Items already
// placed are not moved.
func (e *Engine) Append(ctx context.Context, boxes []Box) (Layout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cols == nil {
		return Layout{}, ErrNotConfigured
	}
	start := time.Now()
	ms, err := MeasureAll(ctx, e.measurer, boxes, e.cols.cfg.ItemWidth, e.opts)
	if err != nil {
		return Layout{}, err
	}
	e.place(ms)

	e.logger.Debug("appended", "items", len(boxes), "height", e.cols.Finalize())
	observability.Layout().OnAppend(ctx, len(boxes), time.Since(start))
	return e.snapshot(), nil
}

func (e *Engine) place(ms []Measurement) {
	for _, m := range ms {
		e.placements = append(e.placements, e.cols.Place(m.Box.ID, m.Height, m.Outcome))
	}
}

// Layout returns the current layout. It is empty before the first Reposition.
func (e *Engine) Layout() Layout {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cols == nil {
		return Layout{}
	}
	return e.snapshot()
}

func (e *Engine) snapshot() Layout {
	return Layout{
		Config:        e.cols.cfg,
		ColumnHeights: e.cols.Heights(),
		Placements:    slices.Clone(e.placements),
		Height:        e.cols.Finalize(),
	}
}
