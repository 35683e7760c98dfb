package masonry

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/rigwall/pkg/observability"
)

// DefaultMeasureTimeout bounds the wait for a single image.
const DefaultMeasureTimeout = 2 * time.Second

// Outcome is how an item's height was determined.
type Outcome string

const (
	// Loaded: the measurer reported the media height.
	Loaded Outcome = "loaded"
	// Failed: the image is broken and hidden; only the chrome remains.
	Failed Outcome = "failed"
	// TimedOut: no answer within the bound; the declared height is used.
	TimedOut Outcome = "timed-out"
)

// Box is an item waiting to be placed.
type Box struct {
	ID  int
	Src string

	// MediaHeight is the declared image height, used when measurement is
	// unavailable or too slow.
	MediaHeight float64

	// ChromeHeight is the fixed non-image part of the item (caption, pills).
	ChromeHeight float64
}

// Measurer reports the rendered height of the image at src when scaled to
// width. Implementations must return promptly once ctx is done.
type Measurer interface {
	Measure(ctx context.Context, src string, width float64) (float64, error)
}

// MeasurerFunc adapts a function to [Measurer].
type MeasurerFunc func(ctx context.Context, src string, width float64) (float64, error)

// Measure calls f.
func (f MeasurerFunc) Measure(ctx context.Context, src string, width float64) (float64, error) {
	return f(ctx, src, width)
}

// Measurement is a box with its resolved item height.
type Measurement struct {
	Box     Box
	Height  float64
	Outcome Outcome
	Err     error
}

// MeasureOptions configures [MeasureAll].
type MeasureOptions struct {
	Timeout time.Duration // per box; defaults to DefaultMeasureTimeout
	Limit   int           // max concurrent measurements; <= 0 means one per box
	Logger  *log.Logger

	// Cover crops loaded images to their declared height (CSS object-fit:
	// cover). Measurement then only decides whether the image loads.
	Cover bool
}

func (o *MeasureOptions) setDefaults() {
	if o.Timeout <= 0 {
		o.Timeout = DefaultMeasureTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// MeasureAll measures every box concurrently and joins before returning, so
// the caller can place the whole batch in order. Each box resolves to exactly
// one outcome: loaded (media + chrome), failed (chrome only, logged as a
// warning) or timed out (declared media + chrome). A nil measurer resolves
// every box to its declared height.
//
// Individual failures never fail the batch; only cancellation of ctx does.
func MeasureAll(ctx context.Context, m Measurer, boxes []Box, width float64, opts MeasureOptions) ([]Measurement, error) {
	opts.setDefaults()
	out := make([]Measurement, len(boxes))

	if m == nil {
		for i, b := range boxes {
			out[i] = Measurement{Box: b, Height: b.MediaHeight + b.ChromeHeight, Outcome: Loaded}
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Limit > 0 {
		g.SetLimit(opts.Limit)
	}
	for i, b := range boxes {
		g.Go(func() error {
			out[i] = measureOne(gctx, m, b, width, opts)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type measured struct {
	height float64
	err    error
}

func measureOne(ctx context.Context, m Measurer, b Box, width float64, opts MeasureOptions) Measurement {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	ch := make(chan measured, 1)
	go func() {
		h, err := m.Measure(ctx, b.Src, width)
		ch <- measured{h, err}
	}()

	var r measured
	select {
	case r = <-ch:
	case <-ctx.Done():
		r = measured{err: ctx.Err()}
	}

	res := Measurement{Box: b, Err: r.err}
	switch {
	case r.err == nil && opts.Cover:
		res.Outcome = Loaded
		res.Height = b.MediaHeight + b.ChromeHeight
	case r.err == nil:
		res.Outcome = Loaded
		res.Height = r.height + b.ChromeHeight
	case errors.Is(r.err, context.DeadlineExceeded):
		res.Outcome = TimedOut
		res.Height = b.MediaHeight + b.ChromeHeight
		opts.Logger.Debug("image measurement timed out", "id", b.ID, "src", b.Src, "timeout", opts.Timeout)
	default:
		res.Outcome = Failed
		res.Height = b.ChromeHeight
		opts.Logger.Warn("image failed to load", "id", b.ID, "src", b.Src, "err", r.err)
	}

	observability.Layout().OnMeasure(ctx, string(res.Outcome), time.Since(start))
	return res
}
