package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/rigwall/pkg/gallery"
	"github.com/matzehuels/rigwall/pkg/observability"
	"github.com/matzehuels/rigwall/pkg/render"
)

// Render produces every requested format from a view.
func Render(ctx context.Context, v gallery.View, opts Options) (map[string][]byte, error) {
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := render.Render(ctx, v, opts.Formats, opts.RenderOptions())
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}
