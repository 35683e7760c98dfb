package pipeline

import (
	"context"

	"github.com/matzehuels/rigwall/pkg/catalog"
	"github.com/matzehuels/rigwall/pkg/gallery"
)

// Layout runs the gallery over vehicles: it applies the query's filters,
// loads opts.Pages pages and returns the projected view.
func Layout(ctx context.Context, vehicles []catalog.Vehicle, opts Options) (gallery.View, error) {
	app := gallery.New(gallery.Options{
		Catalog:        vehicles,
		Seed:           opts.Seed,
		PageSize:       opts.PageSize,
		Gaps:           opts.Gaps,
		CaptionHeight:  opts.CaptionHeight,
		Measurer:       opts.Measurer,
		MeasureTimeout: opts.MeasureTimeout,
		Logger:         opts.Logger,
	})
	if err := app.Init(ctx, opts.ViewportWidth, opts.ContainerWidth, opts.Query); err != nil {
		return gallery.View{}, err
	}
	for i := 1; i < opts.Pages && app.Paginator().HasMore(); i++ {
		if err := app.LoadMore(ctx); err != nil {
			return gallery.View{}, err
		}
	}
	return app.View(), nil
}
