package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/matzehuels/rigwall/pkg/catalog"
	"github.com/matzehuels/rigwall/pkg/observability"
)

// Generate builds the catalog for opts, or returns a copy of opts.Catalog
// when one is given.
func Generate(ctx context.Context, opts Options) ([]catalog.Vehicle, error) {
	if opts.Catalog != nil {
		return slices.Clone(opts.Catalog), nil
	}
	roster := opts.Roster.WithDefaults()
	if err := roster.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnGenerateStart(ctx, len(roster.Images))
	vs := catalog.Generate(catalog.NewRand(opts.Seed), roster, opts.Breakpoint())
	observability.Pipeline().OnGenerateComplete(ctx, len(vs), time.Since(start))
	return vs, nil
}
