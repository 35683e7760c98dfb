package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rigwall/pkg/cache"
	"github.com/matzehuels/rigwall/pkg/catalog"
	"github.com/matzehuels/rigwall/pkg/gallery"
)

// Runner executes the pipeline with caching. It keeps no per-run state, so
// one Runner can serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a Runner. A nil cache disables caching and a nil keyer
// means cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs generate → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	res := &Result{}

	start := time.Now()
	vs, hit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	res.Catalog = vs
	res.CatalogHash = catalogHash(vs)
	res.Stats.Vehicles = len(vs)
	res.Stats.GenerateTime = time.Since(start)
	res.CacheInfo.CatalogHit = hit
	r.Logger.Info("catalog ready", "vehicles", len(vs), "seed", opts.Seed, "cached", hit)

	start = time.Now()
	view, hit, err := r.LayoutWithCacheInfo(ctx, vs, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.View = view
	res.Stats.Visible = view.Total
	res.Stats.Placed = len(view.Items)
	res.Stats.LayoutTime = time.Since(start)
	res.CacheInfo.LayoutHit = hit
	r.Logger.Info("computed layout",
		"visible", view.Total, "placed", len(view.Items), "columns", view.Columns,
		"duration", res.Stats.LayoutTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, view, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(start)
	res.CacheInfo.RenderHit = hit
	r.Logger.Info("rendered outputs", "formats", opts.Formats, "duration", res.Stats.RenderTime)
	return res, nil
}

// GenerateWithCacheInfo builds or loads the catalog and reports whether it
// came from the cache.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) ([]catalog.Vehicle, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if opts.Catalog != nil || !opts.Cacheable() {
		vs, err := Generate(ctx, opts)
		return vs, false, err
	}

	roster, _ := json.Marshal(opts.Roster.WithDefaults())
	key := r.Keyer.CatalogKey(opts.Seed, cache.Hash(roster), opts.Breakpoint().String())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if vs, err := catalog.Unmarshal(data); err == nil {
				return vs, true, nil
			}
		}
	}

	vs, err := Generate(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	if data, err := catalog.Marshal(vs); err == nil {
		r.store(ctx, key, data, cache.TTLCatalog)
	}
	return vs, false, nil
}

// LayoutWithCacheInfo lays out vehicles and reports whether the view came
// from the cache. The key includes the catalog content, so random seeds
// still cache; runs with a measurer depend on image files and never do.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, vs []catalog.Vehicle, opts Options) (gallery.View, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.ValidateForLayout(); err != nil {
		return gallery.View{}, false, err
	}
	if opts.Measurer != nil {
		v, err := Layout(ctx, vs, opts)
		return v, false, err
	}

	key := r.Keyer.LayoutKey(catalogHash(vs), opts.LayoutKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var v gallery.View
			if err := json.Unmarshal(data, &v); err == nil {
				return v, true, nil
			}
		}
	}

	v, err := Layout(ctx, vs, opts)
	if err != nil {
		return gallery.View{}, false, err
	}
	if data, err := json.Marshal(v); err == nil {
		r.store(ctx, key, data, cache.TTLLayout)
	}
	return v, false, nil
}

// RenderWithCacheInfo renders v and reports whether every artifact came
// from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, v gallery.View, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	viewData, err := json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("serialize view for cache key: %w", err)
	}
	viewHash := cache.Hash(viewData)

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			if !opts.artifactCacheable(format) {
				break
			}
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(viewHash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	artifacts, err := Render(ctx, v, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range artifacts {
		if !opts.artifactCacheable(format) {
			continue
		}
		r.store(ctx, r.Keyer.ArtifactKey(viewHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
	}
	return artifacts, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) store(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "err", err)
	}
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func catalogHash(vs []catalog.Vehicle) string {
	data, _ := catalog.Marshal(vs)
	return cache.Hash(data)
}
