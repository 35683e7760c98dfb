// Package pipeline runs the gallery end to end without a front-end.
//
// The pipeline has three stages:
//
//  1. Generate: build the catalog from the roster and a seed (or load one)
//  2. Layout: filter, sort, paginate and place the visible cards
//  3. Render: produce HTML, SVG, JSON or PNG from the resulting view
//
// The CLI render and layout commands and the server's stateless
// /render.{format} endpoint all go through a [Runner], which caches each
// stage when the inputs are reproducible.
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Seed:    42,
//	    Formats: []string{"html", "png"},
//	})
//	html := result.Artifacts["html"]
package pipeline

import (
	"fmt"
	"io"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rigwall/pkg/cache"
	"github.com/matzehuels/rigwall/pkg/catalog"
	"github.com/matzehuels/rigwall/pkg/filter"
	"github.com/matzehuels/rigwall/pkg/gallery"
	"github.com/matzehuels/rigwall/pkg/masonry"
	"github.com/matzehuels/rigwall/pkg/render"
	"github.com/matzehuels/rigwall/pkg/viewport"
)

// Defaults shared by the CLI and the server.
const (
	DefaultViewportWidth  = 1280.0
	DefaultContainerWidth = 1200.0
	DefaultPages          = 1
	DefaultScale          = 1.0
)

// Options configures a pipeline run.
type Options struct {
	// Generate options. Catalog, when set, replaces generation.
	Seed    uint64            `json:"seed,omitempty"`
	Roster  catalog.Roster    `json:"roster,omitempty"`
	Catalog []catalog.Vehicle `json:"-"`

	// Layout options. Zero PageSize and CaptionHeight and nil Gaps use the
	// gallery defaults.
	ViewportWidth  float64      `json:"viewport_width,omitempty"`
	ContainerWidth float64      `json:"container_width,omitempty"`
	Query          url.Values   `json:"query,omitempty"`
	Pages          int          `json:"pages,omitempty"`
	PageSize       int          `json:"page_size,omitempty"`
	CaptionHeight  float64      `json:"caption_height,omitempty"`
	Gaps           *masonry.Gaps `json:"gaps,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Title     string   `json:"title,omitempty"`
	ImageBase string   `json:"image_base,omitempty"`
	Scale     float64  `json:"scale,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized). MeasureTimeout bounds each
	// Measurer call.
	Measurer       masonry.Measurer   `json:"-"`
	MeasureTimeout time.Duration      `json:"-"`
	Images         render.ImageLoader `json:"-"`
	Logger         *log.Logger        `json:"-"`

	// ImageSource names where Images reads photos from (for example the
	// absolute --images directory). It keys cached PNGs; a loader without a
	// source is never served from the cache.
	ImageSource string `json:"image_source,omitempty"`

	// randomSeed marks a seed drawn by SetDefaults; such runs are not cached.
	randomSeed bool
	validated  bool
}

// Result holds the outputs of a run.
type Result struct {
	Catalog     []catalog.Vehicle
	CatalogHash string
	View        gallery.View
	Artifacts   map[string][]byte
	Stats       Stats
	CacheInfo   CacheInfo
}

// Stats holds counts and stage timings.
type Stats struct {
	Vehicles     int
	Visible      int
	Placed       int
	GenerateTime time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	CatalogHit bool
	LayoutHit  bool
	RenderHit  bool
}

// ValidateAndSetDefaults checks every option and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills zero values. A zero seed is replaced by a random one
// and the run is marked uncacheable.
func (o *Options) SetDefaults() {
	if o.Seed == 0 && o.Catalog == nil {
		o.Seed = rand.Uint64()
		o.randomSeed = true
	}
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = DefaultViewportWidth
	}
	if o.ContainerWidth <= 0 {
		o.ContainerWidth = min(o.ViewportWidth, DefaultContainerWidth)
	}
	if o.Pages <= 0 {
		o.Pages = DefaultPages
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatHTML}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout checks the filter query.
func (o *Options) ValidateForLayout() error {
	if _, _, err := filter.ParseQuery(o.Query); err != nil {
		return err
	}
	return nil
}

// ValidateForRender checks the requested formats.
func (o *Options) ValidateForRender() error {
	for _, f := range o.Formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	if o.Scale > 4 {
		return fmt.Errorf("scale %v out of range (max 4)", o.Scale)
	}
	return nil
}

// Cacheable reports whether results depend only on the options.
func (o *Options) Cacheable() bool {
	return !o.randomSeed && o.Measurer == nil
}

// Breakpoint is the breakpoint the catalog heights are drawn for.
func (o *Options) Breakpoint() viewport.Breakpoint {
	return viewport.Classify(o.ViewportWidth)
}

// LayoutKeyOpts returns the cache key inputs for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		ViewportWidth:  o.ViewportWidth,
		ContainerWidth: o.ContainerWidth,
		Query:          o.Query.Encode(),
		Pages:          o.Pages,
		PageSize:       o.PageSize,
		CaptionHeight:  o.CaptionHeight,
		HorizontalGap:  o.gaps().Horizontal,
		VerticalGap:    o.gaps().Vertical,
	}
}

func (o *Options) gaps() masonry.Gaps {
	if o.Gaps == nil {
		return masonry.DefaultGaps()
	}
	return *o.Gaps
}

// ArtifactKeyOpts returns the cache key inputs for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case render.FormatHTML:
		k.Images = o.ImageBase + "|" + o.Title
	case render.FormatJSON:
		k.Seed = o.Seed
	case render.FormatPNG:
		k.Scale = int(o.Scale * 100)
		if o.Images != nil {
			k.Images = "loaded:" + o.ImageSource
		}
	}
	return k
}

// artifactCacheable reports whether format's output is fully described by
// its artifact key.
func (o *Options) artifactCacheable(format string) bool {
	return format != render.FormatPNG || o.Images == nil || o.ImageSource != ""
}

// RenderOptions translates pipeline options into sink options.
func (o *Options) RenderOptions() render.Options {
	var ro render.Options
	if o.Title != "" {
		ro.HTML = append(ro.HTML, render.WithTitle(o.Title))
	}
	if o.ImageBase != "" {
		ro.HTML = append(ro.HTML, render.WithImageBase(o.ImageBase))
	}
	if o.CaptionHeight > 0 {
		ro.HTML = append(ro.HTML, render.WithCaptionHeight(o.CaptionHeight))
	}
	ro.JSON = append(ro.JSON, render.WithJSONSeed(o.Seed))
	ro.PNG = append(ro.PNG, render.WithScale(o.Scale), render.WithPNGLogger(o.Logger))
	if o.Images != nil {
		ro.PNG = append(ro.PNG, render.WithImages(o.Images))
	}
	return ro
}
