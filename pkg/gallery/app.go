// Package gallery is the application state of the vehicle gallery.
//
// [App] owns the full catalog, the applied and draft filters, the sort
// mode, the derived visible list, pagination, the masonry engine and the
// lightbox. Every control of the page maps to one method. The visible list
// is never edited: any filter or sort change re-derives it from the full
// catalog, resets pagination, loads the first page and repositions the
// grid. [App.View] projects the state into an immutable [View] that
// renderers and front-ends consume.
//
// An App is not safe for concurrent use. Front-ends call it from one
// goroutine (the bubbletea update loop) or behind a per-session lock (the
// HTTP server).
package gallery

import (
	"context"
	"math/rand/v2"
	"net/url"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rigwall/pkg/catalog"
	rwerrors "github.com/matzehuels/rigwall/pkg/errors"
	"github.com/matzehuels/rigwall/pkg/filter"
	"github.com/matzehuels/rigwall/pkg/lightbox"
	"github.com/matzehuels/rigwall/pkg/masonry"
	"github.com/matzehuels/rigwall/pkg/observability"
	"github.com/matzehuels/rigwall/pkg/paginate"
	"github.com/matzehuels/rigwall/pkg/viewport"
)

// App is the gallery state for one visitor.
type App struct {
	opts   Options
	rng    *rand.Rand
	logger *log.Logger

	vehicles []catalog.Vehicle
	choices  filter.Choices

	applied filter.State
	draft   filter.State
	sort    filter.SortMode
	visible []catalog.Vehicle

	pager    *paginate.Paginator
	engine   *masonry.Engine
	layout   masonry.Layout
	lightbox lightbox.Lightbox

	viewportWidth  float64
	containerWidth float64
	breakpoint     viewport.Breakpoint
	ready          bool
}

// New returns an App that is not yet initialized; call Init before anything
// else.
func New(opts Options) *App {
	opts.setDefaults()
	engineOpts := []masonry.Option{
		masonry.WithCover(),
		masonry.WithTimeout(opts.MeasureTimeout),
		masonry.WithLogger(opts.Logger),
	}
	if opts.Measurer != nil {
		engineOpts = append(engineOpts, masonry.WithMeasurer(opts.Measurer))
	}
	return &App{
		opts:    opts,
		rng:     catalog.NewRand(opts.Seed),
		logger:  opts.Logger,
		applied: filter.Default(),
		draft:   filter.Default(),
		sort:    filter.Newest,
		pager:   paginate.New(opts.PageSize),
		engine:  masonry.NewEngine(engineOpts...),
	}
}

// Seed returns the seed the catalog was generated from.
func (a *App) Seed() uint64 { return a.opts.Seed }

// CaptionHeight returns the card caption height used for placement.
func (a *App) CaptionHeight() float64 { return a.opts.CaptionHeight }

// Init sizes the viewport, builds the catalog, reads the filter state from
// query (the company parameter and any other filter parameters) and shows
// the first page.
func (a *App) Init(ctx context.Context, viewportWidth, containerWidth float64, query url.Values) error {
	state, mode, err := filter.ParseQuery(query)
	if err != nil {
		return err
	}

	a.setViewport(viewportWidth, containerWidth)
	if a.opts.Catalog != nil {
		a.vehicles = slices.Clone(a.opts.Catalog)
	} else {
		start := time.Now()
		roster := a.opts.Roster.WithDefaults()
		observability.Pipeline().OnGenerateStart(ctx, len(roster.Images))
		a.vehicles = catalog.Generate(a.rng, roster, a.breakpoint)
		observability.Pipeline().OnGenerateComplete(ctx, len(a.vehicles), time.Since(start))
	}
	a.choices = filter.ChoicesFor(a.vehicles, a.opts.Now())
	a.applied, a.draft, a.sort = state, state, mode
	a.ready = true

	a.logger.Debug("gallery initialized", "vehicles", len(a.vehicles), "breakpoint", a.breakpoint, "seed", a.opts.Seed)
	return a.refresh(ctx)
}

func (a *App) setViewport(viewportWidth, containerWidth float64) {
	if containerWidth <= 0 {
		containerWidth = viewportWidth
	}
	a.viewportWidth = viewportWidth
	a.containerWidth = containerWidth
	a.breakpoint = viewport.Classify(viewportWidth)
}

func (a *App) config() masonry.Config {
	return masonry.Configure(a.containerWidth, a.breakpoint, *a.opts.Gaps)
}

func (a *App) boxes(vs []catalog.Vehicle) []masonry.Box {
	out := make([]masonry.Box, len(vs))
	for i, v := range vs {
		out[i] = masonry.Box{
			ID:           v.ID,
			Src:          v.Image,
			MediaHeight:  float64(v.DisplayHeight),
			ChromeHeight: a.opts.CaptionHeight,
		}
	}
	return out
}

func (a *App) checkReady() error {
	if !a.ready {
		return rwerrors.New(rwerrors.ErrCodeInternal, "gallery used before Init")
	}
	return nil
}

// refresh re-derives the visible list, resets pagination, loads the first
// page and runs a full reposition.
func (a *App) refresh(ctx context.Context) error {
	start := time.Now()
	a.visible = filter.ApplyAt(a.vehicles, a.applied, a.sort, a.opts.Now())
	observability.Pipeline().OnFilterComplete(ctx, len(a.vehicles), len(a.visible), time.Since(start))

	a.pager.Reset(len(a.visible))
	_, to := a.pager.LoadMore()
	return a.reposition(ctx, a.visible[:to])
}

func (a *App) reposition(ctx context.Context, shown []catalog.Vehicle) error {
	cfg := a.config()
	observability.Pipeline().OnLayoutStart(ctx, len(shown))
	start := time.Now()
	l, err := a.engine.Reposition(ctx, cfg, a.boxes(shown))
	observability.Pipeline().OnLayoutComplete(ctx, len(shown), time.Since(start), err)
	if err != nil {
		return err
	}
	a.layout = l
	return nil
}

// Restore replaces the applied filters and sort mode with the ones encoded
// in query, as produced by [App.Query]. It is how a shared URL is replayed
// into an existing session.
func (a *App) Restore(ctx context.Context, query url.Values) error {
	if err := a.checkReady(); err != nil {
		return err
	}
	state, mode, err := filter.ParseQuery(query)
	if err != nil {
		return err
	}
	if state == a.applied && mode == a.sort {
		return nil
	}
	a.applied, a.draft, a.sort = state, state, mode
	return a.refresh(ctx)
}

// SetCategory selects a category ("all" or one of catalog.Categories) and
// applies it immediately.
func (a *App) SetCategory(ctx context.Context, category string) error {
	if err := a.checkReady(); err != nil {
		return err
	}
	next := a.applied
	next.Category = category
	if err := next.Validate(); err != nil {
		return err
	}
	a.applied.Category = next.Category
	a.draft.Category = next.Category
	return a.refresh(ctx)
}

// SetSort changes the sort mode and applies it immediately.
func (a *App) SetSort(ctx context.Context, mode filter.SortMode) error {
	if err := a.checkReady(); err != nil {
		return err
	}
	if _, err := filter.ParseSortMode(string(mode)); err != nil {
		return err
	}
	a.sort = mode
	return a.refresh(ctx)
}

// SetDraftYear stages a year filter (0 clears it). Draft filters take
// effect on ApplyFilters.
func (a *App) SetDraftYear(year int) { a.draft.Year = year }

// SetDraftLocation stages a location filter ("" clears it).
func (a *App) SetDraftLocation(location string) { a.draft.Location = location }

// SetDraftSalesRep stages a sales rep filter ("" clears it).
func (a *App) SetDraftSalesRep(rep string) { a.draft.SalesRep = rep }

// Draft returns the staged dropdown filters.
func (a *App) Draft() filter.State { return a.draft }

// ApplyFilters commits the staged year, location and sales rep.
func (a *App) ApplyFilters(ctx context.Context) error {
	if err := a.checkReady(); err != nil {
		return err
	}
	next := a.applied
	next.Year, next.Location, next.SalesRep = a.draft.Year, a.draft.Location, a.draft.SalesRep
	if err := next.Validate(); err != nil {
		return err
	}
	a.applied = next
	return a.refresh(ctx)
}

// ClearFilters resets category, company and the dropdown filters. The
// sort mode is kept.
func (a *App) ClearFilters(ctx context.Context) error {
	if err := a.checkReady(); err != nil {
		return err
	}
	a.applied = filter.Default()
	a.draft = filter.Default()
	return a.refresh(ctx)
}

// FilterByCompany narrows the gallery to owners containing company (case
// insensitive). Cards pass the full owner string.
func (a *App) FilterByCompany(ctx context.Context, company string) error {
	if err := a.checkReady(); err != nil {
		return err
	}
	if err := rwerrors.ValidateText("company", company); err != nil {
		return err
	}
	a.applied.Company = company
	a.draft.Company = company
	return a.refresh(ctx)
}

// ClearCompany removes the company filter.
func (a *App) ClearCompany(ctx context.Context) error {
	return a.FilterByCompany(ctx, "")
}

// LoadMore displays the next page, placing only the new items.
func (a *App) LoadMore(ctx context.Context) error {
	if err := a.checkReady(); err != nil {
		return err
	}
	from, to := a.pager.LoadMore()
	if from == to {
		return nil
	}
	start := time.Now()
	l, err := a.engine.Append(ctx, a.boxes(a.visible[from:to]))
	observability.Pipeline().OnLayoutComplete(ctx, to-from, time.Since(start), err)
	if err != nil {
		return err
	}
	a.layout = l
	return nil
}

// Resize applies a new viewport. Crossing a breakpoint regenerates every
// display height for the new range. The displayed items keep their order and
// count; the grid is fully repositioned.
func (a *App) Resize(ctx context.Context, viewportWidth, containerWidth float64) error {
	if err := a.checkReady(); err != nil {
		return err
	}
	prev := a.breakpoint
	a.setViewport(viewportWidth, containerWidth)

	if a.breakpoint != prev {
		catalog.RegenerateHeights(a.rng, a.vehicles, a.breakpoint)
		a.visible = filter.ApplyAt(a.vehicles, a.applied, a.sort, a.opts.Now())
		a.logger.Debug("breakpoint changed", "from", prev, "to", a.breakpoint)
	}
	return a.reposition(ctx, a.visible[:a.pager.Displayed()])
}

// Open shows v in the lightbox.
func (a *App) Open(v catalog.Vehicle) { a.lightbox.Open(v) }

// OpenID shows the vehicle with id in the lightbox.
func (a *App) OpenID(id int) error {
	v, ok := catalog.Find(a.vehicles, id)
	if !ok {
		return rwerrors.New(rwerrors.ErrCodeVehicleNotFound, "vehicle %d not found", id)
	}
	a.lightbox.Open(v)
	return nil
}

// Next shows the next lightbox image; it does nothing at the last one.
func (a *App) Next() bool { return a.lightbox.Next() }

// Prev shows the previous lightbox image; it does nothing at the first one.
func (a *App) Prev() bool { return a.lightbox.Prev() }

// Close hides the lightbox.
func (a *App) Close() { a.lightbox.Close() }

// SelectImage jumps to a lightbox thumbnail.
func (a *App) SelectImage(i int) bool { return a.lightbox.Select(i) }

// HandleKey routes a key to the lightbox while it is open.
func (a *App) HandleKey(key string) bool { return a.lightbox.HandleKey(key) }

// Vehicle returns a record of the full catalog by id.
func (a *App) Vehicle(id int) (catalog.Vehicle, bool) {
	return catalog.Find(a.vehicles, id)
}

// Catalog returns a copy of the full catalog.
func (a *App) Catalog() []catalog.Vehicle { return slices.Clone(a.vehicles) }

// Visible returns a copy of the filtered, sorted list.
func (a *App) Visible() []catalog.Vehicle { return slices.Clone(a.visible) }

// Filters returns the applied filter state and sort mode.
func (a *App) Filters() (filter.State, filter.SortMode) { return a.applied, a.sort }

// Choices returns the dropdown values.
func (a *App) Choices() filter.Choices { return a.choices }

// Query encodes the applied filters for a shareable URL.
func (a *App) Query() url.Values { return a.applied.Query(a.sort) }

// Layout returns the current masonry layout.
func (a *App) Layout() masonry.Layout { return a.layout }

// Paginator returns a copy of the pagination counters.
func (a *App) Paginator() paginate.Paginator { return *a.pager }
