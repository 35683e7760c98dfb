package gallery

import (
	"strconv"
	"unicode/utf8"

	"github.com/matzehuels/rigwall/pkg/catalog"
	"github.com/matzehuels/rigwall/pkg/filter"
	"github.com/matzehuels/rigwall/pkg/masonry"
	"github.com/matzehuels/rigwall/pkg/viewport"
)

// View is everything a renderer needs to draw the page. It shares no
// mutable state with the App.
type View struct {
	Breakpoint     viewport.Breakpoint `json:"breakpoint"`
	ViewportWidth  float64             `json:"viewport_width"`
	ContainerWidth float64             `json:"container_width"`
	Columns        int                 `json:"columns"`
	ItemWidth      float64             `json:"item_width"`
	Height         float64             `json:"height"`

	Items []Item `json:"items"`

	Filters   filter.State    `json:"filters"`
	Draft     filter.State    `json:"draft"`
	Sort      filter.SortMode `json:"sort"`
	SortLabel string          `json:"sort_label"`
	Choices   filter.Choices  `json:"choices"`
	Query     string          `json:"query"`

	Total     int      `json:"total"`
	Displayed int      `json:"displayed"`
	LoadMore  LoadMore `json:"load_more"`
	Company   Company  `json:"company"`

	// Lightbox is nil while the modal is closed.
	Lightbox *Modal `json:"lightbox,omitempty"`
}

// Item is one placed card.
type Item struct {
	ID           int               `json:"id"`
	Image        string            `json:"image"`
	Alt          string            `json:"alt"`
	ImageHeight  int               `json:"image_height"`
	Hidden       bool              `json:"hidden,omitempty"`
	YearPill     string            `json:"year_pill"`
	Category     catalog.Category  `json:"category"`
	CategoryPill string            `json:"category_pill"`
	Company      string            `json:"company"`
	Owner        string            `json:"owner"`
	Title        string            `json:"title"`
	Placement    masonry.Placement `json:"placement"`
}

// LoadMore is the state of the load-more button.
type LoadMore struct {
	Visible bool   `json:"visible"`
	Label   string `json:"label,omitempty"`
}

// Company is the active company filter indicator.
type Company struct {
	Active bool   `json:"active"`
	Name   string `json:"name,omitempty"`
	Label  string `json:"label,omitempty"`
}

// Modal is the open lightbox.
type Modal struct {
	ID          int         `json:"id"`
	Owner       string      `json:"owner"`
	Description string      `json:"description"`
	Sold        string      `json:"sold"`
	SalesRep    string      `json:"sales_rep"`
	Image       string      `json:"image"`
	Index       int         `json:"index"`
	Count       int         `json:"count"`
	HasPrev     bool        `json:"has_prev"`
	HasNext     bool        `json:"has_next"`
	Thumbnails  []Thumbnail `json:"thumbnails"`
}

// Thumbnail is one carousel entry.
type Thumbnail struct {
	Src    string `json:"src"`
	Active bool   `json:"active"`
}

// View projects the current state.
func (a *App) View() View {
	cfg := a.layout.Config
	v := View{
		Breakpoint:     a.breakpoint,
		ViewportWidth:  a.viewportWidth,
		ContainerWidth: a.containerWidth,
		Columns:        cfg.Columns,
		ItemWidth:      cfg.ItemWidth,
		Height:         a.layout.Height,
		Filters:        a.applied,
		Draft:          a.draft,
		Sort:           a.sort,
		SortLabel:      a.sort.Label(),
		Choices:        a.choices,
		Query:          a.Query().Encode(),
		Total:          a.pager.Total(),
		Displayed:      a.pager.Displayed(),
	}

	byID := make(map[int]catalog.Vehicle, len(a.visible))
	for _, rec := range a.visible[:a.pager.Displayed()] {
		byID[rec.ID] = rec
	}
	v.Items = make([]Item, 0, len(a.layout.Placements))
	for _, p := range a.layout.Placements {
		rec, ok := byID[p.ID]
		if !ok {
			continue
		}
		v.Items = append(v.Items, itemFor(rec, p, a))
	}

	if a.pager.HasMore() {
		v.LoadMore = LoadMore{Visible: true, Label: a.pager.Label()}
	}
	if a.applied.Company != "" {
		v.Company = Company{Active: true, Name: a.applied.Company, Label: "Filtering by: " + a.applied.Company}
	}
	if rec, ok := a.lightbox.Record(); ok {
		v.Lightbox = modalFor(rec, a)
	}
	return v
}

func itemFor(rec catalog.Vehicle, p masonry.Placement, a *App) Item {
	return Item{
		ID:           rec.ID,
		Image:        rec.Image,
		Alt:          rec.Owner,
		ImageHeight:  rec.DisplayHeight,
		Hidden:       p.Outcome == masonry.Failed,
		YearPill:     strconv.Itoa(catalog.ExtractYear(rec.Description, a.opts.Now())),
		Category:     rec.Category,
		CategoryPill: rec.Category.Label(),
		Company:      catalog.CompanyName(rec.Owner),
		Owner:        rec.Owner,
		Title:        Truncate(rec.Description, TitleLength),
		Placement:    p,
	}
}

func modalFor(rec catalog.Vehicle, a *App) *Modal {
	idx := a.lightbox.Index()
	m := &Modal{
		ID:          rec.ID,
		Owner:       rec.Owner,
		Description: rec.Description,
		Sold:        rec.Sold.Label,
		SalesRep:    rec.SalesRep,
		Image:       a.lightbox.Image(),
		Index:       idx,
		Count:       a.lightbox.Count(),
		HasPrev:     idx > 0,
		HasNext:     idx < a.lightbox.Count()-1,
	}
	m.Thumbnails = make([]Thumbnail, len(rec.Gallery))
	for i, src := range rec.Gallery {
		m.Thumbnails[i] = Thumbnail{Src: src, Active: i == idx}
	}
	return m
}

// Truncate shortens s to n runes followed by "...". Shorter strings are
// returned unchanged.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
