// Package paginate tracks how many items of the filtered list are on screen.
package paginate

import "fmt"

// DefaultPageSize is the number of items materialized per LoadMore.
const DefaultPageSize = 20

// Paginator counts displayed items against the current filtered total.
// The zero value is usable and pages by DefaultPageSize.
type Paginator struct {
	PageSize int

	displayed int
	total     int
}

// New returns a paginator for pageSize (DefaultPageSize when <= 0).
func New(pageSize int) *Paginator {
	return &Paginator{PageSize: pageSize}
}

func (p *Paginator) size() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}

// Reset starts over for a new filtered list of total items. Nothing is
// displayed until the next LoadMore.
func (p *Paginator) Reset(total int) {
	p.total = max(0, total)
	p.displayed = 0
}

// LoadMore advances the displayed count by up to one page and returns the
// half-open index range [from, to) of newly displayed items. When nothing
// remains, from == to.
func (p *Paginator) LoadMore() (from, to int) {
	from = p.displayed
	to = min(p.displayed+p.size(), p.total)
	p.displayed = to
	return from, to
}

// Displayed is the number of items on screen.
func (p Paginator) Displayed() int { return p.displayed }

// Total is the length of the filtered list.
func (p Paginator) Total() int { return p.total }

// HasMore reports whether LoadMore would display anything.
func (p Paginator) HasMore() bool { return p.displayed < p.total }

// Remaining is the number of filtered items not yet displayed.
func (p Paginator) Remaining() int { return p.total - p.displayed }

// Label is the load-more button text, e.g. "Load More (9 remaining)".
func (p Paginator) Label() string {
	return fmt.Sprintf("Load More (%d remaining)", p.Remaining())
}
