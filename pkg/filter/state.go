// Package filter derives the visible subset of a catalog from the current
// filter state and sort mode.
//
// The visible list is never edited in place. Every change to [State] or
// [SortMode] re-runs [Apply] against the full catalog, so the result is always
// reproducible from (catalog, state, mode).
package filter

import (
	"fmt"
	"strings"

	"github.com/matzehuels/rigwall/pkg/catalog"
	rwerrors "github.com/matzehuels/rigwall/pkg/errors"
)

// CategoryAll disables the category predicate.
const CategoryAll = "all"

// State holds the active filters. Zero values mean "unset"; an empty Category
// is treated as [CategoryAll].
type State struct {
	Category string `json:"category,omitempty"`
	Company  string `json:"company,omitempty"`
	Year     int    `json:"year,omitempty"`
	Location string `json:"location,omitempty"`
	SalesRep string `json:"sales_rep,omitempty"`
}

// Default returns the initial filter state: all categories, nothing else set.
func Default() State {
	return State{Category: CategoryAll}
}

// CategoryOrAll returns the category with the empty value normalized to "all".
func (s State) CategoryOrAll() string {
	if s.Category == "" {
		return CategoryAll
	}
	return s.Category
}

// IsDefault reports whether no filter narrows the catalog.
func (s State) IsDefault() bool {
	return s.CategoryOrAll() == CategoryAll && s.Company == "" && s.Year == 0 &&
		s.Location == "" && s.SalesRep == ""
}

// Validate checks the category is known and free-text fields are sane.
func (s State) Validate() error {
	if c := s.CategoryOrAll(); c != CategoryAll && !catalog.Category(c).Valid() {
		return rwerrors.New(rwerrors.ErrCodeInvalidFilter, "unknown category %q", c)
	}
	if s.Year < 0 {
		return rwerrors.New(rwerrors.ErrCodeInvalidFilter, "year must be positive, got %d", s.Year)
	}
	for field, v := range map[string]string{"company": s.Company, "location": s.Location, "sales rep": s.SalesRep} {
		if err := rwerrors.ValidateText(field, v); err != nil {
			return err
		}
	}
	return nil
}

// SortMode selects the ordering of the visible list.
type SortMode string

const (
	Newest    SortMode = "newest"
	Oldest    SortMode = "oldest"
	OwnerAsc  SortMode = "owner-az"
	OwnerDesc SortMode = "owner-za"
)

// SortModes lists the modes in selector order.
var SortModes = []SortMode{Newest, Oldest, OwnerAsc, OwnerDesc}

// ParseSortMode validates a sort mode name. The empty string selects [Newest].
func ParseSortMode(s string) (SortMode, error) {
	if s == "" {
		return Newest, nil
	}
	for _, m := range SortModes {
		if string(m) == s {
			return m, nil
		}
	}
	return Newest, rwerrors.New(rwerrors.ErrCodeInvalidSort,
		"invalid sort %q (must be one of: %s)", s, joinModes())
}

func joinModes() string {
	names := make([]string, len(SortModes))
	for i, m := range SortModes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// Label is the selector text for a mode.
func (m SortMode) Label() string {
	switch m {
	case Newest:
		return "Newest First"
	case Oldest:
		return "Oldest First"
	case OwnerAsc:
		return "Owner A-Z"
	case OwnerDesc:
		return "Owner Z-A"
	}
	return fmt.Sprintf("SortMode(%s)", string(m))
}
