package filter

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matzehuels/rigwall/pkg/catalog"
)

// predicate reports whether a vehicle stays in the visible list.
type predicate func(catalog.Vehicle) bool

// Apply narrows vehicles by every active filter (logical AND) and sorts the
// survivors by mode. The input is not modified. Records with equal sort keys
// keep their input order.
func Apply(vehicles []catalog.Vehicle, s State, mode SortMode) []catalog.Vehicle {
	return ApplyAt(vehicles, s, mode, time.Now())
}

// ApplyAt is [Apply] with an explicit clock for descriptions that carry no
// year.
func ApplyAt(vehicles []catalog.Vehicle, s State, mode SortMode, now time.Time) []catalog.Vehicle {
	preds := predicates(s, now)
	out := make([]catalog.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if keep(v, preds) {
			out = append(out, v)
		}
	}
	Sort(out, mode)
	return out
}

func keep(v catalog.Vehicle, preds []predicate) bool {
	for _, p := range preds {
		if !p(v) {
			return false
		}
	}
	return true
}

func predicates(s State, now time.Time) []predicate {
	var preds []predicate
	if c := s.CategoryOrAll(); c != CategoryAll {
		preds = append(preds, func(v catalog.Vehicle) bool {
			return string(v.Category) == c
		})
	}
	if s.Company != "" {
		company := strings.ToLower(s.Company)
		preds = append(preds, func(v catalog.Vehicle) bool {
			return strings.Contains(strings.ToLower(v.Owner), company)
		})
	}
	if s.Year != 0 {
		preds = append(preds, func(v catalog.Vehicle) bool {
			return catalog.ExtractYear(v.Description, now) == s.Year
		})
	}
	if s.Location != "" {
		preds = append(preds, func(v catalog.Vehicle) bool {
			return catalog.Location(v.Owner) == s.Location
		})
	}
	if s.SalesRep != "" {
		preds = append(preds, func(v catalog.Vehicle) bool {
			return v.SalesRep == s.SalesRep
		})
	}
	return preds
}

// Sort orders vehicles in place by mode using a stable sort. Unknown modes
// sort newest first.
func Sort(vehicles []catalog.Vehicle, mode SortMode) {
	switch mode {
	case Oldest:
		slices.SortStableFunc(vehicles, func(a, b catalog.Vehicle) int {
			return a.Sold.Date.Compare(b.Sold.Date)
		})
	case OwnerAsc, OwnerDesc:
		col := collate.New(language.English)
		sign := 1
		if mode == OwnerDesc {
			sign = -1
		}
		slices.SortStableFunc(vehicles, func(a, b catalog.Vehicle) int {
			return sign * col.CompareString(a.Owner, b.Owner)
		})
	default:
		slices.SortStableFunc(vehicles, func(a, b catalog.Vehicle) int {
			return b.Sold.Date.Compare(a.Sold.Date)
		})
	}
}
