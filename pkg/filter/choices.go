package filter

import (
	"cmp"
	"slices"
	"time"

	"github.com/matzehuels/rigwall/pkg/catalog"
)

// Choices are the dropdown values offered by the filters panel, drawn from
// the values actually present in the catalog.
type Choices struct {
	Categories []string   `json:"categories"`
	SortModes  []SortMode `json:"sort_modes"`
	Years      []int      `json:"years"`
	Locations  []string   `json:"locations"`
	SalesReps  []string   `json:"sales_reps"`
}

// ChoicesFor collects distinct years (newest first), locations and sales reps
// (both ascending). now is the year fallback for descriptions without one,
// and must match the clock passed to [ApplyAt].
func ChoicesFor(vehicles []catalog.Vehicle, now time.Time) Choices {
	years := make([]int, 0, len(vehicles))
	locations := make([]string, 0, len(vehicles))
	reps := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		years = append(years, catalog.ExtractYear(v.Description, now))
		locations = append(locations, catalog.Location(v.Owner))
		reps = append(reps, v.SalesRep)
	}

	slices.SortFunc(years, func(a, b int) int { return cmp.Compare(b, a) })
	slices.Sort(locations)
	slices.Sort(reps)

	categories := make([]string, 0, len(catalog.Categories)+1)
	categories = append(categories, CategoryAll)
	for _, c := range catalog.Categories {
		categories = append(categories, string(c))
	}

	return Choices{
		Categories: categories,
		SortModes:  slices.Clone(SortModes),
		Years:      slices.Compact(years),
		Locations:  slices.Compact(locations),
		SalesReps:  slices.Compact(reps),
	}
}
