package catalog

import (
	"fmt"
	"math/rand/v2"
	"path"
	"strings"
	"time"

	"github.com/matzehuels/rigwall/pkg/viewport"
)

// NewRand returns the generator's random source for a seed. The same seed
// always yields the same catalog.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Generate builds one record per roster image, in roster order, with
// ID = position+1. Empty roster fields fall back to [DefaultRoster].
func Generate(rng *rand.Rand, roster Roster, bp viewport.Breakpoint) []Vehicle {
	roster = roster.WithDefaults()
	vehicles := make([]Vehicle, 0, len(roster.Images))
	for i, name := range roster.Images {
		src := path.Join(roster.ImagePrefix, name)
		gallery := make([]string, roster.GallerySize)
		for j := range gallery {
			gallery[j] = src
		}
		vehicles = append(vehicles, Vehicle{
			ID:            i + 1,
			Image:         src,
			Gallery:       gallery,
			Owner:         pick(rng, roster.Companies),
			Description:   describe(rng),
			Sold:          soldDate(rng),
			SalesRep:      pick(rng, roster.SalesReps),
			Category:      Categorize(rng, name),
			DisplayHeight: DisplayHeight(rng, bp),
		})
	}
	return vehicles
}

func pick(rng *rand.Rand, items []string) string {
	return items[rng.IntN(len(items))]
}

// describe builds "<year> <truck type>, <chassis>, #<serial>".
func describe(rng *rand.Rand) string {
	year := 2020 + rng.IntN(5)
	serial := 19000 + rng.IntN(4000)
	return fmt.Sprintf("%d %s, %s, #%d", year, pick(rng, truckTypes), pick(rng, chassis), serial)
}

// soldDate picks a month in 2024 or 2025. Days stop at 28 so every month is valid.
func soldDate(rng *rand.Rand) SoldDate {
	month := time.Month(1 + rng.IntN(12))
	year := 2024 + rng.IntN(2)
	day := 1 + rng.IntN(28)
	return SoldDate{
		Label: fmt.Sprintf("%s %d", month, year),
		Date:  time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
	}
}

// categoryRules are checked in order against the lowercased image name.
var categoryRules = []struct {
	tokens   []string
	category Category
}{
	{[]string{"rotator", "1150", "1075"}, HeavyDuty},
	{[]string{"carrier"}, Carriers},
	{[]string{"light", "2465", "810cw"}, LightDuty},
	{[]string{"4024", "20-ton"}, MediumDuty},
}

// Categorize assigns a category from substrings of the image file name,
// falling back to a uniform random category when no rule matches.
func Categorize(rng *rand.Rand, imageName string) Category {
	if c, ok := CategoryFromName(imageName); ok {
		return c
	}
	return Categories[rng.IntN(len(Categories))]
}

// CategoryFromName applies only the deterministic rules of [Categorize].
func CategoryFromName(imageName string) (Category, bool) {
	name := strings.ToLower(imageName)
	for _, rule := range categoryRules {
		for _, tok := range rule.tokens {
			if strings.Contains(name, tok) {
				return rule.category, true
			}
		}
	}
	return "", false
}

// heightRange is a [base, base+spread) pixel range.
type heightRange struct{ base, spread int }

// DisplayHeight draws an image height for the breakpoint: mobile 120-199,
// tablet 140-239, anything wider 180-349.
func DisplayHeight(rng *rand.Rand, bp viewport.Breakpoint) int {
	r := heightRangeFor(bp)
	return r.base + rng.IntN(r.spread)
}

func heightRangeFor(bp viewport.Breakpoint) heightRange {
	switch bp {
	case viewport.Mobile:
		return heightRange{120, 80}
	case viewport.Tablet:
		return heightRange{140, 100}
	default:
		return heightRange{180, 170}
	}
}

// RegenerateHeights reassigns every display height for a new breakpoint.
func RegenerateHeights(rng *rand.Rand, vehicles []Vehicle, bp viewport.Breakpoint) {
	for i := range vehicles {
		vehicles[i].DisplayHeight = DisplayHeight(rng, bp)
	}
}
