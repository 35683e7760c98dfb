// Package catalog defines vehicle listing records and generates the synthetic
// catalog the gallery displays.
//
// A catalog is built once per session from a [Roster] (image file names,
// owner companies and sales reps) and a caller-supplied random source:
//
//	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
//	vehicles := catalog.Generate(rng, catalog.DefaultRoster(), viewport.Desktop)
//
// Records are immutable after generation except for DisplayHeight, which
// [RegenerateHeights] reassigns when the viewport breakpoint changes.
//
// The helpers [ExtractYear], [Location] and [CompanyName] pull structured
// values out of the free-text description and owner fields; the filter
// pipeline and the renderers share them so every consumer agrees on what
// "year" or "location" means for a record.
package catalog
