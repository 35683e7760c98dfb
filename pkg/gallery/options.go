package gallery

import (
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rigwall/pkg/catalog"
	"github.com/matzehuels/rigwall/pkg/masonry"
	"github.com/matzehuels/rigwall/pkg/paginate"
)

// DefaultCaptionHeight is the height of the text block under each image
// (company link and title), in pixels.
const DefaultCaptionHeight = 76

// TitleLength is the number of description runes shown on a card.
const TitleLength = 55

// Options configures an App.
type Options struct {
	// Catalog, when set, is used instead of generating one.
	Catalog []catalog.Vehicle

	// Roster feeds the generator. Empty fields use catalog.DefaultRoster.
	Roster catalog.Roster

	// Seed makes generation reproducible. Zero picks a random seed.
	Seed uint64

	PageSize int
	// Gaps are the gutters between cards. Nil uses masonry.DefaultGaps;
	// a zero Gaps packs cards edge to edge.
	Gaps          *masonry.Gaps
	CaptionHeight float64

	// Measurer decides whether each image loads. Nil trusts declared heights.
	Measurer       masonry.Measurer
	MeasureTimeout time.Duration

	Logger *log.Logger
	Now    func() time.Time
}

func (o *Options) setDefaults() {
	if o.PageSize <= 0 {
		o.PageSize = paginate.DefaultPageSize
	}
	if o.Gaps == nil {
		g := masonry.DefaultGaps()
		o.Gaps = &g
	}
	if o.CaptionHeight <= 0 {
		o.CaptionHeight = DefaultCaptionHeight
	}
	if o.MeasureTimeout <= 0 {
		o.MeasureTimeout = masonry.DefaultMeasureTimeout
	}
	if o.Seed == 0 {
		o.Seed = rand.Uint64()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}
