package masonry

import (
	"math"

	"github.com/matzehuels/rigwall/pkg/viewport"
)

// Item widths per breakpoint. Mobile derives its width from the container.
const (
	TabletItemWidth       = 180
	SmallDesktopItemWidth = 220
	DesktopItemWidth      = 240
	MobileMinItemWidth    = 140
	MobileColumns         = 2
)

// Gaps are the horizontal and vertical spacing between items, in pixels.
type Gaps struct {
	Horizontal float64 `json:"horizontal" toml:"horizontal"`
	Vertical   float64 `json:"vertical" toml:"vertical"`
}

// DefaultGaps is 20px in both directions.
func DefaultGaps() Gaps {
	return Gaps{Horizontal: 20, Vertical: 20}
}

// Config is the outcome of the Configure step. All lengths are pixels.
type Config struct {
	Breakpoint     viewport.Breakpoint `json:"breakpoint"`
	ContainerWidth float64             `json:"container_width"`
	ItemWidth      float64             `json:"item_width"`
	Columns        int                 `json:"columns"`
	HorizontalGap  float64             `json:"horizontal_gap"`
	VerticalGap    float64             `json:"vertical_gap"`
	LeftOffset     float64             `json:"left_offset"`
}

// Configure derives the grid geometry for a container.
//
// Item width is fixed per breakpoint except on mobile, where it is half the
// container minus one gap, never below 140. The column count is
// max(1, floor(containerWidth / (itemWidth + gap))), except that mobile always
// has exactly two columns. The left offset centers the grid and is clamped at
// zero when the grid is wider than the container.
func Configure(containerWidth float64, bp viewport.Breakpoint, gaps Gaps) Config {
	cfg := Config{
		Breakpoint:     bp,
		ContainerWidth: containerWidth,
		HorizontalGap:  gaps.Horizontal,
		VerticalGap:    gaps.Vertical,
	}
	cfg.ItemWidth = itemWidth(containerWidth, bp, gaps.Horizontal)

	if bp == viewport.Mobile {
		cfg.Columns = MobileColumns
	} else {
		cfg.Columns = max(1, int(math.Floor(containerWidth/(cfg.ItemWidth+gaps.Horizontal))))
	}

	cfg.LeftOffset = max(0, (containerWidth-cfg.GridWidth())/2)
	return cfg
}

func itemWidth(containerWidth float64, bp viewport.Breakpoint, gap float64) float64 {
	switch bp {
	case viewport.Mobile:
		return max(MobileMinItemWidth, math.Floor((containerWidth-gap)/2))
	case viewport.Tablet:
		return TabletItemWidth
	case viewport.SmallDesktop:
		return SmallDesktopItemWidth
	default:
		return DesktopItemWidth
	}
}

// GridWidth is the width spanned by all columns and the gaps between them.
func (c Config) GridWidth() float64 {
	if c.Columns <= 0 {
		return 0
	}
	return float64(c.Columns)*c.ItemWidth + float64(c.Columns-1)*c.HorizontalGap
}

// ColumnX is the left edge of column i.
func (c Config) ColumnX(i int) float64 {
	return c.LeftOffset + float64(i)*(c.ItemWidth+c.HorizontalGap)
}
