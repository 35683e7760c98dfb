package masonry

import "slices"

// Placement is the position and size assigned to one item.
type Placement struct {
	ID     int     `json:"id"`
	Column int     `json:"column"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Outcome records how the item's height was obtained.
	Outcome Outcome `json:"outcome"`
}

// Bottom is the y coordinate of the placement's lower edge.
func (p Placement) Bottom() float64 { return p.Y + p.Height }

// Columns holds the running column heights of one layout.
type Columns struct {
	cfg     Config
	heights []float64
}

// NewColumns returns reset columns for cfg.
func NewColumns(cfg Config) *Columns {
	c := &Columns{cfg: cfg}
	c.Reset()
	return c
}

// Config returns the geometry the columns were built for.
func (c *Columns) Config() Config { return c.cfg }

// Reset sets every column height to zero.
func (c *Columns) Reset() {
	c.heights = make([]float64, max(1, c.cfg.Columns))
}

// Place puts an item of the given height into the shortest column and
// grows that column by height plus the vertical gap.
func (c *Columns) Place(id int, height float64, outcome Outcome) Placement {
	col := ShortestColumn(c.heights)
	p := Placement{
		ID:      id,
		Column:  col,
		X:       c.cfg.ColumnX(col),
		Y:       c.heights[col],
		Width:   c.cfg.ItemWidth,
		Height:  height,
		Outcome: outcome,
	}
	c.heights[col] += height + c.cfg.VerticalGap
	return p
}

// Finalize returns the container height: the tallest column.
func (c *Columns) Finalize() float64 {
	return slices.Max(c.heights)
}

// Heights returns a copy of the current column heights.
func (c *Columns) Heights() []float64 {
	return slices.Clone(c.heights)
}

// ShortestColumn returns the index of the minimum height, preferring the
// lowest index on ties. It returns 0 for an empty slice.
func ShortestColumn(heights []float64) int {
	best := 0
	for i := 1; i < len(heights); i++ {
		if heights[i] < heights[best] {
			best = i
		}
	}
	return best
}

// Sized is an item whose full rendered height is already known.
type Sized struct {
	ID     int
	Height float64
}

// Pack runs Reset, Place and Finalize over items in order without any
// measurement. It is the pure core of [Engine.Reposition].
func Pack(cfg Config, items []Sized) Layout {
	cols := NewColumns(cfg)
	placements := make([]Placement, 0, len(items))
	for _, it := range items {
		placements = append(placements, cols.Place(it.ID, it.Height, Loaded))
	}
	return Layout{
		Config:        cfg,
		ColumnHeights: cols.Heights(),
		Placements:    placements,
		Height:        cols.Finalize(),
	}
}

// Layout is a snapshot of a finished pass.
type Layout struct {
	Config        Config      `json:"config"`
	ColumnHeights []float64   `json:"column_heights"`
	Placements    []Placement `json:"placements"`
	Height        float64     `json:"height"`
}

// Find returns the placement for id.
func (l Layout) Find(id int) (Placement, bool) {
	for _, p := range l.Placements {
		if p.ID == id {
			return p, true
		}
	}
	return Placement{}, false
}
