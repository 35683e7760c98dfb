package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/rigwall/pkg/gallery"
)

const svgCSS = `
    .card { fill: #ffffff; stroke: #d6d3d1; stroke-width: 1; }
    .media { fill: #a8a29e; }
    .media.failed { fill: none; }
    .pill { fill: #1c1917; fill-opacity: 0.65; }
    .pill-text { fill: #ffffff; font: 11px sans-serif; }
    .company { fill: #b45309; font: bold 13px sans-serif; }
    .title { fill: #44403c; font: 11px sans-serif; }
    .card.selected { stroke: #b45309; stroke-width: 3; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	labels     bool
	background string
	selected   int
}

// WithoutLabels drops pills and captions, leaving only boxes.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithBackground fills the canvas with a CSS color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// RenderSVG draws the masonry grid as a wireframe. Failed images leave only
// their caption; the card open in the lightbox is outlined.
func RenderSVG(v gallery.View, opts ...SVGOption) []byte {
	r := svgRenderer{labels: true}
	if v.Lightbox != nil {
		r.selected = v.Lightbox.ID
	}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := v.ContainerWidth, v.Height
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgCSS)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(r.background))
	}

	for _, it := range v.Items {
		r.renderItem(&buf, it)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) renderItem(buf *bytes.Buffer, it gallery.Item) {
	p := it.Placement
	class := "card"
	if it.ID == r.selected {
		class += " selected"
	}
	fmt.Fprintf(buf, `  <g id="item-%d" data-category="%s">`+"\n", it.ID, it.Category)
	fmt.Fprintf(buf, `    <rect class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8"/>`+"\n",
		class, p.X, p.Y, p.Width, p.Height)

	media := float64(it.ImageHeight)
	if it.Hidden {
		media = 0
	} else {
		fmt.Fprintf(buf, `    <rect class="media" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
			p.X, p.Y, p.Width, media)
	}

	if r.labels {
		if !it.Hidden {
			renderPill(buf, p.X+8, p.Y+8, it.YearPill)
			renderPill(buf, p.X+8+pillWidth(it.YearPill)+6, p.Y+8, it.CategoryPill)
		}
		fmt.Fprintf(buf, `    <text class="company" x="%.1f" y="%.1f">%s</text>`+"\n",
			p.X+12, p.Y+media+24, html.EscapeString(it.Company))
		fmt.Fprintf(buf, `    <text class="title" x="%.1f" y="%.1f">%s</text>`+"\n",
			p.X+12, p.Y+media+44, html.EscapeString(gallery.Truncate(it.Title, titleRunes(p.Width))))
	}
	buf.WriteString("  </g>\n")
}

func renderPill(buf *bytes.Buffer, x, y float64, label string) {
	fmt.Fprintf(buf, `    <rect class="pill" x="%.1f" y="%.1f" width="%.1f" height="18" rx="9"/>`+"\n",
		x, y, pillWidth(label))
	fmt.Fprintf(buf, `    <text class="pill-text" x="%.1f" y="%.1f">%s</text>`+"\n",
		x+8, y+13, html.EscapeString(label))
}

// pillWidth approximates the rendered width of an 11px label.
func pillWidth(label string) float64 { return float64(len(label))*6.5 + 16 }

// titleRunes is how many 11px characters fit on one caption line.
func titleRunes(width float64) int {
	n := int((width - 24) / 6)
	return max(n, 8)
}
