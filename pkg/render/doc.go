// Package render turns a [gallery.View] into output files.
//
// Every sink reads only the view: item placements, pills, titles, the
// load-more state and the open lightbox. None of them re-run the layout, so
// the same view renders identically in every format.
//
//   - HTML: a static page with absolutely positioned cards, the filter bar,
//     the load-more button and the lightbox (html/template, embedded)
//   - SVG: a wireframe of the masonry grid, one card per placement
//   - JSON: the view itself, for external tools and the HTTP API
//   - PNG: a raster preview; card images are drawn from an [ImageLoader]
//     when one is given, otherwise as gray placeholders
//
// Each sink takes functional options:
//
//	html, err := render.RenderHTML(v, render.WithTitle("Recent deliveries"))
//	svg := render.RenderSVG(v)
//	png, err := render.RenderPNG(ctx, v, render.WithScale(2), render.WithImages(prober))
//
// [Render] dispatches on a list of format names and is what the pipeline
// and the CLI call.
//
// [gallery.View]: github.com/matzehuels/rigwall/pkg/gallery.View
package render
