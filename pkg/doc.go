// Package pkg provides the core libraries for the Rigwall delivery gallery.
//
// # Overview
//
// Rigwall turns a roster of truck photos into a filterable masonry gallery:
// a catalog of delivered vehicles is filtered and sorted, paginated, and
// placed card by card into the shortest column. Layout positions are plain
// data, so the same view drives the HTML page, SVG and PNG snapshots, the
// JSON export, the HTTP server and the terminal browser.
//
// # Architecture
//
// The typical data flow:
//
//	Roster + seed
//	     ↓
//	[catalog] (generate vehicles)
//	     ↓
//	[filter] (category, company, year, location, rep; stable sort)
//	     ↓
//	[paginate] (20 cards per page)
//	     ↓
//	[masonry] (measure images, place in shortest column)
//	     ↓
//	[gallery] View
//	     ↓
//	[render] HTML/SVG/JSON/PNG
//
// # Quick Start
//
//	app := gallery.New(gallery.Options{Seed: 42})
//	if err := app.Init(ctx, 1280, 1200, url.Values{"category": {"carriers"}}); err != nil {
//	    return err
//	}
//	app.LoadMore(ctx)
//	html, _ := render.RenderHTML(app.View())
//
// # Main Packages
//
// ## Domain
//
// [catalog] - Vehicle records, categories, the seeded generator and owner
// field helpers.
//
// [filter] - Filter state, sort modes, Apply, dropdown choices and URL query
// mapping.
//
// [masonry] - Column configuration per [viewport] breakpoint, shortest-column
// placement, the measuring engine and the resize debouncer.
//
// [paginate] and [lightbox] - Load-more paging and the photo modal.
//
// [gallery] - The application state object tying the above together and
// projecting an immutable View.
//
// ## Output
//
// [render] - HTML page, SVG and PNG snapshots, and the JSON layout format.
//
// [pipeline] - generate → layout → render with per-stage caching, shared by
// the CLI and the server.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [imageprobe] - Image size probing and decoding for local and remote photos.
//
// [httputil] - Retrying HTTP client and file-backed JSON cache.
//
// [server] and [session] - The chi HTTP front-end and per-visitor state.
//
// [submit] - Photo submission validation.
//
// [config], [errors], [observability], [buildinfo] - Shared plumbing.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/masonry/...    # Specific package
//	go test -run Example         # Examples only
package pkg
