package render

import (
	"bytes"
	"embed"
	"html/template"
	"net/url"
	"path"
	"strconv"

	"github.com/matzehuels/rigwall/pkg/catalog"
	rwerrors "github.com/matzehuels/rigwall/pkg/errors"
	"github.com/matzehuels/rigwall/pkg/filter"
	"github.com/matzehuels/rigwall/pkg/gallery"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// DefaultTitle is the page heading.
const DefaultTitle = "Recent Deliveries"

// ParamLightbox is the query parameter naming the vehicle whose lightbox
// is open.
const ParamLightbox = "lightbox"

var pageTemplate = template.Must(
	template.New("gallery.html.tmpl").Funcs(template.FuncMap{
		"imageURL":         func(src string) string { return src },
		"px":               formatPx,
		"categoryLabel":    categoryLabel,
		"companyHref":      companyHref,
		"clearCompanyHref": clearCompanyHref,
		"lightboxHref":     lightboxHref,
	}).ParseFS(templateFS, "templates/gallery.html.tmpl"),
)

// HTMLOption configures HTML rendering.
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	title         string
	imageBase     string
	api           string
	captionHeight float64
}

// WithTitle sets the page title and heading.
func WithTitle(t string) HTMLOption { return func(r *htmlRenderer) { r.title = t } }

// WithImageBase rewrites local image paths to live under base (a URL
// prefix or a relative directory). Remote image URLs are left alone.
func WithImageBase(base string) HTMLOption { return func(r *htmlRenderer) { r.imageBase = base } }

// WithAPI makes the page interactive: controls call the gallery API rooted
// at base (for example "/api") and reload.
func WithAPI(base string) HTMLOption { return func(r *htmlRenderer) { r.api = base } }

// WithCaptionHeight sets the fixed caption block height; it must match the
// height the layout was computed with.
func WithCaptionHeight(h float64) HTMLOption { return func(r *htmlRenderer) { r.captionHeight = h } }

type htmlPage struct {
	Title         string
	API           string
	CaptionHeight string
	View          gallery.View
}

// RenderHTML renders the view as a standalone page.
func RenderHTML(v gallery.View, opts ...HTMLOption) ([]byte, error) {
	r := htmlRenderer{title: DefaultTitle, captionHeight: gallery.DefaultCaptionHeight}
	for _, opt := range opts {
		opt(&r)
	}

	tmpl, err := pageTemplate.Clone()
	if err != nil {
		return nil, err
	}
	tmpl.Funcs(template.FuncMap{"imageURL": r.imageURL})

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, htmlPage{
		Title:         r.title,
		API:           r.api,
		CaptionHeight: formatPx(r.captionHeight),
		View:          v,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r htmlRenderer) imageURL(src string) string {
	if r.imageBase == "" || rwerrors.IsRemote(src) {
		return src
	}
	if u, err := url.Parse(r.imageBase); err == nil && u.Scheme != "" {
		u.Path = path.Join(u.Path, src)
		return u.String()
	}
	return path.Join(r.imageBase, src)
}

func formatPx(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func categoryLabel(c string) string {
	if c == filter.CategoryAll {
		return "All Categories"
	}
	return catalog.Category(c).Label()
}

// companyHref links a card's company to the page filtered by the full
// owner string, keeping the other applied filters.
func companyHref(v gallery.View, owner string) string {
	return "?" + filter.WithCompany(&url.URL{RawQuery: v.Query}, owner).RawQuery
}

// lightboxHref links a card to the same page with its lightbox open.
func lightboxHref(v gallery.View, id int) string {
	q, _ := url.ParseQuery(v.Query)
	q.Set(ParamLightbox, strconv.Itoa(id))
	return "?" + q.Encode()
}

func clearCompanyHref(v gallery.View) string {
	return "?" + filter.WithCompany(&url.URL{RawQuery: v.Query}, "").RawQuery
}
