package cache

import "fmt"

// LayoutKeyOpts are the inputs that change a computed layout.
type LayoutKeyOpts struct {
	ViewportWidth  float64 `json:"viewport_width"`
	ContainerWidth float64 `json:"container_width"`
	Query          string  `json:"query,omitempty"`
	Pages          int     `json:"pages"`
	PageSize       int     `json:"page_size,omitempty"`
	CaptionHeight  float64 `json:"caption_height,omitempty"`
	HorizontalGap  float64 `json:"horizontal_gap,omitempty"`
	VerticalGap    float64 `json:"vertical_gap,omitempty"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Scale  int    `json:"scale,omitempty"`
	Images string `json:"images,omitempty"`
	Seed   uint64 `json:"seed,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	HTTPKey(namespace, key string) string
	CatalogKey(seed uint64, rosterHash, breakpoint string) string
	LayoutKey(catalogHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes structured options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey keys a cached HTTP response.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

// CatalogKey keys a generated catalog.
func (DefaultKeyer) CatalogKey(seed uint64, rosterHash, breakpoint string) string {
	return hashKey("catalog", seed, rosterHash, breakpoint)
}

// LayoutKey keys a filtered, paginated layout of a catalog.
func (DefaultKeyer) LayoutKey(catalogHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", catalogHash, opts)
}

// ArtifactKey keys one rendered format of a layout.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
