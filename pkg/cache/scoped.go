package cache

// ScopedKeyer prefixes every key of an inner Keyer. The server scopes its
// render cache by build version so that a deploy never serves artifacts
// rendered by older templates:
//
//	keyer := cache.NewScopedKeyer(nil, "rigwall:"+buildinfo.Version+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) CatalogKey(seed uint64, rosterHash, breakpoint string) string {
	return k.prefix + k.inner.CatalogKey(seed, rosterHash, breakpoint)
}

func (k *ScopedKeyer) LayoutKey(catalogHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(catalogHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
