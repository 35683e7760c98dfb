package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/rigwall/pkg/cache"
	"github.com/matzehuels/rigwall/pkg/catalog"
	rwerrors "github.com/matzehuels/rigwall/pkg/errors"
	"github.com/matzehuels/rigwall/pkg/render"
	"github.com/matzehuels/rigwall/pkg/viewport"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	m.sets = append(m.sets, key)
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

func (m *memCache) count(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range m.sets {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

var _ cache.Cache = (*memCache)(nil)

func TestSetDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	if o.Seed == 0 || !o.randomSeed || o.Cacheable() {
		t.Errorf("zero seed should become a random, uncacheable seed: %+v", o)
	}
	if o.ViewportWidth != DefaultViewportWidth || o.ContainerWidth != DefaultContainerWidth {
		t.Errorf("widths = %v / %v", o.ViewportWidth, o.ContainerWidth)
	}
	if o.Pages != 1 || len(o.Formats) != 1 || o.Formats[0] != "html" {
		t.Errorf("pages %d formats %v", o.Pages, o.Formats)
	}

	narrow := Options{Seed: 1, ViewportWidth: 375}
	narrow.SetDefaults()
	if narrow.ContainerWidth != 375 || narrow.Breakpoint() != viewport.Mobile {
		t.Errorf("narrow container = %v (%v)", narrow.ContainerWidth, narrow.Breakpoint())
	}
	if !narrow.Cacheable() {
		t.Error("explicit seed should be cacheable")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code rwerrors.Code
	}{
		{"bad format", Options{Seed: 1, Formats: []string{"pdf"}}, rwerrors.ErrCodeInvalidFormat},
		{"bad sort", Options{Seed: 1, Query: url.Values{"sort": {"random"}}}, rwerrors.ErrCodeInvalidSort},
		{"bad category", Options{Seed: 1, Query: url.Values{"category": {"boats"}}}, rwerrors.ErrCodeInvalidFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !rwerrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
	if err := (&Options{Seed: 1, Scale: 9}).ValidateAndSetDefaults(); err == nil {
		t.Error("scale 9 should be rejected")
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Seed: 42, Formats: []string{"html", "svg", "json"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Vehicles != 29 || res.Stats.Placed != 20 || res.Stats.Visible != 29 {
		t.Errorf("stats = %+v", res.Stats)
	}
	for _, f := range []string{"html", "svg", "json"} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if res.CatalogHash == "" {
		t.Error("catalog hash not set")
	}
}

func TestExecutePagesAndQuery(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	res, err := r.Execute(ctx, Options{Seed: 42, Pages: 3, Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Placed != 29 || res.View.LoadMore.Visible {
		t.Errorf("3 pages placed %d, load more %+v", res.Stats.Placed, res.View.LoadMore)
	}

	q := url.Values{"category": {"heavy-duty"}, "sort": {"owner-az"}}
	res, err = r.Execute(ctx, Options{Seed: 42, Query: q, Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range res.View.Items {
		if it.Category != catalog.HeavyDuty {
			t.Errorf("item %d category %s", it.ID, it.Category)
		}
	}
	if res.View.Query != q.Encode() {
		t.Errorf("query = %q, want %q", res.View.Query, q.Encode())
	}
}

func TestExecuteIsDeterministic(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()
	a, err := r.Execute(ctx, Options{Seed: 5, Formats: []string{"svg"}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(ctx, Options{Seed: 5, Formats: []string{"svg"}})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(a.Artifacts["svg"]), string(b.Artifacts["svg"])); diff != "" {
		t.Errorf("same seed rendered differently:\n%s", diff)
	}
}

func TestCaching(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)
	ctx := context.Background()
	opts := Options{Seed: 9, Formats: []string{"svg", "json"}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo != (CacheInfo{}) {
		t.Errorf("cold run cache info = %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheInfo != (CacheInfo{CatalogHit: true, LayoutHit: true, RenderHit: true}) {
		t.Errorf("warm run cache info = %+v", second.CacheInfo)
	}
	if diff := cmp.Diff(first.View, second.View); diff != "" {
		t.Errorf("cached view differs:\n%s", diff)
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo != (CacheInfo{}) {
		t.Errorf("refresh cache info = %+v", third.CacheInfo)
	}
}

func TestRandomSeedSkipsCatalogCache(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)
	if _, err := r.Execute(context.Background(), Options{Formats: []string{"json"}}); err != nil {
		t.Fatal(err)
	}
	if n := mc.count("catalog:"); n != 0 {
		t.Errorf("catalog cached %d times for a random seed", n)
	}
	if n := mc.count("layout:"); n != 1 {
		t.Errorf("layout cached %d times, want 1", n)
	}
}

func TestProvidedCatalog(t *testing.T) {
	vs := catalog.Generate(catalog.NewRand(1), catalog.DefaultRoster(), viewport.Desktop)[:6]
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Catalog: vs, Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(vs, res.Catalog); diff != "" {
		t.Errorf("catalog was regenerated:\n%s", diff)
	}
	if res.Stats.Placed != 6 {
		t.Errorf("placed = %d", res.Stats.Placed)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	o := Options{Title: "A", ImageBase: "/img", Scale: 2}
	if o.ArtifactKeyOpts("html") == o.ArtifactKeyOpts("svg") {
		t.Error("html key should include title and image base")
	}
	if got := o.ArtifactKeyOpts("png").Scale; got != 200 {
		t.Errorf("png scale key = %d", got)
	}

	a := Options{Seed: 1, Images: solidLoader{color.White}, ImageSource: "/a"}
	b := Options{Seed: 2, Images: solidLoader{color.White}, ImageSource: "/b"}
	if a.ArtifactKeyOpts("png") == b.ArtifactKeyOpts("png") {
		t.Error("png key should include the image source")
	}
	if a.ArtifactKeyOpts("json") == b.ArtifactKeyOpts("json") {
		t.Error("json key should include the seed")
	}
	if a.ArtifactKeyOpts("svg") != b.ArtifactKeyOpts("svg") {
		t.Error("svg key should not depend on seed or images")
	}
}

// solidLoader returns a single-colour photo for every source.
type solidLoader struct{ c color.Color }

func (l solidLoader) Load(context.Context, string) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	draw.Draw(img, img.Bounds(), image.NewUniform(l.c), image.Point{}, draw.Src)
	return img, nil
}

func TestPNGCacheKeyedByImageSource(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)
	ctx := context.Background()
	run := func(l solidLoader, source string) *Result {
		t.Helper()
		res, err := r.Execute(ctx, Options{
			Seed: 5, Formats: []string{"png"},
			Images: l, ImageSource: source,
		})
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	red := solidLoader{color.RGBA{0xff, 0, 0, 0xff}}
	blue := solidLoader{color.RGBA{0, 0, 0xff, 0xff}}

	a := run(red, "/photos/a")
	b := run(blue, "/photos/b")
	if b.CacheInfo.RenderHit {
		t.Error("png from another image directory served from cache")
	}
	if bytes.Equal(a.Artifacts["png"], b.Artifacts["png"]) {
		t.Error("red and blue photos rendered identical PNGs")
	}
	if again := run(blue, "/photos/b"); !again.CacheInfo.RenderHit {
		t.Error("same image directory should hit the cache")
	}

	for range 2 {
		if res := run(red, ""); res.CacheInfo.RenderHit {
			t.Error("png from an unnamed loader served from cache")
		}
	}
}

func TestJSONCacheKeyedBySeed(t *testing.T) {
	vs := catalog.Generate(catalog.NewRand(1), catalog.DefaultRoster(), viewport.Desktop)[:6]
	r := NewRunner(newMemCache(), nil, nil)
	ctx := context.Background()

	first, err := r.Execute(ctx, Options{Catalog: vs, Seed: 1, Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(ctx, Options{Catalog: vs, Seed: 2, Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheInfo.RenderHit {
		t.Error("json for another seed served from cache")
	}
	if _, seed, err := render.ReadJSON(second.Artifacts["json"]); err != nil || seed != 2 {
		t.Errorf("ReadJSON seed = %d, %v; want 2", seed, err)
	}
	if bytes.Equal(first.Artifacts["json"], second.Artifacts["json"]) {
		t.Error("json artifacts for seeds 1 and 2 are identical")
	}
}
