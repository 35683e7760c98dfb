package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/rigwall/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("empty cache should miss")
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting twice: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "short", []byte("x"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}
	now = now.Add(time.Hour)

	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("ttl 0 should never expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "nested"))
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries", len(entries))
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets map[string]int
}

func (h *countingHooks) OnCacheHit(_ context.Context, kind string)        { h.hits[kind]++ }
func (h *countingHooks) OnCacheMiss(_ context.Context, kind string)       { h.misses[kind]++ }
func (h *countingHooks) OnCacheSet(_ context.Context, kind string, _ int) { h.sets[kind]++ }

func TestFileCacheHooks(t *testing.T) {
	h := &countingHooks{hits: map[string]int{}, misses: map[string]int{}, sets: map[string]int{}}
	observability.SetCacheHooks(h)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := NewDefaultKeyer().ArtifactKey("abc", ArtifactKeyOpts{Format: "svg"})
	c.Get(ctx, key)
	c.Set(ctx, key, []byte("<svg/>"), time.Hour)
	c.Get(ctx, key)

	if h.misses["artifact"] != 1 || h.sets["artifact"] != 1 || h.hits["artifact"] != 1 {
		t.Errorf("hooks = hits %v misses %v sets %v", h.hits, h.misses, h.sets)
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("hello")) != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if Hash([]byte("hello")) == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if n := len(Hash([]byte("hello"))); n != 64 {
		t.Errorf("hash length = %d, want 64", n)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("imageprobe", "https://x/a.jpg"); got != "http:imageprobe:https://x/a.jpg" {
		t.Errorf("HTTPKey = %s", got)
	}
	if k.CatalogKey(1, "r", "desktop") == k.CatalogKey(2, "r", "desktop") {
		t.Error("seed should change the catalog key")
	}
	if k.CatalogKey(1, "r", "desktop") == k.CatalogKey(1, "r", "mobile") {
		t.Error("breakpoint should change the catalog key")
	}

	l1 := k.LayoutKey("h", LayoutKeyOpts{ViewportWidth: 1200, ContainerWidth: 1000, Pages: 1})
	l2 := k.LayoutKey("h", LayoutKeyOpts{ViewportWidth: 1200, ContainerWidth: 1000, Pages: 2})
	l3 := k.LayoutKey("h", LayoutKeyOpts{ViewportWidth: 1200, ContainerWidth: 1000, Pages: 1, Query: "category=carriers"})
	if l1 == l2 || l1 == l3 {
		t.Error("pages and query should change the layout key")
	}
	if !strings.HasPrefix(l1, "layout:") {
		t.Errorf("LayoutKey = %s", l1)
	}

	if k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}) == k.ArtifactKey("h", ArtifactKeyOpts{Format: "png"}) {
		t.Error("format should change the artifact key")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "v1:")
	if got := scoped.HTTPKey("ns", "key"); got != "v1:http:ns:key" {
		t.Errorf("HTTPKey = %s", got)
	}
	for _, key := range []string{
		scoped.CatalogKey(1, "", "desktop"),
		scoped.LayoutKey("h", LayoutKeyOpts{}),
		scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "json"}),
	} {
		if !strings.HasPrefix(key, "v1:") {
			t.Errorf("key %s not scoped", key)
		}
	}
}

func TestKeyType(t *testing.T) {
	k := NewScopedKeyer(nil, "v1:")
	tests := map[string]string{
		k.CatalogKey(1, "", ""):          "catalog",
		k.LayoutKey("", LayoutKeyOpts{}): "layout",
		k.HTTPKey("ns", "k"):             "http",
		"something-else":                 "other",
	}
	for key, want := range tests {
		if got := keyType(key); got != want {
			t.Errorf("keyType(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestRedisOptions(t *testing.T) {
	o, err := redisOptions("redis://:secret@cache.internal:6380/2")
	if err != nil {
		t.Fatal(err)
	}
	if o.Addr != "cache.internal:6380" || o.DB != 2 || o.Password != "secret" {
		t.Errorf("options = %+v", o)
	}

	o, err = redisOptions("localhost:6379")
	if err != nil || o.Addr != "localhost:6379" {
		t.Errorf("plain address: %+v, %v", o, err)
	}

	if _, err := redisOptions(""); err == nil {
		t.Error("empty address should fail")
	}
}
