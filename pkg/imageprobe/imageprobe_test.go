package imageprobe

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"go.uber.org/goleak"

	rwerrors "github.com/matzehuels/rigwall/pkg/errors"
	"github.com/matzehuels/rigwall/pkg/httputil"
	"github.com/matzehuels/rigwall/pkg/masonry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var _ masonry.Measurer = (*Prober)(nil)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLocalSize(t *testing.T) {
	fsys := fstest.MapFS{
		"truck.png":  {Data: pngBytes(t, 400, 300)},
		"broken.jpg": {Data: []byte("not an image")},
	}
	p := New(WithFS(fsys, "images"))
	ctx := context.Background()

	s, err := p.Size(ctx, "images/truck.png")
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if s != (Size{Width: 400, Height: 300}) {
		t.Errorf("Size = %+v", s)
	}

	h, err := p.Measure(ctx, "images/truck.png", 240)
	if err != nil {
		t.Fatal(err)
	}
	if h != 180 {
		t.Errorf("Measure(240) = %v, want 180", h)
	}

	tests := []struct {
		name string
		src  string
		code rwerrors.Code
	}{
		{"missing", "images/nope.png", rwerrors.ErrCodeImageNotFound},
		{"traversal", "images/../secret.png", rwerrors.ErrCodeInvalidPath},
		{"absolute", "/etc/passwd", rwerrors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Size(ctx, tt.src)
			if !rwerrors.Is(err, tt.code) {
				t.Errorf("Size(%q) error = %v, want %s", tt.src, err, tt.code)
			}
		})
	}

	if _, err := p.Size(ctx, "images/broken.jpg"); err == nil {
		t.Error("undecodable image should fail")
	}
}

func TestNoFS(t *testing.T) {
	_, err := New().Size(context.Background(), "images/a.png")
	if !rwerrors.Is(err, rwerrors.ErrCodeImageNotFound) {
		t.Errorf("Size() error = %v", err)
	}
}

func TestRemoteSizeIsMemoizedAndCached(t *testing.T) {
	data := pngBytes(t, 800, 600)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(data)
	}))
	defer srv.Close()

	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	client := httputil.NewClient()
	client.HTTP = srv.Client()

	ctx := context.Background()
	url := srv.URL + "/truck.png"

	p := New(WithClient(client), WithCache(cache))
	for range 3 {
		s, err := p.Size(ctx, url)
		if err != nil {
			t.Fatalf("Size: %v", err)
		}
		if s.Width != 800 || s.Height != 600 {
			t.Fatalf("Size = %+v", s)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}

	fresh := New(WithClient(client), WithCache(cache))
	if _, err := fresh.Size(ctx, url); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("persistent cache not used: %d hits", hits.Load())
	}
}

func TestRemoteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := httputil.NewClient()
	client.HTTP = srv.Client()

	_, err := New(WithClient(client)).Size(context.Background(), srv.URL+"/gone.jpg")
	if !rwerrors.Is(err, rwerrors.ErrCodeImageNotFound) {
		t.Errorf("Size() error = %v, want IMAGE_NOT_FOUND", err)
	}
}

func TestConcurrentMeasure(t *testing.T) {
	fsys := fstest.MapFS{"a.png": {Data: pngBytes(t, 100, 50)}}
	p := New(WithFS(fsys, ""))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h, err := p.Measure(context.Background(), "a.png", 200); err != nil || h != 100 {
				t.Errorf("Measure = %v, %v", h, err)
			}
		}()
	}
	wg.Wait()
}

func TestScaledHeight(t *testing.T) {
	tests := []struct {
		size  Size
		width float64
		want  float64
	}{
		{Size{400, 300}, 240, 180},
		{Size{100, 200}, 50, 100},
		{Size{0, 10}, 240, 0},
	}
	for _, tt := range tests {
		if got := tt.size.ScaledHeight(tt.width); got != tt.want {
			t.Errorf("%+v.ScaledHeight(%v) = %v, want %v", tt.size, tt.width, got, tt.want)
		}
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Size(ctx, "images/a.png"); err != context.Canceled {
		t.Errorf("Size() error = %v, want context.Canceled", err)
	}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{"truck.png": {Data: pngBytes(t, 40, 30)}}
	p := New(WithFS(fsys, "images"))
	ctx := context.Background()

	img, err := p.Load(ctx, "images/truck.png")
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("bounds = %v", b)
	}
	if s, _ := p.Size(ctx, "images/truck.png"); s != (Size{40, 30}) {
		t.Errorf("Load should remember the size, got %+v", s)
	}

	if _, err := p.Load(ctx, "images/missing.png"); !rwerrors.Is(err, rwerrors.ErrCodeImageNotFound) {
		t.Errorf("missing image error = %v", err)
	}
}
