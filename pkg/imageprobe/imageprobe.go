// Package imageprobe measures images without fully decoding them.
//
// Sources are either paths into a local file system ("images/truck.jpg")
// or http(s) URLs. Only the image header is decoded (image.DecodeConfig),
// which is enough to learn the natural size. JPEG, PNG, GIF and WebP are
// supported.
//
// [Prober] implements masonry.Measurer: it reports the rendered height of an
// image scaled to the item width, which is what the browser would report
// after the image loads.
package imageprobe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	_ "golang.org/x/image/webp"

	rwerrors "github.com/matzehuels/rigwall/pkg/errors"
	"github.com/matzehuels/rigwall/pkg/httputil"
)

// Size is an image's natural size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ScaledHeight is the height of the image drawn at width, keeping its
// aspect ratio.
func (s Size) ScaledHeight(width float64) float64 {
	if s.Width <= 0 {
		return 0
	}
	return width * float64(s.Height) / float64(s.Width)
}

// Prober reads image sizes from a file system and the network. Results are
// memoized per source for the Prober's lifetime and, for remote sources,
// optionally persisted in an httputil.Cache. A Prober is safe for
// concurrent use.
type Prober struct {
	fsys   fs.FS
	prefix string
	client *httputil.Client
	cache  *httputil.Cache
	logger *log.Logger

	mu   sync.Mutex
	memo map[string]Size
}

// Option configures a Prober.
type Option func(*Prober)

// WithFS resolves local sources in fsys after stripping prefix
// ("images/x.jpg" with prefix "images" opens "x.jpg").
func WithFS(fsys fs.FS, prefix string) Option {
	return func(p *Prober) {
		p.fsys = fsys
		p.prefix = strings.Trim(prefix, "/")
	}
}

// WithClient sets the HTTP client for remote sources.
func WithClient(c *httputil.Client) Option {
	return func(p *Prober) { p.client = c }
}

// WithCache persists remote image sizes.
func WithCache(c *httputil.Cache) Option {
	return func(p *Prober) { p.cache = c.Namespace("imageprobe:") }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Prober) { p.logger = l }
}

// New returns a Prober. Without WithFS, local sources fail with
// IMAGE_NOT_FOUND; without WithClient a default client is used.
func New(opts ...Option) *Prober {
	p := &Prober{memo: make(map[string]Size)}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = httputil.NewClient()
	}
	if p.logger == nil {
		p.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return p
}

// Measure implements masonry.Measurer.
func (p *Prober) Measure(ctx context.Context, src string, width float64) (float64, error) {
	s, err := p.Size(ctx, src)
	if err != nil {
		return 0, err
	}
	return s.ScaledHeight(width), nil
}

// Size returns the natural size of the image at src.
func (p *Prober) Size(ctx context.Context, src string) (Size, error) {
	if err := ctx.Err(); err != nil {
		return Size{}, err
	}
	p.mu.Lock()
	s, ok := p.memo[src]
	p.mu.Unlock()
	if ok {
		return s, nil
	}

	if rwerrors.IsRemote(src) {
		s, err := p.remote(ctx, src)
		if err != nil {
			return Size{}, err
		}
		p.remember(src, s)
		return s, nil
	}

	s, err := p.local(ctx, src)
	if err != nil {
		return Size{}, err
	}
	p.remember(src, s)
	return s, nil
}

func (p *Prober) remember(src string, s Size) {
	p.mu.Lock()
	p.memo[src] = s
	p.mu.Unlock()
}

func (p *Prober) local(ctx context.Context, src string) (Size, error) {
	f, err := p.openLocal(src)
	if err != nil {
		return Size{}, err
	}
	defer f.Close()

	s, err := decode(f)
	if err != nil {
		return Size{}, fmt.Errorf("%s: %w", src, err)
	}
	if err := ctx.Err(); err != nil {
		return Size{}, err
	}
	return s, nil
}

func (p *Prober) openLocal(src string) (fs.File, error) {
	if p.fsys == nil {
		return nil, rwerrors.New(rwerrors.ErrCodeImageNotFound, "no image directory for %s", src)
	}
	if err := rwerrors.ValidatePath(src); err != nil {
		return nil, err
	}
	name := path.Clean(src)
	if p.prefix != "" {
		name = strings.TrimPrefix(strings.TrimPrefix(name, p.prefix), "/")
	}

	f, err := p.fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, rwerrors.Wrap(rwerrors.ErrCodeImageNotFound, err, "image %s", src)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	return f, nil
}

// Load fully decodes the image at src. Decoded images are not memoized.
func (p *Prober) Load(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var r io.Reader
	if rwerrors.IsRemote(src) {
		data, err := p.client.Get(ctx, src)
		if errors.Is(err, httputil.ErrNotFound) {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeImageNotFound, err, "image %s", src)
		}
		if err != nil {
			return nil, rwerrors.Wrap(rwerrors.ErrCodeNetwork, err, "fetch %s", src)
		}
		r = bytes.NewReader(data)
	} else {
		f, err := p.openLocal(src)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}
	p.remember(src, Size{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()})
	return img, nil
}

func (p *Prober) remote(ctx context.Context, url string) (Size, error) {
	if p.cache != nil {
		var s Size
		if ok, _ := p.cache.Get(url, &s); ok {
			return s, nil
		}
	}

	data, err := p.client.Get(ctx, url)
	if errors.Is(err, httputil.ErrNotFound) {
		return Size{}, rwerrors.Wrap(rwerrors.ErrCodeImageNotFound, err, "image %s", url)
	}
	if err != nil {
		return Size{}, rwerrors.Wrap(rwerrors.ErrCodeNetwork, err, "fetch %s", url)
	}
	s, err := decode(bytes.NewReader(data))
	if err != nil {
		return Size{}, fmt.Errorf("%s: %w", url, err)
	}

	if p.cache != nil {
		if err := p.cache.Set(url, s); err != nil {
			p.logger.Debug("image size cache write failed", "url", url, "err", err)
		}
	}
	return s, nil
}

func decode(r io.Reader) (Size, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return Size{}, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Size{}, fmt.Errorf("%s image has no size", format)
	}
	return Size{Width: cfg.Width, Height: cfg.Height}, nil
}
