package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/rigwall/pkg/gallery"
)

// ImageLoader decodes card images for the PNG sink. imageprobe.Prober
// implements it.
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

var (
	pngBackground  = color.RGBA{0xf5, 0xf5, 0xf4, 0xff}
	pngCard        = color.RGBA{0xff, 0xff, 0xff, 0xff}
	pngPlaceholder = color.RGBA{0xa8, 0xa2, 0x9e, 0xff}
	pngCompany     = color.RGBA{0xb4, 0x53, 0x09, 0xff}
	pngTitle       = color.RGBA{0x44, 0x40, 0x3c, 0xff}
	pngSelected    = color.RGBA{0xb4, 0x53, 0x09, 0xff}
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale  float64
	loader ImageLoader
	limit  int
	logger *log.Logger
}

// WithScale sets the pixel ratio (default 1).
func WithScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// WithImages draws real card images instead of placeholders.
func WithImages(l ImageLoader) PNGOption { return func(r *pngRenderer) { r.loader = l } }

// WithLoadConcurrency bounds parallel image loads (default 8).
func WithLoadConcurrency(n int) PNGOption { return func(r *pngRenderer) { r.limit = n } }

// WithPNGLogger sets the logger for image load failures.
func WithPNGLogger(l *log.Logger) PNGOption { return func(r *pngRenderer) { r.logger = l } }

// RenderPNG rasterizes the view. Images that fail to load are drawn as
// placeholders; only context cancellation aborts the render.
func RenderPNG(ctx context.Context, v gallery.View, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1, limit: 8}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = 1
	}
	if r.logger == nil {
		r.logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	images, err := r.load(ctx, v.Items)
	if err != nil {
		return nil, err
	}

	w := int(math.Ceil(v.ContainerWidth * r.scale))
	h := int(math.Ceil(v.Height * r.scale))
	canvas := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(pngBackground), image.Point{}, draw.Src)

	selected := 0
	if v.Lightbox != nil {
		selected = v.Lightbox.ID
	}
	for i, it := range v.Items {
		r.drawItem(canvas, it, images[i], it.ID == selected)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// load decodes every visible card image in parallel. The result is indexed
// like items; nil entries are drawn as placeholders.
func (r pngRenderer) load(ctx context.Context, items []gallery.Item) ([]image.Image, error) {
	images := make([]image.Image, len(items))
	if r.loader == nil {
		return images, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.limit, 1))
	for i, it := range items {
		if it.Hidden {
			continue
		}
		g.Go(func() error {
			img, err := r.loader.Load(gctx, it.Image)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				r.logger.Warn("image not drawn", "src", it.Image, "err", err)
				return nil
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (r pngRenderer) rect(x, y, w, h float64) image.Rectangle {
	s := r.scale
	return image.Rect(
		int(math.Round(x*s)), int(math.Round(y*s)),
		int(math.Round((x+w)*s)), int(math.Round((y+h)*s)),
	)
}

func (r pngRenderer) drawItem(canvas *image.RGBA, it gallery.Item, img image.Image, selected bool) {
	p := it.Placement
	card := r.rect(p.X, p.Y, p.Width, p.Height)
	if selected {
		draw.Draw(canvas, card.Inset(-int(math.Ceil(3*r.scale))), image.NewUniform(pngSelected), image.Point{}, draw.Src)
	}
	draw.Draw(canvas, card, image.NewUniform(pngCard), image.Point{}, draw.Src)

	media := 0.0
	if !it.Hidden {
		media = float64(it.ImageHeight)
		dst := r.rect(p.X, p.Y, p.Width, media)
		if img != nil {
			draw.CatmullRom.Scale(canvas, dst, img, coverCrop(img.Bounds(), dst), draw.Src, nil)
		} else {
			draw.Draw(canvas, dst, image.NewUniform(pngPlaceholder), image.Point{}, draw.Src)
		}
	}

	// basicfont is a fixed 7x13 face; text is drawn unscaled at the scaled origin.
	face := basicfont.Face7x13
	maxChars := int((p.Width*r.scale - 24) / 7)
	r.drawText(canvas, face, pngCompany, p.X+12, p.Y+media+24, gallery.Truncate(it.Company, max(maxChars, 4)))
	r.drawText(canvas, face, pngTitle, p.X+12, p.Y+media+44, gallery.Truncate(it.Title, max(maxChars-3, 4)))
}

func (r pngRenderer) drawText(canvas *image.RGBA, face font.Face, c color.Color, x, y float64, s string) {
	d := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(int(math.Round(x*r.scale)), int(math.Round(y*r.scale))),
	}
	d.DrawString(s)
}

// coverCrop picks the centered part of src with dst's aspect ratio, like
// CSS object-fit: cover.
func coverCrop(src, dst image.Rectangle) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	dw, dh := float64(dst.Dx()), float64(dst.Dy())
	if sw == 0 || sh == 0 || dw == 0 || dh == 0 {
		return src
	}
	if sw/sh > dw/dh {
		w := int(math.Round(sh * dw / dh))
		x := src.Min.X + (src.Dx()-w)/2
		return image.Rect(x, src.Min.Y, x+w, src.Max.Y)
	}
	h := int(math.Round(sw * dh / dw))
	y := src.Min.Y + (src.Dy()-h)/2
	return image.Rect(src.Min.X, y, src.Max.X, y+h)
}
