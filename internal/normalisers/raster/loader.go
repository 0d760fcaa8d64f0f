// Package raster decodes image files into the PNG form sent to embedders.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	"image/png"
	"os"

	_ "golang.org/x/image/bmp" // BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/custodia-labs/paperdex/internal/core/domain"
	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.ImageLoader = (*Loader)(nil)

// DefaultMaxSide bounds the longest side of the re-encoded image in pixels.
const DefaultMaxSide = 1024

// Loader decodes JPEG, PNG, WebP and BMP files, converts them to RGB and
// re-encodes them as PNG, downscaling anything larger than maxSide.
type Loader struct {
	maxSide int
}

// Option configures a Loader.
type Option func(*Loader)

// WithMaxSide sets the largest side of the output image. Zero disables scaling.
func WithMaxSide(n int) Option {
	return func(l *Loader) {
		if n >= 0 {
			l.maxSide = n
		}
	}
}

// NewLoader creates a new image loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{maxSide: DefaultMaxSide}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and decodes path. Width and Height report the original size.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrUnsupportedFileType, path, err)
	}

	bounds := src.Bounds()
	rgb := l.toRGB(src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgb); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return &domain.Image{
		Path:   path,
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		PNG:    buf.Bytes(),
	}, nil
}

// toRGB draws src onto an opaque canvas, scaled to fit maxSide.
func (l *Loader) toRGB(src image.Image) *image.RGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if l.maxSide > 0 && (w > l.maxSide || h > l.maxSide) {
		if w >= h {
			w, h = l.maxSide, max(1, h*l.maxSide/w)
		} else {
			w, h = max(1, w*l.maxSide/h), l.maxSide
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w == src.Bounds().Dx() && h == src.Bounds().Dy() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	}
	return dst
}
