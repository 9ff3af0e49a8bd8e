// Package sink writes decoded rasters out and measures them against a
// reference.
package sink

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"strings"

	"github.com/jpfielding/jfif.go/pkg/compress/jpeg"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/draw"
)

// RasterSink consumes a decoded image.
type RasterSink interface {
	Write(ctx context.Context, img *jpeg.Image) error
}

// Format names an output encoding.
type Format string

const (
	FormatPNG     Format = "png"
	FormatRGB     Format = "rgb"
	FormatRGBZstd Format = "rgb.zst"
)

var ErrUnknownFormat = errors.New("unknown output format")

// FormatFromPath picks the format matching a file name, defaulting to PNG.
func FormatFromPath(path string) Format {
	switch {
	case strings.HasSuffix(path, ".rgb.zst"), strings.HasSuffix(path, ".zst"):
		return FormatRGBZstd
	case strings.HasSuffix(path, ".rgb"):
		return FormatRGB
	default:
		return FormatPNG
	}
}

// New returns the sink writing format to w. maxWidth only applies to PNG.
func New(w io.Writer, format Format, maxWidth int) (RasterSink, error) {
	switch format {
	case FormatPNG:
		return &PNG{W: w, MaxWidth: maxWidth}, nil
	case FormatRGB:
		return &Raw{W: w}, nil
	case FormatRGBZstd:
		return &Raw{W: w, Zstd: true}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// PNG encodes the raster as PNG, scaled down to MaxWidth when it is wider.
type PNG struct {
	W        io.Writer
	MaxWidth int
}

func (p *PNG) Write(ctx context.Context, img *jpeg.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src := RGBA(img)
	if p.MaxWidth > 0 && img.Width > p.MaxWidth {
		h := max(1, img.Height*p.MaxWidth/img.Width)
		dst := image.NewRGBA(image.Rect(0, 0, p.MaxWidth, h))
		draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		slog.DebugContext(ctx, "sink: scaled",
			slog.Int("from", img.Width),
			slog.Int("to", p.MaxWidth),
			slog.Int("height", h))
		src = dst
	}
	return png.Encode(p.W, src)
}

// Raw writes packed RGB bytes, zstd compressed when Zstd is set.
type Raw struct {
	W    io.Writer
	Zstd bool
}

func (r *Raw) Write(ctx context.Context, img *jpeg.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.Zstd {
		_, err := r.W.Write(img.Pix)
		return err
	}
	enc, err := zstd.NewWriter(r.W)
	if err != nil {
		return err
	}
	if _, err := enc.Write(img.Pix); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// RGBA copies the packed raster into an image.RGBA.
func RGBA(img *jpeg.Image) *image.RGBA {
	dst := image.NewRGBA(img.Bounds())
	for i, j := 0, 0; i < len(img.Pix); i, j = i+3, j+4 {
		dst.Pix[j] = img.Pix[i]
		dst.Pix[j+1] = img.Pix[i+1]
		dst.Pix[j+2] = img.Pix[i+2]
		dst.Pix[j+3] = 0xFF
	}
	return dst
}
