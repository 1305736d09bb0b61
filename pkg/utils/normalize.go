// Package utils: normalize images before sending them to the media host.
package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

var ErrUnsupportedImage = errors.New("unsupported image format (jpeg/png/webp)")

// ErrImageTooLarge matches ErrUnsupportedImage under errors.Is.
var ErrImageTooLarge = fmt.Errorf("%w: too many pixels", ErrUnsupportedImage)

const DefaultMaxPixels = 40_000_000

type ImageOptions struct {
	MaxWidth  int // 0 keeps the original width
	MaxPixels int // width*height ceiling checked before decoding, default 40MP
	Quality   int // JPEG quality 1..100, default 85
}

// NormalizeToJPG decodes jpeg/png/webp, applies the EXIF orientation,
// shrinks to MaxWidth and re-encodes as JPEG.
func NormalizeToJPG(input []byte, opts ImageOptions) ([]byte, error) {
	if len(input) == 0 {
		return nil, errors.New("empty image")
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 85
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}

	cfg, err := decodeConfig(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(opts.MaxPixels) {
		return nil, ErrImageTooLarge
	}

	img, err := decodeImage(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}

	img = orient(img, readEXIFOrientation(bytes.NewReader(input)))
	if opts.MaxWidth > 0 {
		img = resizeMaxWidth(img, opts.MaxWidth)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// decodeConfig reads only the header, so dimensions are known before any
// pixel buffer is allocated.
func decodeConfig(r *bytes.Reader) (image.Config, error) {
	decoders := []func(io.Reader) (image.Config, error){jpeg.DecodeConfig, png.DecodeConfig, webp.DecodeConfig}
	for _, decode := range decoders {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return image.Config{}, err
		}
		if cfg, err := decode(r); err == nil {
			return cfg, nil
		}
	}
	return image.Config{}, ErrUnsupportedImage
}

func decodeImage(r *bytes.Reader) (image.Image, error) {
	decoders := []func(io.Reader) (image.Image, error){jpeg.Decode, png.Decode, webp.Decode}
	for _, decode := range decoders {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		if img, err := decode(r); err == nil {
			return img, nil
		}
	}
	return nil, ErrUnsupportedImage
}

func readEXIFOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	ori, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return ori
}

// orient maps EXIF orientations 2..8 onto a pixel transform. For each
// destination pixel it finds the source pixel; swap means width and height
// trade places (90/270 degree cases).
func orient(src image.Image, ori int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	var (
		swap bool
		from func(x, y int) (int, int)
	)
	switch ori {
	case 2: // flip horizontal
		from = func(x, y int) (int, int) { return w - 1 - x, y }
	case 3: // rotate 180
		from = func(x, y int) (int, int) { return w - 1 - x, h - 1 - y }
	case 4: // flip vertical
		from = func(x, y int) (int, int) { return x, h - 1 - y }
	case 5: // transpose
		swap = true
		from = func(x, y int) (int, int) { return y, x }
	case 6: // rotate 90 CW
		swap = true
		from = func(x, y int) (int, int) { return y, h - 1 - x }
	case 7: // transverse
		swap = true
		from = func(x, y int) (int, int) { return w - 1 - y, h - 1 - x }
	case 8: // rotate 90 CCW
		swap = true
		from = func(x, y int) (int, int) { return w - 1 - y, x }
	default:
		return src
	}

	dw, dh := w, h
	if swap {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			sx, sy := from(x, y)
			dst.Set(x, y, src.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return dst
}

func resizeMaxWidth(src image.Image, maxW int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || w <= maxW {
		return src
	}

	newH := int(math.Round(float64(h) * float64(maxW) / float64(w)))
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
