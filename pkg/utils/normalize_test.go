package utils

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func strip(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, red)
			} else {
				img.Set(x, y, blue)
			}
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeToJPG_PNGInput(t *testing.T) {
	out, err := NormalizeToJPG(pngBytes(t, strip(8, 4)), ImageOptions{})
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
}

func TestNormalizeToJPG_Resizes(t *testing.T) {
	out, err := NormalizeToJPG(pngBytes(t, strip(40, 20)), ImageOptions{MaxWidth: 10, Quality: 70})
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 5, img.Bounds().Dy())
}

func TestNormalizeToJPG_Rejects(t *testing.T) {
	_, err := NormalizeToJPG(nil, ImageOptions{})
	assert.Error(t, err)

	_, err = NormalizeToJPG([]byte("definitely not an image"), ImageOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

// bilevelPNG streams a 1-bit palette PNG of w x h blank pixels without ever
// holding the pixel buffer, so huge dimensions stay a few KB on disk.
func bilevelPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(kind string, data []byte) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(data)))
		buf.Write(n[:])
		body := append([]byte(kind), data...)
		buf.Write(body)
		binary.BigEndian.PutUint32(n[:], crc32.ChecksumIEEE(body))
		buf.Write(n[:])
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(h))
	ihdr[8] = 1 // bit depth
	ihdr[9] = 3 // palette
	chunk("IHDR", ihdr)
	chunk("PLTE", []byte{0, 0, 0, 255, 255, 255})

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	row := make([]byte, 1+(w+7)/8)
	for y := 0; y < h; y++ {
		_, err := zw.Write(row)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	chunk("IDAT", idat.Bytes())
	chunk("IEND", nil)
	return buf.Bytes()
}

func TestNormalizeToJPG_RejectsTooManyPixels(t *testing.T) {
	t.Run("oversized palette png under default ceiling", func(t *testing.T) {
		in := bilevelPNG(t, 16000, 16000)
		require.Less(t, len(in), 64*1024)

		cfg, err := png.DecodeConfig(bytes.NewReader(in))
		require.NoError(t, err)
		require.Equal(t, 16000, cfg.Width)

		_, err = NormalizeToJPG(in, ImageOptions{MaxWidth: 1280})
		assert.ErrorIs(t, err, ErrImageTooLarge)
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})

	t.Run("configured ceiling", func(t *testing.T) {
		in := bilevelPNG(t, 100, 50)

		_, err := NormalizeToJPG(in, ImageOptions{MaxPixels: 4999})
		assert.ErrorIs(t, err, ErrImageTooLarge)

		out, err := NormalizeToJPG(in, ImageOptions{MaxPixels: 5000})
		require.NoError(t, err)
		img, err := jpeg.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 100, img.Bounds().Dx())
	})
}

func TestOrient(t *testing.T) {
	src := strip(2, 1) // [red blue]

	tests := []struct {
		name  string
		ori   int
		w, h  int
		first color.RGBA // pixel at (0,0)
		last  color.RGBA // pixel at (w-1,h-1)
	}{
		{name: "normal", ori: 1, w: 2, h: 1, first: red, last: blue},
		{name: "flip horizontal", ori: 2, w: 2, h: 1, first: blue, last: red},
		{name: "rotate 180", ori: 3, w: 2, h: 1, first: blue, last: red},
		{name: "flip vertical", ori: 4, w: 2, h: 1, first: red, last: blue},
		{name: "transpose", ori: 5, w: 1, h: 2, first: red, last: blue},
		{name: "rotate 90 cw", ori: 6, w: 1, h: 2, first: red, last: blue},
		{name: "transverse", ori: 7, w: 1, h: 2, first: blue, last: red},
		{name: "rotate 90 ccw", ori: 8, w: 1, h: 2, first: blue, last: red},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orient(src, tt.ori)
			require.Equal(t, tt.w, got.Bounds().Dx())
			require.Equal(t, tt.h, got.Bounds().Dy())
			assert.Equal(t, tt.first, color.RGBAModel.Convert(got.At(0, 0)))
			assert.Equal(t, tt.last, color.RGBAModel.Convert(got.At(tt.w-1, tt.h-1)))
		})
	}
}

func TestReadAllLimit(t *testing.T) {
	b, err := ReadAllLimit(strings.NewReader("hello"), 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	_, err = ReadAllLimit(strings.NewReader("hello!"), 5)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
