// AngelaMos | 2026
// image_test.go

package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: uint8(x % 256)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestThumbnailPipeline(t *testing.T) {
	img, err := DecodeImage(bytes.NewReader(pngFixture(t, 240, 160)))
	require.NoError(t, err)

	thumb := Thumbnail(img)
	assert.Equal(t, ThumbnailSize, thumb.Bounds().Dx())
	assert.Equal(t, ThumbnailSize, thumb.Bounds().Dy())

	data, err := EncodeJPEG(thumb)
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, image.Rect(0, 0, ThumbnailSize, ThumbnailSize), decoded.Bounds())
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	_, err := DecodeImage(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrNotAnImage)
}
