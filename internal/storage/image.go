// AngelaMos | 2026
// image.go

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
)

const (
	ThumbnailSize = 100
	JPEGQuality   = 90

	maxImageBytes = 10 << 20
)

var ErrNotAnImage = errors.New("file is not a supported image")

// DecodeImage reads at most 10MB and decodes any format imaging knows,
// applying EXIF orientation.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(
		io.LimitReader(r, maxImageBytes),
		imaging.AutoOrientation(true),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAnImage, err)
	}
	return img, nil
}

// Thumbnail crops img to a centered square and scales it to
// ThumbnailSize on each side.
func Thumbnail(img image.Image) image.Image {
	return imaging.Fill(img, ThumbnailSize, ThumbnailSize, imaging.Center, imaging.Lanczos)
}

// EncodeJPEG flattens transparency onto white and encodes at JPEGQuality.
func EncodeJPEG(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	flat := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}
