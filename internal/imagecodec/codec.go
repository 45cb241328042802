// Package imagecodec decodes uploaded images and encodes rendered results.
package imagecodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

// DefaultJPEGQuality is used when no positive quality is configured.
const DefaultJPEGQuality = 95

// ErrDecode is returned for empty, unsupported or corrupt image data.
var ErrDecode = errors.New("image could not be decoded")

// Sniff returns the MIME type detected from the leading bytes of data, or an
// empty string if the content is not a known image format.
func Sniff(data []byte) string {
	if len(data) == 0 || !filetype.IsImage(data) {
		return ""
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}

// Decode turns raw upload bytes into a raster, applying the EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	if Sniff(data) == "" {
		return nil, ErrDecode
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrDecode
	}
	return img, nil
}

// EncodeJPEG encodes img as JPEG with the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if img == nil {
		return nil, errors.New("encode jpeg: nil image")
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Crop returns a copy of the region r of img. The caller is expected to have
// clamped r to the image bounds already.
func Crop(img image.Image, r image.Rectangle) image.Image {
	return imaging.Crop(img, r)
}
