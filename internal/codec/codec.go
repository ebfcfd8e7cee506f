// Package codec decodes uploaded images into a normalised RGB buffer and
// encodes rendered output for transport.
package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const MIMEPNG = "image/png"

var (
	// ErrUnsupportedFormat is returned for uploads that are not a decodable image type.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrTooLarge is returned when the input exceeds the configured limit.
	ErrTooLarge = errors.New("image exceeds size limit")

	// ErrEmptyInput is returned for zero-byte uploads.
	ErrEmptyInput = errors.New("empty image")
)

var supportedTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/bmp",
	"image/tiff",
	"image/webp",
}

// Detect sniffs the content type and reports whether it can be decoded.
func Detect(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyInput
	}
	mt := mimetype.Detect(data)
	for _, supported := range supportedTypes {
		if mt.Is(supported) {
			return supported, nil
		}
	}
	return mt.String(), fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt.String())
}

// Decode reads at most maxBytes from r, checks the content type, decodes the
// image honouring EXIF orientation and flattens it onto opaque white.
// maxBytes <= 0 disables the limit.
func Decode(r io.Reader, maxBytes int64) (*image.NRGBA, string, error) {
	data, err := readLimited(r, maxBytes)
	if err != nil {
		return nil, "", err
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode for data already in memory.
func DecodeBytes(data []byte) (*image.NRGBA, string, error) {
	mime, err := Detect(data)
	if err != nil {
		return nil, mime, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, mime, fmt.Errorf("decode %s: %w", mime, err)
	}
	return Normalize(img), mime, nil
}

// Normalize converts any colour model to opaque NRGBA. Transparent areas
// become white so text on transparent backgrounds stays legible.
func Normalize(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Point{}, 1.0)
}

// EncodePNG serialises an image as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI embeds binary data in a data: URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
