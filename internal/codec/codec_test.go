package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestDecode_NormalizesTransparency(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
	// (1,0) stays fully transparent

	img, mime, err := Decode(bytes.NewReader(pngBytes(t, src)), 0)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("opaque pixel = %v", got)
	}
	if got := img.NRGBAAt(1, 0); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("transparent pixel = %v, want white", got)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		limit   int64
		wantErr error
	}{
		{"empty", nil, 0, ErrEmptyInput},
		{"text file", []byte("hello, this is not an image"), 0, ErrUnsupportedFormat},
		{"too large", bytes.Repeat([]byte{0x89}, 64), 16, ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(bytes.NewReader(tt.data), tt.limit)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecode_CorruptPNG(t *testing.T) {
	data := pngBytes(t, image.NewGray(image.Rect(0, 0, 8, 8)))
	corrupt := append([]byte{}, data[:20]...)

	_, _, err := DecodeBytes(corrupt)
	if err == nil {
		t.Fatal("expected decode error for truncated png")
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		t.Error("truncated png should be sniffed as png and fail in decoding")
	}
}

func TestEncodePNGAndDataURI(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("output is not a valid png: %v", err)
	}

	uri := DataURI(MIMEPNG, data)
	prefix := "data:image/png;base64,"
	if !strings.HasPrefix(uri, prefix) {
		t.Fatalf("DataURI() = %q", uri[:len(prefix)])
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil || !bytes.Equal(decoded, data) {
		t.Error("data URI payload does not round-trip")
	}
}
