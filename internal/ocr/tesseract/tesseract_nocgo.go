//go:build !cgo

package tesseract

import (
	"github.com/anime-shed/text-converter-go/internal/ocr"
)

const EngineName = "tesseract"

type Config struct {
	Language       string
	TessdataPrefix string
}

// NewSession always fails: Tesseract needs cgo.
func NewSession(Config) (ocr.Session, error) {
	return nil, ocr.ErrEngineUnavailable
}

func Factory(cfg Config) ocr.SessionFactory {
	return func() (ocr.Session, error) {
		return NewSession(cfg)
	}
}

// Version is reported by /health; there is no linked library without cgo.
func Version() string {
	return "unavailable"
}
