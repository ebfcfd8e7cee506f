//go:build cgo

// Package tesseract binds the OCR worker pool to Tesseract through gosseract.
package tesseract

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/anime-shed/text-converter-go/internal/ocr"
)

const EngineName = "tesseract"

// Config selects the trained model a session loads.
type Config struct {
	Language       string
	TessdataPrefix string
}

type session struct {
	client *gosseract.Client
}

// NewSession creates a gosseract client configured for cfg.
func NewSession(cfg Config) (ocr.Session, error) {
	client := gosseract.NewClient()
	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("set tessdata prefix %q: %w", cfg.TessdataPrefix, err)
		}
	}
	if cfg.Language != "" {
		if err := client.SetLanguage(cfg.Language); err != nil {
			client.Close()
			return nil, fmt.Errorf("set language %q: %w", cfg.Language, err)
		}
	}
	return &session{client: client}, nil
}

// Factory returns a SessionFactory for NewWorkerPool.
func Factory(cfg Config) ocr.SessionFactory {
	return func() (ocr.Session, error) {
		return NewSession(cfg)
	}
}

// Version reports the linked Tesseract version.
func Version() string {
	return gosseract.Version()
}

func (s *session) Words(imagePNG []byte) ([]ocr.Word, error) {
	if err := s.client.SetImageFromBytes(imagePNG); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := s.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("word boxes: %w", err)
	}

	words := make([]ocr.Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, ocr.Word{
			Text:       b.Word,
			Confidence: b.Confidence,
			Bounds:     b.Box,
		})
	}
	return words, nil
}

func (s *session) Text(imagePNG []byte) (string, error) {
	if err := s.client.SetImageFromBytes(imagePNG); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := s.client.Text()
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return text, nil
}

func (s *session) Close() error {
	return s.client.Close()
}
