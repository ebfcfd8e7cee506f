package factory

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/anime-shed/text-converter-go/internal/config"
	"github.com/anime-shed/text-converter-go/internal/ocr"
)

type stubSession struct{}

func (stubSession) Words([]byte) ([]ocr.Word, error) {
	return []ocr.Word{{Text: "hi", Confidence: 95, Bounds: image.Rect(0, 0, 10, 10)}}, nil
}
func (stubSession) Text([]byte) (string, error) { return "hi", nil }
func (stubSession) Close() error                { return nil }

func TestEngineFactory_CreateEngine(t *testing.T) {
	cfg := config.OCRConfig{Workers: 2, MinConfidence: 0.5}
	f := NewEngineFactoryWithSessions(cfg, func() (ocr.Session, error) { return stubSession{}, nil })

	engine, err := f.CreateEngine(TesseractEngine)
	if err != nil {
		t.Fatalf("CreateEngine() error = %v", err)
	}
	defer engine.Close()

	if engine.Name() != "tesseract" {
		t.Errorf("Name() = %q", engine.Name())
	}
	words, err := engine.Detect(context.Background(), image.NewGray(image.Rect(0, 0, 20, 20)))
	if err != nil || len(words) != 1 {
		t.Errorf("Detect() = %v, %v", words, err)
	}
}

func TestEngineFactory_Unsupported(t *testing.T) {
	f := NewEngineFactory(config.OCRConfig{})
	if _, err := f.CreateEngine("paddle"); err == nil {
		t.Error("expected error for unsupported engine")
	}
}

func TestStorageFactory(t *testing.T) {
	cfg := &config.Config{ImageFetchTimeout: 5 * time.Second, MaxRequestBodySize: 1 << 20}
	f := NewStorageFactory(cfg)

	if f.CreateFetcher() == nil {
		t.Error("CreateFetcher() returned nil")
	}

	blobs, err := f.CreateBlobStorage()
	if err != nil || blobs != nil {
		t.Errorf("CreateBlobStorage() without credentials = %v, %v; want nil, nil", blobs, err)
	}
}
