package factory

import (
	"fmt"

	"github.com/anime-shed/text-converter-go/internal/config"
	"github.com/anime-shed/text-converter-go/internal/ocr"
	"github.com/anime-shed/text-converter-go/internal/ocr/tesseract"
	"github.com/anime-shed/text-converter-go/internal/storage"
)

// EngineType selects the OCR backend
type EngineType string

const (
	// TesseractEngine runs Tesseract through gosseract
	TesseractEngine EngineType = "tesseract"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// EngineFactory creates OCR engines
type EngineFactory interface {
	CreateEngine(engineType EngineType) (ocr.Engine, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateFetcher() storage.ImageFetcher
	CreateBlobStorage() (storage.BlobStorage, error)
}

type engineFactory struct {
	cfg config.OCRConfig
	// sessions overrides the backend session loader, used by tests
	sessions ocr.SessionFactory
}

// NewEngineFactory creates an engine factory for the given OCR settings
func NewEngineFactory(cfg config.OCRConfig) EngineFactory {
	return &engineFactory{cfg: cfg}
}

// NewEngineFactoryWithSessions builds engines on a custom session loader
func NewEngineFactoryWithSessions(cfg config.OCRConfig, sessions ocr.SessionFactory) EngineFactory {
	return &engineFactory{cfg: cfg, sessions: sessions}
}

func (f *engineFactory) CreateEngine(engineType EngineType) (ocr.Engine, error) {
	sessions := f.sessions
	switch engineType {
	case TesseractEngine:
		if sessions == nil {
			sessions = tesseract.Factory(tesseract.Config{
				Language:       f.cfg.Language,
				TessdataPrefix: f.cfg.TessdataPrefix,
			})
		}
	default:
		return nil, fmt.Errorf("unsupported engine type: %s", engineType)
	}

	pool, err := ocr.NewWorkerPool(f.cfg.Workers, sessions)
	if err != nil {
		return nil, err
	}
	return ocr.NewPooledEngine(string(engineType), pool, ocr.Options{
		Preprocess:    f.cfg.Preprocess,
		Preprocessing: ocr.DefaultPreprocessOptions(),
		MinConfidence: f.cfg.MinConfidence,
	}), nil
}

type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

func (f *storageFactory) CreateFetcher() storage.ImageFetcher {
	opts := storage.DefaultFetcherOptions()
	opts.Timeout = f.cfg.ImageFetchTimeout
	opts.MaxBytes = f.cfg.MaxRequestBodySize
	return storage.NewHTTPImageFetcher(opts)
}

// CreateBlobStorage returns nil, nil when no storage account is configured
func (f *storageFactory) CreateBlobStorage() (storage.BlobStorage, error) {
	az := f.cfg.Azure
	if !az.Enabled() {
		return nil, nil
	}
	return storage.NewAzureStorage(az.AccountName, az.AccountKey, az.Container, f.cfg.MaxRequestBodySize)
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	EngineFactory  EngineFactory
	StorageFactory StorageFactory
}

func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		EngineFactory:  NewEngineFactory(cfg.OCR),
		StorageFactory: NewStorageFactory(cfg),
	}
}
