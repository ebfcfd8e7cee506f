package container

import (
	"fmt"
	"net/http"

	"golang.org/x/image/font/opentype"

	"github.com/anime-shed/text-converter-go/internal/config"
	"github.com/anime-shed/text-converter-go/internal/factory"
	"github.com/anime-shed/text-converter-go/internal/handwriting"
	"github.com/anime-shed/text-converter-go/internal/logger"
	"github.com/anime-shed/text-converter-go/internal/observer"
	"github.com/anime-shed/text-converter-go/internal/ocr"
	"github.com/anime-shed/text-converter-go/internal/ocr/tesseract"
	"github.com/anime-shed/text-converter-go/internal/repository"
	"github.com/anime-shed/text-converter-go/internal/service"
	"github.com/anime-shed/text-converter-go/internal/strategy"
	"github.com/anime-shed/text-converter-go/internal/transport"
	"github.com/anime-shed/text-converter-go/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config    *config.Config
	engine    ocr.Engine
	metrics   *observer.MetricsObserver
	converter service.ConverterService
	handler   http.Handler
}

// NewContainer builds the dependency graph using the Tesseract engine
func NewContainer(cfg *config.Config) (*Container, error) {
	return NewContainerWithFactory(cfg, factory.NewComponentFactory(cfg))
}

// NewContainerWithFactory builds the dependency graph from the given factories
func NewContainerWithFactory(cfg *config.Config, components *factory.ComponentFactory) (*Container, error) {
	font, err := handwriting.LoadFont(cfg.Handwriting.FontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load handwriting font: %w", err)
	}
	renderer, err := newRenderer(font, cfg.Handwriting)
	if err != nil {
		return nil, err
	}

	blobs, err := components.StorageFactory.CreateBlobStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
	}
	var archive repository.ArchiveRepository = repository.NoopArchive{}
	if blobs != nil {
		archive = repository.NewBlobArchive(blobs)
	}
	imageRepo := repository.NewRemoteImageRepository(
		components.StorageFactory.CreateFetcher(),
		blobs,
		validation.NewURLValidator(),
	)

	engine, err := components.EngineFactory.CreateEngine(factory.TesseractEngine)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OCR engine: %w", err)
	}

	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	converter := service.NewConverterService(service.Dependencies{
		Engine: engine,
		Strategies: strategy.NewRegistry(
			strategy.NewLayoutStrategy(engine, cfg.OCR.LineTolerance),
			strategy.NewPlainStrategy(engine),
		),
		ImageRepo:     imageRepo,
		Archive:       archive,
		Renderer:      renderer,
		TextValidator: validation.NewTextValidator(validation.DefaultMaxTextLength, 0),
		Events:        events,
	}, service.Options{
		LineTolerance: cfg.OCR.LineTolerance,
		OCRTimeout:    cfg.OCRTimeout,
		MaxImageBytes: cfg.MaxRequestBodySize,
	})

	handler := transport.NewHandler(converter, metrics, transport.Options{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		EngineVersion:      tesseract.Version(),
	})

	return &Container{
		config:    cfg,
		engine:    engine,
		metrics:   metrics,
		converter: converter,
		handler:   handler,
	}, nil
}

func newRenderer(font *opentype.Font, cfg config.HandwritingConfig) (*handwriting.Renderer, error) {
	ink, err := handwriting.ParseInk(cfg.InkColor)
	if err != nil {
		return nil, err
	}
	opts := handwriting.DefaultOptions()
	opts.Width = cfg.CanvasWidth
	opts.Margin = cfg.Margin
	opts.FontSize = cfg.FontSize
	opts.LineSpacing = cfg.LineSpacing
	opts.Ink = ink
	return handwriting.NewRenderer(font, opts)
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Converter returns the conversion service
func (c *Container) Converter() service.ConverterService {
	return c.converter
}

// Close releases the OCR worker sessions
func (c *Container) Close() error {
	return c.engine.Close()
}
