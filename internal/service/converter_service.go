package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anime-shed/text-converter-go/internal/codec"
	apperrors "github.com/anime-shed/text-converter-go/internal/errors"
	"github.com/anime-shed/text-converter-go/internal/handwriting"
	"github.com/anime-shed/text-converter-go/internal/layout"
	"github.com/anime-shed/text-converter-go/internal/logger"
	"github.com/anime-shed/text-converter-go/internal/observer"
	"github.com/anime-shed/text-converter-go/internal/ocr"
	"github.com/anime-shed/text-converter-go/internal/repository"
	"github.com/anime-shed/text-converter-go/internal/strategy"
	"github.com/anime-shed/text-converter-go/pkg/models"
	"github.com/anime-shed/text-converter-go/pkg/validation"
)

// ErrNothingToRender is returned when handwriting text is blank.
var ErrNothingToRender = errors.New("nothing to render")

// ConverterService runs both conversion pipelines
type ConverterService interface {
	// ExtractText runs OCR on an uploaded image
	ExtractText(ctx context.Context, req models.ExtractRequest) (*models.ExtractionResult, error)

	// ExtractTextFromURL fetches a remote image and runs OCR on it
	ExtractTextFromURL(ctx context.Context, req models.OCRURLRequest) (*models.ExtractionResult, error)

	// ReconstructText orders externally produced word boxes into lines
	ReconstructText(req models.ReconstructRequest) (*models.ReconstructResponse, error)

	// GenerateHandwriting renders text with the handwriting font
	GenerateHandwriting(ctx context.Context, text string) (*models.HandwritingResult, error)

	// EngineName identifies the OCR backend
	EngineName() string
}

// Options tunes the service
type Options struct {
	LineTolerance float64
	OCRTimeout    time.Duration
	MaxImageBytes int64
}

// Dependencies are the collaborators the service orchestrates
type Dependencies struct {
	Engine        ocr.Engine
	Strategies    *strategy.Registry
	ImageRepo     repository.ImageRepository
	Archive       repository.ArchiveRepository
	Renderer      *handwriting.Renderer
	TextValidator *validation.TextValidator
	Events        observer.Subject
}

type converterService struct {
	Dependencies
	opts Options
}

// NewConverterService creates a converter service
func NewConverterService(deps Dependencies, opts Options) ConverterService {
	if deps.Archive == nil {
		deps.Archive = repository.NoopArchive{}
	}
	if deps.TextValidator == nil {
		deps.TextValidator = validation.NewTextValidator(validation.DefaultMaxTextLength, 0)
	}
	if deps.Events == nil {
		deps.Events = observer.NewEventPublisher()
	}
	return &converterService{Dependencies: deps, opts: opts}
}

func (s *converterService) EngineName() string {
	return s.Engine.Name()
}

func (s *converterService) ExtractText(ctx context.Context, req models.ExtractRequest) (*models.ExtractionResult, error) {
	if req.Image == nil {
		return nil, apperrors.NewValidationError("no image provided", codec.ErrEmptyInput)
	}

	img, mime, err := codec.Decode(req.Image, s.opts.MaxImageBytes)
	if err != nil {
		return nil, decodeError(err)
	}
	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"mime":   mime,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Debug("Decoded upload")

	return s.extract(ctx, img, req.Source, req.Strategy, req.ExpectedText)
}

func (s *converterService) ExtractTextFromURL(ctx context.Context, req models.OCRURLRequest) (*models.ExtractionResult, error) {
	start := time.Now()
	img, err := s.ImageRepo.FetchImage(ctx, req.URL)
	if err != nil {
		s.publish(ctx, observer.ConversionEvent{
			EventType:      observer.ImageFetchFailed,
			Source:         req.URL,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, fetchError(err)
	}
	s.publish(ctx, observer.ConversionEvent{
		EventType:      observer.ImageFetched,
		Source:         req.URL,
		ProcessingTime: time.Since(start),
		Success:        true,
	})

	return s.extract(ctx, img, req.URL, req.Strategy, req.ExpectedText)
}

func (s *converterService) extract(ctx context.Context, img image.Image, source, strategyName, expected string) (*models.ExtractionResult, error) {
	strat, err := s.Strategies.Get(strategyName)
	if err != nil {
		return nil, apperrors.NewValidationError("unknown extraction strategy", err).
			WithDetails("available: " + strings.Join(s.Strategies.Names(), ", "))
	}

	s.publish(ctx, observer.ConversionEvent{
		EventType: observer.ExtractionStarted,
		Source:    source,
		Strategy:  strat.GetStrategyName(),
	})

	runCtx := ctx
	if s.opts.OCRTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.opts.OCRTimeout)
		defer cancel()
	}

	start := time.Now()
	out, err := strat.Extract(runCtx, img)
	duration := time.Since(start)
	if err != nil {
		s.publish(ctx, observer.ConversionEvent{
			EventType:      observer.ExtractionFailed,
			Source:         source,
			Strategy:       strat.GetStrategyName(),
			ProcessingTime: duration,
			ErrorMessage:   err.Error(),
		})
		return nil, engineError(err)
	}

	result := &models.ExtractionResult{
		Text:     out.Text,
		Lines:    out.Lines,
		Words:    out.Words,
		Strategy: strat.GetStrategyName(),
		Engine:   s.Engine.Name(),
		Source:   source,
		Duration: duration,
	}
	if strings.TrimSpace(expected) != "" {
		acc := ocr.Score(expected, out.Text)
		result.Accuracy = &acc
	}

	meta := map[string]interface{}{
		"word_count": len(out.Words),
		"line_count": len(out.Lines),
	}
	if result.Accuracy != nil {
		meta["match_score"] = result.Accuracy.MatchScore
	}
	s.publish(ctx, observer.ConversionEvent{
		EventType:      observer.ExtractionCompleted,
		Source:         source,
		Strategy:       result.Strategy,
		ProcessingTime: duration,
		Success:        true,
		Metadata:       meta,
	})

	return result, nil
}

func (s *converterService) ReconstructText(req models.ReconstructRequest) (*models.ReconstructResponse, error) {
	tol := s.opts.LineTolerance
	if req.LineTolerance != nil {
		tol = *req.LineTolerance
		if tol < 0 || math.IsNaN(tol) || math.IsInf(tol, 0) {
			return nil, apperrors.NewValidationError("line_tolerance must be a non-negative number", nil)
		}
	}

	detections := make([]layout.WordDetection, 0, len(req.Detections))
	for i, d := range req.Detections {
		box, err := layout.ParseBoundingBox(d.Box)
		if err != nil {
			return nil, apperrors.NewValidationError("malformed detection", err).
				WithDetails(fmt.Sprintf("detection %d: %v", i, err))
		}
		detections = append(detections, layout.WordDetection{Box: box, Text: d.Text, Confidence: d.Confidence})
	}

	grouped := layout.GroupLines(detections, tol)
	lines := make([]string, len(grouped))
	for i, line := range grouped {
		lines[i] = layout.LineText(line)
	}

	return &models.ReconstructResponse{
		Text:          strings.Join(lines, "\n"),
		Lines:         lines,
		LineCount:     len(lines),
		LineTolerance: tol,
	}, nil
}

func (s *converterService) GenerateHandwriting(ctx context.Context, text string) (*models.HandwritingResult, error) {
	if err := s.TextValidator.ValidateText(text); err != nil {
		return nil, err
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewProcessingError("nothing to render", ErrNothingToRender)
	}

	start := time.Now()
	img, err := s.Renderer.Render(text)
	if err != nil {
		return nil, s.renderFailed(ctx, start, err)
	}
	data, err := codec.EncodePNG(img)
	if err != nil {
		return nil, s.renderFailed(ctx, start, err)
	}
	return s.finishHandwriting(ctx, text, img, data, time.Since(start)), nil
}

func (s *converterService) renderFailed(ctx context.Context, start time.Time, err error) error {
	s.publish(ctx, observer.ConversionEvent{
		EventType:      observer.HandwritingFailed,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	})
	if errors.Is(err, handwriting.ErrEmptyText) {
		return apperrors.NewProcessingError("nothing to render", ErrNothingToRender)
	}
	return apperrors.NewInternalError("failed to render handwriting", err)
}

func (s *converterService) finishHandwriting(ctx context.Context, text string, img image.Image, data []byte, elapsed time.Duration) *models.HandwritingResult {
	lineCount := len(handwriting.SplitLines(text))
	result := &models.HandwritingResult{
		DataURI:    codec.DataURI(codec.MIMEPNG, data),
		PNG:        data,
		Width:      img.Bounds().Dx(),
		Height:     img.Bounds().Dy(),
		LineCount:  lineCount,
		LineHeight: s.Renderer.LineHeight(),
	}

	s.publish(ctx, observer.ConversionEvent{
		EventType:      observer.HandwritingRendered,
		ProcessingTime: elapsed,
		Success:        true,
		Metadata: map[string]interface{}{
			"line_count": lineCount,
			"bytes":      len(data),
		},
	})

	if s.Archive.Enabled() {
		name := time.Now().UTC().Format("2006/01/02/") + uuid.NewString() + ".png"
		url, err := s.Archive.Save(ctx, name, data)
		if err != nil {
			logger.WithContext(ctx).WithError(err).Warn("Failed to archive handwriting image")
			s.publish(ctx, observer.ConversionEvent{EventType: observer.ArchiveFailed, ErrorMessage: err.Error()})
		} else {
			result.BlobURL = url
			s.publish(ctx, observer.ConversionEvent{EventType: observer.ImageArchived, Source: url, Success: true})
		}
	}

	return result
}

func (s *converterService) publish(ctx context.Context, event observer.ConversionEvent) {
	if event.RequestID == "" {
		event.RequestID = logger.RequestIDFromContext(ctx)
	}
	s.Events.NotifyObservers(ctx, event)
}

func decodeError(err error) error {
	switch {
	case errors.Is(err, codec.ErrEmptyInput):
		return apperrors.NewValidationError("empty image", err)
	case errors.Is(err, codec.ErrUnsupportedFormat):
		return apperrors.NewValidationError("unsupported image format", err)
	case errors.Is(err, codec.ErrTooLarge):
		return apperrors.NewValidationError("image too large", err)
	default:
		return apperrors.NewProcessingError("could not decode image", err)
	}
}

func fetchError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("timed out fetching image", err)
	case errors.Is(err, codec.ErrEmptyInput), errors.Is(err, codec.ErrUnsupportedFormat), errors.Is(err, codec.ErrTooLarge):
		return decodeError(err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}

func engineError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("text extraction timed out", err)
	case errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("text extraction cancelled", err)
	case errors.Is(err, ocr.ErrEngineUnavailable), errors.Is(err, ocr.ErrPoolClosed):
		return apperrors.NewInternalError("OCR engine unavailable", err)
	default:
		return apperrors.NewProcessingError("text extraction failed", err)
	}
}
