package transport

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/anime-shed/text-converter-go/internal/errors"
	"github.com/anime-shed/text-converter-go/internal/logger"
	"github.com/anime-shed/text-converter-go/internal/service"
	"github.com/anime-shed/text-converter-go/pkg/models"
)

const Version = "1.0.0"

//go:embed templates/*.html
var templateFS embed.FS

// MetricsSource reports the counters served by /metrics
type MetricsSource interface {
	GetMetrics() map[string]interface{}
}

// Options configures the HTTP layer
type Options struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	// EngineVersion is reported by /health
	EngineVersion string
}

type handler struct {
	svc     service.ConverterService
	metrics MetricsSource
	opts    Options
}

func NewHandler(svc service.ConverterService, metrics MetricsSource, opts Options) http.Handler {
	h := &handler{svc: svc, metrics: metrics, opts: opts}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(),
		requestSizeLimiter(opts.MaxRequestBodySize),
		errorHandler(),
	)
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	// HTML pages
	r.GET("/", h.ocrPage)
	r.POST("/", h.ocrSubmit)
	r.GET("/handwriting/", h.handwritingPage)
	r.POST("/handwriting/", h.handwritingSubmit)

	// JSON API
	api := r.Group("/api")
	api.POST("/ocr", h.extractText)
	api.POST("/reconstruct", h.reconstructText)
	api.POST("/handwriting", h.generateHandwriting)

	r.GET("/health", h.healthCheck)
	r.GET("/metrics", h.getMetrics)

	return r
}

func (h *handler) withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.opts.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.opts.RequestTimeout)
}

func (h *handler) extractText(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	var (
		result *models.ExtractionResult
		err    error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		result, err = h.extractUpload(ctx, c)
	} else {
		var req models.OCRURLRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", bindErr)
			return
		}
		if req.Strategy == "" {
			req.Strategy = c.Query("strategy")
		}
		result, err = h.svc.ExtractTextFromURL(ctx, req)
	}
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "text extraction failed", err)
		return
	}

	logger.WithContext(ctx).WithFields(logrus.Fields{
		"strategy":           result.Strategy,
		"lines":              len(result.Lines),
		"processing_time_ms": result.Duration.Milliseconds(),
	}).Info("Text extraction completed successfully")

	c.JSON(http.StatusOK, result.ToResponse())
}

func (h *handler) extractUpload(ctx context.Context, c *gin.Context) (*models.ExtractionResult, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, uploadError(err)
	}
	f, err := file.Open()
	if err != nil {
		return nil, apperrors.NewInternalError("could not read upload", err)
	}
	defer f.Close()

	return h.svc.ExtractText(ctx, models.ExtractRequest{
		Image:        f,
		Source:       file.Filename,
		Strategy:     c.DefaultPostForm("strategy", c.Query("strategy")),
		ExpectedText: c.PostForm("expected_text"),
	})
}

func (h *handler) reconstructText(c *gin.Context) {
	var req models.ReconstructRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	resp, err := h.svc.ReconstructText(req)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "reconstruction failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) generateHandwriting(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	var req models.HandwritingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	result, err := h.svc.GenerateHandwriting(ctx, req.Text)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "handwriting generation failed", err)
		return
	}

	if c.Query("format") == "png" {
		c.Data(http.StatusOK, "image/png", result.PNG)
		return
	}
	c.JSON(http.StatusOK, result.ToResponse())
}

func (h *handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:        "available",
		Version:       Version,
		Engine:        h.svc.EngineName(),
		EngineVersion: h.opts.EngineVersion,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) getMetrics(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, h.metrics.GetMetrics())
}
