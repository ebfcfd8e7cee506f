package transport

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/anime-shed/text-converter-go/internal/errors"
	"github.com/anime-shed/text-converter-go/internal/logger"
	"github.com/anime-shed/text-converter-go/internal/service"
)

func (h *handler) ocrPage(c *gin.Context) {
	c.HTML(http.StatusOK, "ocr.html", gin.H{})
}

// ocrSubmit renders the page with the extracted text. A form without a file
// (or a non-multipart post) shows an empty result rather than an error.
func (h *handler) ocrSubmit(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	result, err := h.extractUpload(ctx, c)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		c.HTML(http.StatusOK, "ocr.html", gin.H{"submitted": true, "text": ""})
		return
	case err != nil:
		logger.WithContext(ctx).WithError(err).Warn("OCR page request failed")
		c.HTML(apperrors.GetStatusCode(err), "ocr.html", gin.H{"error": publicMessage(err)})
		return
	}

	c.HTML(http.StatusOK, "ocr.html", gin.H{"submitted": true, "text": result.Text})
}

func (h *handler) handwritingPage(c *gin.Context) {
	c.HTML(http.StatusOK, "handwriting.html", gin.H{})
}

// handwritingSubmit renders the page with the image inline. Blank text shows
// the page again without an image.
func (h *handler) handwritingSubmit(c *gin.Context) {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	text := c.PostForm("text")
	result, err := h.svc.GenerateHandwriting(ctx, text)
	switch {
	case errors.Is(err, service.ErrNothingToRender):
		c.HTML(http.StatusOK, "handwriting.html", gin.H{"text": text})
	case err != nil:
		logger.WithContext(ctx).WithError(err).Warn("Handwriting page request failed")
		c.HTML(apperrors.GetStatusCode(err), "handwriting.html", gin.H{"text": text, "error": publicMessage(err)})
	default:
		c.HTML(http.StatusOK, "handwriting.html", gin.H{
			"text":   text,
			"image":  template.URL(result.DataURI),
			"width":  result.Width,
			"height": result.Height,
		})
	}
}
