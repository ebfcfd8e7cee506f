package models

import (
	"io"
	"time"

	"github.com/anime-shed/text-converter-go/internal/layout"
	"github.com/anime-shed/text-converter-go/internal/ocr"
)

// ExtractRequest is an uploaded image to run OCR on
type ExtractRequest struct {
	Image        io.Reader
	Source       string
	Strategy     string
	ExpectedText string
}

// ExtractionResult is the service-level outcome of one OCR run
type ExtractionResult struct {
	Text     string
	Lines    []string
	Words    []layout.WordDetection
	Strategy string
	Engine   string
	Source   string
	Accuracy *ocr.Accuracy
	Duration time.Duration
}

// HandwritingResult is a rendered, encoded handwriting image
type HandwritingResult struct {
	DataURI    string
	PNG        []byte
	Width      int
	Height     int
	LineCount  int
	LineHeight int
	BlobURL    string
}

// ToResponse converts the result for the JSON API
func (r *ExtractionResult) ToResponse() OCRResponse {
	resp := OCRResponse{
		Text:             r.Text,
		Lines:            r.Lines,
		Strategy:         r.Strategy,
		Engine:           r.Engine,
		Source:           r.Source,
		ProcessingTimeMs: r.Duration.Milliseconds(),
	}
	if resp.Lines == nil {
		resp.Lines = []string{}
	}
	for _, w := range r.Words {
		box := make([][]float64, len(w.Box))
		for i, p := range w.Box {
			box[i] = []float64{p.X, p.Y}
		}
		resp.Words = append(resp.Words, DetectionPayload{Box: box, Text: w.Text, Confidence: w.Confidence})
	}
	if r.Accuracy != nil {
		resp.Accuracy = &AccuracyPayload{
			ExpectedText: r.Accuracy.Expected,
			CER:          r.Accuracy.CER,
			WER:          r.Accuracy.WER,
			MatchScore:   r.Accuracy.MatchScore,
		}
	}
	return resp
}

// ToResponse converts the result for the JSON API
func (r *HandwritingResult) ToResponse() HandwritingResponse {
	return HandwritingResponse{
		Image:      r.DataURI,
		Width:      r.Width,
		Height:     r.Height,
		LineCount:  r.LineCount,
		LineHeight: r.LineHeight,
		BlobURL:    r.BlobURL,
	}
}
