// Package ocr runs an OCR model over decoded images and reports word boxes
// for the layout package to put back into reading order.
package ocr

import (
	"context"
	"errors"
	"image"
	"strings"

	"github.com/anime-shed/text-converter-go/internal/codec"
	"github.com/anime-shed/text-converter-go/internal/layout"
)

// ErrEngineUnavailable is returned when no OCR backend can be loaded.
var ErrEngineUnavailable = errors.New("ocr: engine unavailable")

// Word is a raw engine result: an axis-aligned box and a 0-100 confidence.
type Word struct {
	Text       string
	Confidence float64
	Bounds     image.Rectangle
}

// Engine extracts text from images. Implementations are safe for concurrent use.
type Engine interface {
	// Detect returns one detection per recognised word, in engine order.
	Detect(ctx context.Context, img image.Image) ([]layout.WordDetection, error)
	// Text returns the engine's own full-page transcription.
	Text(ctx context.Context, img image.Image) (string, error)
	Name() string
	Close() error
}

// Options tunes the pooled engine.
type Options struct {
	Preprocess    bool
	Preprocessing PreprocessOptions
	// MinConfidence drops detections below this value (0-1).
	MinConfidence float64
}

// PooledEngine dispatches work to a WorkerPool of engine sessions.
type PooledEngine struct {
	name string
	pool *WorkerPool
	opts Options
}

// NewPooledEngine wraps a pool. The engine owns the pool and closes it.
func NewPooledEngine(name string, pool *WorkerPool, opts Options) *PooledEngine {
	return &PooledEngine{name: name, pool: pool, opts: opts}
}

func (e *PooledEngine) Name() string {
	return e.name
}

func (e *PooledEngine) Close() error {
	return e.pool.Close()
}

func (e *PooledEngine) prepare(img image.Image) ([]byte, error) {
	if e.opts.Preprocess {
		img = Preprocess(img, e.opts.Preprocessing)
	}
	return codec.EncodePNG(img)
}

func (e *PooledEngine) Detect(ctx context.Context, img image.Image) ([]layout.WordDetection, error) {
	data, err := e.prepare(img)
	if err != nil {
		return nil, err
	}

	var words []Word
	err = e.pool.Submit(ctx, func(s Session) error {
		var werr error
		words, werr = s.Words(data)
		return werr
	})
	if err != nil {
		return nil, err
	}

	scale := 1.0
	if e.opts.Preprocess {
		scale = upscaleFactor(img.Bounds(), e.opts.Preprocessing)
	}
	return ToDetections(words, e.opts.MinConfidence, scale), nil
}

func (e *PooledEngine) Text(ctx context.Context, img image.Image) (string, error) {
	data, err := e.prepare(img)
	if err != nil {
		return "", err
	}

	var text string
	err = e.pool.Submit(ctx, func(s Session) error {
		var terr error
		text, terr = s.Text(data)
		return terr
	})
	return text, err
}

// ToDetections converts raw engine words. Blank words and words under
// minConfidence are dropped; coordinates are divided by scale so they refer
// to the original image.
func ToDetections(words []Word, minConfidence, scale float64) []layout.WordDetection {
	if scale <= 0 {
		scale = 1
	}
	out := make([]layout.WordDetection, 0, len(words))
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		conf := w.Confidence / 100.0
		if conf < minConfidence {
			continue
		}
		box := layout.FromRect(w.Bounds)
		if scale != 1 {
			for i := range box {
				box[i].X /= scale
				box[i].Y /= scale
			}
		}
		out = append(out, layout.WordDetection{Box: box, Text: text, Confidence: conf})
	}
	return out
}
