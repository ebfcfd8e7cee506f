package strategy

import (
	"context"
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/anime-shed/text-converter-go/internal/layout"
	"github.com/anime-shed/text-converter-go/internal/ocr"
)

const (
	LayoutStrategyName = "layout"
	PlainStrategyName  = "plain"
)

// Extraction is the outcome of one strategy run
type Extraction struct {
	Text  string
	Lines []string
	// Words is nil for strategies that do not report word boxes
	Words []layout.WordDetection
}

// ExtractionStrategy turns an image into text
type ExtractionStrategy interface {
	Extract(ctx context.Context, img image.Image) (*Extraction, error)
	GetStrategyName() string
}

// LayoutStrategy rebuilds reading order from word boxes
type LayoutStrategy struct {
	engine        ocr.Engine
	lineTolerance float64
}

func NewLayoutStrategy(engine ocr.Engine, lineTolerance float64) ExtractionStrategy {
	return &LayoutStrategy{engine: engine, lineTolerance: lineTolerance}
}

func (s *LayoutStrategy) Extract(ctx context.Context, img image.Image) (*Extraction, error) {
	words, err := s.engine.Detect(ctx, img)
	if err != nil {
		return nil, err
	}

	grouped := layout.GroupLines(words, s.lineTolerance)
	lines := make([]string, len(grouped))
	for i, line := range grouped {
		lines[i] = layout.LineText(line)
	}

	return &Extraction{
		Text:  layout.JoinLines(grouped),
		Lines: lines,
		Words: words,
	}, nil
}

func (s *LayoutStrategy) GetStrategyName() string {
	return LayoutStrategyName
}

// PlainStrategy returns the engine's own transcription
type PlainStrategy struct {
	engine ocr.Engine
}

func NewPlainStrategy(engine ocr.Engine) ExtractionStrategy {
	return &PlainStrategy{engine: engine}
}

func (s *PlainStrategy) Extract(ctx context.Context, img image.Image) (*Extraction, error) {
	text, err := s.engine.Text(ctx, img)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return &Extraction{Text: text, Lines: lines}, nil
}

func (s *PlainStrategy) GetStrategyName() string {
	return PlainStrategyName
}

// Registry looks strategies up by name
type Registry struct {
	strategies map[string]ExtractionStrategy
	fallback   string
}

// NewRegistry registers strategies; the first one is the default
func NewRegistry(strategies ...ExtractionStrategy) *Registry {
	r := &Registry{strategies: make(map[string]ExtractionStrategy, len(strategies))}
	for i, s := range strategies {
		if i == 0 {
			r.fallback = s.GetStrategyName()
		}
		r.strategies[s.GetStrategyName()] = s
	}
	return r
}

// Get returns the named strategy, or the default for an empty name
func (r *Registry) Get(name string) (ExtractionStrategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = r.fallback
	}
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return s, nil
}

// Names lists the registered strategies in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
