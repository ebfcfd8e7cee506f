package strategy

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/anime-shed/text-converter-go/internal/layout"
)

type fakeEngine struct {
	words []layout.WordDetection
	text  string
	err   error
}

func (f *fakeEngine) Detect(ctx context.Context, img image.Image) ([]layout.WordDetection, error) {
	return f.words, f.err
}

func (f *fakeEngine) Text(ctx context.Context, img image.Image) (string, error) {
	return f.text, f.err
}

func (f *fakeEngine) Name() string { return "fake" }
func (f *fakeEngine) Close() error { return nil }

func word(text string, x, y float64) layout.WordDetection {
	return layout.WordDetection{Box: layout.BoundingBox{{X: x, Y: y}}, Text: text, Confidence: 0.9}
}

func TestLayoutStrategy_Extract(t *testing.T) {
	engine := &fakeEngine{words: []layout.WordDetection{
		word("World", 60, 10),
		word("Hello", 0, 12),
		word("Bye", 0, 40),
	}}
	s := NewLayoutStrategy(engine, layout.DefaultLineTolerance)

	got, err := s.Extract(context.Background(), nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Text != "Hello World\nBye" {
		t.Errorf("Text = %q", got.Text)
	}
	if len(got.Lines) != 2 || got.Lines[0] != "Hello World" || got.Lines[1] != "Bye" {
		t.Errorf("Lines = %q", got.Lines)
	}
	if len(got.Words) != 3 {
		t.Errorf("Words = %d, want 3", len(got.Words))
	}
	if s.GetStrategyName() != LayoutStrategyName {
		t.Errorf("name = %q", s.GetStrategyName())
	}
}

func TestLayoutStrategy_NoWords(t *testing.T) {
	s := NewLayoutStrategy(&fakeEngine{}, layout.DefaultLineTolerance)
	got, err := s.Extract(context.Background(), nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Text != "" || len(got.Lines) != 0 {
		t.Errorf("got %+v, want empty", got)
	}
}

func TestPlainStrategy_Extract(t *testing.T) {
	s := NewPlainStrategy(&fakeEngine{text: "  Hello World\n\nBye\n"})
	got, err := s.Extract(context.Background(), nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Text != "Hello World\n\nBye" {
		t.Errorf("Text = %q", got.Text)
	}
	if len(got.Lines) != 2 {
		t.Errorf("Lines = %q", got.Lines)
	}
	if got.Words != nil {
		t.Error("plain strategy should not report words")
	}
}

func TestStrategies_PropagateEngineError(t *testing.T) {
	want := errors.New("engine down")
	engine := &fakeEngine{err: want}

	for _, s := range []ExtractionStrategy{NewLayoutStrategy(engine, 10), NewPlainStrategy(engine)} {
		if _, err := s.Extract(context.Background(), nil); !errors.Is(err, want) {
			t.Errorf("%s: error = %v", s.GetStrategyName(), err)
		}
	}
}

func TestRegistry(t *testing.T) {
	engine := &fakeEngine{}
	r := NewRegistry(NewLayoutStrategy(engine, 10), NewPlainStrategy(engine))

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", LayoutStrategyName, false},
		{"layout", LayoutStrategyName, false},
		{" PLAIN ", PlainStrategyName, false},
		{"neural", "", true},
	}
	for _, tt := range tests {
		s, err := r.Get(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("Get(%q) error = %v", tt.name, err)
			continue
		}
		if err == nil && s.GetStrategyName() != tt.want {
			t.Errorf("Get(%q) = %s, want %s", tt.name, s.GetStrategyName(), tt.want)
		}
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "layout" || names[1] != "plain" {
		t.Errorf("Names() = %v", names)
	}
}
