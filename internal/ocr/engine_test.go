package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/anime-shed/text-converter-go/internal/layout"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestToDetections(t *testing.T) {
	words := []Word{
		{Text: "Hello", Confidence: 92, Bounds: image.Rect(10, 20, 60, 40)},
		{Text: "  ", Confidence: 99, Bounds: image.Rect(70, 20, 80, 40)},
		{Text: "noise", Confidence: 30, Bounds: image.Rect(90, 20, 120, 40)},
		{Text: " world ", Confidence: 80, Bounds: image.Rect(130, 22, 190, 41)},
	}

	got := ToDetections(words, 0.5, 1)
	if len(got) != 2 {
		t.Fatalf("ToDetections() returned %d detections, want 2", len(got))
	}
	if got[0].Text != "Hello" || got[1].Text != "world" {
		t.Errorf("texts = %q, %q", got[0].Text, got[1].Text)
	}
	if got[0].Confidence != 0.92 {
		t.Errorf("confidence = %v, want 0.92", got[0].Confidence)
	}
	if tl := got[1].Box.TopLeft(); tl != (layout.Point{X: 130, Y: 22}) {
		t.Errorf("top-left = %+v", tl)
	}
}

func TestToDetections_Scale(t *testing.T) {
	words := []Word{{Text: "a", Confidence: 90, Bounds: image.Rect(20, 40, 60, 80)}}

	got := ToDetections(words, 0, 2)
	if tl := got[0].Box.TopLeft(); tl != (layout.Point{X: 10, Y: 20}) {
		t.Errorf("top-left = %+v, want {10 20}", tl)
	}
	if br := got[0].Box[2]; br != (layout.Point{X: 30, Y: 40}) {
		t.Errorf("bottom-right = %+v, want {30 40}", br)
	}
}

func TestPooledEngine_Detect(t *testing.T) {
	proto := &fakeSession{words: []Word{
		{Text: "World", Confidence: 90, Bounds: image.Rect(60, 10, 100, 30)},
		{Text: "Hello", Confidence: 90, Bounds: image.Rect(0, 12, 50, 30)},
	}}
	pool, sessions := newFakePool(t, 1, proto)
	engine := NewPooledEngine("fake", pool, Options{})
	defer engine.Close()

	dets, err := engine.Detect(context.Background(), testImage(120, 40))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if got := layout.Reconstruct(dets, layout.DefaultLineTolerance); got != "Hello World" {
		t.Errorf("Reconstruct(Detect()) = %q, want %q", got, "Hello World")
	}

	sessions[0].mu.Lock()
	in := sessions[0].lastIn
	sessions[0].mu.Unlock()
	if _, err := png.Decode(bytes.NewReader(in)); err != nil {
		t.Errorf("session received invalid png: %v", err)
	}
	if engine.Name() != "fake" {
		t.Errorf("Name() = %q", engine.Name())
	}
}

func TestPooledEngine_DetectPreprocessKeepsCoordinates(t *testing.T) {
	proto := &fakeSession{words: []Word{
		{Text: "big", Confidence: 90, Bounds: image.Rect(100, 200, 300, 400)},
	}}
	pool, sessions := newFakePool(t, 1, proto)
	engine := NewPooledEngine("fake", pool, Options{
		Preprocess:    true,
		Preprocessing: PreprocessOptions{MinHeight: 200},
	})
	defer engine.Close()

	dets, err := engine.Detect(context.Background(), testImage(50, 100))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if tl := dets[0].Box.TopLeft(); tl != (layout.Point{X: 50, Y: 100}) {
		t.Errorf("top-left = %+v, want coordinates in original image space", tl)
	}

	sessions[0].mu.Lock()
	in := sessions[0].lastIn
	sessions[0].mu.Unlock()
	cfg, err := png.DecodeConfig(bytes.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if cfg.Height != 200 || cfg.Width != 100 {
		t.Errorf("session image = %dx%d, want 100x200", cfg.Width, cfg.Height)
	}
}

func TestPooledEngine_Text(t *testing.T) {
	pool, _ := newFakePool(t, 2, &fakeSession{text: "Hello\nWorld\n"})
	engine := NewPooledEngine("fake", pool, Options{Preprocess: true, Preprocessing: DefaultPreprocessOptions()})
	defer engine.Close()

	got, err := engine.Text(context.Background(), testImage(10, 10))
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if got != "Hello\nWorld\n" {
		t.Errorf("Text() = %q", got)
	}
}
