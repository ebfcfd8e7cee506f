// Package handwriting lays out multi-line text on a fixed-width canvas and
// rasterises it with a handwriting font.
package handwriting

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultWidth       = 800
	DefaultMargin      = 10
	DefaultFontSize    = 40.0
	DefaultLineSpacing = 10
	DefaultDPI         = 72.0

	// referenceGlyphs spans a full ascender and descender.
	referenceGlyphs = "Ay"
)

// DefaultInk is the pen colour used when none is configured.
var DefaultInk = color.RGBA{R: 0, G: 0, B: 255, A: 255}

// ErrEmptyText is returned when there is nothing to draw. Callers are
// expected to check for blank input before rendering.
var ErrEmptyText = errors.New("handwriting: empty text")

// Options configures canvas geometry and styling.
type Options struct {
	Width       int
	Margin      int
	FontSize    float64
	DPI         float64
	LineSpacing int
	Ink         color.Color
	Background  color.Color
}

// DefaultOptions returns an 800px wide canvas with 40pt blue ink.
func DefaultOptions() Options {
	return Options{
		Width:       DefaultWidth,
		Margin:      DefaultMargin,
		FontSize:    DefaultFontSize,
		DPI:         DefaultDPI,
		LineSpacing: DefaultLineSpacing,
		Ink:         DefaultInk,
		Background:  color.White,
	}
}

// ParseInk converts a hex colour such as "#0000ff" to an opaque colour.
func ParseInk(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("parse ink colour %q: %w", hex, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// LayoutLine is one line of text and the y offset of its top edge.
type LayoutLine struct {
	Text string
	Y    int
}

// Renderer draws text with a shared font. It is safe for concurrent use.
type Renderer struct {
	font       *opentype.Font
	opts       Options
	faceOpts   opentype.FaceOptions
	ascent     fixed.Int26_6
	lineHeight int
	faces      sync.Pool
}

// NewRenderer measures the font once and prepares a pool of faces.
func NewRenderer(f *opentype.Font, opts Options) (*Renderer, error) {
	if f == nil {
		return nil, errors.New("handwriting: nil font")
	}
	if opts.Width <= 0 {
		return nil, fmt.Errorf("handwriting: width must be > 0 (got %d)", opts.Width)
	}
	if opts.Margin < 0 || opts.LineSpacing < 0 {
		return nil, fmt.Errorf("handwriting: margin and line spacing must be >= 0")
	}
	if opts.FontSize <= 0 || math.IsNaN(opts.FontSize) || math.IsInf(opts.FontSize, 0) {
		return nil, fmt.Errorf("handwriting: font size must be a finite number > 0 (got %g)", opts.FontSize)
	}
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	if opts.Ink == nil {
		opts.Ink = DefaultInk
	}
	if opts.Background == nil {
		opts.Background = color.White
	}

	r := &Renderer{
		font: f,
		opts: opts,
		faceOpts: opentype.FaceOptions{
			Size:    opts.FontSize,
			DPI:     opts.DPI,
			Hinting: font.HintingFull,
		},
	}

	face, err := r.newFace()
	if err != nil {
		return nil, err
	}
	bounds, _ := font.BoundString(face, referenceGlyphs)
	r.ascent = face.Metrics().Ascent
	r.lineHeight = (r.ascent + bounds.Max.Y).Ceil() + opts.LineSpacing
	r.faces.Put(face)

	return r, nil
}

func (r *Renderer) newFace() (font.Face, error) {
	face, err := opentype.NewFace(r.font, &r.faceOpts)
	if err != nil {
		return nil, fmt.Errorf("handwriting: create face: %w", err)
	}
	return face, nil
}

// font.Face caches metrics and glyph buffers, so each draw takes its own.
func (r *Renderer) acquireFace() (font.Face, error) {
	if face, ok := r.faces.Get().(font.Face); ok {
		return face, nil
	}
	return r.newFace()
}

// Options returns the effective options.
func (r *Renderer) Options() Options {
	return r.opts
}

// LineHeight is the reference glyph height plus line spacing, in pixels.
func (r *Renderer) LineHeight() int {
	return r.lineHeight
}

// SplitLines splits on explicit line breaks only; no wrapping is applied.
// CRLF counts as a single break.
func SplitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// Layout assigns each line its top offset, starting at the margin.
func (r *Renderer) Layout(text string) []LayoutLine {
	lines := SplitLines(text)
	out := make([]LayoutLine, len(lines))
	for i, l := range lines {
		out[i] = LayoutLine{Text: l, Y: r.opts.Margin + i*r.lineHeight}
	}
	return out
}

// CanvasSize returns the canvas dimensions for the given number of lines.
func (r *Renderer) CanvasSize(lines int) (int, int) {
	return r.opts.Width, r.opts.Margin + r.lineHeight*lines
}

// Render draws text onto a new canvas. Content wider than the canvas is not
// wrapped and may run past the right edge.
func (r *Renderer) Render(text string) (*image.RGBA, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	lines := r.Layout(text)
	w, h := r.CanvasSize(len(lines))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.opts.Background), image.Point{}, draw.Src)

	face, err := r.acquireFace()
	if err != nil {
		return nil, err
	}
	defer r.faces.Put(face)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(r.opts.Ink),
		Face: face,
	}
	for _, l := range lines {
		// Dot is the baseline; the line's top sits one ascent above it.
		d.Dot = fixed.Point26_6{
			X: fixed.I(r.opts.Margin),
			Y: fixed.I(l.Y) + r.ascent,
		}
		d.DrawString(l.Text)
	}

	return img, nil
}
