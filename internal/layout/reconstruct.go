// Package layout rebuilds reading-order text from the unordered word boxes
// an OCR engine reports.
package layout

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"
	"strings"
)

// DefaultLineTolerance is the vertical distance in pixels a word may sit from
// its line's anchor and still belong to that line.
const DefaultLineTolerance = 10.0

// ErrMalformedBox is returned when a bounding box does not have four 2D points.
var ErrMalformedBox = errors.New("malformed bounding box")

// Point is a pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox holds four corners ordered clockwise from the top-left.
type BoundingBox [4]Point

// TopLeft returns the reference corner used for ordering.
func (b BoundingBox) TopLeft() Point {
	return b[0]
}

// WordDetection is one recognised word with its location.
type WordDetection struct {
	Box        BoundingBox `json:"box"`
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
}

// FromRect converts an axis-aligned rectangle into the clockwise 4-point form.
func FromRect(r image.Rectangle) BoundingBox {
	minX, minY := float64(r.Min.X), float64(r.Min.Y)
	maxX, maxY := float64(r.Max.X), float64(r.Max.Y)
	return BoundingBox{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}
}

// ParseBoundingBox validates wire-format points ([[x,y], ...]) and builds a box.
func ParseBoundingBox(points [][]float64) (BoundingBox, error) {
	var box BoundingBox
	if len(points) != len(box) {
		return box, fmt.Errorf("%w: want 4 points, got %d", ErrMalformedBox, len(points))
	}
	for i, p := range points {
		if len(p) != 2 {
			return box, fmt.Errorf("%w: point %d has %d coordinates", ErrMalformedBox, i, len(p))
		}
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return box, fmt.Errorf("%w: point %d is not finite", ErrMalformedBox, i)
			}
		}
		box[i] = Point{X: p[0], Y: p[1]}
	}
	return box, nil
}

// GroupLines clusters detections into rows.
//
// Detections are sorted by top-left Y and scanned once. The first detection of
// a row fixes the row's anchor; later detections join while they stay within
// lineTol of that anchor. The anchor is never moved, so a row whose words
// drift downwards can be split once the drift exceeds lineTol. Each row is
// returned sorted by top-left X. The input slice is not modified.
func GroupLines(detections []WordDetection, lineTol float64) [][]WordDetection {
	if len(detections) == 0 {
		return nil
	}

	sorted := make([]WordDetection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Box.TopLeft().Y < sorted[j].Box.TopLeft().Y
	})

	var lines [][]WordDetection
	current := []WordDetection{sorted[0]}
	anchor := sorted[0].Box.TopLeft().Y

	for _, d := range sorted[1:] {
		y := d.Box.TopLeft().Y
		if math.Abs(y-anchor) <= lineTol {
			current = append(current, d)
			continue
		}
		lines = append(lines, sortByX(current))
		current = []WordDetection{d}
		anchor = y
	}
	lines = append(lines, sortByX(current))

	return lines
}

// Reconstruct joins the grouped rows into text: words separated by a single
// space, rows by a single newline. An empty input yields "".
func Reconstruct(detections []WordDetection, lineTol float64) string {
	return JoinLines(GroupLines(detections, lineTol))
}

// JoinLines renders already grouped rows as text.
func JoinLines(lines [][]WordDetection) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = LineText(line)
	}
	return strings.Join(out, "\n")
}

// LineText joins the words of one row with single spaces.
func LineText(line []WordDetection) string {
	words := make([]string, len(line))
	for i, d := range line {
		words[i] = d.Text
	}
	return strings.Join(words, " ")
}

func sortByX(line []WordDetection) []WordDetection {
	sort.SliceStable(line, func(i, j int) bool {
		return line[i].Box.TopLeft().X < line[j].Box.TopLeft().X
	})
	return line
}
