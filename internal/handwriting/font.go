package handwriting

import (
	"fmt"
	"os"

	"golang.org/x/image/font/opentype"
)

// LoadFont reads and parses a TrueType/OpenType font file. It is meant to be
// called once at startup; the returned font is read-only and shared.
func LoadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %q: %w", path, err)
	}
	f, err := ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("font %q: %w", path, err)
	}
	return f, nil
}

// ParseFont parses font bytes that are already in memory.
func ParseFont(data []byte) (*opentype.Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}
