package ocr

import (
	"math"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		expected  string
		actual    string
		wantCER   float64
		wantWER   float64
		wantMatch float64
	}{
		{"identical", "Hello World", "Hello World", 0, 0, 1},
		{"line breaks ignored", "Hello World", "Hello\nWorld", 0, 0, 1},
		{"one char off", "abcd", "abce", 0.25, 1, 0.75},
		{"one word wrong", "the quick fox", "the quick box", 1.0 / 13.0, 1.0 / 3.0, 12.0 / 13.0},
		{"both empty", "", "  ", 0, 0, 1},
		{"nothing expected", "", "text", 1, 1, 0},
		{"nothing read", "text", "", 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.expected, tt.actual)
			if !approx(got.CER, tt.wantCER) {
				t.Errorf("CER = %v, want %v", got.CER, tt.wantCER)
			}
			if !approx(got.WER, tt.wantWER) {
				t.Errorf("WER = %v, want %v", got.WER, tt.wantWER)
			}
			if !approx(got.MatchScore, tt.wantMatch) {
				t.Errorf("MatchScore = %v, want %v", got.MatchScore, tt.wantMatch)
			}
			if got.Expected != tt.expected {
				t.Errorf("Expected = %q", got.Expected)
			}
		})
	}
}

func TestScore_MatchScoreClamped(t *testing.T) {
	got := Score("ab", "completely different")
	if got.CER <= 1 {
		t.Fatalf("CER = %v, expected > 1 for this input", got.CER)
	}
	if got.MatchScore != 0 {
		t.Errorf("MatchScore = %v, want 0", got.MatchScore)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
