package validation

import (
	"strings"
	"testing"
)

func TestValidateText(t *testing.T) {
	v := NewTextValidator(20, 3)

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"simple", "Hi\nThere", false},
		{"blank is fine", "   ", false},
		{"unicode counted as runes", strings.Repeat("é", 20), false},
		{"too long", strings.Repeat("a", 21), true},
		{"too many lines", "a\nb\nc\nd", true},
		{"invalid utf8", "ok\xff", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateText(tt.text)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateText() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateText_NoLimits(t *testing.T) {
	v := NewTextValidator(0, 0)
	if err := v.ValidateText(strings.Repeat("line\n", 1000)); err != nil {
		t.Errorf("ValidateText() error = %v", err)
	}
}
