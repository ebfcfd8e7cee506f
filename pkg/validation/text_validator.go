package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/anime-shed/text-converter-go/internal/errors"
)

// DefaultMaxTextLength caps handwriting input; each line becomes a row of pixels.
const DefaultMaxTextLength = 5000

// TextValidator checks text submitted for rendering.
type TextValidator struct {
	maxRunes int
	maxLines int
}

func NewTextValidator(maxRunes, maxLines int) *TextValidator {
	return &TextValidator{maxRunes: maxRunes, maxLines: maxLines}
}

// ValidateText rejects invalid UTF-8 and oversize input. Blank text is not
// an error here; callers decide what an empty render means.
func (v *TextValidator) ValidateText(text string) error {
	if !utf8.ValidString(text) {
		return apperrors.NewValidationError("text must be valid UTF-8", nil)
	}
	if v.maxRunes > 0 {
		if n := utf8.RuneCountInString(text); n > v.maxRunes {
			return apperrors.NewValidationError("text too long", nil).
				WithDetails(fmt.Sprintf("%d characters, limit %d", n, v.maxRunes))
		}
	}
	if v.maxLines > 0 {
		if n := strings.Count(text, "\n") + 1; n > v.maxLines {
			return apperrors.NewValidationError("too many lines", nil).
				WithDetails(fmt.Sprintf("%d lines, limit %d", n, v.maxLines))
		}
	}
	return nil
}
