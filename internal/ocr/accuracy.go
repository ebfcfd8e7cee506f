package ocr

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
)

// Accuracy compares an OCR result with the text the caller expected.
type Accuracy struct {
	Expected   string  `json:"expected"`
	CER        float64 `json:"cer"`
	WER        float64 `json:"wer"`
	MatchScore float64 `json:"match_score"`
}

// Score computes character and word error rates of actual against expected.
// Whitespace runs are collapsed before comparing so line breaks introduced
// by reconstruction do not count as errors.
func Score(expected, actual string) Accuracy {
	ref := normalizeWhitespace(expected)
	hyp := normalizeWhitespace(actual)

	acc := Accuracy{Expected: expected}

	refLen := utf8.RuneCountInString(ref)
	switch {
	case refLen == 0 && hyp == "":
		acc.CER = 0
	case refLen == 0:
		acc.CER = 1
	default:
		acc.CER = float64(levenshtein.Distance(ref, hyp)) / float64(refLen)
	}

	refWords := strings.Fields(ref)
	hypWords := strings.Fields(hyp)
	switch {
	case len(refWords) == 0 && len(hypWords) == 0:
		acc.WER = 0
	case len(refWords) == 0, len(hypWords) == 0:
		acc.WER = 1
	default:
		acc.WER, _ = wer.WER(refWords, hypWords)
	}

	acc.MatchScore = math.Max(0, math.Min(1, 1-acc.CER))
	return acc
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
