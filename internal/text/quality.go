// Package text holds the built-in enrichment passes that run after raw
// extraction: quality scoring, token reduction and language detection.
package text

import (
	"strings"
	"unicode"
)

// QualityScore rates extracted text between 0 and 1. The score is a
// blend of printable-character ratio, word structure and replacement
// character density; scanned garbage and binary bleed-through score low.
func QualityScore(content string) float64 {
	if content == "" {
		return 0
	}

	var printable, total, replacement int
	for _, r := range content {
		total++
		if r == unicode.ReplacementChar {
			replacement++
			continue
		}
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}

	printableRatio := float64(printable) / float64(total)
	replacementPenalty := float64(replacement) / float64(total) * 4
	if replacementPenalty > 1 {
		replacementPenalty = 1
	}

	score := printableRatio * (1 - replacementPenalty) * wordShapeFactor(content)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// wordShapeFactor rewards text whose average word length looks like
// natural language. OCR noise tends to either single characters or very
// long runs.
func wordShapeFactor(content string) float64 {
	words := strings.Fields(content)
	if len(words) == 0 {
		return 0.5
	}

	var totalLen int
	for _, w := range words {
		totalLen += len(w)
	}
	avg := float64(totalLen) / float64(len(words))

	switch {
	case avg >= 3 && avg <= 12:
		return 1
	case avg < 3:
		return 0.6 + avg*0.13
	default:
		factor := 1 - (avg-12)*0.05
		if factor < 0.3 {
			return 0.3
		}
		return factor
	}
}
