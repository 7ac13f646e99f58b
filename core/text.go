package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText applies NFKC normalization, drops control characters
// other than tab and newline, and trims surrounding whitespace.
func NormalizeText(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
	return strings.TrimSpace(normed)
}

// FoldText is NormalizeText followed by lowercasing. It is the form used
// for case-insensitive phrase matching.
func FoldText(text string) string {
	return strings.ToLower(NormalizeText(text))
}
