package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText NFC-normalizes s, drops control characters, collapses
// surrounding whitespace and truncates to maxRunes. maxRunes <= 0 means no limit.
func NormalizeText(s string, maxRunes int) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	if maxRunes > 0 {
		runes := []rune(s)
		if len(runes) > maxRunes {
			s = strings.TrimSpace(string(runes[:maxRunes]))
		}
	}
	return s
}
