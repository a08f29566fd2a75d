// Package textnorm flattens noisy OCR/PDF text into a single normalized line.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

var reWhitespace = regexp.MustCompile(`\s+`)

// Normalize strips control characters and collapses every whitespace run into
// a single space. All downstream pattern rules assume this flattened form.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
