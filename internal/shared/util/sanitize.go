package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeText trims s, drops control characters other than newlines and
// tabs, and truncates it to at most max runes (max <= 0 means no limit).
func SanitizeText(s string, max int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if r == utf8.RuneError {
			continue
		}
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		if max > 0 && n >= max {
			break
		}
		b.WriteRune(r)
		n++
	}
	return strings.TrimSpace(b.String())
}
