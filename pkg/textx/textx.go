// Package textx provides small text utilities used across the project.
package textx

import (
	"strings"
	"unicode"
)

// CleanFreeText drops control characters other than tab, newline and
// carriage return, then trims surrounding whitespace. It is meant for
// multi-line fields such as notes and cover letters.
func CleanFreeText(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return r
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(cleaned)
}
