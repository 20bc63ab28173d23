// Package utils provides small string helpers used by data-quality logging.
package utils

import "strings"

// NormalizeWhitespace replaces runs of whitespace with single spaces.
func NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateString truncates a string to at most maxRunes runes, appending an
// ellipsis when it had to cut. Truncation is rune-aware so multibyte text in
// logged field values never gets split mid-character.
func TruncateString(str string, maxRunes int) string {
	runes := []rune(str)
	if len(runes) <= maxRunes {
		return str
	}

	return string(runes[:maxRunes]) + "..."
}
