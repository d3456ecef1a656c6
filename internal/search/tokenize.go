package search

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases s and splits it into runs of letters and digits.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// maxEdits returns the fuzzy tolerance for a query token: one edit per five
// runes, rounded down. Tokens shorter than three runes never match fuzzily.
func maxEdits(token string) int {
	n := len([]rune(token))
	if n < 3 {
		return 0
	}
	return n / 5
}
