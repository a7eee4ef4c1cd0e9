// Package nlu assembles the per-turn annotation bundle. Annotators run
// concurrently before any RG sees the turn; each has its own timeout and a
// failure leaves only its own field empty.
package nlu

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// Normalize folds text into the form regex templates expect: NFKC,
// lowercase, straight apostrophes, punctuation replaced by spaces, runs of
// whitespace collapsed.
func Normalize(text string) string {
	s := norm.NFKC.String(text)
	s = apostrophes.Replace(strings.ToLower(s))
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'', r == '-':
			return r
		case unicode.IsControl(r), unicode.IsSpace(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize splits normalized text on spaces.
func Tokenize(normalized string) []string {
	return strings.Fields(normalized)
}

// IsQuestion reports whether raw text ends with a question mark or opens
// with an interrogative.
func IsQuestion(raw string, tokens []string) bool {
	if strings.HasSuffix(strings.TrimSpace(raw), "?") {
		return true
	}
	if len(tokens) == 0 {
		return false
	}
	switch tokens[0] {
	case "what", "what's", "who", "who's", "why", "how", "how's", "where", "when", "which",
		"do", "does", "did", "can", "could", "would", "will", "is", "are", "have", "has":
		return len(tokens) > 1
	}
	return false
}
