// Package tokenizer turns raw document text into the lowercase word sequence
// that documents are indexed by, and splits queries into terms.
//
// Document rule: line breaks (LF, CRLF or a lone CR), parentheses, periods
// and commas are deleted (not replaced by a space), the text is split on single spaces and every word is
// case-folded. Empty words produced by consecutive spaces are dropped, so
// positions count only real words.
package tokenizer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var stripper = strings.NewReplacer(
	"\r\n", "",
	"\r", "",
	"\n", "",
	"(", "",
	")", "",
	".", "",
	",", "",
)

// Words returns the normalised word sequence of text.
func Words(text string) []string {
	text = stripper.Replace(text)
	parts := strings.Split(text, " ")
	caser := cases.Lower(language.Und)
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		words = append(words, caser.String(p))
	}
	return words
}

// Fold case-folds s the same way document words are folded.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Terms splits a query on whitespace and case-folds each term. Query terms
// are not stripped of punctuation.
func Terms(query string) []string {
	return strings.Fields(Fold(query))
}
