package core

import (
	"strings"
	"unicode"
)

// Tokenize splits text into lowercase terms for lexical matching.
// Terms are runs of letters and digits; everything else separates them.
// The same tokenizer must be applied to indexed bodies and to queries,
// otherwise lexical scores drift.
func Tokenize(text string) []string {
	var terms []string
	var sb strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			continue
		}
		if sb.Len() > 0 {
			terms = append(terms, sb.String())
			sb.Reset()
		}
	}
	if sb.Len() > 0 {
		terms = append(terms, sb.String())
	}
	return terms
}
