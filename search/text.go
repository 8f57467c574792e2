package search

import "github.com/keepsake-dev/keepsake/core"

// queryTerms builds the lexical term set from the semantic query plus the
// intent's expansion terms. Expansions widen lexical recall only; they
// never reach the vector query. Duplicates are collapsed.
func queryTerms(semanticQuery string, expansions []string) []string {
	seen := make(map[string]bool)
	var terms []string

	add := func(text string) {
		for _, term := range core.Tokenize(text) {
			if !seen[term] {
				seen[term] = true
				terms = append(terms, term)
			}
		}
	}

	add(semanticQuery)
	for _, expansion := range expansions {
		add(expansion)
	}
	return terms
}
