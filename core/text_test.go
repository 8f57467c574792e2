package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	t.Run("lowercases and splits on punctuation", func(t *testing.T) {
		terms := Tokenize("Hello, World! It's 2026.")
		assert.Equal(t, []string{"hello", "world", "it", "s", "2026"}, terms)
	})

	t.Run("keeps digits inside terms", func(t *testing.T) {
		terms := Tokenize("badger4 db")
		assert.Equal(t, []string{"badger4", "db"}, terms)
	})

	t.Run("handles unicode letters", func(t *testing.T) {
		terms := Tokenize("café naïve")
		assert.Equal(t, []string{"café", "naïve"}, terms)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Tokenize(""))
		assert.Empty(t, Tokenize("  \t\n!!! "))
	})
}
