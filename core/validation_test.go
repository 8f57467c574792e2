package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateItem(t *testing.T) {
	t.Run("valid item", func(t *testing.T) {
		item := &Item{Kind: KindText, CreatedAt: time.Now().UTC()}
		assert.NoError(t, ValidateItem(item))
	})

	t.Run("nil item", func(t *testing.T) {
		err := ValidateItem(nil)
		assert.ErrorIs(t, err, ErrInvalidItem)
	})

	t.Run("unknown kind", func(t *testing.T) {
		err := ValidateItem(&Item{Kind: ItemKind(42)})
		assert.ErrorIs(t, err, ErrInvalidKind)
	})
}

func TestValidateFragment(t *testing.T) {
	t.Run("valid fragment", func(t *testing.T) {
		assert.NoError(t, ValidateFragment(&Fragment{ItemId: 1, Seq: 0, Body: "chunk"}))
	})

	t.Run("empty body", func(t *testing.T) {
		err := ValidateFragment(&Fragment{ItemId: 1})
		assert.ErrorIs(t, err, ErrEmptyBody)
	})

	t.Run("negative sequence", func(t *testing.T) {
		err := ValidateFragment(&Fragment{ItemId: 1, Seq: -1, Body: "chunk"})
		assert.ErrorIs(t, err, ErrInvalidFragment)
	})
}

func TestValidateConnection(t *testing.T) {
	t.Run("valid connection", func(t *testing.T) {
		assert.NoError(t, ValidateConnection(&Connection{A: 1, B: 2, Score: 0.8}))
	})

	t.Run("self connection", func(t *testing.T) {
		err := ValidateConnection(&Connection{A: 3, B: 3, Score: 0.8})
		assert.ErrorIs(t, err, ErrSelfConnection)
	})

	t.Run("score out of range", func(t *testing.T) {
		err := ValidateConnection(&Connection{A: 1, B: 2, Score: 1.2})
		assert.ErrorIs(t, err, ErrInvalidScore)
	})
}
