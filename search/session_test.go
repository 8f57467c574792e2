package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionMultiplierBounds(t *testing.T) {
	session := []float32{0, 1, 0, 0}

	t.Run("no session vector is neutral", func(t *testing.T) {
		assert.Equal(t, float32(1.0), sessionMultiplier(nil, []float32{1, 0, 0, 0}))
	})

	t.Run("no metadata vector is neutral", func(t *testing.T) {
		assert.Equal(t, float32(1.0), sessionMultiplier(session, nil))
	})

	t.Run("below floor is neutral", func(t *testing.T) {
		// Orthogonal: similarity 0
		assert.Equal(t, float32(1.0), sessionMultiplier(session, []float32{1, 0, 0, 0}))
	})

	t.Run("perfect alignment hits the ceiling", func(t *testing.T) {
		assert.InDelta(t, SessionBoostCeiling, float64(sessionMultiplier(session, session)), 0.0001)
	})

	t.Run("midpoint is linear", func(t *testing.T) {
		// cos = 0.7, halfway between floor 0.4 and 1.0
		meta := []float32{0, 0.7, 0.71414284, 0}
		m := sessionMultiplier(session, meta)
		assert.InDelta(t, 1.10, float64(m), 0.001)
	})

	t.Run("never penalizes, never exceeds ceiling", func(t *testing.T) {
		vectors := [][]float32{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0.5, 0.5, 0.5, 0.5},
			{0, -1, 0, 0},
		}
		for _, meta := range vectors {
			m := sessionMultiplier(session, meta)
			assert.GreaterOrEqual(t, m, float32(1.0))
			assert.LessOrEqual(t, m, float32(SessionBoostCeiling))
		}
	})
}
