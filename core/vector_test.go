package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical unit vectors", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal vectors", []float32{1, 0, 0}, []float32{0, 1, 0}, 0.0},
		{"identical scaled vectors", []float32{2, 2, 0}, []float32{4, 4, 0}, 1.0},
		{"empty vectors", nil, nil, 0.0},
		{"dimension mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0.0},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 0, 0}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := []float32{0.3, 0.5, 0.1, 0.8}
	b := []float32{0.7, 0.2, 0.9, 0.4}
	assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
}

func TestMeanVector(t *testing.T) {
	t.Run("averages component-wise", func(t *testing.T) {
		got := MeanVector([][]float32{
			{1, 0, 3},
			{3, 2, 1},
		})
		assert.InDeltaSlice(t, []float32{2, 1, 2}, got, 1e-6)
	})

	t.Run("single vector is its own mean", func(t *testing.T) {
		got := MeanVector([][]float32{{0.5, 0.25}})
		assert.InDeltaSlice(t, []float32{0.5, 0.25}, got, 1e-6)
	})

	t.Run("skips empty and mismatched vectors", func(t *testing.T) {
		got := MeanVector([][]float32{
			{2, 4},
			nil,
			{1, 2, 3},
			{4, 8},
		})
		assert.InDeltaSlice(t, []float32{3, 6}, got, 1e-6)
	})

	t.Run("no vectors yields nil", func(t *testing.T) {
		assert.Nil(t, MeanVector(nil))
		assert.Nil(t, MeanVector([][]float32{nil, {}}))
	})
}

func TestNormalizeVector(t *testing.T) {
	t.Run("unit length after normalization", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		v := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})

	t.Run("empty vector unchanged", func(t *testing.T) {
		assert.Empty(t, NormalizeVector(nil))
	})
}
