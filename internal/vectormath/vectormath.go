// Package vectormath provides the small set of vector operations used for
// embedding comparison: dot products, L2 normalisation, mean pooling and
// cosine distance.
package vectormath

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is added to the norm before dividing so zero vectors stay finite.
const Epsilon = 1e-12

// ErrDimensionMismatch is returned when two vectors differ in length.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Dot returns the dot product of a and b accumulated in float64.
// For unit vectors this equals their cosine similarity.
func Dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-length copy of v. The input is not modified.
func Normalize(v []float32) []float32 {
	n := Norm(v) + Epsilon
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

// NormalizeAll normalises every vector in vs.
func NormalizeAll(vs [][]float32) [][]float32 {
	out := make([][]float32, len(vs))
	for i, v := range vs {
		out[i] = Normalize(v)
	}
	return out
}

// Mean returns the element-wise mean of vs. All vectors must share a length.
func Mean(vs [][]float32) ([]float32, error) {
	if len(vs) == 0 {
		return nil, errors.New("mean of zero vectors")
	}
	dim := len(vs[0])
	sum := make([]float64, dim)
	for i, v := range vs {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
		for j, x := range v {
			sum[j] += float64(x)
		}
	}
	out := make([]float32, dim)
	for j := range sum {
		out[j] = float32(sum[j] / float64(len(vs)))
	}
	return out, nil
}

// CosineDistance returns 1 - cos(a, b), clamped to [0, 2].
// A zero vector is treated as orthogonal to everything (distance 1).
func CosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, errors.New("empty vectors")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1, nil
	}

	distance := 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
	switch {
	case distance < 0:
		distance = 0
	case distance > 2:
		distance = 2
	}
	return distance, nil
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
