package vector

import "math"

// Embedding is a fixed-length feature vector produced by an upstream
// feature extractor. Embeddings are treated as immutable once produced.
type Embedding []float32

// Dim returns the dimensionality of the embedding.
func (e Embedding) Dim() int { return len(e) }

// Clone returns a copy of the embedding.
func (e Embedding) Clone() Embedding {
	if e == nil {
		return nil
	}
	return append(Embedding(nil), e...)
}

// Equal reports whether both embeddings have the same length and elements.
func (e Embedding) Equal(o Embedding) bool {
	if len(e) != len(o) {
		return false
	}
	for i := range e {
		if e[i] != o[i] {
			return false
		}
	}
	return true
}

// SquaredDistance computes the sum of squared elementwise differences
// (squared Euclidean distance) between two vectors. It returns an error
// wrapping ErrDimensionMismatch if the vectors have different lengths.
func SquaredDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, NewDimensionError(len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0, ErrNonFinite
	}
	return sum, nil
}
