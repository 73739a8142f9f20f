package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when embeddings of unequal length are
	// compared. Vectors are never truncated or padded to make them fit.
	ErrDimensionMismatch = errors.New("vector: dimension mismatch")

	// ErrEmptyInput is returned when an operation needs at least one vector
	// (or a non-empty vector) and got none.
	ErrEmptyInput = errors.New("vector: empty input")

	// ErrUnknownMetric is returned when a Metric name does not resolve.
	ErrUnknownMetric = errors.New("vector: unknown metric")

	// ErrNonFinite is returned when a distance evaluates to NaN or Inf.
	ErrNonFinite = errors.New("vector: non-finite distance")
)

// DimensionError describes a dimension mismatch. Index is the position of
// the offending vector within a collection, or -1 when the mismatch is
// between two standalone vectors.
type DimensionError struct {
	Want  int
	Got   int
	Index int
}

func (e *DimensionError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("vector: dimension mismatch at %d: want %d, got %d", e.Index, e.Want, e.Got)
	}
	return fmt.Sprintf("vector: dimension mismatch: %d vs %d", e.Want, e.Got)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionError creates a DimensionError for two standalone vectors.
func NewDimensionError(want, got int) *DimensionError {
	return &DimensionError{Want: want, Got: got, Index: -1}
}
