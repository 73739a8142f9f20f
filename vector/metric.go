package vector

import (
	"fmt"
	"math"
	"strings"

	"github.com/viant/vec/search"
)

// Metric names a supported distance function. Lower values always mean
// closer.
type Metric string

const (
	// MetricSSD is the sum of squared differences. It is the default.
	MetricSSD Metric = "ssd"
	// MetricL2 is the Euclidean distance.
	MetricL2 Metric = "l2"
	// MetricCosine is 1 - cosine similarity.
	MetricCosine Metric = "cosine"
)

// DistanceFunc computes a non-negative distance between two vectors of equal
// length.
type DistanceFunc func(a, b []float32) (float64, error)

// ParseMetric resolves a metric name; aliases "euclidean" and "cos" are
// accepted and an empty name selects MetricSSD.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ssd", "sqeuclidean":
		return MetricSSD, nil
	case "l2", "euclidean":
		return MetricL2, nil
	case "cos", "cosine":
		return MetricCosine, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, name)
}

// Func resolves the callable distance implementation.
func (m Metric) Func() (DistanceFunc, error) {
	switch m {
	case MetricSSD, "":
		return SquaredDistance, nil
	case MetricL2:
		return euclidean, nil
	case MetricCosine:
		return cosineDistance, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, string(m))
}

// String returns the metric name, defaulting to ssd.
func (m Metric) String() string {
	if m == "" {
		return string(MetricSSD)
	}
	return string(m)
}

func euclidean(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, NewDimensionError(len(a), len(b))
	}
	d := float64(search.Float32s(a).EuclideanDistance(b))
	return finite(d)
}

func cosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, NewDimensionError(len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vector: cosine distance on empty vectors: %w", ErrEmptyInput)
	}
	va := search.Float32s(a)
	ma := va.Magnitude()
	mb := search.Float32s(b).Magnitude()
	if ma == 0 || mb == 0 {
		return 0, fmt.Errorf("vector: cosine distance with zero-magnitude vector")
	}
	d := float64(va.CosineDistance(b))
	if d < 0 {
		d = 0
	}
	return finite(d)
}

func finite(d float64) (float64, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, ErrNonFinite
	}
	return d, nil
}
