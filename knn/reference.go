package knn

import (
	"fmt"

	"github.com/viant/embedknn/vector"
)

// Sample is a labeled embedding.
type Sample struct {
	Embedding vector.Embedding
	Label     string
}

// ReferenceSet is an ordered, read-only collection of labeled embeddings
// sharing one dimensionality.
type ReferenceSet struct {
	samples  []Sample
	dim      int
	metric   vector.Metric
	distance vector.DistanceFunc
}

// Option configures Build.
type Option func(*options)

type options struct {
	metric vector.Metric
}

// WithMetric selects the distance metric; the default is vector.MetricSSD.
func WithMetric(m vector.Metric) Option {
	return func(o *options) { o.metric = m }
}

// Build creates a ReferenceSet from samples, preserving their order. No
// deduplication or rebalancing is applied. It fails with vector.ErrEmptyInput
// for zero samples or zero-length embeddings, and with
// vector.ErrDimensionMismatch when the samples disagree on dimensionality.
func Build(samples []Sample, opts ...Option) (*ReferenceSet, error) {
	o := options{metric: vector.MetricSSD}
	for _, opt := range opts {
		opt(&o)
	}
	fn, err := o.metric.Func()
	if err != nil {
		return nil, fmt.Errorf("knn: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("knn: build reference set: %w", vector.ErrEmptyInput)
	}
	dim := len(samples[0].Embedding)
	if dim == 0 {
		return nil, fmt.Errorf("knn: build reference set: zero-length embedding: %w", vector.ErrEmptyInput)
	}
	copied := make([]Sample, len(samples))
	for i, s := range samples {
		if len(s.Embedding) != dim {
			return nil, &vector.DimensionError{Want: dim, Got: len(s.Embedding), Index: i}
		}
		copied[i] = Sample{Embedding: s.Embedding.Clone(), Label: s.Label}
	}
	return &ReferenceSet{samples: copied, dim: dim, metric: o.metric, distance: fn}, nil
}

// Len returns the number of samples.
func (r *ReferenceSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.samples)
}

// Dim returns the shared embedding dimensionality.
func (r *ReferenceSet) Dim() int {
	if r == nil {
		return 0
	}
	return r.dim
}

// Metric returns the distance metric used for ranking.
func (r *ReferenceSet) Metric() vector.Metric { return r.metric }

// Sample returns the sample at index i. The embedding must not be modified.
func (r *ReferenceSet) Sample(i int) Sample { return r.samples[i] }

// Samples returns a copy of the samples in reference order.
func (r *ReferenceSet) Samples() []Sample {
	if r == nil {
		return nil
	}
	out := make([]Sample, len(r.samples))
	for i, s := range r.samples {
		out[i] = Sample{Embedding: s.Embedding.Clone(), Label: s.Label}
	}
	return out
}

// Labels returns the distinct labels in order of first appearance.
func (r *ReferenceSet) Labels() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, s := range r.samples {
		if !seen[s.Label] {
			seen[s.Label] = true
			out = append(out, s.Label)
		}
	}
	return out
}
