package dataset

import (
	"fmt"

	"github.com/viant/embedknn/knn"
	"github.com/viant/embedknn/pipeline"
)

// Record is a raw feature vector with its category.
type Record struct {
	Features []float64
	Code     int
	Label    string
}

// Records is an ordered list of records.
type Records []Record

// Samples runs every record through p and pairs the embeddings with the
// record labels. A nil pipeline keeps the raw features.
func (r Records) Samples(p *pipeline.Pipeline) ([]knn.Sample, error) {
	out := make([]knn.Sample, len(r))
	for i, rec := range r {
		emb, err := p.Extract(rec.Features)
		if err != nil {
			return nil, fmt.Errorf("dataset: record %d: %w", i, err)
		}
		out[i] = knn.Sample{Embedding: emb, Label: rec.Label}
	}
	return out, nil
}

// FromSamples converts stored samples back into records, assigning category
// codes through cats.
func FromSamples(samples []knn.Sample, cats *Categories) Records {
	out := make(Records, len(samples))
	for i, s := range samples {
		features := make([]float64, len(s.Embedding))
		for j, v := range s.Embedding {
			features[j] = float64(v)
		}
		out[i] = Record{Features: features, Code: cats.Code(s.Label), Label: s.Label}
	}
	return out
}
