package knn

import (
	"fmt"
	"sort"

	"github.com/viant/embedknn/vector"
)

// Neighbor is one entry of a Ranking: a reference sample and its distance
// to the query.
type Neighbor struct {
	Index    int
	Label    string
	Distance float64
}

// Ranking lists reference samples in non-decreasing order of distance.
type Ranking []Neighbor

// Predicted returns the label of the closest sample, or "" for an empty
// ranking.
func (r Ranking) Predicted() string {
	if len(r) == 0 {
		return ""
	}
	return r[0].Label
}

// Top returns the first k entries; all entries when k <= 0 or k > len(r).
func (r Ranking) Top(k int) Ranking {
	if k <= 0 || k > len(r) {
		return r
	}
	return r[:k]
}

// Labels returns the labels in ranking order.
func (r Ranking) Labels() []string {
	out := make([]string, len(r))
	for i, n := range r {
		out[i] = n.Label
	}
	return out
}

// Rank computes the distance from query to every reference sample and
// returns them sorted ascending. Equal distances keep reference order.
func (r *ReferenceSet) Rank(query vector.Embedding) (Ranking, error) {
	if r.Len() == 0 {
		return nil, fmt.Errorf("knn: rank against empty reference set: %w", vector.ErrEmptyInput)
	}
	if len(query) != r.dim {
		return nil, fmt.Errorf("knn: query: %w", vector.NewDimensionError(r.dim, len(query)))
	}
	ranking := make(Ranking, len(r.samples))
	for i, s := range r.samples {
		d, err := r.distance(query, s.Embedding)
		if err != nil {
			return nil, fmt.Errorf("knn: distance to sample %d: %w", i, err)
		}
		ranking[i] = Neighbor{Index: i, Label: s.Label, Distance: d}
	}
	sort.SliceStable(ranking, func(a, b int) bool { return ranking[a].Distance < ranking[b].Distance })
	return ranking, nil
}

// Classify ranks query against ref and returns the label of the closest
// sample together with the full ranking.
func Classify(query vector.Embedding, ref *ReferenceSet) (string, Ranking, error) {
	ranking, err := ref.Rank(query)
	if err != nil {
		return "", nil, err
	}
	return ranking.Predicted(), ranking, nil
}
