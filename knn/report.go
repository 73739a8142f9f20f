package knn

import (
	"fmt"

	"github.com/viant/embedknn/vector"
)

// Report holds, for every label in the reference set, the ranking of the
// whole set against that label's first-occurring member.
type Report struct {
	// Labels lists the classes in order of first appearance.
	Labels []string
	// Representatives maps a label to the reference index of its
	// representative.
	Representatives map[string]int
	// Rankings maps a label to its representative's ranking.
	Rankings map[string]Ranking
}

// ReportIntraClass builds the intra-class distance report. It uses the same
// metric and ordering as Classify.
func ReportIntraClass(ref *ReferenceSet) (*Report, error) {
	if ref.Len() == 0 {
		return nil, fmt.Errorf("knn: report on empty reference set: %w", vector.ErrEmptyInput)
	}
	report := &Report{
		Representatives: make(map[string]int),
		Rankings:        make(map[string]Ranking),
	}
	for i, s := range ref.samples {
		if _, ok := report.Representatives[s.Label]; ok {
			continue
		}
		ranking, err := ref.Rank(s.Embedding)
		if err != nil {
			return nil, err
		}
		report.Labels = append(report.Labels, s.Label)
		report.Representatives[s.Label] = i
		report.Rankings[s.Label] = ranking
	}
	return report, nil
}

// Separated reports, per label, whether every same-class sample ranks
// strictly closer to the representative than every other-class sample.
func (r *Report) Separated() map[string]bool {
	out := make(map[string]bool, len(r.Labels))
	for _, label := range r.Labels {
		out[label] = separated(r.Rankings[label], label)
	}
	return out
}

func separated(ranking Ranking, label string) bool {
	maxSame := -1.0
	minOther := -1.0
	for _, n := range ranking {
		if n.Label == label {
			if n.Distance > maxSame {
				maxSame = n.Distance
			}
			continue
		}
		if minOther < 0 || n.Distance < minOther {
			minOther = n.Distance
		}
	}
	return minOther < 0 || maxSame < minOther
}
