package knn

// Vote returns the majority label among the k nearest entries of a ranking.
// A tie in count goes to the label with the smaller summed distance, then to
// the label that appears first in the ranking. k <= 1 is plain nearest
// neighbour; k larger than the ranking uses all entries.
func Vote(ranking Ranking, k int) string {
	if len(ranking) == 0 {
		return ""
	}
	if k <= 1 {
		return ranking[0].Label
	}
	top := ranking.Top(k)
	type tally struct {
		count int
		sum   float64
		first int
	}
	tallies := make(map[string]*tally)
	for i, n := range top {
		t, ok := tallies[n.Label]
		if !ok {
			t = &tally{first: i}
			tallies[n.Label] = t
		}
		t.count++
		t.sum += n.Distance
	}
	var best string
	var bt *tally
	for label, t := range tallies {
		switch {
		case bt == nil,
			t.count > bt.count,
			t.count == bt.count && t.sum < bt.sum,
			t.count == bt.count && t.sum == bt.sum && t.first < bt.first:
			best, bt = label, t
		}
	}
	return best
}
