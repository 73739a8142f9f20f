package knn

import (
	"context"
	"fmt"
	"runtime"

	"github.com/viant/embedknn/vector"
	"golang.org/x/sync/errgroup"
)

// Result is the classification of a single query.
type Result struct {
	Label   string
	Ranking Ranking
}

// ClassifyAll classifies every query against ref using up to workers
// goroutines (GOMAXPROCS when workers <= 0). Results are aligned with
// queries. The first failure cancels the remaining work and is returned.
func ClassifyAll(ctx context.Context, queries []vector.Embedding, ref *ReferenceSet, workers int) ([]Result, error) {
	if ref.Len() == 0 {
		return nil, fmt.Errorf("knn: classify against empty reference set: %w", vector.ErrEmptyInput)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, q := range queries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			label, ranking, err := Classify(q, ref)
			if err != nil {
				return fmt.Errorf("knn: query %d: %w", i, err)
			}
			results[i] = Result{Label: label, Ranking: ranking}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
