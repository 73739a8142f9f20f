package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/viant/embedknn/vector"
)

// ErrDepth is returned when a truncation depth is out of range.
var ErrDepth = errors.New("pipeline: depth out of range")

// Pipeline applies an ordered list of stages. The zero value is the
// identity.
type Pipeline struct {
	stages []Stage
}

// New creates a pipeline running all stages in order.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: append([]Stage(nil), stages...)}
}

// Depth returns the number of stages that run.
func (p *Pipeline) Depth() int {
	if p == nil {
		return 0
	}
	return len(p.stages)
}

// Names lists the stage names in order.
func (p *Pipeline) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.stages))
	for i, s := range p.stages {
		out[i] = s.Name()
	}
	return out
}

// Truncate returns a pipeline running only the first depth stages.
func (p *Pipeline) Truncate(depth int) (*Pipeline, error) {
	if depth < 0 || depth > p.Depth() {
		return nil, fmt.Errorf("%w: %d (have %d stages)", ErrDepth, depth, p.Depth())
	}
	if depth == 0 {
		return New(), nil
	}
	return New(p.stages[:depth]...), nil
}

// Apply runs every stage over in.
func (p *Pipeline) Apply(in []float64) ([]float64, error) {
	cur := in
	if p != nil {
		for i, s := range p.stages {
			out, err := s.Apply(cur)
			if err != nil {
				return nil, fmt.Errorf("pipeline: stage %d (%s): %w", i, s.Name(), err)
			}
			cur = out
		}
	}
	return cur, nil
}

// Extract runs the pipeline and converts the result to an embedding.
func (p *Pipeline) Extract(in []float64) (vector.Embedding, error) {
	out, err := p.Apply(in)
	if err != nil {
		return nil, err
	}
	emb := make(vector.Embedding, len(out))
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("pipeline: non-finite output at %d", i)
		}
		emb[i] = float32(v)
	}
	return emb, nil
}

// ExtractAll runs Extract over every input.
func (p *Pipeline) ExtractAll(inputs [][]float64) ([]vector.Embedding, error) {
	out := make([]vector.Embedding, len(inputs))
	for i, in := range inputs {
		emb, err := p.Extract(in)
		if err != nil {
			return nil, fmt.Errorf("pipeline: input %d: %w", i, err)
		}
		out[i] = emb
	}
	return out, nil
}
