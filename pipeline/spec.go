package pipeline

import (
	"fmt"
	"strings"
)

// StageSpec describes a stage in configuration files.
type StageSpec struct {
	Kind    string    `yaml:"kind"`
	Rows    int       `yaml:"rows,omitempty"`
	Cols    int       `yaml:"cols,omitempty"`
	Weights []float64 `yaml:"weights,omitempty"`
	Bias    []float64 `yaml:"bias,omitempty"`
	Value   float64   `yaml:"value,omitempty"`
}

// Spec describes a pipeline: its stages and how many of them run. Depth 0
// (or a negative depth) runs all stages.
type Spec struct {
	Stages []StageSpec `yaml:"stages,omitempty"`
	Depth  int         `yaml:"depth,omitempty"`
}

// Build constructs the pipeline described by the spec.
func (s Spec) Build() (*Pipeline, error) {
	p, err := FromSpecs(s.Stages)
	if err != nil {
		return nil, err
	}
	if s.Depth <= 0 {
		return p, nil
	}
	return p.Truncate(s.Depth)
}

// FromSpecs builds a stage from each spec.
func FromSpecs(specs []StageSpec) (*Pipeline, error) {
	stages := make([]Stage, 0, len(specs))
	for i, spec := range specs {
		stage, err := spec.stage()
		if err != nil {
			return nil, fmt.Errorf("pipeline: stage %d: %w", i, err)
		}
		stages = append(stages, stage)
	}
	return New(stages...), nil
}

func (s StageSpec) stage() (Stage, error) {
	switch strings.ToLower(s.Kind) {
	case "linear":
		return NewLinear(s.Rows, s.Cols, s.Weights, s.Bias)
	case "relu":
		return ReLU{}, nil
	case "zscore":
		return ZScore{}, nil
	case "invert":
		top := s.Value
		if top == 0 {
			top = 255
		}
		return Invert{Max: top}, nil
	case "scale":
		return Scale{Factor: s.Value}, nil
	}
	return nil, fmt.Errorf("unknown stage kind %q", s.Kind)
}
