package pipeline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Stage is a single transformation of a feature vector.
type Stage interface {
	Name() string
	Apply(in []float64) ([]float64, error)
}

// Linear computes W·x + b.
type Linear struct {
	w    *mat.Dense
	bias []float64
}

// NewLinear creates a dense layer with rows outputs and cols inputs. weights
// is row-major and must hold rows*cols values; bias is optional and must
// otherwise hold rows values.
func NewLinear(rows, cols int, weights, bias []float64) (*Linear, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("pipeline: linear: invalid shape %dx%d", rows, cols)
	}
	if len(weights) != rows*cols {
		return nil, fmt.Errorf("pipeline: linear: %d weights for shape %dx%d", len(weights), rows, cols)
	}
	if len(bias) != 0 && len(bias) != rows {
		return nil, fmt.Errorf("pipeline: linear: %d bias values for %d outputs", len(bias), rows)
	}
	w := mat.NewDense(rows, cols, append([]float64(nil), weights...))
	return &Linear{w: w, bias: append([]float64(nil), bias...)}, nil
}

// Name returns "linear".
func (l *Linear) Name() string { return "linear" }

// Apply multiplies the input by the weight matrix and adds the bias.
func (l *Linear) Apply(in []float64) ([]float64, error) {
	rows, cols := l.w.Dims()
	if len(in) != cols {
		return nil, fmt.Errorf("pipeline: linear: input dim %d, want %d", len(in), cols)
	}
	var out mat.VecDense
	out.MulVec(l.w, mat.NewVecDense(cols, append([]float64(nil), in...)))
	res := make([]float64, rows)
	for i := 0; i < rows; i++ {
		res[i] = out.AtVec(i)
		if len(l.bias) > 0 {
			res[i] += l.bias[i]
		}
	}
	return res, nil
}

// ReLU clamps negative values to zero.
type ReLU struct{}

func (ReLU) Name() string { return "relu" }

func (ReLU) Apply(in []float64) ([]float64, error) {
	out := make([]float64, len(in))
	for i, v := range in {
		if v > 0 {
			out[i] = v
		}
	}
	return out, nil
}

// ZScore standardizes a vector by its own mean and population standard
// deviation. A constant vector maps to zeros.
type ZScore struct{}

func (ZScore) Name() string { return "zscore" }

func (ZScore) Apply(in []float64) ([]float64, error) {
	out := make([]float64, len(in))
	if len(in) == 0 {
		return out, nil
	}
	var sum float64
	for _, v := range in {
		sum += v
	}
	mean := sum / float64(len(in))
	var variance float64
	for _, v := range in {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(in)))
	if std == 0 {
		return out, nil
	}
	for i, v := range in {
		out[i] = (v - mean) / std
	}
	return out, nil
}

// Invert maps x to Max-x, e.g. 255-x turns dark-on-light 8-bit intensities
// into light-on-dark.
type Invert struct {
	Max float64
}

func (Invert) Name() string { return "invert" }

func (s Invert) Apply(in []float64) ([]float64, error) {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = s.Max - v
	}
	return out, nil
}

// Scale multiplies every value by Factor.
type Scale struct {
	Factor float64
}

func (Scale) Name() string { return "scale" }

func (s Scale) Apply(in []float64) ([]float64, error) {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = v * s.Factor
	}
	return out, nil
}
