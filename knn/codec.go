package knn

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/viant/embedknn/vector"
)

// MarshalBinary stores: dim(uint32), n(uint32), metricLen(uint32), metric
// bytes, then for each sample: labelLen(uint32), label bytes,
// vec(float32[dim]). All integers are little-endian.
func (r *ReferenceSet) MarshalBinary() ([]byte, error) {
	if r.Len() == 0 {
		return nil, vector.ErrEmptyInput
	}
	metric := r.metric.String()
	size := 12 + len(metric)
	for _, s := range r.samples {
		size += 4 + len(s.Label) + 4*r.dim
	}
	out := make([]byte, 0, size)
	putU32 := func(v uint32) { out = binary.LittleEndian.AppendUint32(out, v) }
	putU32(uint32(r.dim))
	putU32(uint32(len(r.samples)))
	putU32(uint32(len(metric)))
	out = append(out, metric...)
	for _, s := range r.samples {
		putU32(uint32(len(s.Label)))
		out = append(out, s.Label...)
		for _, v := range s.Embedding {
			putU32(math.Float32bits(v))
		}
	}
	return out, nil
}

// UnmarshalBinary restores the reference set from bytes and re-validates it.
func (r *ReferenceSet) UnmarshalBinary(data []byte) error {
	if len(data) < 12 {
		return errors.New("knn: invalid snapshot")
	}
	off := 0
	getU32 := func() (uint32, bool) {
		if off+4 > len(data) {
			return 0, false
		}
		v := binary.LittleEndian.Uint32(data[off : off+4])
		off += 4
		return v, true
	}
	dim32, _ := getU32()
	n32, _ := getU32()
	metricLen, _ := getU32()
	dim, n := int(dim32), int(n32)
	if off+int(metricLen) > len(data) {
		return errors.New("knn: truncated metric")
	}
	metric := vector.Metric(data[off : off+int(metricLen)])
	off += int(metricLen)
	// each sample needs at least its label length and vector
	if n > (len(data)-off)/(4+4*dim) {
		return errors.New("knn: truncated snapshot")
	}
	samples := make([]Sample, n)
	for idx := 0; idx < n; idx++ {
		labelLen, ok := getU32()
		if !ok {
			return errors.New("knn: truncated")
		}
		if off+int(labelLen) > len(data) {
			return errors.New("knn: truncated label")
		}
		label := string(data[off : off+int(labelLen)])
		off += int(labelLen)
		vec := make(vector.Embedding, dim)
		for j := 0; j < dim; j++ {
			bits, ok := getU32()
			if !ok {
				return errors.New("knn: truncated vec")
			}
			vec[j] = math.Float32frombits(bits)
		}
		samples[idx] = Sample{Embedding: vec, Label: label}
	}
	if off != len(data) {
		return errors.New("knn: trailing bytes in snapshot")
	}
	built, err := Build(samples, WithMetric(metric))
	if err != nil {
		return err
	}
	*r = *built
	return nil
}
