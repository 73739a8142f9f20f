package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeEmbedding encodes an embedding into a BLOB: little-endian IEEE 754
// float32 values without a length prefix. The dimension is derived from the
// BLOB size on decode.
func EncodeEmbedding(vec Embedding) []byte {
	if len(vec) == 0 {
		return nil
	}
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// DecodeEmbedding decodes a BLOB produced by EncodeEmbedding.
func DecodeEmbedding(b []byte) (Embedding, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid embedding blob length %d (not multiple of 4)", len(b))
	}
	n := len(b) / 4
	vec := make(Embedding, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

// DecodeEmbeddingDim decodes a BLOB and checks that it holds exactly dim
// values.
func DecodeEmbeddingDim(b []byte, dim int) (Embedding, error) {
	vec, err := DecodeEmbedding(b)
	if err != nil {
		return nil, err
	}
	if len(vec) != dim {
		return nil, NewDimensionError(dim, len(vec))
	}
	return vec, nil
}
