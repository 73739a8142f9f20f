// Package vector defines the embedding type shared by this module and the
// primitives that operate on it:
//   - Embedding, a fixed-length float32 feature vector
//   - distance functions (sum of squared differences, L2, cosine) and the
//     Metric registry that names them
//   - the error kinds raised on structural misuse (dimension mismatch,
//     empty input)
//   - Embedding encoding (BLOB) for SQLite storage
package vector
