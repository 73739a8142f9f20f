package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/viant/embedknn/knn"
	"github.com/viant/embedknn/vector"
	"go.uber.org/zap"
)

// ErrSnapshotNotFound is returned by LoadSnapshot when no snapshot was saved
// for a dataset.
var ErrSnapshotNotFound = errors.New("store: snapshot not found")

// Store is a SQLite-backed bank of labeled samples.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New creates a Store and ensures its schema exists. A nil logger disables
// logging.
func New(ctx context.Context, db *sql.DB, logger *zap.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("store: ensure schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// AddSamples appends samples to dataset in one transaction and returns the
// generated ids in input order.
func (s *Store) AddSamples(ctx context.Context, dataset string, samples []knn.Sample) ([]string, error) {
	if dataset == "" {
		return nil, fmt.Errorf("store: AddSamples called with empty dataset")
	}
	if len(samples) == 0 {
		return nil, nil
	}
	dim, err := s.dim(ctx, dataset)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		dim = len(samples[0].Embedding)
	}
	for i, sm := range samples {
		if len(sm.Embedding) == 0 {
			return nil, fmt.Errorf("store: sample %d has no embedding: %w", i, vector.ErrEmptyInput)
		}
		if len(sm.Embedding) != dim {
			return nil, &vector.DimensionError{Want: dim, Got: len(sm.Embedding), Index: i}
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO samples(id, dataset_id, label, embedding) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]string, 0, len(samples))
	for _, sm := range samples {
		id := uuid.NewString()
		if _, err := stmt.ExecContext(ctx, id, dataset, sm.Label, vector.EncodeEmbedding(sm.Embedding)); err != nil {
			return nil, fmt.Errorf("store: insert sample: %w", err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.logger.Debug("samples added", zap.String("dataset", dataset), zap.Int("count", len(ids)))
	return ids, nil
}

// dim returns the embedding dimensionality of dataset, or 0 when it holds
// no samples.
func (s *Store) dim(ctx context.Context, dataset string) (int, error) {
	var size sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT length(embedding) FROM samples WHERE dataset_id = ? ORDER BY rowid LIMIT 1`, dataset).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(size.Int64) / 4, nil
}

// Count returns the number of samples stored for dataset.
func (s *Store) Count(ctx context.Context, dataset string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples WHERE dataset_id = ?`, dataset).Scan(&n)
	return n, err
}

// Datasets lists the dataset ids that hold samples, sorted by name.
func (s *Store) Datasets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT dataset_id FROM samples ORDER BY dataset_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ReferenceSet loads the samples of dataset in insertion order and builds a
// reference set from them.
func (s *Store) ReferenceSet(ctx context.Context, dataset string, opts ...knn.Option) (*knn.ReferenceSet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, embedding FROM samples WHERE dataset_id = ? ORDER BY rowid`, dataset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var samples []knn.Sample
	for rows.Next() {
		var label string
		var blob []byte
		if err := rows.Scan(&label, &blob); err != nil {
			return nil, err
		}
		var emb vector.Embedding
		if len(samples) == 0 {
			emb, err = vector.DecodeEmbedding(blob)
		} else {
			emb, err = vector.DecodeEmbeddingDim(blob, len(samples[0].Embedding))
		}
		if err != nil {
			return nil, fmt.Errorf("store: dataset %q sample %d: %w", dataset, len(samples), err)
		}
		samples = append(samples, knn.Sample{Embedding: emb, Label: label})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	ref, err := knn.Build(samples, opts...)
	if err != nil {
		return nil, fmt.Errorf("store: dataset %q: %w", dataset, err)
	}
	return ref, nil
}

// Nearest ranks the samples of dataset by squared distance to query inside
// SQL and returns up to k entries; k <= 0 returns all. Indexes are positions
// in insertion order, ties are broken by that position, so the result equals
// the prefix of knn.Classify over ReferenceSet(ctx, dataset).
func (s *Store) Nearest(ctx context.Context, dataset string, query vector.Embedding, k int) (knn.Ranking, error) {
	dim, err := s.dim(ctx, dataset)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		return nil, fmt.Errorf("store: dataset %q: %w", dataset, vector.ErrEmptyInput)
	}
	if dim != len(query) {
		return nil, vector.NewDimensionError(dim, len(query))
	}
	if k <= 0 {
		k = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT idx, label, d FROM (
    SELECT ROW_NUMBER() OVER (ORDER BY rowid) - 1 AS idx, label, vec_ssd(embedding, ?) AS d
    FROM samples WHERE dataset_id = ?
) ORDER BY d, idx LIMIT ?`, vector.EncodeEmbedding(query), dataset, k)
	if err != nil {
		return nil, fmt.Errorf("store: nearest: %w", err)
	}
	defer rows.Close()
	var out knn.Ranking
	for rows.Next() {
		var n knn.Neighbor
		if err := rows.Scan(&n.Index, &n.Label, &n.Distance); err != nil {
			return nil, fmt.Errorf("store: nearest: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: nearest: %w", err)
	}
	return out, nil
}

// Remove deletes the samples and snapshot of dataset.
func (s *Store) Remove(ctx context.Context, dataset string) error {
	if dataset == "" {
		return fmt.Errorf("store: Remove called with empty dataset")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM samples WHERE dataset_id = ?`, dataset); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reference_storage WHERE dataset_id = ?`, dataset); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info("dataset removed", zap.String("dataset", dataset))
	return nil
}
