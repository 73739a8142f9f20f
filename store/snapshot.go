package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/viant/embedknn/knn"
	"go.uber.org/zap"
)

// SaveSnapshot stores the binary form of ref under dataset, replacing any
// earlier snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, dataset string, ref *knn.ReferenceSet) error {
	data, err := ref.MarshalBinary()
	if err != nil {
		return fmt.Errorf("store: snapshot %q: %w", dataset, err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO reference_storage(dataset_id, snapshot) VALUES(?, ?)`, dataset, data); err != nil {
		return fmt.Errorf("store: snapshot %q: %w", dataset, err)
	}
	s.logger.Info("snapshot saved", zap.String("dataset", dataset), zap.Int("samples", ref.Len()), zap.Int("bytes", len(data)))
	return nil
}

// LoadSnapshot restores the reference set saved for dataset.
func (s *Store) LoadSnapshot(ctx context.Context, dataset string) (*knn.ReferenceSet, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM reference_storage WHERE dataset_id = ?`, dataset).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrSnapshotNotFound, dataset)
	}
	if err != nil {
		return nil, err
	}
	ref := &knn.ReferenceSet{}
	if err := ref.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("store: snapshot %q: %w", dataset, err)
	}
	return ref, nil
}

// Reindex rebuilds the reference set of dataset from its samples and saves
// it as the dataset's snapshot. It returns the number of samples indexed.
func (s *Store) Reindex(ctx context.Context, dataset string, opts ...knn.Option) (int, error) {
	ref, err := s.ReferenceSet(ctx, dataset, opts...)
	if err != nil {
		return 0, err
	}
	if err := s.SaveSnapshot(ctx, dataset, ref); err != nil {
		return 0, err
	}
	return ref.Len(), nil
}
