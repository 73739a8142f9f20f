package store

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS samples (
    id TEXT PRIMARY KEY,
    dataset_id TEXT NOT NULL,
    label TEXT NOT NULL,
    embedding BLOB
);
CREATE INDEX IF NOT EXISTS samples_dataset ON samples(dataset_id);
CREATE TABLE IF NOT EXISTS reference_storage (
    dataset_id TEXT PRIMARY KEY,
    snapshot BLOB
);
`

// EnsureSchema creates the samples and reference_storage tables if they do
// not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
