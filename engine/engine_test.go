package engine

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// TestOpenInMemory verifies that we can open an in-memory SQLite database
// using the modernc.org/sqlite driver and execute a trivial statement.
func TestOpenInMemory(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("CREATE TABLE t(x INTEGER)"); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO t(x) VALUES (1),(2),(3)"); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}
}

// TestOpenWAL_EveryConnection holds two pooled connections at once and checks
// that both carry the WAL and busy timeout settings.
func TestOpenWAL_EveryConnection(t *testing.T) {
	ctx := context.Background()
	db, err := OpenWAL(filepath.Join(t.TempDir(), "wal.sqlite"))
	if err != nil {
		t.Fatalf("OpenWAL failed: %v", err)
	}
	defer db.Close()

	first, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn failed: %v", err)
	}
	defer first.Close()
	second, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn failed: %v", err)
	}
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var timeout int
		if err := conn.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&timeout); err != nil {
			t.Fatalf("conn %d: PRAGMA busy_timeout failed: %v", i, err)
		}
		if timeout != 5000 {
			t.Fatalf("conn %d: busy_timeout = %d, want 5000", i, timeout)
		}
		var mode string
		if err := conn.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode); err != nil {
			t.Fatalf("conn %d: PRAGMA journal_mode failed: %v", i, err)
		}
		if mode != "wal" {
			t.Fatalf("conn %d: journal_mode = %q, want wal", i, mode)
		}
	}
}
