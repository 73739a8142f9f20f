package engine

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// Open opens a SQLite database using the modernc.org/sqlite driver.
//
// For file-based databases, pass a path like "./samples.sqlite". For
// in-memory databases, pass ":memory:"; note that every pooled connection
// then sees its own database, so callers should SetMaxOpenConns(1).
func Open(dsn string) (*sql.DB, error) { return sql.Open("sqlite", dsn) }

// walPragmas are applied by the driver to every pooled connection.
const walPragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// OpenWAL opens a file database with WAL journaling and a busy timeout, the
// settings used by the sample store. The pragmas travel in the DSN so every
// connection in the pool gets them.
func OpenWAL(path string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := Open(path + sep + walPragmas)
	if err != nil {
		return nil, fmt.Errorf("engine: open %s: %w", path, err)
	}
	return db, nil
}
