package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	_ "modernc.org/sqlite"
)

// Options bound the connection pool. SQLite allows a single writer, so the
// pool stays small; busy_timeout turns writer contention into a bounded wait
// instead of an immediate SQLITE_BUSY.
type Options struct {
	Path         string
	MaxOpenConns int
	MaxIdleConns int
	BusyTimeout  time.Duration
	ConnIdleTime time.Duration
}

// Store is the explicit storage handle shared by the repositories. It is
// constructed once at boot and closed on shutdown.
type Store struct {
	db *sqlx.DB
}

func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if dir := filepath.Dir(opts.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := otelsqlx.Open("sqlite", opts.Path,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName(filepath.Base(opts.Path)),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnIdleTime)
	}

	busyMillis := int64(5000)
	if opts.BusyTimeout > 0 {
		busyMillis = opts.BusyTimeout.Milliseconds()
	}
	pragmas := fmt.Sprintf(
		"PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL; PRAGMA busy_timeout = %d;",
		busyMillis,
	)
	if _, err := db.Exec(pragmas); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}
