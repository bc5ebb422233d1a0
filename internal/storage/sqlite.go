package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS documentation (
	key         TEXT PRIMARY KEY,
	value       TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS practice_sessions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	value       TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
`
// #endregion schema

// #region sqlite-struct
// SQLite stores both record kinds in a single SQLite file. The database is
// opened and migrated lazily on the first call, so constructing one never
// touches the disk.
type SQLite struct {
	path string
	open func() (*sql.DB, error)
	now  func() time.Time

	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// NewSQLite returns an adapter for the database at path. Use ":memory:" for
// a throwaway database.
func NewSQLite(path string) *SQLite {
	return &SQLite{
		path: path,
		open: func() (*sql.DB, error) { return sql.Open("sqlite", path) },
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// OpenExistingSQLite is NewSQLite for read-only callers: it fails with
// ErrStorageUnavailable when path does not exist instead of creating an
// empty database there.
func OpenExistingSQLite(path string) (*SQLite, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: database %s: %w", ErrStorageUnavailable, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: database %s is a directory", ErrStorageUnavailable, path)
	}
	return NewSQLite(path), nil
}

// NewSQLiteDB wraps an already opened database. The schema is still
// created on first use. Close closes db.
func NewSQLiteDB(db *sql.DB) *SQLite {
	return &SQLite{
		path: "(provided)",
		open: func() (*sql.DB, error) { return db, nil },
		now:  func() time.Time { return time.Now().UTC() },
	}
}
// #endregion sqlite-struct

// #region open
// conn returns the open database, creating it and its schema on first use.
// A failed open is not cached; the next call tries again.
func (s *SQLite) conn(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: adapter closed", ErrStorageUnavailable)
	}
	if s.db != nil {
		return s.db, nil
	}

	db, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("%w: open db: %w", ErrStorageUnavailable, err)
	}
	// One connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: pragma: %w", ErrStorageUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %w", ErrStorageUnavailable, err)
	}
	s.db = db
	return db, nil
}

// Close closes the underlying database connection if it was ever opened.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
// #endregion open

// #region get
// Get reads a single-slot value.
func (s *SQLite) Get(ctx context.Context, kind Kind, key string) ([]byte, error) {
	if !kind.slotted() {
		return nil, fmt.Errorf("get %s: %w", kind, ErrWrongKind)
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var value string
	err = db.QueryRowContext(ctx, `SELECT value FROM documentation WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s/%s: %w", ErrStorageUnavailable, kind, key, err)
	}
	return []byte(value), nil
}
// #endregion get

// #region put
// Put overwrites the whole value stored under key.
func (s *SQLite) Put(ctx context.Context, kind Kind, key string, value []byte) error {
	if !kind.slotted() {
		return fmt.Errorf("put %s: %w", kind, ErrWrongKind)
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO documentation (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), s.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: put %s/%s: %w", ErrWriteFailed, kind, key, err)
	}
	return nil
}
// #endregion put

// #region append
// Append adds a row to a collection and returns its generated id.
func (s *SQLite) Append(ctx context.Context, kind Kind, value []byte) (int64, error) {
	if !kind.collection() {
		return 0, fmt.Errorf("append %s: %w", kind, ErrWrongKind)
	}
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO practice_sessions (value, created_at) VALUES (?, ?)`,
		string(value), s.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: append %s: %w", ErrWriteFailed, kind, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: append %s: last id: %w", ErrWriteFailed, kind, err)
	}
	return id, nil
}
// #endregion append

// #region list
// List returns the newest rows of a collection first.
func (s *SQLite) List(ctx context.Context, kind Kind, limit int) ([]Row, error) {
	if !kind.collection() {
		return nil, fmt.Errorf("list %s: %w", kind, ErrWrongKind)
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, value, created_at FROM practice_sessions ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrStorageUnavailable, kind, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var value, createdStr string
		if err := rows.Scan(&r.ID, &value, &createdStr); err != nil {
			return nil, fmt.Errorf("%w: scan row: %w", ErrStorageUnavailable, err)
		}
		r.Value = []byte(value)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, r)
	}
	return out, rows.Err()
}
// #endregion list
