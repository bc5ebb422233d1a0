package storage

import (
	"context"
	"errors"
	"time"
)

// #region kinds
// Kind names one of the two record families the trainer persists.
type Kind string

const (
	// KindDocumentation is a single-slot family: one value per key.
	KindDocumentation Kind = "documentation"
	// KindPracticeSessions is an append-only collection with generated ids.
	KindPracticeSessions Kind = "practice_sessions"
)

// CurrentKey is the fixed key of the live documentation draft.
const CurrentKey = "current"

func (k Kind) slotted() bool    { return k == KindDocumentation }
func (k Kind) collection() bool { return k == KindPracticeSessions }
// #endregion kinds

// #region errors
var (
	// ErrNotFound is returned by Get when nothing was ever stored under the key.
	ErrNotFound = errors.New("record not found")
	// ErrStorageUnavailable means the backing store could not be opened or read.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrWriteFailed means an individual put or append did not land.
	ErrWriteFailed = errors.New("storage write failed")
	// ErrWrongKind means the operation does not apply to the given kind.
	ErrWrongKind = errors.New("operation not supported for kind")
)
// #endregion errors

// #region adapter
// Row is one element of an append-only collection.
type Row struct {
	ID        int64
	Value     []byte
	CreatedAt time.Time
}

// Adapter is durable key/value storage for documentation drafts and
// practice sessions. Implementations must return ErrNotFound for absent
// data and must create whatever schema they need on first use.
type Adapter interface {
	Get(ctx context.Context, kind Kind, key string) ([]byte, error)
	Put(ctx context.Context, kind Kind, key string, value []byte) error
	Append(ctx context.Context, kind Kind, value []byte) (int64, error)
	// List returns up to limit rows, newest first. limit <= 0 means all.
	List(ctx context.Context, kind Kind, limit int) ([]Row, error)
	Close() error
}
// #endregion adapter
