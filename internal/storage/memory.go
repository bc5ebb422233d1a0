package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// #region memory-struct
// Op records one call that reached a Memory adapter, in arrival order.
type Op struct {
	Name  string // "get" | "put" | "append" | "list"
	Kind  Kind
	Key   string
	Value []byte
}

// Memory is an in-process Adapter. Besides backing tests it can simulate
// slow and failing storage: a get gate holds reads until released, and
// per-operation errors can be injected.
type Memory struct {
	mu      sync.Mutex
	slots   map[string][]byte
	rows    []Row
	nextID  int64
	ops     []Op
	getGate <-chan struct{}
	failGet error
	failPut error
	failApp error
	closed  bool
}

// NewMemory returns an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{slots: make(map[string][]byte)}
}
// #endregion memory-struct

// #region knobs
// HoldGets makes every Get block until gate is closed or the caller's
// context ends.
func (m *Memory) HoldGets(gate <-chan struct{}) {
	m.mu.Lock()
	m.getGate = gate
	m.mu.Unlock()
}

// FailGets makes Get return err. Pass nil to restore normal behaviour.
func (m *Memory) FailGets(err error) {
	m.mu.Lock()
	m.failGet = err
	m.mu.Unlock()
}

// FailPuts makes Put return err. Pass nil to restore normal behaviour.
func (m *Memory) FailPuts(err error) {
	m.mu.Lock()
	m.failPut = err
	m.mu.Unlock()
}

// FailAppends makes Append return err. Pass nil to restore normal behaviour.
func (m *Memory) FailAppends(err error) {
	m.mu.Lock()
	m.failApp = err
	m.mu.Unlock()
}

// Ops returns a copy of every call received so far.
func (m *Memory) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Op(nil), m.ops...)
}

// Count returns how many calls named name were received.
func (m *Memory) Count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, op := range m.ops {
		if op.Name == name {
			n++
		}
	}
	return n
}
// #endregion knobs

// #region adapter
func slotKey(kind Kind, key string) string { return string(kind) + "/" + key }

// Get implements Adapter.
func (m *Memory) Get(ctx context.Context, kind Kind, key string) ([]byte, error) {
	if !kind.slotted() {
		return nil, fmt.Errorf("get %s: %w", kind, ErrWrongKind)
	}
	m.mu.Lock()
	m.ops = append(m.ops, Op{Name: "get", Kind: kind, Key: key})
	gate := m.getGate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: get %s/%s: %w", ErrStorageUnavailable, kind, key, ctx.Err())
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("%w: adapter closed", ErrStorageUnavailable)
	}
	if m.failGet != nil {
		return nil, fmt.Errorf("%w: get %s/%s: %w", ErrStorageUnavailable, kind, key, m.failGet)
	}
	v, ok := m.slots[slotKey(kind, key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put implements Adapter.
func (m *Memory) Put(_ context.Context, kind Kind, key string, value []byte) error {
	if !kind.slotted() {
		return fmt.Errorf("put %s: %w", kind, ErrWrongKind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v := append([]byte(nil), value...)
	m.ops = append(m.ops, Op{Name: "put", Kind: kind, Key: key, Value: v})
	if m.closed {
		return fmt.Errorf("%w: adapter closed", ErrStorageUnavailable)
	}
	if m.failPut != nil {
		return fmt.Errorf("%w: put %s/%s: %w", ErrWriteFailed, kind, key, m.failPut)
	}
	m.slots[slotKey(kind, key)] = v
	return nil
}

// Append implements Adapter.
func (m *Memory) Append(_ context.Context, kind Kind, value []byte) (int64, error) {
	if !kind.collection() {
		return 0, fmt.Errorf("append %s: %w", kind, ErrWrongKind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v := append([]byte(nil), value...)
	m.ops = append(m.ops, Op{Name: "append", Kind: kind, Value: v})
	if m.closed {
		return 0, fmt.Errorf("%w: adapter closed", ErrStorageUnavailable)
	}
	if m.failApp != nil {
		return 0, fmt.Errorf("%w: append %s: %w", ErrWriteFailed, kind, m.failApp)
	}
	m.nextID++
	m.rows = append(m.rows, Row{ID: m.nextID, Value: v, CreatedAt: time.Now().UTC()})
	return m.nextID, nil
}

// List implements Adapter.
func (m *Memory) List(_ context.Context, kind Kind, limit int) ([]Row, error) {
	if !kind.collection() {
		return nil, fmt.Errorf("list %s: %w", kind, ErrWrongKind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, Op{Name: "list", Kind: kind})
	if m.closed {
		return nil, fmt.Errorf("%w: adapter closed", ErrStorageUnavailable)
	}
	var out []Row
	for i := len(m.rows) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, m.rows[i])
	}
	return out, nil
}

// Close implements Adapter.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
// #endregion adapter
