package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHoldGets(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Put(context.Background(), KindDocumentation, CurrentKey, []byte("x")))

	gate := make(chan struct{})
	m.HoldGets(gate)

	done := make(chan []byte, 1)
	go func() {
		v, _ := m.Get(context.Background(), KindDocumentation, CurrentKey)
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("get returned before gate opened")
	case <-time.After(20 * time.Millisecond):
	}
	close(gate)
	assert.Equal(t, []byte("x"), <-done)
}

func TestMemoryHeldGetHonoursContext(t *testing.T) {
	m := NewMemory()
	m.HoldGets(make(chan struct{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Get(ctx, KindDocumentation, CurrentKey)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestMemoryInjectedFailures(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	boom := errors.New("disk full")

	m.FailPuts(boom)
	err := m.Put(ctx, KindDocumentation, CurrentKey, []byte("x"))
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.ErrorIs(t, err, boom)

	m.FailPuts(nil)
	require.NoError(t, m.Put(ctx, KindDocumentation, CurrentKey, []byte("y")))
	assert.Equal(t, 2, m.Count("put"))

	m.FailAppends(boom)
	_, err = m.Append(ctx, KindPracticeSessions, []byte("{}"))
	assert.ErrorIs(t, err, ErrWriteFailed)
}

func TestMemoryListNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, v := range []string{"a", "b", "c"} {
		_, err := m.Append(ctx, KindPracticeSessions, []byte(v))
		require.NoError(t, err)
	}

	rows, err := m.List(ctx, KindPracticeSessions, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", string(rows[0].Value))
	assert.Equal(t, "b", string(rows[1].Value))
}
