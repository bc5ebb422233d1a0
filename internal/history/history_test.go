package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/stopcoach/internal/scenario"
	"github.com/danielpatrickdp/stopcoach/internal/storage"
)

func entry(prompt string) Entry {
	return Entry{ScenarioPrompt: prompt, ChosenText: "answer to " + prompt}
}

func prompts(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ScenarioPrompt
	}
	return out
}

func TestRecordEvictsOldestFirst(t *testing.T) {
	l := New(WithCapacity(2))

	l.Record(entry("s1"))
	l.Record(entry("s2"))
	l.Record(entry("s3"))

	got := l.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, []string{"s3", "s2"}, prompts(got))
}

func TestNeverExceedsCapacity(t *testing.T) {
	l := New()
	require.Equal(t, DefaultCapacity, l.Capacity())

	for i := 0; i < DefaultCapacity*3+1; i++ {
		l.Record(entry(fmt.Sprintf("s%d", i)))
		assert.LessOrEqual(t, l.Len(), DefaultCapacity)
	}

	got := l.Entries()
	require.Len(t, got, DefaultCapacity)
	last := DefaultCapacity * 3
	for i, e := range got {
		assert.Equal(t, fmt.Sprintf("s%d", last-i), e.ScenarioPrompt)
	}
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := New(WithClock(func() time.Time { return fixed }))

	a := l.Record(entry("a"))
	b := l.Record(entry("b"))
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, fixed, a.CreatedAt)

	given := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := l.Record(Entry{ID: "keep-me", CreatedAt: given})
	assert.Equal(t, "keep-me", c.ID)
	assert.Equal(t, given, c.CreatedAt)
}

func TestEntriesIsACopy(t *testing.T) {
	l := New()
	l.Record(entry("a"))

	got := l.Entries()
	got[0].ScenarioPrompt = "mutated"
	assert.Equal(t, "a", l.Entries()[0].ScenarioPrompt)
}

func TestFromResult(t *testing.T) {
	e := FromResult(scenario.EvaluationResult{
		Prompt:       "Step out of the vehicle.",
		ChosenText:   "Comply silently",
		WasCorrect:   false,
		LegallySound: true,
	})
	assert.Equal(t, "Step out of the vehicle.", e.ScenarioPrompt)
	assert.False(t, e.WasCorrect)
	assert.True(t, e.LegallySound)
	assert.Empty(t, e.ID)
}

func TestPersistFailureKeepsInMemoryEntry(t *testing.T) {
	mem := storage.NewMemory()
	mem.FailAppends(errors.New("quota exceeded"))
	l := New(WithAdapter(mem))

	l.Record(entry("a"))
	l.Wait()

	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 1, mem.Count("append"))
}

func TestRestoreFromStorage(t *testing.T) {
	mem := storage.NewMemory()
	writer := New(WithAdapter(mem))
	for i := 1; i <= 4; i++ {
		writer.Record(entry(fmt.Sprintf("s%d", i)))
		writer.Wait()
	}

	reader := New(WithAdapter(mem), WithCapacity(3))
	require.NoError(t, reader.Restore(context.Background()))
	assert.Equal(t, []string{"s4", "s3", "s2"}, prompts(reader.Entries()))
}

func TestRestoreKeepsNewerInMemoryEntries(t *testing.T) {
	mem := storage.NewMemory()
	writer := New(WithAdapter(mem))
	writer.Record(entry("old1"))
	writer.Wait()
	writer.Record(entry("old2"))
	writer.Wait()

	l := New(WithAdapter(mem), WithCapacity(3))
	fresh := l.Record(entry("fresh"))
	l.Wait()

	require.NoError(t, l.Restore(context.Background()))
	got := l.Entries()
	assert.Equal(t, []string{"fresh", "old2", "old1"}, prompts(got))
	assert.Equal(t, fresh.ID, got[0].ID)
}

func TestRestoreWithoutAdapter(t *testing.T) {
	l := New()
	require.NoError(t, l.Restore(context.Background()))
	assert.Zero(t, l.Len())
}

func TestRestoreSkipsUnreadableRows(t *testing.T) {
	mem := storage.NewMemory()
	ctx := context.Background()
	_, err := mem.Append(ctx, storage.KindPracticeSessions, []byte(`{"scenarioPrompt":"good"}`))
	require.NoError(t, err)
	_, err = mem.Append(ctx, storage.KindPracticeSessions, []byte(`not json`))
	require.NoError(t, err)

	l := New(WithAdapter(mem))
	require.NoError(t, l.Restore(ctx))
	got := l.Entries()
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].ScenarioPrompt)
	assert.Equal(t, "1", got[0].ID)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestReadPersistedAll(t *testing.T) {
	mem := storage.NewMemory()
	l := New(WithAdapter(mem), WithCapacity(2))
	for i := 1; i <= 5; i++ {
		l.Record(entry(fmt.Sprintf("s%d", i)))
		l.Wait()
	}
	assert.Equal(t, 2, l.Len())

	all, err := ReadPersisted(context.Background(), mem, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"s5", "s4", "s3", "s2", "s1"}, prompts(all))

	require.NoError(t, mem.Close())
	_, err = ReadPersisted(context.Background(), mem, 0, nil)
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
}
