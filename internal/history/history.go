package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/stopcoach/internal/scenario"
	"github.com/danielpatrickdp/stopcoach/internal/storage"
)

// DefaultCapacity is how many recent attempts the log keeps.
const DefaultCapacity = 6

// #region entry
// Entry is one recorded attempt at a scenario. Entries are never modified
// after Record returns them.
type Entry struct {
	ID             string    `json:"id"`
	ScenarioPrompt string    `json:"scenarioPrompt"`
	ChosenText     string    `json:"chosenText"`
	WasCorrect     bool      `json:"wasCorrect"`
	LegallySound   bool      `json:"legallySound"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FromResult builds an entry from an evaluation. ID and CreatedAt are left
// for Record to fill.
func FromResult(r scenario.EvaluationResult) Entry {
	return Entry{
		ScenarioPrompt: r.Prompt,
		ChosenText:     r.ChosenText,
		WasCorrect:     r.WasCorrect,
		LegallySound:   r.LegallySound,
	}
}
// #endregion entry

// #region log-struct
// Log is a bounded, most-recent-first list of attempts backed by a ring
// buffer. When an adapter is configured each recorded entry is also
// appended to storage in the background; storage failures are logged and
// never undo the in-memory insert.
type Log struct {
	adapter storage.Adapter
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	mu   sync.Mutex
	buf  []Entry
	head int // slot the next entry goes into
	size int

	pending sync.WaitGroup
}

// Option configures a Log.
type Option func(*Log)

// WithCapacity overrides DefaultCapacity. Values below 1 are ignored.
func WithCapacity(k int) Option {
	return func(l *Log) {
		if k > 0 {
			l.buf = make([]Entry, k)
		}
	}
}

// WithAdapter persists entries through a.
func WithAdapter(a storage.Adapter) Option {
	return func(l *Log) { l.adapter = a }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// New returns an empty log.
func New(opts ...Option) *Log {
	l := &Log{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
		buf:    make([]Entry, DefaultCapacity),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Capacity returns the maximum number of entries kept.
func (l *Log) Capacity() int { return len(l.buf) }
// #endregion log-struct

// #region record
// Record stores e as the newest entry, evicting the oldest when full, and
// returns it with ID and CreatedAt filled in when the caller left them
// empty.
func (l *Log) Record(e Entry) Entry {
	if e.ID == "" {
		e.ID = l.newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = l.now()
	}

	l.mu.Lock()
	l.push(e)
	l.mu.Unlock()

	if l.adapter != nil {
		l.persist(e)
	}
	return e
}

// push must be called with l.mu held.
func (l *Log) push(e Entry) {
	l.buf[l.head] = e
	l.head = (l.head + 1) % len(l.buf)
	if l.size < len(l.buf) {
		l.size++
	}
}

func (l *Log) persist(e Entry) {
	data, err := json.Marshal(e)
	if err != nil {
		l.logger.Error("encode practice entry", "id", e.ID, "error", err)
		return
	}
	l.pending.Add(1)
	go func() {
		defer l.pending.Done()
		if _, err := l.adapter.Append(context.Background(), storage.KindPracticeSessions, data); err != nil {
			l.logger.Warn("practice entry not persisted", "id", e.ID, "error", err)
		}
	}()
}

// Wait blocks until every background append started so far has finished.
func (l *Log) Wait() { l.pending.Wait() }
// #endregion record

// #region entries
// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, l.size)
	for i := 1; i <= l.size; i++ {
		out = append(out, l.buf[(l.head-i+len(l.buf))%len(l.buf)])
	}
	return out
}

// Len returns the number of entries held.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}
// #endregion entries

// #region restore
// ReadPersisted decodes up to limit persisted attempts from a, newest
// first. limit <= 0 reads all of them. Unreadable rows are skipped and
// reported through logger.
func ReadPersisted(ctx context.Context, a storage.Adapter, limit int, logger *slog.Logger) ([]Entry, error) {
	rows, err := a.List(ctx, storage.KindPracticeSessions, limit)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		var e Entry
		if err := json.Unmarshal(row.Value, &e); err != nil {
			if logger != nil {
				logger.Warn("skip unreadable practice row", "row_id", row.ID, "error", err)
			}
			continue
		}
		if e.ID == "" {
			e.ID = strconv.FormatInt(row.ID, 10)
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = row.CreatedAt
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Restore seeds the log with the most recent persisted attempts. Entries
// recorded before Restore finishes stay newest; persisted rows fill the
// remaining capacity behind them, skipping ids already present.
func (l *Log) Restore(ctx context.Context) error {
	if l.adapter == nil {
		return nil
	}
	restored, err := ReadPersisted(ctx, l.adapter, len(l.buf), l.logger)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	current := make([]Entry, 0, l.size)
	seen := make(map[string]bool, l.size)
	for i := 1; i <= l.size; i++ {
		e := l.buf[(l.head-i+len(l.buf))%len(l.buf)]
		current = append(current, e)
		seen[e.ID] = true
	}
	merged := current
	for _, e := range restored {
		if len(merged) == len(l.buf) {
			break
		}
		if !seen[e.ID] {
			merged = append(merged, e)
		}
	}

	l.head, l.size = 0, 0
	for i := len(merged) - 1; i >= 0; i-- {
		l.push(merged[i])
	}
	return nil
}
// #endregion restore
