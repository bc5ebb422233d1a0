package incident

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/danielpatrickdp/stopcoach/internal/storage"
)

// #region status
// Status describes where the draft stands relative to storage.
type Status int

const (
	// StatusLoading means the initial load has not resolved; no save is
	// issued in this state.
	StatusLoading Status = iota
	// StatusSaving means a save is queued or in flight.
	StatusSaving
	// StatusSaved means the last save succeeded and nothing is pending.
	StatusSaved
	// StatusNotSaved means the last save failed, or the saved draft could
	// not be read and autosave is held back. The next edit retries.
	StatusNotSaved
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "Loading…"
	case StatusSaving:
		return "Saving…"
	case StatusSaved:
		return "Saved"
	case StatusNotSaved:
		return "Not saved"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ErrClosed is returned by operations on a store after Close.
var ErrClosed = errors.New("documentation store closed")
// #endregion status

// #region load
// Load reads the current draft. found is false on first run.
func Load(ctx context.Context, a storage.Adapter) (rec Record, found bool, err error) {
	data, err := a.Get(ctx, storage.KindDocumentation, storage.CurrentKey)
	if errors.Is(err, storage.ErrNotFound) {
		return Defaults(), false, nil
	}
	if err != nil {
		return Defaults(), false, fmt.Errorf("load documentation: %w", err)
	}
	rec, err = Decode(data)
	if err != nil {
		return Defaults(), false, err
	}
	return rec, true, nil
}
// #endregion load

// #region store-struct
// Store owns the live documentation draft. Construction starts exactly one
// background load; edits made before it resolves are queued and replayed on
// top of the loaded draft. After the load, every edit schedules a save of
// the whole draft. A single worker performs saves and always writes the
// newest snapshot, so once saves settle storage holds the latest draft.
//
// If the initial load fails the draft starts empty and stays editable, but
// autosave never writes over the unread slot: each save first re-reads it
// and replays the edits on top. Only an explicit Save or Clear writes the
// in-memory draft without a successful read.
//
// Each background operation carries the generation it was started under.
// Close bumps the generation, so completions that arrive afterwards are
// dropped instead of touching state. Storage calls have no timeout: a load
// that never returns leaves the store in StatusLoading.
type Store struct {
	adapter  storage.Adapter
	logger   *slog.Logger
	now      func() time.Time
	slowLoad time.Duration

	mu         sync.Mutex
	record     Record
	loaded     bool
	loadFailed bool
	force      bool
	queued     []func(*Record) error
	dirty      bool
	inFlight   bool
	status     Status
	lastErr    error
	generation uint64
	closed     bool
	changed    chan struct{}

	saveSignal chan struct{}
	cancel     context.CancelFunc
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the UpdatedAt source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSlowLoadWarning logs a warning when the initial load is still pending
// after d. Zero disables the warning.
func WithSlowLoadWarning(d time.Duration) Option {
	return func(s *Store) { s.slowLoad = d }
}

// NewStore creates a store over a and starts loading the saved draft.
func NewStore(a storage.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter:    a,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        func() time.Time { return time.Now().UTC() },
		record:     Defaults(),
		status:     StatusLoading,
		changed:    make(chan struct{}),
		saveSignal: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx, s.generation)
	return s
}
// #endregion store-struct

// #region worker
func (s *Store) run(ctx context.Context, gen uint64) {
	s.load(ctx, gen)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.saveSignal:
			s.flush(ctx, gen)
		}
	}
}

func (s *Store) load(ctx context.Context, gen uint64) {
	var slow *time.Timer
	if s.slowLoad > 0 {
		slow = time.AfterFunc(s.slowLoad, func() {
			s.mu.Lock()
			pending := !s.loaded && s.generation == gen
			s.mu.Unlock()
			if pending {
				s.logger.Warn("documentation load still pending; autosave stays disabled until it resolves",
					"after", s.slowLoad)
			}
		})
	}

	rec, found, err := Load(ctx, s.adapter)
	if slow != nil {
		slow.Stop()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	s.loaded = true
	if err != nil {
		s.logger.Warn("documentation load failed; autosave held back until the draft can be read", "error", err)
		s.loadFailed = true
		s.lastErr = err
		s.status = StatusNotSaved
		if len(s.queued) > 0 {
			s.replayLocked(Defaults(), s.queued)
			s.markDirtyLocked()
		}
		s.notifyLocked()
		return
	}
	if found {
		s.logger.Debug("documentation loaded", "updated_at", rec.UpdatedAt)
	} else {
		s.logger.Debug("no saved documentation")
	}
	s.status = StatusSaved
	if len(s.queued) > 0 {
		s.replayLocked(rec, s.queued)
		s.queued = nil
		s.markDirtyLocked()
	} else {
		s.record = rec
	}
	s.notifyLocked()
}

// replayLocked rebuilds the draft as base with edits applied in order.
func (s *Store) replayLocked(base Record, edits []func(*Record) error) {
	s.record = base
	for _, edit := range edits {
		if err := edit(&s.record); err != nil {
			s.logger.Error("replay queued edit", "error", err)
		}
	}
	s.record.UpdatedAt = s.now()
}

// reread retries the failed load. On success the edits made since are
// replayed over what storage holds and autosave resumes.
func (s *Store) reread(ctx context.Context, gen uint64) bool {
	s.dirty = false
	s.inFlight = true
	s.mu.Unlock()
	rec, _, err := Load(ctx, s.adapter)
	s.mu.Lock()
	if s.generation != gen {
		return false
	}
	if err != nil {
		s.inFlight = false
		s.lastErr = err
		s.status = StatusNotSaved
		s.logger.Warn("documentation still unreadable; not saved", "error", err)
		s.notifyLocked()
		return false
	}
	s.replayLocked(rec, s.queued)
	s.queued = nil
	s.loadFailed = false
	s.logger.Info("documentation read after earlier failure; autosave resumed")
	return true
}

func (s *Store) flush(ctx context.Context, gen uint64) {
	s.mu.Lock()
	if s.generation != gen || !s.loaded || !s.dirty {
		s.mu.Unlock()
		return
	}
	if s.loadFailed && !s.force && !s.reread(ctx, gen) {
		s.mu.Unlock()
		return
	}
	forced := s.force
	snapshot := s.record
	s.dirty = false
	s.force = false
	s.inFlight = true
	s.mu.Unlock()

	data, err := Encode(snapshot)
	if err == nil {
		err = s.adapter.Put(ctx, storage.KindDocumentation, storage.CurrentKey, data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	s.inFlight = false
	switch {
	case err != nil:
		s.lastErr = err
		s.status = StatusNotSaved
		s.logger.Warn("documentation not saved", "error", err)
	case s.dirty:
		s.lastErr = nil
		s.status = StatusSaving
	default:
		s.lastErr = nil
		s.status = StatusSaved
	}
	if err == nil && forced && s.loadFailed {
		s.loadFailed = false
		s.queued = nil
	}
	s.notifyLocked()
}

// markDirtyLocked schedules a save. It never signals before the initial
// load has resolved.
func (s *Store) markDirtyLocked() {
	if !s.loaded {
		return
	}
	s.dirty = true
	s.status = StatusSaving
	select {
	case s.saveSignal <- struct{}{}:
	default:
	}
}

// notifyLocked wakes every Wait caller.
func (s *Store) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}
// #endregion worker

// #region mutate
// mutate applies edit now, or queues it while the load is pending.
func (s *Store) mutate(edit func(*Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if !s.loaded {
		s.queued = append(s.queued, edit)
		return nil
	}
	if err := edit(&s.record); err != nil {
		return err
	}
	if s.loadFailed {
		s.queued = append(s.queued, edit)
	}
	s.record.UpdatedAt = s.now()
	s.markDirtyLocked()
	s.notifyLocked()
	return nil
}

// Update sets a text field and schedules an autosave.
func (s *Store) Update(f Field, value string) error {
	if _, err := (&Record{}).text(f); err != nil {
		return err
	}
	return s.mutate(func(r *Record) error { return r.Set(f, value) })
}

// SetFlag sets a boolean field and schedules an autosave.
func (s *Store) SetFlag(f Flag, value bool) error {
	if _, err := (&Record{}).flag(f); err != nil {
		return err
	}
	return s.mutate(func(r *Record) error { return r.SetFlag(f, value) })
}

// ApplyTemplate replaces the draft with the named quick template.
func (s *Store) ApplyTemplate(name string) error {
	tpl, err := Template(name, s.now())
	if err != nil {
		return err
	}
	return s.mutate(func(r *Record) error {
		*r = tpl
		return nil
	})
}

// Clear resets the draft to defaults and waits for the defaults to be
// persisted. Asking the user for confirmation is the caller's job.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.mutate(func(r *Record) error {
		*r = Defaults()
		return nil
	}); err != nil {
		return err
	}
	return s.Save(ctx)
}

// Save forces a save of the current draft and waits for it to settle. It
// first waits for the initial load to resolve. If that load failed, Save
// writes the in-memory draft anyway. A storage failure is returned and
// leaves the in-memory draft untouched.
func (s *Store) Save(ctx context.Context) error {
	if err := s.WaitLoaded(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.force = true
	s.markDirtyLocked()
	s.notifyLocked()
	s.mu.Unlock()

	if err := s.Wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusNotSaved {
		return s.lastErr
	}
	return nil
}
// #endregion mutate

// #region observe
// Record returns a copy of the draft.
func (s *Store) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// Status reports the save status.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Loading reports whether the initial load is still pending.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.loaded
}

// Err returns the error from the last failed save, or nil.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// WaitLoaded blocks until the initial load resolves.
func (s *Store) WaitLoaded(ctx context.Context) error {
	return s.waitFor(ctx, func() bool { return s.loaded })
}

// Wait blocks until the load has resolved and no save is queued or in
// flight.
func (s *Store) Wait(ctx context.Context) error {
	return s.waitFor(ctx, func() bool { return s.loaded && !s.dirty && !s.inFlight })
}

func (s *Store) waitFor(ctx context.Context, done func() bool) error {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return ErrClosed
		}
		if done() {
			s.mu.Unlock()
			return nil
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
// #endregion observe

// #region close
// Close stops the worker. In-flight storage calls are not awaited; their
// results are ignored when they arrive. Call Wait first to flush pending
// edits.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.generation++
	s.cancel()
	s.notifyLocked()
}
// #endregion close
