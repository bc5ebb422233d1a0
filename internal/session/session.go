package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/stopcoach/internal/history"
	"github.com/danielpatrickdp/stopcoach/internal/incident"
	"github.com/danielpatrickdp/stopcoach/internal/scenario"
	"github.com/danielpatrickdp/stopcoach/internal/storage"
)

// #region modes
// Mode is one of the navigable screens.
type Mode string

const (
	ModeOverview Mode = "overview"
	ModeLearn    Mode = "learn"
	ModePractice Mode = "practice"
	ModeDocument Mode = "document"
)

// Modes lists the screens in navigation order.
func Modes() []Mode { return []Mode{ModeOverview, ModeLearn, ModePractice, ModeDocument} }

// Label returns the navigation label for m.
func (m Mode) Label() string {
	switch m {
	case ModeOverview:
		return "Mission Control"
	case ModeLearn:
		return "Legal Playbook"
	case ModePractice:
		return "Simulation Lab"
	case ModeDocument:
		return "Incident Log"
	}
	return string(m)
}

var (
	// ErrClearNotConfirmed is returned by Clear without a user confirmation.
	ErrClearNotConfirmed = errors.New("clear requires confirmation")
	// ErrUnknownMode is returned by SetMode for an unrecognised mode.
	ErrUnknownMode = errors.New("unknown mode")
)
// #endregion modes

// #region controller
// Deps wires a Controller. Adapter is required; everything else has a
// default. The controller takes ownership of Adapter and closes it.
type Deps struct {
	Adapter         storage.Adapter
	Deck            scenario.Deck
	EngineMode      scenario.Mode
	HistoryCapacity int
	SlowLoadWarning time.Duration
	Logger          *slog.Logger
	Now             func() time.Time
	// Location dates export files. Defaults to time.Local, matching the
	// export command.
	Location *time.Location
}

// Controller composes the scenario engine, documentation store and
// practice history behind the four screens. It is driven from one
// goroutine; storage work happens in the background.
type Controller struct {
	adapter storage.Adapter
	logger  *slog.Logger
	now     func() time.Time
	loc     *time.Location

	mode    Mode
	engine  *scenario.Engine
	docs    *incident.Store
	history *history.Log

	ready    chan struct{}
	readyErr error
}

// New builds a controller and starts restoring saved state. It fails only
// if the deck is invalid or no adapter was given.
func New(deps Deps) (*Controller, error) {
	if deps.Adapter == nil {
		return nil, errors.New("session: adapter is required")
	}
	if deps.Deck.Len() == 0 {
		deps.Deck = scenario.DefaultDeck()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.HistoryCapacity <= 0 {
		deps.HistoryCapacity = history.DefaultCapacity
	}

	engine, err := scenario.NewEngine(deps.Deck, deps.EngineMode)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if _, err := engine.Start(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	c := &Controller{
		adapter: deps.Adapter,
		logger:  deps.Logger,
		now:     deps.Now,
		loc:     deps.Location,
		mode:    ModeOverview,
		engine:  engine,
		docs: incident.NewStore(deps.Adapter,
			incident.WithLogger(deps.Logger.With("component", "documentation")),
			incident.WithClock(deps.Now),
			incident.WithSlowLoadWarning(deps.SlowLoadWarning),
		),
		history: history.New(
			history.WithAdapter(deps.Adapter),
			history.WithCapacity(deps.HistoryCapacity),
			history.WithLogger(deps.Logger.With("component", "history")),
			history.WithClock(deps.Now),
		),
		ready: make(chan struct{}),
	}
	go c.restore()
	return c, nil
}

// restore waits for the documentation load and reloads recent history in
// parallel. A history failure is logged and leaves the log empty.
func (c *Controller) restore() {
	defer close(c.ready)
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		if err := c.history.Restore(ctx); err != nil {
			c.logger.Warn("practice history not restored", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		return c.docs.WaitLoaded(ctx)
	})
	c.readyErr = g.Wait()
}

// Ready blocks until saved state has been restored.
func (c *Controller) Ready(ctx context.Context) error {
	select {
	case <-c.ready:
		return c.readyErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Loading reports whether the documentation draft is still loading.
func (c *Controller) Loading() bool { return c.docs.Loading() }

// Mode returns the active screen.
func (c *Controller) Mode() Mode { return c.mode }

// SetMode switches screens.
func (c *Controller) SetMode(m Mode) error {
	for _, known := range Modes() {
		if m == known {
			c.mode = m
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownMode, string(m))
}

// ScriptLines returns the short script shown on the learn screen.
func (c *Controller) ScriptLines() []string { return c.engine.Deck().Script }

// Lanes returns the reference notes shown on the learn screen.
func (c *Controller) Lanes() []scenario.Lane { return c.engine.Deck().Lanes }
// #endregion controller

// #region practice
// Practice returns the engine state and the scenario on screen, if any.
func (c *Controller) Practice() (scenario.State, scenario.Scenario, bool) {
	s, ok := c.engine.Current()
	return c.engine.State(), s, ok
}

// DeckLen returns the number of scenarios in the deck.
func (c *Controller) DeckLen() int { return c.engine.Deck().Len() }

// EngineMode reports whether the run completes or wraps.
func (c *Controller) EngineMode() scenario.Mode { return c.engine.Mode() }

// Choose answers the scenario on screen and records the attempt.
func (c *Controller) Choose(optionIndex int) (scenario.EvaluationResult, error) {
	r, err := c.engine.Choose(optionIndex)
	if err != nil {
		return r, err
	}
	e := c.history.Record(history.FromResult(r))
	c.logger.Debug("scenario answered",
		"scenario", r.ScenarioIndex, "option", r.OptionIndex,
		"correct", r.WasCorrect, "legally_sound", r.LegallySound, "entry", e.ID)
	return r, nil
}

// Next moves past the feedback to the next scenario or completion.
func (c *Controller) Next() (scenario.State, error) { return c.engine.Advance() }

// Review returns from feedback to the same scenario's choices.
func (c *Controller) Review() (scenario.State, error) { return c.engine.Review() }

// Restart begins a fresh run from the first scenario.
func (c *Controller) Restart() { c.engine.Reset() }

// Score returns the counters for the current run.
func (c *Controller) Score() scenario.Score { return c.engine.Score() }

// History returns recent attempts, newest first.
func (c *Controller) History() []history.Entry { return c.history.Entries() }
// #endregion practice

// #region documentation
// Documentation returns a copy of the draft.
func (c *Controller) Documentation() incident.Record { return c.docs.Record() }

// SaveStatus reports the draft's save status.
func (c *Controller) SaveStatus() incident.Status { return c.docs.Status() }

// EditField sets a text field of the draft.
func (c *Controller) EditField(f incident.Field, value string) error {
	return c.docs.Update(f, value)
}

// SetFlag sets a boolean field of the draft.
func (c *Controller) SetFlag(f incident.Flag, value bool) error {
	return c.docs.SetFlag(f, value)
}

// ToggleFlag flips a boolean field of the draft.
func (c *Controller) ToggleFlag(f incident.Flag) error {
	rec := c.docs.Record()
	cur, err := rec.GetFlag(f)
	if err != nil {
		return err
	}
	return c.docs.SetFlag(f, !cur)
}

// ApplyTemplate replaces the draft with a quick template.
func (c *Controller) ApplyTemplate(name string) error { return c.docs.ApplyTemplate(name) }

// Clear wipes the draft. confirmed must carry the user's explicit answer;
// without it nothing is touched.
func (c *Controller) Clear(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrClearNotConfirmed
	}
	if err := c.docs.Clear(ctx); err != nil {
		return fmt.Errorf("clear documentation: %w", err)
	}
	c.logger.Info("documentation cleared")
	return nil
}

// Export writes the draft as a text report into dir, named for the local
// calendar day.
func (c *Controller) Export(dir string) (string, error) {
	path, err := incident.WriteExport(dir, c.docs.Record(), c.now().In(c.loc))
	if err != nil {
		return "", err
	}
	c.logger.Info("documentation exported", "path", path)
	return path, nil
}
// #endregion documentation

// #region close
// Close flushes pending saves until ctx ends, then tears down the store,
// waits for history appends and closes the adapter.
func (c *Controller) Close(ctx context.Context) error {
	var errs []error
	if !c.docs.Loading() {
		if err := c.docs.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush documentation: %w", err))
		}
	}
	c.docs.Close()
	c.history.Wait()
	if err := c.adapter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}
// #endregion close
