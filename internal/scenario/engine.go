package scenario

import "fmt"

// #region engine
// Engine walks a deck as a finite state machine:
//
//	Idle -> Presenting(0) -> Feedback(0) -> Presenting(1) -> ... -> Complete
//
// In ModeDrill the step after the last scenario is Presenting(0) instead of
// Complete. An Engine is driven from a single goroutine.
type Engine struct {
	deck  Deck
	mode  Mode
	state State
	score Score
}

// NewEngine validates deck and returns an idle engine.
func NewEngine(deck Deck, mode Mode) (*Engine, error) {
	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return &Engine{deck: deck, mode: mode}, nil
}

// Deck returns the engine's deck.
func (e *Engine) Deck() Deck { return e.deck }

// Mode returns the completion mode.
func (e *Engine) Mode() Mode { return e.mode }

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Score returns the counters for the current run.
func (e *Engine) Score() Score { return e.score }
// #endregion engine

// #region evaluate
// Evaluate scores option optionIndex of scenario scenarioIndex. It has no
// side effects. Out-of-range indices panic with OutOfRangeIndex.
func (e *Engine) Evaluate(scenarioIndex, optionIndex int) EvaluationResult {
	if scenarioIndex < 0 || scenarioIndex >= len(e.deck.Scenarios) {
		panic(OutOfRangeIndex{What: "scenario", Index: scenarioIndex, Len: len(e.deck.Scenarios)})
	}
	s := e.deck.Scenarios[scenarioIndex]
	if optionIndex < 0 || optionIndex >= len(s.Options) {
		panic(OutOfRangeIndex{What: "option", Index: optionIndex, Len: len(s.Options)})
	}
	opt := s.Options[optionIndex]
	return EvaluationResult{
		ScenarioIndex: scenarioIndex,
		OptionIndex:   optionIndex,
		Prompt:        s.Prompt,
		ChosenText:    opt.Text,
		Explanation:   opt.Explanation,
		WasCorrect:    optionIndex == s.CorrectIndex,
		LegallySound:  opt.LegallySound,
	}
}
// #endregion evaluate

// #region transitions
// Start moves Idle or Complete to Presenting(0) and resets the score.
func (e *Engine) Start() (State, error) {
	if e.state.Phase != PhaseIdle && e.state.Phase != PhaseComplete {
		return e.state, fmt.Errorf("start from %s: %w", e.state.Phase, ErrInvalidTransition)
	}
	e.Reset()
	return e.state, nil
}

// Reset abandons the current run and presents the first scenario.
func (e *Engine) Reset() {
	e.score = Score{}
	e.state = State{Phase: PhasePresenting, Index: 0}
}

// Current returns the scenario being presented or reviewed.
func (e *Engine) Current() (Scenario, bool) {
	switch e.state.Phase {
	case PhasePresenting, PhaseFeedback:
		return e.deck.Scenarios[e.state.Index], true
	}
	return Scenario{}, false
}

// Choose evaluates optionIndex against the presented scenario and moves to
// Feedback.
func (e *Engine) Choose(optionIndex int) (EvaluationResult, error) {
	if e.state.Phase != PhasePresenting {
		return EvaluationResult{}, fmt.Errorf("choose from %s: %w", e.state.Phase, ErrInvalidTransition)
	}
	r := e.Evaluate(e.state.Index, optionIndex)
	e.score.Answered++
	if r.WasCorrect {
		e.score.Correct++
	}
	if r.LegallySound {
		e.score.LegallySound++
	}
	e.state = State{Phase: PhaseFeedback, Index: e.state.Index, Result: &r}
	return r, nil
}

// Review leaves Feedback and presents the same scenario again.
func (e *Engine) Review() (State, error) {
	if e.state.Phase != PhaseFeedback {
		return e.state, fmt.Errorf("review from %s: %w", e.state.Phase, ErrInvalidTransition)
	}
	e.state = State{Phase: PhasePresenting, Index: e.state.Index}
	return e.state, nil
}

// Advance leaves Feedback for the next scenario, or Complete after the last
// one in ModeSession.
func (e *Engine) Advance() (State, error) {
	if e.state.Phase != PhaseFeedback {
		return e.state, fmt.Errorf("advance from %s: %w", e.state.Phase, ErrInvalidTransition)
	}
	next, done := e.NextIndex(e.state.Index)
	if done {
		e.state = State{Phase: PhaseComplete}
		return e.state, nil
	}
	e.state = State{Phase: PhasePresenting, Index: next}
	return e.state, nil
}

// NextIndex returns the index that follows i. In ModeDrill it wraps and
// done is always false; in ModeSession done is true once i is the last
// index, and next is then len(deck), which is never presented.
func (e *Engine) NextIndex(i int) (next int, done bool) {
	n := len(e.deck.Scenarios)
	if i < 0 || i >= n {
		panic(OutOfRangeIndex{What: "scenario", Index: i, Len: n})
	}
	if e.mode == ModeDrill {
		return (i + 1) % n, false
	}
	if i+1 >= n {
		return n, true
	}
	return i + 1, false
}
// #endregion transitions
