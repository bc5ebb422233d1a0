package replay

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/stopcoach/internal/history"
	"github.com/danielpatrickdp/stopcoach/internal/scenario"
)

// #region types
// Action names one scripted input to the engine.
type Action string

const (
	ActionChoose  Action = "choose"
	ActionNext    Action = "next"
	ActionReview  Action = "review"
	ActionRestart Action = "restart"
)

// ErrUnknownAction is recorded for a step whose action the harness does
// not know.
var ErrUnknownAction = errors.New("unknown replay action")

// ErrOptionOutOfRange is recorded for a choose step naming an option the
// presented scenario does not have.
var ErrOptionOutOfRange = errors.New("option out of range")

// Step is a single scripted input. Option is only read for ActionChoose.
type Step struct {
	Action Action
	Option int
}

// StepResult captures the engine after one step.
type StepResult struct {
	Step  int
	Phase scenario.Phase
	Index int

	// Result is set for a successful choose.
	Result *scenario.EvaluationResult

	// Err is set when the step was rejected; the engine is unchanged.
	Err error
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps int
	Rejected   int
	Score      scenario.Score
	FinalPhase scenario.Phase
}
// #endregion types

// #region replay
// Replay feeds steps to a fresh engine over deck, starting at the first
// scenario. Rejected steps are recorded and the run continues.
func Replay(deck scenario.Deck, mode scenario.Mode, steps []Step) ([]StepResult, Summary, error) {
	engine, err := scenario.NewEngine(deck, mode)
	if err != nil {
		return nil, Summary{}, err
	}
	if _, err := engine.Start(); err != nil {
		return nil, Summary{}, err
	}

	results := make([]StepResult, 0, len(steps))
	for i, step := range steps {
		res := StepResult{Step: i}
		switch step.Action {
		case ActionChoose:
			current, ok := engine.Current()
			if ok && (step.Option < 0 || step.Option >= len(current.Options)) {
				res.Err = fmt.Errorf("step %d: %w: %d of %d", i, ErrOptionOutOfRange, step.Option, len(current.Options))
				break
			}
			r, err := engine.Choose(step.Option)
			if err != nil {
				res.Err = fmt.Errorf("step %d: %w", i, err)
				break
			}
			res.Result = &r
		case ActionNext:
			if _, err := engine.Advance(); err != nil {
				res.Err = fmt.Errorf("step %d: %w", i, err)
			}
		case ActionReview:
			if _, err := engine.Review(); err != nil {
				res.Err = fmt.Errorf("step %d: %w", i, err)
			}
		case ActionRestart:
			engine.Reset()
		default:
			res.Err = fmt.Errorf("step %d: %w: %q", i, ErrUnknownAction, string(step.Action))
		}
		st := engine.State()
		res.Phase, res.Index = st.Phase, st.Index
		results = append(results, res)
	}

	return results, Summarize(results, engine), nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []StepResult, engine *scenario.Engine) Summary {
	s := Summary{
		TotalSteps: len(results),
		Score:      engine.Score(),
		FinalPhase: engine.State().Phase,
	}
	for _, r := range results {
		if r.Err != nil {
			s.Rejected++
		}
	}
	return s
}
// #endregion replay

// #region drift
// Drift describes a persisted attempt that no longer evaluates the same
// way against a deck.
type Drift struct {
	EntryID string
	Prompt  string
	Chosen  string
	Reason  string
}

// CheckHistory re-evaluates persisted attempts against deck. Attempts
// whose scenario or option text is gone, or whose judgement changed, are
// reported.
func CheckHistory(deck scenario.Deck, entries []history.Entry) []Drift {
	byPrompt := make(map[string]scenario.Scenario, deck.Len())
	for _, s := range deck.Scenarios {
		byPrompt[s.Prompt] = s
	}

	var drifts []Drift
	for _, e := range entries {
		d := Drift{EntryID: e.ID, Prompt: e.ScenarioPrompt, Chosen: e.ChosenText}
		s, ok := byPrompt[e.ScenarioPrompt]
		if !ok {
			d.Reason = "scenario not in deck"
			drifts = append(drifts, d)
			continue
		}
		chosen := -1
		for i, opt := range s.Options {
			if opt.Text == e.ChosenText {
				chosen = i
				break
			}
		}
		if chosen < 0 {
			d.Reason = "option not in deck"
			drifts = append(drifts, d)
			continue
		}
		correct := chosen == s.CorrectIndex
		sound := s.Options[chosen].LegallySound
		switch {
		case correct != e.WasCorrect:
			d.Reason = fmt.Sprintf("correct was %t, now %t", e.WasCorrect, correct)
			drifts = append(drifts, d)
		case sound != e.LegallySound:
			d.Reason = fmt.Sprintf("legally sound was %t, now %t", e.LegallySound, sound)
			drifts = append(drifts, d)
		}
	}
	return drifts
}
// #endregion drift
