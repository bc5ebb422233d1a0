package scenario

import (
	"errors"
	"fmt"
)

// #region deck-types
// Option is one response the user can pick.
type Option struct {
	Text         string `yaml:"text"`
	LegallySound bool   `yaml:"legallySound"`
	Explanation  string `yaml:"explanation"`
}

// Scenario is one officer prompt with its candidate responses. CorrectIndex
// names the canonical best answer; other options may still be legally sound.
type Scenario struct {
	Prompt       string   `yaml:"prompt"`
	CorrectIndex int      `yaml:"correct"`
	Options      []Option `yaml:"options"`
}

// Lane is a titled group of reference notes for the learn screen.
type Lane struct {
	Title string   `yaml:"title"`
	Items []string `yaml:"items"`
}

// Deck is the fixed, ordered scenario sequence plus the short script and
// reference lanes the learn mode shows.
type Deck struct {
	Script    []string   `yaml:"script"`
	Lanes     []Lane     `yaml:"lanes"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Len returns the number of scenarios.
func (d Deck) Len() int { return len(d.Scenarios) }
// #endregion deck-types

// #region result
// EvaluationResult is the outcome of picking one option. WasCorrect and
// LegallySound are separate judgements and routinely disagree.
type EvaluationResult struct {
	ScenarioIndex int
	OptionIndex   int
	Prompt        string
	ChosenText    string
	Explanation   string
	WasCorrect    bool
	LegallySound  bool
}
// #endregion result

// #region state
// Phase enumerates the engine's states.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePresenting
	PhaseFeedback
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePresenting:
		return "presenting"
	case PhaseFeedback:
		return "feedback"
	case PhaseComplete:
		return "complete"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is a snapshot of the engine. Index is meaningful while presenting
// or showing feedback; Result is set only during feedback.
type State struct {
	Phase  Phase
	Index  int
	Result *EvaluationResult
}

// Mode selects what happens after the last scenario.
type Mode int

const (
	// ModeSession stops in PhaseComplete after the last scenario.
	ModeSession Mode = iota
	// ModeDrill wraps back to the first scenario and never completes.
	ModeDrill
)

// Score counts answers in the current run.
type Score struct {
	Answered     int
	Correct      int
	LegallySound int
}
// #endregion state

// #region errors
var (
	// ErrInvalidDeck is returned when a deck fails validation.
	ErrInvalidDeck = errors.New("invalid scenario deck")
	// ErrInvalidTransition is returned when an operation does not apply to
	// the current phase.
	ErrInvalidTransition = errors.New("invalid scenario transition")
)

// OutOfRangeIndex is the panic value for a scenario or option index outside
// the deck. It indicates a caller bug and is not recovered.
type OutOfRangeIndex struct {
	What  string // "scenario" | "option"
	Index int
	Len   int
}

func (e OutOfRangeIndex) Error() string {
	return fmt.Sprintf("%s index %d out of range [0,%d)", e.What, e.Index, e.Len)
}
// #endregion errors
