package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/danielpatrickdp/stopcoach/internal/scenario"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Deck            string                  `json:"deck,omitempty"`
	Mode            string                  `json:"mode"`
	Steps           []FixtureStep           `json:"steps"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
	ExpectedSummary *FixtureExpectedSummary `json:"expected_summary,omitempty"`

	dir string
}

// FixtureStep mirrors Step with JSON tags.
type FixtureStep struct {
	Action string `json:"action"`
	Option int    `json:"option,omitempty"`
}

// FixtureExpectedResult captures the expected outcome of one step. Nil
// fields are not checked.
type FixtureExpectedResult struct {
	Step         int    `json:"step"`
	Phase        string `json:"phase,omitempty"`
	Index        *int   `json:"index,omitempty"`
	Correct      *bool  `json:"correct,omitempty"`
	LegallySound *bool  `json:"legally_sound,omitempty"`
	Rejected     bool   `json:"rejected,omitempty"`
}

// FixtureExpectedSummary captures the expected totals of a run.
type FixtureExpectedSummary struct {
	Answered     int    `json:"answered"`
	Correct      int    `json:"correct"`
	LegallySound int    `json:"legally_sound"`
	Rejected     int    `json:"rejected"`
	FinalPhase   string `json:"final_phase,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a fixture file. Fixtures are JSONC: comments
// and trailing commas are allowed.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	f.dir = filepath.Dir(path)
	return &f, nil
}

// LoadDeck returns the fixture's deck, resolved relative to the fixture
// file, or the built-in deck when none is named.
func (f *Fixture) LoadDeck() (scenario.Deck, error) {
	if f.Deck == "" {
		return scenario.DefaultDeck(), nil
	}
	path := f.Deck
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.dir, path)
	}
	return scenario.LoadDeck(path)
}

// EngineMode converts the fixture's mode name.
func (f *Fixture) EngineMode() (scenario.Mode, error) {
	switch f.Mode {
	case "", "session":
		return scenario.ModeSession, nil
	case "drill":
		return scenario.ModeDrill, nil
	}
	return scenario.ModeSession, fmt.Errorf("unknown fixture mode %q", f.Mode)
}

// ToSteps converts the fixture's steps to domain steps.
func (f *Fixture) ToSteps() []Step {
	steps := make([]Step, len(f.Steps))
	for i, fs := range f.Steps {
		steps[i] = Step{Action: Action(fs.Action), Option: fs.Option}
	}
	return steps
}

// #endregion fixture-loader

// #region check

// Check compares replay output with the fixture's expectations and
// returns one message per mismatch.
func (f *Fixture) Check(results []StepResult, summary Summary) []string {
	var mismatches []string
	for _, exp := range f.ExpectedResults {
		if exp.Step < 0 || exp.Step >= len(results) {
			mismatches = append(mismatches, fmt.Sprintf("step %d: no such step", exp.Step))
			continue
		}
		got := results[exp.Step]
		if exp.Rejected != (got.Err != nil) {
			mismatches = append(mismatches, fmt.Sprintf("step %d: rejected=%t, got err=%v", exp.Step, exp.Rejected, got.Err))
		}
		if exp.Phase != "" && exp.Phase != got.Phase.String() {
			mismatches = append(mismatches, fmt.Sprintf("step %d: phase=%s, got %s", exp.Step, exp.Phase, got.Phase))
		}
		if exp.Index != nil && *exp.Index != got.Index {
			mismatches = append(mismatches, fmt.Sprintf("step %d: index=%d, got %d", exp.Step, *exp.Index, got.Index))
		}
		if exp.Correct == nil && exp.LegallySound == nil {
			continue
		}
		if got.Result == nil {
			mismatches = append(mismatches, fmt.Sprintf("step %d: expected an evaluation, got none", exp.Step))
			continue
		}
		if exp.Correct != nil && *exp.Correct != got.Result.WasCorrect {
			mismatches = append(mismatches, fmt.Sprintf("step %d: correct=%t, got %t", exp.Step, *exp.Correct, got.Result.WasCorrect))
		}
		if exp.LegallySound != nil && *exp.LegallySound != got.Result.LegallySound {
			mismatches = append(mismatches, fmt.Sprintf("step %d: legally_sound=%t, got %t", exp.Step, *exp.LegallySound, got.Result.LegallySound))
		}
	}

	if es := f.ExpectedSummary; es != nil {
		want := Summary{
			TotalSteps: summary.TotalSteps,
			Rejected:   es.Rejected,
			Score:      scenario.Score{Answered: es.Answered, Correct: es.Correct, LegallySound: es.LegallySound},
			FinalPhase: summary.FinalPhase,
		}
		if es.FinalPhase != "" && es.FinalPhase != summary.FinalPhase.String() {
			mismatches = append(mismatches, fmt.Sprintf("summary: final_phase=%s, got %s", es.FinalPhase, summary.FinalPhase))
		}
		if want != summary {
			mismatches = append(mismatches, fmt.Sprintf("summary: score=%+v rejected=%d, got score=%+v rejected=%d",
				want.Score, want.Rejected, summary.Score, summary.Rejected))
		}
	}
	return mismatches
}

// #endregion check
