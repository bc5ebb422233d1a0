package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/stopcoach/internal/incident"
	"github.com/danielpatrickdp/stopcoach/internal/scenario"
	"github.com/danielpatrickdp/stopcoach/internal/storage"
)

func threeDeck() scenario.Deck {
	opts := func(sound ...bool) []scenario.Option {
		out := make([]scenario.Option, len(sound))
		for i, s := range sound {
			out[i] = scenario.Option{Text: string(rune('A' + i)), LegallySound: s}
		}
		return out
	}
	return scenario.Deck{
		Script: []string{"line one"},
		Scenarios: []scenario.Scenario{
			{Prompt: "first", CorrectIndex: 0, Options: opts(true, false, true)},
			{Prompt: "second", CorrectIndex: 1, Options: opts(false, true)},
			{Prompt: "third", CorrectIndex: 0, Options: opts(true, false)},
		},
	}
}

func ctxT(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newController(t *testing.T, deps Deps) *Controller {
	t.Helper()
	if deps.Adapter == nil {
		deps.Adapter = storage.NewMemory()
	}
	c, err := New(deps)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(context.Background()) })
	require.NoError(t, c.Ready(ctxT(t)))
	return c
}

func TestNewRejectsInvalidDeck(t *testing.T) {
	_, err := New(Deps{
		Adapter: storage.NewMemory(),
		Deck: scenario.Deck{Scenarios: []scenario.Scenario{
			{Prompt: "p", CorrectIndex: 4, Options: []scenario.Option{{}, {}}},
		}},
	})
	assert.ErrorIs(t, err, scenario.ErrInvalidDeck)

	_, err = New(Deps{})
	assert.Error(t, err)
}

func TestDefaultsToCanonicalDeck(t *testing.T) {
	c := newController(t, Deps{})
	assert.Equal(t, 6, c.DeckLen())
	assert.Len(t, c.ScriptLines(), 3)
	assert.Len(t, c.Lanes(), 3)
	assert.Equal(t, ModeOverview, c.Mode())
}

func TestModes(t *testing.T) {
	c := newController(t, Deps{})
	for _, m := range Modes() {
		require.NoError(t, c.SetMode(m))
		assert.Equal(t, m, c.Mode())
		assert.NotEmpty(t, m.Label())
	}
	assert.ErrorIs(t, c.SetMode("settings"), ErrUnknownMode)
	assert.Equal(t, ModeDocument, c.Mode())
}

func TestPracticeRecordsHistoryWithCapacity(t *testing.T) {
	c := newController(t, Deps{Deck: threeDeck(), HistoryCapacity: 2})

	for i := 0; i < 3; i++ {
		_, err := c.Choose(0)
		require.NoError(t, err)
		_, err = c.Next()
		require.NoError(t, err)
	}

	h := c.History()
	require.Len(t, h, 2)
	assert.Equal(t, "third", h[0].ScenarioPrompt)
	assert.Equal(t, "second", h[1].ScenarioPrompt)

	st, _, ok := c.Practice()
	assert.False(t, ok)
	assert.Equal(t, scenario.PhaseComplete, st.Phase)
	assert.Equal(t, scenario.Score{Answered: 3, Correct: 2, LegallySound: 2}, c.Score())

	c.Restart()
	st, s, ok := c.Practice()
	require.True(t, ok)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, "first", s.Prompt)
}

func TestChooseExposesBothFlags(t *testing.T) {
	c := newController(t, Deps{Deck: threeDeck()})

	r, err := c.Choose(2)
	require.NoError(t, err)
	assert.False(t, r.WasCorrect)
	assert.True(t, r.LegallySound)

	h := c.History()
	require.Len(t, h, 1)
	assert.False(t, h[0].WasCorrect)
	assert.True(t, h[0].LegallySound)

	_, err = c.Choose(0)
	assert.ErrorIs(t, err, scenario.ErrInvalidTransition)

	st, err := c.Review()
	require.NoError(t, err)
	assert.Equal(t, scenario.PhasePresenting, st.Phase)
}

func TestDrillModeWrapsThroughController(t *testing.T) {
	c := newController(t, Deps{Deck: threeDeck(), EngineMode: scenario.ModeDrill})
	assert.Equal(t, scenario.ModeDrill, c.EngineMode())
	for i := 0; i < 3; i++ {
		_, err := c.Choose(0)
		require.NoError(t, err)
		_, err = c.Next()
		require.NoError(t, err)
	}
	st, s, ok := c.Practice()
	require.True(t, ok)
	assert.Equal(t, scenario.PhasePresenting, st.Phase)
	assert.Equal(t, "first", s.Prompt)
}

func TestClearRequiresConfirmation(t *testing.T) {
	mem := storage.NewMemory()
	c := newController(t, Deps{Adapter: mem})
	require.NoError(t, c.EditField(incident.FieldLocation, "Broadway"))

	assert.ErrorIs(t, c.Clear(ctxT(t), false), ErrClearNotConfirmed)
	assert.Equal(t, "Broadway", c.Documentation().Location)

	require.NoError(t, c.Clear(ctxT(t), true))
	assert.Equal(t, "", c.Documentation().Location)

	rec, found, err := incident.Load(context.Background(), mem)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "", rec.Location)
}

func TestToggleFlagAndTemplate(t *testing.T) {
	c := newController(t, Deps{})

	require.NoError(t, c.ToggleFlag(incident.FlagSearchConducted))
	assert.True(t, c.Documentation().SearchConducted)
	require.NoError(t, c.ToggleFlag(incident.FlagSearchConducted))
	assert.False(t, c.Documentation().SearchConducted)

	require.NoError(t, c.ApplyTemplate(incident.TemplateMinimalFacts))
	assert.NotEmpty(t, c.Documentation().StopDate)
	assert.Error(t, c.ToggleFlag("nope"))
}

func TestExport(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	c := newController(t, Deps{Now: func() time.Time { return now }, Location: time.UTC})
	require.NoError(t, c.EditField(incident.FieldBadge, "221"))

	dir := t.TempDir()
	path, err := c.Export(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "traffic-stop-log-2026-10-15.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "Badge: 221\n"))
}

func TestExportNamedForLocalDay(t *testing.T) {
	// 02:30 UTC on the 16th is still the evening of the 15th in New York.
	now := time.Date(2026, 10, 16, 2, 30, 0, 0, time.UTC)
	eastern := time.FixedZone("EDT", -4*60*60)
	c := newController(t, Deps{Now: func() time.Time { return now }, Location: eastern})

	dir := t.TempDir()
	path, err := c.Export(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "traffic-stop-log-2026-10-15.txt"), path)
}

func TestStateSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coach.db")

	first, err := New(Deps{Adapter: storage.NewSQLite(path), Deck: threeDeck()})
	require.NoError(t, err)
	require.NoError(t, first.Ready(ctxT(t)))
	require.NoError(t, first.EditField(incident.FieldAgency, "KSP"))
	_, err = first.Choose(1)
	require.NoError(t, err)
	require.NoError(t, first.Close(ctxT(t)))

	second := newController(t, Deps{Adapter: storage.NewSQLite(path), Deck: threeDeck()})
	assert.Equal(t, "KSP", second.Documentation().Agency)
	h := second.History()
	require.Len(t, h, 1)
	assert.Equal(t, "first", h[0].ScenarioPrompt)
	assert.Equal(t, "B", h[0].ChosenText)
}
