package tui

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/stopcoach/internal/scenario"
	"github.com/danielpatrickdp/stopcoach/internal/session"
	"github.com/danielpatrickdp/stopcoach/internal/storage"
)

func testModel(t *testing.T) (Model, *session.Controller) {
	t.Helper()
	controller, err := session.New(session.Deps{Adapter: storage.NewMemory()})
	require.NoError(t, err)
	t.Cleanup(func() { controller.Close(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, controller.Ready(ctx))

	model := NewModel(controller, t.TempDir())
	updated, _ := model.Update(readyMsg{})
	return updated.(Model), controller
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(model Model, keys ...string) Model {
	for _, k := range keys {
		updated, _ := model.Update(keyMsg(k))
		model = updated.(Model)
	}
	return model
}

func typeText(model Model, text string) Model {
	for _, r := range text {
		model = press(model, string(r))
	}
	return model
}

func TestModelQuit(t *testing.T) {
	model, _ := testModel(t)

	_, command := model.Update(keyMsg("q"))
	require.NotNil(t, command)
	_, isQuit := command().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestModelModeSwitching(t *testing.T) {
	model, controller := testModel(t)
	assert.Equal(t, session.ModeOverview, controller.Mode())
	assert.Contains(t, model.View(), "Three-line script")

	model = press(model, "2")
	assert.Equal(t, session.ModeLearn, controller.Mode())
	assert.Contains(t, model.View(), "Constitutional Anchors")

	model = press(model, "tab")
	assert.Equal(t, session.ModePractice, controller.Mode())

	model = press(model, "tab", "tab")
	assert.Equal(t, session.ModeOverview, controller.Mode())
}

func TestModelPracticeFlow(t *testing.T) {
	model, controller := testModel(t)
	model = press(model, "3")
	assert.Contains(t, model.View(), "Do you know why I pulled you over?")

	model = press(model, "a")
	state, _, _ := controller.Practice()
	require.Equal(t, scenario.PhaseFeedback, state.Phase)
	assert.Contains(t, model.View(), "Protected response")
	assert.Len(t, controller.History(), 1)

	model = press(model, "r")
	state, _, _ = controller.Practice()
	assert.Equal(t, scenario.PhasePresenting, state.Phase)
	assert.Equal(t, 0, state.Index)

	model = press(model, "b", "n")
	state, _, _ = controller.Practice()
	assert.Equal(t, scenario.PhasePresenting, state.Phase)
	assert.Equal(t, 1, state.Index)
	assert.Len(t, controller.History(), 2)
	assert.Equal(t, 2, controller.Score().Answered)
}

func TestModelIgnoresMissingOption(t *testing.T) {
	model, controller := testModel(t)
	model = press(model, "3", "f")

	state, _, _ := controller.Practice()
	assert.Equal(t, scenario.PhasePresenting, state.Phase)
	assert.Empty(t, controller.History())
}

func TestModelCompletesRun(t *testing.T) {
	model, controller := testModel(t)
	model = press(model, "3")
	for i := 0; i < controller.DeckLen(); i++ {
		model = press(model, "a", "n")
	}
	state, _, _ := controller.Practice()
	require.Equal(t, scenario.PhaseComplete, state.Phase)
	assert.Contains(t, model.View(), "Run complete")

	press(model, "n")
	state, _, _ = controller.Practice()
	assert.Equal(t, scenario.PhasePresenting, state.Phase)
	assert.Equal(t, 0, controller.Score().Answered)
}

func TestModelEditField(t *testing.T) {
	model, controller := testModel(t)
	model = press(model, "4", "j", "j", "enter")
	require.True(t, model.editing)

	model = typeText(model, "Main Stt")
	model = press(model, "backspace")
	assert.Contains(t, model.View(), "Main St▌")
	model = press(model, "enter")

	assert.False(t, model.editing)
	assert.Equal(t, "Main St", controller.Documentation().Location)
}

func TestModelEditCancel(t *testing.T) {
	model, controller := testModel(t)
	model = press(model, "4", "enter")
	model = typeText(model, "2026-01-01")
	model = press(model, "esc")

	assert.False(t, model.editing)
	assert.Empty(t, controller.Documentation().StopDate)
}

func TestModelToggleFlag(t *testing.T) {
	model, controller := testModel(t)
	model = press(model, "4")
	for range model.items {
		model = press(model, "j")
	}
	// Cursor clamps on the last row, the search flag.
	model = press(model, " ")
	assert.True(t, controller.Documentation().SearchConducted)

	model = press(model, "k", "enter")
	assert.True(t, controller.Documentation().ConsentRequested)
	assert.False(t, model.editing)
}

func TestModelTemplate(t *testing.T) {
	model, controller := testModel(t)
	press(model, "4", "m")

	rec := controller.Documentation()
	assert.Equal(t, "Dash/body camera noted. Personal recording saved.", rec.Recording)
	assert.NotEmpty(t, rec.StopDate)
}

func TestModelClearNeedsConfirmation(t *testing.T) {
	model, controller := testModel(t)
	model = press(model, "4", "enter")
	model = typeText(model, "2026-01-01")
	model = press(model, "enter", "C", "n")

	assert.False(t, model.confirmClear)
	assert.Equal(t, "Clear cancelled", model.notice)
	assert.Equal(t, "2026-01-01", controller.Documentation().StopDate)

	model = press(model, "C")
	require.True(t, model.confirmClear)
	updated, command := model.Update(keyMsg("y"))
	require.NotNil(t, command)
	model = updated.(Model)

	updated, _ = model.Update(command())
	model = updated.(Model)
	assert.Equal(t, "Incident log cleared", model.notice)
	assert.Empty(t, controller.Documentation().StopDate)
}

func TestModelExport(t *testing.T) {
	model, _ := testModel(t)
	model = press(model, "4", "x")

	require.True(t, strings.HasPrefix(model.notice, "Exported to "), model.notice)
	path := strings.TrimPrefix(model.notice, "Exported to ")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TRAFFIC STOP INCIDENT REPORT")
}

func TestModelDocumentWaitsForReady(t *testing.T) {
	controller, err := session.New(session.Deps{Adapter: storage.NewMemory()})
	require.NoError(t, err)
	t.Cleanup(func() { controller.Close(context.Background()) })

	model := NewModel(controller, t.TempDir())
	model = press(model, "4", "enter")
	assert.False(t, model.editing)
	assert.Contains(t, model.View(), "Loading saved log")
}

func TestLineEditor(t *testing.T) {
	editor := newLineEditor("badge")
	editor.Update(tea.KeyMsg{Type: tea.KeyHome})
	editor.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("#")})
	editor.Update(tea.KeyMsg{Type: tea.KeyEnd})
	editor.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	editor.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("12")})
	assert.Equal(t, "#badge 12", editor.Value())

	editor.Update(tea.KeyMsg{Type: tea.KeyLeft})
	editor.Update(tea.KeyMsg{Type: tea.KeyDelete})
	assert.Equal(t, "#badge 1", editor.Value())
	assert.Equal(t, "#badge 1▌", editor.Render())

	editor.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "#badge ▌1", editor.Render())
}
