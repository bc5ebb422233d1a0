package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/danielpatrickdp/stopcoach/internal/incident"
	"github.com/danielpatrickdp/stopcoach/internal/scenario"
	"github.com/danielpatrickdp/stopcoach/internal/session"
)

// refreshInterval is how often the view re-reads the save status, which
// changes on background goroutines.
const refreshInterval = 500 * time.Millisecond

// readyMsg is delivered once the controller has restored saved state.
type readyMsg struct {
	err error
}

// refreshTickMsg drives periodic redraws.
type refreshTickMsg struct{}

// clearResultMsg is sent when an asynchronous clear completes.
type clearResultMsg struct {
	err error
}

// docItem is one selectable row on the document screen: a text field or
// a flag.
type docItem struct {
	field  incident.Field
	flag   incident.Flag
	isFlag bool
}

func docItems() []docItem {
	var items []docItem
	for _, f := range incident.Fields() {
		items = append(items, docItem{field: f})
	}
	for _, f := range incident.Flags() {
		items = append(items, docItem{flag: f, isFlag: true})
	}
	return items
}

// Model is the bubbletea model for the trainer. All state lives in the
// session controller; the model only tracks screen-local UI state.
type Model struct {
	controller *session.Controller
	keys       KeyMap
	theme      Theme
	exportDir  string

	width  int
	height int

	ready    bool
	readyErr error

	items        []docItem
	docCursor    int
	editing      bool
	editor       lineEditor
	confirmClear bool
	clearing     bool

	notice      string
	noticeIsErr bool
}

// NewModel creates a model over controller. Exports are written to
// exportDir.
func NewModel(controller *session.Controller, exportDir string) Model {
	return Model{
		controller: controller,
		keys:       DefaultKeyMap,
		theme:      DefaultTheme,
		exportDir:  exportDir,
		items:      docItems(),
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return tea.Batch(waitReady(model.controller), scheduleRefresh())
}

func waitReady(controller *session.Controller) tea.Cmd {
	return func() tea.Msg {
		return readyMsg{err: controller.Ready(context.Background())}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func clearDocumentation(controller *session.Controller) tea.Cmd {
	return func() tea.Msg {
		return clearResultMsg{err: controller.Clear(context.Background(), true)}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case readyMsg:
		model.ready = true
		model.readyErr = message.err
		if message.err != nil {
			model.setError(fmt.Errorf("restore saved state: %w", message.err))
		}
		return model, nil

	case refreshTickMsg:
		return model, scheduleRefresh()

	case clearResultMsg:
		model.clearing = false
		if message.err != nil {
			model.setError(message.err)
		} else {
			model.setNotice("Incident log cleared")
		}
		return model, nil

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		return model, nil

	case tea.KeyMsg:
		return model.handleKey(message)
	}
	return model, nil
}

func (model *Model) setNotice(s string) {
	model.notice = s
	model.noticeIsErr = false
}

func (model *Model) setError(err error) {
	model.notice = err.Error()
	model.noticeIsErr = true
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.Type == tea.KeyCtrlC {
		return model, tea.Quit
	}
	// Inline editing takes all input until Enter or Esc.
	if model.editing {
		return model.handleEditKeys(message)
	}
	if model.confirmClear {
		return model.handleConfirmKeys(message)
	}

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.Overview):
		return model.switchMode(session.ModeOverview)
	case key.Matches(message, model.keys.Learn):
		return model.switchMode(session.ModeLearn)
	case key.Matches(message, model.keys.Practice):
		return model.switchMode(session.ModePractice)
	case key.Matches(message, model.keys.Document):
		return model.switchMode(session.ModeDocument)
	case key.Matches(message, model.keys.NextMode):
		modes := session.Modes()
		for i, m := range modes {
			if m == model.controller.Mode() {
				return model.switchMode(modes[(i+1)%len(modes)])
			}
		}
		return model, nil
	}

	switch model.controller.Mode() {
	case session.ModePractice:
		return model.handlePracticeKeys(message)
	case session.ModeDocument:
		return model.handleDocumentKeys(message)
	}
	return model, nil
}

func (model Model) switchMode(m session.Mode) (tea.Model, tea.Cmd) {
	if err := model.controller.SetMode(m); err != nil {
		model.setError(err)
		return model, nil
	}
	model.notice = ""
	return model, nil
}

// #region practice-keys
func (model Model) handlePracticeKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	state, current, _ := model.controller.Practice()

	switch {
	case key.Matches(message, model.keys.Choose):
		if state.Phase != scenario.PhasePresenting || len(message.Runes) != 1 {
			return model, nil
		}
		index := int(message.Runes[0] - 'a')
		if index < 0 || index >= len(current.Options) {
			return model, nil
		}
		if _, err := model.controller.Choose(index); err != nil {
			model.setError(err)
			return model, nil
		}
		model.notice = ""

	case key.Matches(message, model.keys.Review):
		if state.Phase == scenario.PhaseFeedback {
			if _, err := model.controller.Review(); err != nil {
				model.setError(err)
			}
		}

	case key.Matches(message, model.keys.Restart):
		model.controller.Restart()
		model.setNotice("New run started")

	case key.Matches(message, model.keys.Next):
		switch state.Phase {
		case scenario.PhaseFeedback:
			if _, err := model.controller.Next(); err != nil {
				model.setError(err)
			}
		case scenario.PhaseComplete:
			model.controller.Restart()
			model.setNotice("New run started")
		}
	}
	return model, nil
}
// #endregion practice-keys

// #region document-keys
func (model Model) handleDocumentKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !model.ready {
		return model, nil
	}
	item := model.items[model.docCursor]

	switch {
	case key.Matches(message, model.keys.Up):
		if model.docCursor > 0 {
			model.docCursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.docCursor < len(model.items)-1 {
			model.docCursor++
		}

	case key.Matches(message, model.keys.Toggle):
		if item.isFlag {
			model.toggle(item.flag)
		}

	case key.Matches(message, model.keys.Edit):
		if item.isFlag {
			model.toggle(item.flag)
			return model, nil
		}
		value, err := model.controller.Documentation().Get(item.field)
		if err != nil {
			model.setError(err)
			return model, nil
		}
		model.editor = newLineEditor(value)
		model.editing = true

	case key.Matches(message, model.keys.TemplateBase):
		model.applyTemplate(incident.TemplateBaseline)

	case key.Matches(message, model.keys.TemplateFacts):
		model.applyTemplate(incident.TemplateMinimalFacts)

	case key.Matches(message, model.keys.Export):
		path, err := model.controller.Export(model.exportDir)
		if err != nil {
			model.setError(err)
			return model, nil
		}
		model.setNotice("Exported to " + path)

	case key.Matches(message, model.keys.Clear):
		if !model.clearing {
			model.confirmClear = true
			model.setNotice("Clear all saved documentation? (y/n)")
		}
	}
	return model, nil
}

func (model *Model) toggle(f incident.Flag) {
	if err := model.controller.ToggleFlag(f); err != nil {
		model.setError(err)
	}
}

func (model *Model) applyTemplate(name string) {
	if err := model.controller.ApplyTemplate(name); err != nil {
		model.setError(err)
		return
	}
	model.setNotice("Applied template: " + name)
}

func (model Model) handleEditKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEsc:
		model.editing = false
		return model, nil
	case tea.KeyEnter:
		model.editing = false
		field := model.items[model.docCursor].field
		if err := model.controller.EditField(field, model.editor.Value()); err != nil {
			model.setError(err)
		}
		return model, nil
	}
	model.editor.Update(message)
	return model, nil
}

func (model Model) handleConfirmKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Confirm):
		model.confirmClear = false
		model.clearing = true
		model.setNotice("Clearing...")
		return model, clearDocumentation(model.controller)
	case key.Matches(message, model.keys.Cancel):
		model.confirmClear = false
		model.setNotice("Clear cancelled")
	}
	return model, nil
}
// #endregion document-keys
