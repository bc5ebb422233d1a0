package tui

import tea "github.com/charmbracelet/bubbletea"

// lineEditor is a single-line text editor for one documentation field.
// Enter and Esc are handled by the caller.
type lineEditor struct {
	runes   []rune
	cursorX int
}

func newLineEditor(value string) lineEditor {
	r := []rune(value)
	return lineEditor{runes: r, cursorX: len(r)}
}

// Value returns the edited text.
func (editor lineEditor) Value() string { return string(editor.runes) }

// Update applies one key press.
func (editor *lineEditor) Update(message tea.KeyMsg) {
	switch message.Type {
	case tea.KeyRunes, tea.KeySpace:
		runes := message.Runes
		if message.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		for _, character := range runes {
			editor.insertRune(character)
		}

	case tea.KeyBackspace:
		if editor.cursorX > 0 {
			editor.runes = append(editor.runes[:editor.cursorX-1], editor.runes[editor.cursorX:]...)
			editor.cursorX--
		}

	case tea.KeyDelete:
		if editor.cursorX < len(editor.runes) {
			editor.runes = append(editor.runes[:editor.cursorX], editor.runes[editor.cursorX+1:]...)
		}

	case tea.KeyLeft:
		if editor.cursorX > 0 {
			editor.cursorX--
		}

	case tea.KeyRight:
		if editor.cursorX < len(editor.runes) {
			editor.cursorX++
		}

	case tea.KeyHome, tea.KeyCtrlA:
		editor.cursorX = 0

	case tea.KeyEnd, tea.KeyCtrlE:
		editor.cursorX = len(editor.runes)

	case tea.KeyCtrlU:
		editor.runes = append([]rune(nil), editor.runes[editor.cursorX:]...)
		editor.cursorX = 0
	}
}

func (editor *lineEditor) insertRune(character rune) {
	editor.runes = append(editor.runes, 0)
	copy(editor.runes[editor.cursorX+1:], editor.runes[editor.cursorX:])
	editor.runes[editor.cursorX] = character
	editor.cursorX++
}

// Render shows the text with a bar at the cursor.
func (editor lineEditor) Render() string {
	return string(editor.runes[:editor.cursorX]) + "▌" + string(editor.runes[editor.cursorX:])
}
