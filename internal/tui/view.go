package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danielpatrickdp/stopcoach/internal/history"
	"github.com/danielpatrickdp/stopcoach/internal/scenario"
	"github.com/danielpatrickdp/stopcoach/internal/session"
)

// View implements tea.Model.
func (model Model) View() string {
	var b strings.Builder
	b.WriteString(model.renderTabs())
	b.WriteString("\n\n")

	switch model.controller.Mode() {
	case session.ModeOverview:
		b.WriteString(model.renderOverview())
	case session.ModeLearn:
		b.WriteString(model.renderLearn())
	case session.ModePractice:
		b.WriteString(model.renderPractice())
	case session.ModeDocument:
		b.WriteString(model.renderDocument())
	}

	b.WriteString("\n")
	b.WriteString(model.renderStatusBar())
	return b.String()
}

func (model Model) renderTabs() string {
	active := lipgloss.NewStyle().
		Foreground(model.theme.SelectedForeground).
		Background(model.theme.SelectedBackground).
		Bold(true).
		Padding(0, 1)
	inactive := lipgloss.NewStyle().
		Foreground(model.theme.FaintText).
		Padding(0, 1)

	var tabs []string
	for i, m := range session.Modes() {
		label := fmt.Sprintf("%d %s", i+1, m.Label())
		if m == model.controller.Mode() {
			tabs = append(tabs, active.Render(label))
		} else {
			tabs = append(tabs, inactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (model Model) header(s string) string {
	return lipgloss.NewStyle().
		Foreground(model.theme.HeaderForeground).
		Bold(true).
		Render(s)
}

func (model Model) faint(s string) string {
	return lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(s)
}

// #region overview
func (model Model) renderOverview() string {
	var b strings.Builder
	b.WriteString(model.header("Three-line script"))
	b.WriteString("\n")
	for i, line := range model.controller.ScriptLines() {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, line)
	}

	score := model.controller.Score()
	b.WriteString("\n")
	b.WriteString(model.header("This run"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %d answered, %d protected, %d legally safe\n",
		score.Answered, score.Correct, score.LegallySound)

	b.WriteString("\n")
	b.WriteString(model.header("Recent practice"))
	b.WriteString("\n")
	entries := model.controller.History()
	if len(entries) == 0 {
		b.WriteString(model.faint("  No practice sessions yet."))
		b.WriteString("\n")
	}
	for _, e := range entries {
		b.WriteString(model.renderHistoryEntry(e))
	}
	return b.String()
}

func (model Model) renderHistoryEntry(e history.Entry) string {
	outcome := lipgloss.NewStyle().Foreground(model.theme.Protected).Render("Protected")
	if !e.WasCorrect {
		outcome = lipgloss.NewStyle().Foreground(model.theme.Risky).Render("Risky")
	}
	legal := "Legally safe"
	if !e.LegallySound {
		legal = lipgloss.NewStyle().Foreground(model.theme.Exposure).Render("Creates exposure")
	}
	return fmt.Sprintf("  %s\n    %s\n    %s - %s\n",
		e.ScenarioPrompt, model.faint(e.ChosenText), outcome, legal)
}
// #endregion overview

func (model Model) renderLearn() string {
	var b strings.Builder
	for i, lane := range model.controller.Lanes() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(model.header(lane.Title))
		b.WriteString("\n")
		for _, item := range lane.Items {
			fmt.Fprintf(&b, "  • %s\n", item)
		}
	}
	return b.String()
}

// #region practice
func (model Model) renderPractice() string {
	state, current, ok := model.controller.Practice()
	if state.Phase == scenario.PhaseComplete {
		score := model.controller.Score()
		return fmt.Sprintf("%s\n  %d of %d protected, %d legally safe\n\n%s\n",
			model.header("Run complete"),
			score.Correct, score.Answered, score.LegallySound,
			model.faint("Press n or R to start again."))
	}
	if !ok {
		return model.faint("No scenario in progress.") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", model.faint(fmt.Sprintf("Scenario %d of %d", state.Index+1, model.controller.DeckLen())))
	b.WriteString(model.header("Officer: "))
	fmt.Fprintf(&b, "%q\n\n", current.Prompt)

	if state.Phase == scenario.PhaseFeedback && state.Result != nil {
		b.WriteString(model.renderFeedback(*state.Result))
		return b.String()
	}
	for i, opt := range current.Options {
		fmt.Fprintf(&b, "  %c) %s\n", 'a'+i, opt.Text)
	}
	return b.String()
}

func (model Model) renderFeedback(r scenario.EvaluationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  You said: %s\n\n", r.ChosenText)
	if r.WasCorrect {
		b.WriteString(lipgloss.NewStyle().Foreground(model.theme.Protected).Bold(true).Render("  Protected response"))
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(model.theme.Risky).Bold(true).Render("  Risky response"))
	}
	b.WriteString("  ")
	if r.LegallySound {
		b.WriteString(model.faint("legally safe"))
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(model.theme.Exposure).Render("creates exposure"))
	}
	fmt.Fprintf(&b, "\n  %s\n\n", r.Explanation)
	b.WriteString(model.faint("n next scenario · r review choices"))
	b.WriteString("\n")
	return b.String()
}
// #endregion practice

// #region document
func (model Model) renderDocument() string {
	if !model.ready || model.controller.Loading() {
		return model.faint("Loading saved log...") + "\n"
	}
	record := model.controller.Documentation()
	selected := lipgloss.NewStyle().
		Foreground(model.theme.SelectedForeground).
		Background(model.theme.SelectedBackground)

	var b strings.Builder
	for i, item := range model.items {
		var label, value string
		if item.isFlag {
			on, _ := record.GetFlag(item.flag)
			box := "[ ]"
			if on {
				box = "[x]"
			}
			label, value = item.flag.Label(), box
		} else {
			label = item.field.Label()
			value, _ = record.Get(item.field)
			if model.editing && i == model.docCursor {
				value = model.editor.Render()
			} else if value == "" {
				value = model.faint("-")
			}
		}
		line := fmt.Sprintf("%-24s %s", label, value)
		if i == model.docCursor {
			line = selected.Render(fmt.Sprintf("%-24s", label)) + " " + value
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if !record.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "\n%s\n", model.faint("Last edited "+record.UpdatedAt.Local().Format("2006-01-02 15:04:05")))
	}
	return b.String()
}
// #endregion document

func (model Model) renderStatusBar() string {
	status := model.controller.SaveStatus()
	statusText := lipgloss.NewStyle().
		Foreground(model.theme.SaveStatusColor(status)).
		Render(status.String())

	help := model.faint(model.helpLine())
	bar := statusText + "  " + help
	if model.notice != "" {
		color := model.theme.NormalText
		if model.noticeIsErr {
			color = model.theme.StatusFailed
		}
		bar = lipgloss.NewStyle().Foreground(color).Render(model.notice) + "\n" + bar
	}
	return bar
}

func (model Model) helpLine() string {
	switch {
	case model.editing:
		return "enter save · esc cancel"
	case model.confirmClear:
		return "y confirm · n cancel"
	}
	switch model.controller.Mode() {
	case session.ModePractice:
		return "a-f answer · n next · r review · R restart · tab screens · q quit"
	case session.ModeDocument:
		return "j/k move · enter edit · space toggle · t/m templates · x export · C clear · q quit"
	}
	return "1-4 screens · tab next · q quit"
}
