package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/danielpatrickdp/stopcoach/internal/incident"
)

// Theme is the color palette. Colors are ANSI 256 codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Answer outcomes.
	Protected lipgloss.Color
	Risky     lipgloss.Color
	Exposure  lipgloss.Color

	// Save status.
	StatusSaved   lipgloss.Color
	StatusPending lipgloss.Color
	StatusFailed  lipgloss.Color
}

// DefaultTheme targets dark terminals.
var DefaultTheme = Theme{
	NormalText:         lipgloss.Color("252"),
	FaintText:          lipgloss.Color("243"),
	SelectedBackground: lipgloss.Color("24"),
	SelectedForeground: lipgloss.Color("231"),
	HeaderForeground:   lipgloss.Color("75"),
	BorderColor:        lipgloss.Color("238"),
	HelpText:           lipgloss.Color("241"),
	Protected:          lipgloss.Color("42"),
	Risky:              lipgloss.Color("214"),
	Exposure:           lipgloss.Color("203"),
	StatusSaved:        lipgloss.Color("42"),
	StatusPending:      lipgloss.Color("221"),
	StatusFailed:       lipgloss.Color("203"),
}

// SaveStatusColor returns the color for a documentation save status.
func (theme Theme) SaveStatusColor(s incident.Status) lipgloss.Color {
	switch s {
	case incident.StatusSaved:
		return theme.StatusSaved
	case incident.StatusNotSaved:
		return theme.StatusFailed
	default:
		return theme.StatusPending
	}
}
