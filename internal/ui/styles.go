package ui

import (
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Palette.
const (
	accent  = lipgloss.Color("#FF8C42")
	amber   = lipgloss.Color("#FFB84D")
	sky     = lipgloss.Color("#4DA8FF")
	mint    = lipgloss.Color("#7BD88F")
	gray    = lipgloss.Color("#6B7280")
	white   = lipgloss.Color("#FFFFFF")
	danger  = lipgloss.Color("#FF4757")
	caution = lipgloss.Color("#FFD166")
)

// Layout.
var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginTop(1)
	SubtitleStyle = lipgloss.NewStyle().Foreground(gray).MarginBottom(1)
	HelpStyle     = lipgloss.NewStyle().Foreground(gray).MarginTop(1)
	MutedStyle    = lipgloss.NewStyle().Foreground(gray)
	BoxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)
)

// Column checklist.
var (
	SelectedStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)
	UnselectedStyle = lipgloss.NewStyle().Foreground(white)
	CheckedStyle    = lipgloss.NewStyle().Foreground(amber).Bold(true)
)

// Outcomes. OutputPathStyle marks where a converted file was written.
var (
	SuccessStyle    = lipgloss.NewStyle().Foreground(amber).Bold(true)
	WarningStyle    = lipgloss.NewStyle().Foreground(caution)
	ErrorStyle      = lipgloss.NewStyle().Foreground(danger).Bold(true)
	OutputPathStyle = lipgloss.NewStyle().Foreground(amber).Underline(true)
)

// seriesStyles colors chart bars, cycling when there are more series.
var seriesStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(accent),
	lipgloss.NewStyle().Foreground(sky),
	lipgloss.NewStyle().Foreground(amber),
	lipgloss.NewStyle().Foreground(mint),
}

// pickerStyles lists data files in the palette, leaving directories
// visible for navigation.
func pickerStyles() filepicker.Styles {
	s := filepicker.DefaultStyles()
	s.Cursor = lipgloss.NewStyle().Foreground(accent)
	s.Symlink = lipgloss.NewStyle().Foreground(amber)
	s.Directory = lipgloss.NewStyle().Foreground(amber)
	s.File = lipgloss.NewStyle().Foreground(white)
	s.Permission = MutedStyle
	s.Selected = SelectedStyle
	s.FileSize = MutedStyle
	return s
}

// previewStyles underlines the header row of the preview grid.
func previewStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(accent).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.Foreground(white).Background(accent)
	return s
}
