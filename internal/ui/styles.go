package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Color palette - centralized color definitions
var (
	ColorBorder  = lipgloss.Color("45")  // cyan
	ColorText    = lipgloss.Color("15")  // bright white
	ColorAccent  = lipgloss.Color("51")  // bright cyan
	ColorSuccess = lipgloss.Color("42")  // green
	ColorWarning = lipgloss.Color("220") // yellow
	ColorError   = lipgloss.Color("196") // red
	ColorTextDim = lipgloss.Color("241") // gray
)

// Common styles - reusable style definitions
var (
	// Border style for the debug dashboard frame
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	// Title style for section headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	// Normal text style
	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	// Hint/help text style
	HintStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim).
			Italic(true)

	// Label style for stat names in the dashboard
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	// Stat value style
	StatStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	// Found-code line style
	FoundStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)
)

// NewAppSpinner creates the spinner used across the app
func NewAppSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorAccent)
	return s
}

// NewAppTheme creates a huh theme matching the app's style guide
// White text, cyan highlights
func NewAppTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().
		Foreground(ColorText).
		Bold(true)
	t.Blurred.Title = t.Focused.Title

	t.Focused.Description = lipgloss.NewStyle().
		Foreground(ColorTextDim)
	t.Blurred.Description = t.Focused.Description

	t.Focused.Base = lipgloss.NewStyle().
		Foreground(ColorText)
	t.Blurred.Base = t.Focused.Base

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBorder).
		Bold(true).
		Padding(0, 1)

	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(ColorText).
		Padding(0, 1)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(ColorBorder)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(ColorTextDim)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(ColorBorder)

	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(ColorWarning)
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(ColorWarning)

	return t
}
