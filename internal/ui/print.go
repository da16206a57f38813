package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// PrintFound prints a newly discovered code
func PrintFound(code string) {
	fmt.Println("Found code:", FoundStyle.Render(code))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	successStyle := lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Bold(true)
	fmt.Println(successStyle.Render(message))
}

// PrintError prints an error message to stderr
func PrintError(message string) {
	errorStyle := lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+message))
}
