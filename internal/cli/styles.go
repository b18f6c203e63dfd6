package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/critpath/internal/config"
)

// Styles honour --no-color through the colour profile set in the root
// PersistentPreRunE.
var (
	styleHeader    = lipgloss.NewStyle().Bold(true)
	styleSection   = lipgloss.NewStyle().Bold(true)
	styleDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleErrorLbl  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // red
	styleWarnLbl   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true) // yellow
	styleSuccess   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))            // green
	styleCritical  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleCellRight = lipgloss.NewStyle().Align(lipgloss.Right)
)

// sourceStyle colours a configuration source label.
func sourceStyle(src config.ConfigSource) lipgloss.Style {
	switch src {
	case config.SourceFile:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // bright blue
	case config.SourceEnv:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // bright yellow
	case config.SourceCLI:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // bright red
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // bright green
	}
}

// underline renders a title followed by a rule of the same width.
func underline(title, rule string) string {
	return styleHeader.Render(title) + "\n" + strings.Repeat(rule, len(title))
}
