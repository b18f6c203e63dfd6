package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

// ---------------------------------------------------------------------------
// Color Palette
// ---------------------------------------------------------------------------

// ColorPrimary is the accent used for titles and the focused panel border.
var ColorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7B78FF"}

// ColorAccent marks the selected card.
var ColorAccent = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}

// ColorSuccess is used for clean schedules and done tasks.
var ColorSuccess = lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}

// ColorWarning is used for dirty or computing schedules.
var ColorWarning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// ColorError is used for failed schedules and critical tasks.
var ColorError = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

// ColorMuted is a subdued foreground for secondary text.
var ColorMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

// ColorBorder is the border of unfocused panels.
var ColorBorder = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"}

// ColorHighlight is the background of the status bar.
var ColorHighlight = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"}

// ---------------------------------------------------------------------------
// Theme
// ---------------------------------------------------------------------------

// Theme holds the lipgloss styles of the board dashboard. Sizes are applied
// at render time.
type Theme struct {
	TitleBar lipgloss.Style

	Panel        lipgloss.Style
	PanelFocused lipgloss.Style
	PanelTitle   lipgloss.Style

	ColumnTitle  lipgloss.Style
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	CardCritical lipgloss.Style

	TableHeader lipgloss.Style
	RowCritical lipgloss.Style

	EventTimestamp lipgloss.Style
	EventMessage   lipgloss.Style
	EventWarning   lipgloss.Style

	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusValue lipgloss.Style

	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
	ErrorText lipgloss.Style
	Muted     lipgloss.Style
}

// DefaultTheme returns the dashboard theme with adaptive colors.
func DefaultTheme() Theme {
	panel := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	return Theme{
		TitleBar: lipgloss.NewStyle().
			Bold(true).
			Background(ColorPrimary).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1),

		Panel:        panel,
		PanelFocused: panel.BorderForeground(ColorPrimary),
		PanelTitle:   lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),

		ColumnTitle: lipgloss.NewStyle().Bold(true).Underline(true),
		Card:        lipgloss.NewStyle(),
		CardSelected: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent),
		CardCritical: lipgloss.NewStyle().Foreground(ColorError),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(ColorMuted),
		RowCritical: lipgloss.NewStyle().Foreground(ColorError),

		EventTimestamp: lipgloss.NewStyle().Foreground(ColorMuted),
		EventMessage:   lipgloss.NewStyle(),
		EventWarning:   lipgloss.NewStyle().Foreground(ColorWarning),

		StatusBar:   lipgloss.NewStyle().Background(ColorHighlight).Padding(0, 1),
		StatusKey:   lipgloss.NewStyle().Foreground(ColorMuted),
		StatusValue: lipgloss.NewStyle().Bold(true),

		HelpKey:   lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
		HelpDesc:  lipgloss.NewStyle().Foreground(ColorMuted),
		ErrorText: lipgloss.NewStyle().Bold(true).Foreground(ColorError),
		Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// StateStyle returns the style of a schedule state label.
func (t Theme) StateStyle(s schedule.State) lipgloss.Style {
	switch s {
	case schedule.StateClean:
		return t.StatusValue.Foreground(ColorSuccess)
	case schedule.StateFailed:
		return t.StatusValue.Foreground(ColorError)
	default:
		return t.StatusValue.Foreground(ColorWarning)
	}
}

// statusLabel is the column heading of a Kanban status.
func statusLabel(s task.Status) string {
	switch s {
	case task.StatusBacklog:
		return "Backlog"
	case task.StatusTodo:
		return "To do"
	case task.StatusInProgress:
		return "In progress"
	case task.StatusReview:
		return "Review"
	case task.StatusDone:
		return "Done"
	default:
		return string(s)
	}
}
