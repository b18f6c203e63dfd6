package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

// StatusBarModel is the one-line summary at the bottom of the dashboard.
type StatusBarModel struct {
	theme        Theme
	width        int
	projectID    string
	state        schedule.State
	generation   uint64
	boardVersion uint64
	finish       string
	note         string
}

func NewStatusBarModel(theme Theme, projectID string) StatusBarModel {
	return StatusBarModel{theme: theme, projectID: projectID, state: schedule.StateDirty}
}

func (sb *StatusBarModel) SetWidth(width int) {
	sb.width = width
}

// SetSchedule records the schedule state shown in the bar.
func (sb *StatusBarModel) SetSchedule(v schedule.View) {
	sb.state = v.State
	sb.generation = v.Generation
	sb.finish = ""
	if v.Result != nil {
		sb.finish = v.Result.ProjectFinish.String()
	}
}

func (sb *StatusBarModel) SetBoardVersion(v uint64) {
	sb.boardVersion = v
}

// SetNote shows a transient message at the right end of the bar.
func (sb *StatusBarModel) SetNote(note string) {
	sb.note = note
}

func (sb StatusBarModel) View() string {
	sep := sb.theme.StatusKey.Render("  |  ")
	parts := []string{
		sb.field("project", sb.theme.StatusValue.Render(sb.projectID)),
		sb.field("schedule", sb.theme.StateStyle(sb.state).Render(sb.state.Status())),
		sb.field("gen", sb.theme.StatusValue.Render(fmt.Sprint(sb.generation))),
		sb.field("board", sb.theme.StatusValue.Render(fmt.Sprintf("v%d", sb.boardVersion))),
	}
	if sb.finish != "" {
		parts = append(parts, sb.field("finish", sb.theme.StatusValue.Render(sb.finish)))
	}
	line := strings.Join(parts, sep)
	if sb.note != "" {
		line += sep + sb.note
	}
	style := sb.theme.StatusBar
	if sb.width > 0 {
		style = style.Width(sb.width).MaxWidth(sb.width)
	}
	return style.Render(lipgloss.NewStyle().Inline(true).Render(line))
}

func (sb StatusBarModel) field(k, v string) string {
	return sb.theme.StatusKey.Render(k+" ") + v
}
