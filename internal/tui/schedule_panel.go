package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

// SchedulePanel shows the published schedule of the project in a
// scrollable viewport.
type SchedulePanel struct {
	theme    Theme
	view     schedule.View
	viewport viewport.Model
}

func NewSchedulePanel(theme Theme) SchedulePanel {
	return SchedulePanel{theme: theme, viewport: viewport.New(0, 0)}
}

func (p *SchedulePanel) SetDimensions(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = height
	p.rebuild()
}

// SetView replaces the displayed schedule.
func (p *SchedulePanel) SetView(v schedule.View) {
	p.view = v
	p.rebuild()
}

// Update forwards scrolling keys to the viewport.
func (p SchedulePanel) Update(msg tea.Msg) (SchedulePanel, tea.Cmd) {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p SchedulePanel) View() string {
	return p.viewport.View()
}

func (p *SchedulePanel) rebuild() {
	p.viewport.SetContent(p.content())
}

func (p SchedulePanel) content() string {
	var sb strings.Builder
	if p.view.Err != nil && p.view.State == schedule.StateFailed {
		sb.WriteString(p.theme.ErrorText.Render("cannot schedule: " + p.view.Err.Error()))
		sb.WriteString("\n\n")
	}
	res := p.view.Result
	if res == nil {
		sb.WriteString(p.theme.Muted.Render("not scheduled yet; press r to recompute"))
		return sb.String()
	}

	fmt.Fprintf(&sb, "%s  start %s  finish %s  %d day(s)\n\n", res.Mode, res.ProjectStart, res.ProjectFinish, res.DurationDays)
	sb.WriteString(p.theme.TableHeader.Render(fmt.Sprintf("%-10s %4s %-10s %-10s %5s", "TASK", "DUR", "ES", "LF", "SLACK")))
	sb.WriteString("\n")
	for _, tt := range res.Tasks {
		line := fmt.Sprintf("%-10s %4d %-10s %-10s %5d", truncate(tt.ID, 10), tt.Duration, tt.EarlyStart, tt.LateFinish, tt.Slack)
		if tt.IsCritical {
			line = p.theme.RowCritical.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if len(res.CriticalPaths) > 0 {
		sb.WriteString("\n")
		sb.WriteString(p.theme.PanelTitle.Render("Critical paths"))
		sb.WriteString("\n")
		for _, path := range res.CriticalPaths {
			sb.WriteString("  " + strings.Join(path, " -> ") + "\n")
		}
	}
	for _, w := range res.Warnings {
		sb.WriteString(p.theme.EventWarning.Render("warning: "+w.Message) + "\n")
	}
	return sb.String()
}
