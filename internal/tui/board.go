package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/critpath/internal/kanban"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

// BoardModel renders the Kanban columns side by side and tracks the
// selected card.
type BoardModel struct {
	theme    Theme
	width    int
	height   int
	columns  []kanban.Column
	titles   map[string]string
	critical map[string]bool
	col, row int
}

func NewBoardModel(theme Theme) BoardModel {
	return BoardModel{theme: theme, titles: map[string]string{}, critical: map[string]bool{}}
}

func (b *BoardModel) SetDimensions(width, height int) {
	b.width = width
	b.height = height
}

// SetColumns replaces the board contents. The cursor stays in its column
// and is clamped to the new card count.
func (b *BoardModel) SetColumns(columns []kanban.Column, tasks []task.Task) {
	b.columns = columns
	b.titles = make(map[string]string, len(tasks))
	for _, t := range tasks {
		b.titles[t.ID] = t.Title
	}
	b.clamp()
}

// SetCritical marks the tasks drawn in the critical color.
func (b *BoardModel) SetCritical(ids []string) {
	b.critical = make(map[string]bool, len(ids))
	for _, id := range ids {
		b.critical[id] = true
	}
}

// Select puts the cursor on taskID if the board holds it.
func (b *BoardModel) Select(taskID string) {
	for c, col := range b.columns {
		for r, id := range col.TaskIDs {
			if id == taskID {
				b.col, b.row = c, r
				return
			}
		}
	}
}

// Selected returns the card under the cursor.
func (b BoardModel) Selected() (string, task.Status, bool) {
	if b.col >= len(b.columns) {
		return "", "", false
	}
	col := b.columns[b.col]
	if b.row >= len(col.TaskIDs) {
		return "", col.Status, false
	}
	return col.TaskIDs[b.row], col.Status, true
}

// MoveCursor moves the selection by dc columns and dr rows.
func (b *BoardModel) MoveCursor(dc, dr int) {
	b.col += dc
	b.row += dr
	b.clamp()
}

func (b *BoardModel) clamp() {
	if len(b.columns) == 0 {
		b.col, b.row = 0, 0
		return
	}
	b.col = min(max(b.col, 0), len(b.columns)-1)
	n := len(b.columns[b.col].TaskIDs)
	b.row = min(max(b.row, 0), max(n-1, 0))
}

// Neighbor returns the status left (-1) or right (+1) of the selected
// column.
func (b BoardModel) Neighbor(dir int) (task.Status, bool) {
	i := b.col + dir
	if i < 0 || i >= len(b.columns) {
		return "", false
	}
	return b.columns[i].Status, true
}

func (b BoardModel) View() string {
	if len(b.columns) == 0 {
		return b.theme.Muted.Render("no tasks")
	}
	colWidth := max(b.width/len(b.columns)-1, 6)
	rendered := make([]string, len(b.columns))
	for c, col := range b.columns {
		lines := []string{b.theme.ColumnTitle.Render(truncate(fmt.Sprintf("%s (%d)", statusLabel(col.Status), len(col.TaskIDs)), colWidth))}
		for r, id := range col.TaskIDs {
			if len(lines) >= b.height && b.height > 0 {
				lines[len(lines)-1] = b.theme.Muted.Render("…")
				break
			}
			style := b.theme.Card
			if b.critical[id] {
				style = b.theme.CardCritical
			}
			prefix := "  "
			if c == b.col && r == b.row {
				style = b.theme.CardSelected
				prefix = "> "
			}
			label := id
			if t := b.titles[id]; t != "" {
				label = id + " " + t
			}
			lines = append(lines, style.Render(truncate(prefix+label, colWidth)))
		}
		rendered[c] = lipgloss.NewStyle().Width(colWidth).MarginRight(1).Render(strings.Join(lines, "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// truncate shortens s to width cells with a trailing ellipsis.
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
