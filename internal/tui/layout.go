package tui

import "github.com/charmbracelet/lipgloss"

const (
	MinTerminalWidth  = 80
	MinTerminalHeight = 20

	TitleBarHeight  = 1
	StatusBarHeight = 1

	// frame is the rows or columns a bordered panel spends on its border.
	frame = 2
)

// PanelDimensions is the inner size of a panel, border excluded.
type PanelDimensions struct {
	Width  int
	Height int
}

// Layout holds the panel sizes for one terminal size.
//
//	+---------------------------------------------+
//	| Title bar                                   |
//	+-----------------------+---------------------+
//	| Board                 | Schedule            |
//	|                       |                     |
//	+-----------------------+---------------------+
//	| Event log (optional)                        |
//	+---------------------------------------------+
//	| Status bar                                  |
//	+---------------------------------------------+
type Layout struct {
	Width, Height int

	Board    PanelDimensions
	Schedule PanelDimensions
	EventLog PanelDimensions
}

// ComputeLayout splits a width x height terminal. The board gets 45% of
// the width and the event log a quarter of the content rows when shown.
func ComputeLayout(width, height int, showLog bool) Layout {
	l := Layout{Width: width, Height: height}
	content := height - TitleBarHeight - StatusBarHeight
	logRows := 0
	if showLog {
		logRows = max(content/4, 3+frame)
		l.EventLog = PanelDimensions{Width: max(width-frame, 0), Height: max(logRows-frame, 0)}
	}
	upper := max(content-logRows, frame)

	boardOuter := width * 45 / 100
	l.Board = PanelDimensions{Width: max(boardOuter-frame, 0), Height: upper - frame}
	l.Schedule = PanelDimensions{Width: max(width-boardOuter-frame, 0), Height: upper - frame}
	return l
}

// TooSmall reports whether the terminal is below the supported size.
func (l Layout) TooSmall() bool {
	return l.Width < MinTerminalWidth || l.Height < MinTerminalHeight
}

// RenderTooSmall is shown instead of the dashboard on small terminals.
func RenderTooSmall(width, height int) string {
	msg := lipgloss.NewStyle().Bold(true).Foreground(ColorWarning).
		Render("Terminal too small. Please resize to at least 80x20.")
	if width <= 0 || height <= 0 {
		return msg
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
}

// framed draws content in a panel of the given inner size.
func framed(style lipgloss.Style, d PanelDimensions, content string) string {
	return style.Width(d.Width).Height(d.Height).MaxHeight(d.Height + frame).Render(content)
}
