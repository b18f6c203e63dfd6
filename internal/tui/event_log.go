package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// MaxEventLogEntries bounds the event log; the oldest entry is dropped
// first.
const MaxEventLogEntries = 200

// EventEntry is one line of the event log.
type EventEntry struct {
	Timestamp time.Time
	Message   string
	Warning   bool
}

// EventLogModel is a bounded, auto-scrolling log of schedule events and
// board actions.
type EventLogModel struct {
	theme    Theme
	visible  bool
	entries  []EventEntry
	viewport viewport.Model
}

func NewEventLogModel(theme Theme) EventLogModel {
	return EventLogModel{theme: theme, visible: true, viewport: viewport.New(0, 0)}
}

func (el *EventLogModel) SetDimensions(width, height int) {
	el.viewport.Width = width
	el.viewport.Height = height
	el.rebuild()
}

func (el *EventLogModel) Toggle() {
	el.visible = !el.visible
}

func (el EventLogModel) IsVisible() bool {
	return el.visible
}

// Entries returns a copy of the retained entries, oldest first.
func (el EventLogModel) Entries() []EventEntry {
	return append([]EventEntry(nil), el.entries...)
}

// Add appends an entry and scrolls to it.
func (el *EventLogModel) Add(e EventEntry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	el.entries = append(el.entries, e)
	if over := len(el.entries) - MaxEventLogEntries; over > 0 {
		el.entries = append(el.entries[:0:0], el.entries[over:]...)
	}
	el.rebuild()
	el.viewport.GotoBottom()
}

func (el EventLogModel) Update(msg tea.Msg) (EventLogModel, tea.Cmd) {
	var cmd tea.Cmd
	el.viewport, cmd = el.viewport.Update(msg)
	return el, cmd
}

func (el EventLogModel) View() string {
	if len(el.entries) == 0 {
		return el.theme.Muted.Render("no events yet")
	}
	return el.viewport.View()
}

func (el *EventLogModel) rebuild() {
	lines := make([]string, len(el.entries))
	for i, e := range el.entries {
		msg := el.theme.EventMessage
		if e.Warning {
			msg = el.theme.EventWarning
		}
		lines[i] = el.theme.EventTimestamp.Render(e.Timestamp.Format("15:04:05")) + " " + msg.Render(e.Message)
	}
	el.viewport.SetContent(strings.Join(lines, "\n"))
}
