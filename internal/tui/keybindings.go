package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ---------------------------------------------------------------------------
// KeyMap
// ---------------------------------------------------------------------------

// KeyMap defines the dashboard keybindings. Card keys act on the board,
// scrolling keys on the focused schedule or event log panel.
type KeyMap struct {
	Quit      key.Binding
	Help      key.Binding
	FocusNext key.Binding
	FocusPrev key.Binding
	ToggleLog key.Binding
	Recompute key.Binding

	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	MoveLeft  key.Binding
	MoveRight key.Binding
	Longer    key.Binding
	Shorter   key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next panel"),
		),
		FocusPrev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev panel"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "toggle event log"),
		),
		Recompute: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "recompute schedule"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next column"),
		),

		MoveLeft: key.NewBinding(
			key.WithKeys("<", "shift+left"),
			key.WithHelp("<", "move card left"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys(">", "shift+right"),
			key.WithHelp(">", "move card right"),
		),
		Longer: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "duration +1 day"),
		),
		Shorter: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "duration -1 day"),
		),
	}
}

// ---------------------------------------------------------------------------
// Focus cycling
// ---------------------------------------------------------------------------

// FocusPanel identifies the panel with keyboard focus.
type FocusPanel int

const (
	FocusBoard FocusPanel = iota
	FocusSchedule
	FocusEventLog
)

const focusPanelCount = 3

// NextFocus returns the next panel: board, schedule, event log, board.
func NextFocus(current FocusPanel) FocusPanel {
	return FocusPanel((int(current) + 1) % focusPanelCount)
}

// PrevFocus returns the previous panel in the cycle.
func PrevFocus(current FocusPanel) FocusPanel {
	return FocusPanel((int(current) + focusPanelCount - 1) % focusPanelCount)
}

// ---------------------------------------------------------------------------
// HelpOverlay
// ---------------------------------------------------------------------------

// HelpOverlay is a centered keybinding reference drawn over the dashboard.
type HelpOverlay struct {
	theme   Theme
	keyMap  KeyMap
	visible bool
	width   int
	height  int
}

func NewHelpOverlay(theme Theme, keyMap KeyMap) HelpOverlay {
	return HelpOverlay{theme: theme, keyMap: keyMap}
}

func (h *HelpOverlay) SetDimensions(width, height int) {
	h.width = width
	h.height = height
}

func (h *HelpOverlay) Toggle() {
	h.visible = !h.visible
}

func (h HelpOverlay) IsVisible() bool {
	return h.visible
}

// Update closes the overlay on '?' or Esc and swallows every other key.
func (h HelpOverlay) Update(msg tea.Msg) (HelpOverlay, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, h.keyMap.Help) || keyMsg.Type == tea.KeyEsc {
			h.visible = false
		}
	}
	return h, nil
}

func (h HelpOverlay) View() string {
	if !h.visible || h.width == 0 || h.height == 0 {
		return ""
	}
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2).
		Render(h.content())
	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, box)
}

func (h HelpOverlay) content() string {
	section := lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	groups := []struct {
		title    string
		bindings []key.Binding
	}{
		{"Board", []key.Binding{h.keyMap.Up, h.keyMap.Down, h.keyMap.Left, h.keyMap.Right, h.keyMap.MoveLeft, h.keyMap.MoveRight}},
		{"Schedule", []key.Binding{h.keyMap.Longer, h.keyMap.Shorter, h.keyMap.Recompute}},
		{"General", []key.Binding{h.keyMap.FocusNext, h.keyMap.FocusPrev, h.keyMap.ToggleLog, h.keyMap.Help, h.keyMap.Quit}},
	}

	var sb strings.Builder
	sb.WriteString(h.theme.PanelTitle.Render("critpath board: keys"))
	sb.WriteString("\n")
	for _, g := range groups {
		sb.WriteString("\n")
		sb.WriteString(section.Render(g.title))
		sb.WriteString("\n")
		for _, b := range g.bindings {
			sb.WriteString("  " + h.theme.HelpKey.Render(b.Help().Key) + "  " + h.theme.HelpDesc.Render(b.Help().Desc) + "\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(h.theme.Muted.Italic(true).Render("Press ? or Esc to close"))
	return sb.String()
}
