// Package tui implements the interactive Kanban board with its live schedule
// panel, and the huh form behind init --interactive.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/critpath/internal/kanban"
	"github.com/AbdelazizMoustafa10m/critpath/internal/logging"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

// AppConfig is what the board dashboard shows and edits.
type AppConfig struct {
	Version   string
	ProjectID string
	Store     *project.Store
	Registry  *schedule.Registry
	// Events is the channel the registry's controllers publish to. Nil
	// disables live updates.
	Events <-chan schedule.Event
}

// App is the Bubble Tea model of "critpath board". Card moves and duration
// edits go through the store; duration edits mark the schedule dirty and
// moves never do.
type App struct {
	ctx    context.Context
	cfg    AppConfig
	keys   KeyMap
	theme  Theme
	layout Layout

	name     string
	focus    FocusPanel
	ready    bool
	quitting bool
	version  uint64

	board  BoardModel
	sched  SchedulePanel
	log    EventLogModel
	status StatusBarModel
	help   HelpOverlay
}

// NewApp builds the model and loads the current board and schedule.
func NewApp(ctx context.Context, cfg AppConfig) App {
	theme := DefaultTheme()
	keys := DefaultKeyMap()
	a := App{
		ctx:    ctx,
		cfg:    cfg,
		keys:   keys,
		theme:  theme,
		board:  NewBoardModel(theme),
		sched:  NewSchedulePanel(theme),
		log:    NewEventLogModel(theme),
		status: NewStatusBarModel(theme, cfg.ProjectID),
		help:   NewHelpOverlay(theme, keys),
	}
	a.refresh()
	return a
}

// Init starts listening for schedule events and computes a project that
// has never been scheduled.
func (a App) Init() tea.Cmd {
	var cmds []tea.Cmd
	if a.cfg.Events != nil {
		cmds = append(cmds, ScheduleEventCmd(a.ctx, a.cfg.Events))
	}
	if v := a.cfg.Registry.Schedule(a.cfg.ProjectID); v.Result == nil && v.State == schedule.StateDirty {
		cmds = append(cmds, a.recompute())
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.ready = true
		a.resize(m.Width, m.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(m)

	case ScheduleEventMsg:
		if m.Event.ProjectID == a.cfg.ProjectID {
			a.log.Add(eventEntry(m.Event))
			a.refresh()
		}
		return a, ScheduleEventCmd(a.ctx, a.cfg.Events)

	case RecomputeDoneMsg:
		a.refresh()
		if m.Err != nil {
			a.status.SetNote(a.theme.ErrorText.Render("recompute failed"))
		} else {
			a.status.SetNote("recomputed")
		}
		return a, nil

	case MovedMsg:
		a.refresh()
		a.board.Select(m.Ordering.TaskID)
		note := fmt.Sprintf("moved %s: %s -> %s", m.Ordering.TaskID, m.Ordering.From, m.Ordering.To)
		if m.Ordering.Resolved {
			note += " (reapplied after a concurrent move)"
		}
		a.log.Add(EventEntry{Message: note})
		a.status.SetNote(note)
		return a, nil

	case DurationChangedMsg:
		a.refresh()
		a.board.Select(m.TaskID)
		note := fmt.Sprintf("%s duration set to %d", m.TaskID, m.Duration)
		a.log.Add(EventEntry{Message: note})
		a.status.SetNote(note)
		return a, nil

	case ActionErrorMsg:
		a.log.Add(EventEntry{Message: m.Err.Error(), Warning: true})
		a.status.SetNote(a.theme.ErrorText.Render(m.Err.Error()))
		return a, nil
	}
	return a, nil
}

func (a App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.help.IsVisible() {
		var cmd tea.Cmd
		a.help, cmd = a.help.Update(m)
		return a, cmd
	}

	switch {
	case key.Matches(m, a.keys.Quit):
		a.quitting = true
		return a, tea.Quit
	case key.Matches(m, a.keys.Help):
		a.help.Toggle()
		return a, nil
	case key.Matches(m, a.keys.FocusNext):
		a.focus = NextFocus(a.focus)
		return a, nil
	case key.Matches(m, a.keys.FocusPrev):
		a.focus = PrevFocus(a.focus)
		return a, nil
	case key.Matches(m, a.keys.ToggleLog):
		a.log.Toggle()
		if a.ready {
			a.resize(a.layout.Width, a.layout.Height)
		}
		return a, nil
	case key.Matches(m, a.keys.Recompute):
		a.status.SetNote("recomputing…")
		return a, a.recompute()
	}

	var cmd tea.Cmd
	switch a.focus {
	case FocusBoard:
		cmd = a.handleBoardKey(m)
	case FocusSchedule:
		a.sched, cmd = a.sched.Update(m)
	case FocusEventLog:
		a.log, cmd = a.log.Update(m)
	}
	return a, cmd
}

func (a *App) handleBoardKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Up):
		a.board.MoveCursor(0, -1)
	case key.Matches(m, a.keys.Down):
		a.board.MoveCursor(0, 1)
	case key.Matches(m, a.keys.Left):
		a.board.MoveCursor(-1, 0)
	case key.Matches(m, a.keys.Right):
		a.board.MoveCursor(1, 0)
	case key.Matches(m, a.keys.MoveLeft):
		return a.move(-1)
	case key.Matches(m, a.keys.MoveRight):
		return a.move(1)
	case key.Matches(m, a.keys.Longer):
		return a.changeDuration(1)
	case key.Matches(m, a.keys.Shorter):
		return a.changeDuration(-1)
	}
	return nil
}

// move sends the selected card to the end of the neighboring column.
func (a App) move(dir int) tea.Cmd {
	taskID, _, ok := a.board.Selected()
	if !ok {
		return nil
	}
	to, ok := a.board.Neighbor(dir)
	if !ok {
		return nil
	}
	index := 0
	for _, c := range a.board.columns {
		if c.Status == to {
			index = len(c.TaskIDs)
		}
	}
	store, projectID, base := a.cfg.Store, a.cfg.ProjectID, a.version
	return func() tea.Msg {
		board, err := store.Board(projectID)
		if err != nil {
			return ActionErrorMsg{Err: err}
		}
		ordering, err := board.Move(kanban.MoveRequest{TaskID: taskID, Status: to, Index: index, BaseVersion: base})
		if err != nil {
			return ActionErrorMsg{Err: err}
		}
		return MovedMsg{Ordering: ordering}
	}
}

// changeDuration adds delta days to the selected task's duration.
func (a App) changeDuration(delta int) tea.Cmd {
	taskID, _, ok := a.board.Selected()
	if !ok {
		return nil
	}
	store, projectID := a.cfg.Store, a.cfg.ProjectID
	return func() tea.Msg {
		p, err := store.Get(projectID)
		if err != nil {
			return ActionErrorMsg{Err: err}
		}
		t, ok := p.Task(taskID)
		if !ok {
			return ActionErrorMsg{Err: fmt.Errorf("task %q not found", taskID)}
		}
		d := t.Duration + delta
		if d < 0 {
			return ActionErrorMsg{Err: errors.New("duration cannot be negative")}
		}
		if _, err := store.UpdateTask(projectID, taskID, project.TaskPatch{Duration: &d}); err != nil {
			return ActionErrorMsg{Err: err}
		}
		return DurationChangedMsg{TaskID: taskID, Duration: d}
	}
}

func (a App) recompute() tea.Cmd {
	ctx, registry, projectID := a.ctx, a.cfg.Registry, a.cfg.ProjectID
	return func() tea.Msg {
		_, err := registry.Recompute(ctx, projectID)
		return RecomputeDoneMsg{Err: err}
	}
}

// refresh reloads the board and the published schedule.
func (a *App) refresh() {
	p, err := a.cfg.Store.Get(a.cfg.ProjectID)
	if err != nil {
		a.status.SetNote(a.theme.ErrorText.Render(err.Error()))
		return
	}
	a.name = p.Name
	if board, err := a.cfg.Store.Board(a.cfg.ProjectID); err == nil {
		a.version = board.Version()
		a.board.SetColumns(board.Columns(), p.Tasks)
		a.status.SetBoardVersion(a.version)
	}
	v := a.cfg.Registry.Schedule(a.cfg.ProjectID)
	a.sched.SetView(v)
	a.status.SetSchedule(v)
	if v.Result != nil {
		a.board.SetCritical(v.Result.CriticalTasks)
	}
}

func (a *App) resize(width, height int) {
	a.layout = ComputeLayout(width, height, a.log.IsVisible())
	a.board.SetDimensions(a.layout.Board.Width, a.layout.Board.Height-1)
	a.sched.SetDimensions(a.layout.Schedule.Width, a.layout.Schedule.Height-1)
	a.log.SetDimensions(a.layout.EventLog.Width, a.layout.EventLog.Height)
	a.status.SetWidth(width)
	a.help.SetDimensions(width, height)
}

func (a App) View() string {
	if a.quitting {
		return ""
	}
	if !a.ready {
		return "Loading critpath board..."
	}
	if a.layout.TooSmall() {
		return RenderTooSmall(a.layout.Width, a.layout.Height)
	}
	if a.help.IsVisible() {
		return a.help.View()
	}

	title := fmt.Sprintf("critpath v%s  |  %s", a.cfg.Version, a.cfg.ProjectID)
	if a.name != "" {
		title += ": " + a.name
	}
	rows := []string{
		a.theme.TitleBar.Width(a.layout.Width).MaxWidth(a.layout.Width).Render(title),
		lipgloss.JoinHorizontal(lipgloss.Top,
			a.panel(FocusBoard, "Board", a.layout.Board, a.board.View()),
			a.panel(FocusSchedule, "Schedule", a.layout.Schedule, a.sched.View()),
		),
	}
	if a.log.IsVisible() {
		rows = append(rows, a.panel(FocusEventLog, "", a.layout.EventLog, a.log.View()))
	}
	rows = append(rows, a.status.View())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a App) panel(f FocusPanel, title string, d PanelDimensions, body string) string {
	style := a.theme.Panel
	if a.focus == f {
		style = a.theme.PanelFocused
	}
	if title != "" {
		body = a.theme.PanelTitle.Render(title) + "\n" + body
	}
	return framed(style, d, body)
}

// eventEntry describes a schedule event for the log.
func eventEntry(ev schedule.Event) EventEntry {
	msg := fmt.Sprintf("%s (generation %d)", ev.Type, ev.Generation)
	if ev.Message != "" {
		msg += ": " + ev.Message
	}
	if ev.Error != "" {
		msg += ": " + ev.Error
	}
	return EventEntry{Timestamp: ev.Timestamp, Message: msg, Warning: ev.Type == schedule.EventFailed}
}

// Run shows the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, cfg AppConfig) error {
	logging.New("tui").Debug("starting board", "project", cfg.ProjectID)
	p := tea.NewProgram(NewApp(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running board: %w", err)
	}
	return nil
}
