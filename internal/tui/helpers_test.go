package tui

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

// webProject is A -> B -> C (lag 1) starting Monday 2026-10-12. C waits in
// the backlog, A and B are planned.
func webProject() project.Project {
	return project.Project{
		ID:     "web",
		Name:   "Website relaunch",
		Config: project.Config{Start: calendar.MustParseDate("2026-10-12")},
		Tasks: []task.Task{
			{ID: "A", Title: "Design", Duration: 3, Status: task.StatusTodo, KanbanOrder: 0},
			{ID: "B", Title: "Build", Duration: 2, Status: task.StatusTodo, KanbanOrder: 1},
			{ID: "C", Title: "Launch", Duration: 0, Status: task.StatusBacklog, KanbanOrder: 0},
		},
		Dependencies: []task.Dependency{
			{ID: "d1", Predecessor: "A", Successor: "B", Type: task.FinishToStart},
			{ID: "d2", Predecessor: "B", Successor: "C", Type: task.FinishToStart, Lag: 1},
		},
	}
}

type fixture struct {
	store    *project.Store
	registry *schedule.Registry
	events   chan schedule.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := log.New(io.Discard)
	events := make(chan schedule.Event, 64)
	store := project.NewStore(project.WithLogger(logger))
	registry := schedule.NewRegistry(store, schedule.WithLogger(logger), schedule.WithEvents(events))
	t.Cleanup(registry.Close)
	store.OnChange(registry.HandleChange)
	require.NoError(t, store.Put(webProject()))
	return &fixture{store: store, registry: registry, events: events}
}

func (f *fixture) app(t *testing.T) App {
	t.Helper()
	return NewApp(context.Background(), AppConfig{
		Version:   "1.2.3",
		ProjectID: "web",
		Store:     f.store,
		Registry:  f.registry,
		Events:    f.events,
	})
}

// update feeds msg to the app and returns the new model and command.
func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	next, ok := m.(App)
	require.True(t, ok, "Update must return App, got %T", m)
	return next, cmd
}

// settle runs cmd and feeds its message back into the app.
func settle(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	require.NotNil(t, cmd)
	a, _ = update(t, a, cmd())
	return a
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
