package project

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/graph"
	"github.com/AbdelazizMoustafa10m/critpath/internal/kanban"
	"github.com/AbdelazizMoustafa10m/critpath/internal/logging"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

// ChangeKind classifies a Change.
type ChangeKind int

const (
	// ChangeSchedule means the schedule inputs of the project changed.
	ChangeSchedule ChangeKind = iota
	// ChangeRemoved means the project was removed from the store.
	ChangeRemoved
)

// Change is reported for every edit that invalidates a project's schedule,
// and when a project is removed.
type Change struct {
	ProjectID string
	Kind      ChangeKind
	Reason    string
}

// ChangeFunc receives changes. It is called without the store lock held.
type ChangeFunc func(Change)

// TaskPatch is a partial task edit. Nil fields are left unchanged. Setting
// EndDate without Duration re-derives the duration from the dates; setting
// Duration re-derives the end date.
type TaskPatch struct {
	Title       *string        `json:"title,omitempty"`
	Priority    *task.Priority `json:"priority,omitempty"`
	StartDate   *calendar.Date `json:"start_date,omitempty"`
	EndDate     *calendar.Date `json:"end_date,omitempty"`
	Duration    *int           `json:"duration,omitempty"`
	Progress    *int           `json:"progress,omitempty"`
	ActualHours *float64       `json:"actual_hours,omitempty"`
	ActualCost  *float64       `json:"actual_cost,omitempty"`
}

// Store is an in-memory stand-in for the project data service. It is safe
// for concurrent use.
type Store struct {
	mu       sync.RWMutex
	projects map[string]*entry
	onChange ChangeFunc

	calendarOpts []calendar.Option
	defaultMode  calendar.Mode
	logger       *log.Logger
}

type entry struct {
	project  Project
	calendar *calendar.Calendar
	board    *kanban.Board
	version  uint64
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCalendarOptions is applied to every project calendar the store builds.
func WithCalendarOptions(opts ...calendar.Option) StoreOption {
	return func(s *Store) { s.calendarOpts = append(s.calendarOpts, opts...) }
}

// WithDefaultMode sets the calendar mode of projects that configure none.
// Without it they count calendar days.
func WithDefaultMode(m calendar.Mode) StoreOption {
	return func(s *Store) { s.defaultMode = m }
}

// WithLogger sets the store's logger.
func WithLogger(l *log.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{projects: make(map[string]*entry), defaultMode: calendar.ModeCalendar}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.New("project")
	}
	return s
}

// OnChange registers fn to receive changes, replacing any previous function.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Store) notify(c Change) {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn(c)
	}
}

// Put adds or replaces a project. Tasks without a start date start with the
// project, tasks are normalized against the project calendar, dependencies
// without an ID get a generated one, and Kanban orders are compacted.
func (s *Store) Put(p Project) error {
	cp := p.clone()
	if cp.Config.Mode == "" {
		cp.Config.Mode = s.defaultMode
	}
	cal, err := cp.Config.Calendar(s.calendarOpts...)
	if err != nil {
		return fmt.Errorf("project %q: %w", cp.ID, err)
	}
	for i := range cp.Tasks {
		if cp.Tasks[i].StartDate == 0 {
			cp.Tasks[i].StartDate = cp.Config.Start
		}
		if err := cp.Tasks[i].Normalize(cal); err != nil {
			return fmt.Errorf("project %q: %w", cp.ID, err)
		}
	}
	for i := range cp.Dependencies {
		if cp.Dependencies[i].ID == "" {
			cp.Dependencies[i].ID = uuid.NewString()
		}
	}
	if err := cp.Validate(); err != nil {
		return err
	}

	board, err := kanban.NewBoard(cp.Tasks, kanban.WithCommitter(s.committer(cp.ID)))
	if err != nil {
		return fmt.Errorf("project %q: %w", cp.ID, err)
	}
	for _, pl := range board.Normalized() {
		if t, ok := cp.Task(pl.TaskID); ok {
			t.KanbanOrder = pl.Order
		}
	}

	s.mu.Lock()
	var version uint64
	if prev, ok := s.projects[cp.ID]; ok {
		version = prev.version
	}
	s.projects[cp.ID] = &entry{project: cp, calendar: cal, board: board, version: version + 1}
	s.mu.Unlock()

	s.logger.Debug("project stored", "project", cp.ID, "tasks", len(cp.Tasks), "dependencies", len(cp.Dependencies))
	s.notify(Change{ProjectID: cp.ID, Kind: ChangeSchedule, Reason: "project loaded"})
	return nil
}

func (s *Store) committer(projectID string) kanban.Committer {
	return kanban.CommitFunc(func(changes []kanban.Placement) error {
		return s.CommitOrdering(projectID, changes)
	})
}

// Get returns a copy of the project.
func (s *Store) Get(id string) (Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.projects[id]
	if !ok {
		return Project{}, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	return e.project.clone(), nil
}

// IDs returns the stored project IDs in ascending order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.projects))
	for id := range s.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a consistent copy of the project's scheduling inputs.
func (s *Store) Snapshot(id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	cp := e.project.clone()
	return &Snapshot{
		ProjectID:    id,
		Version:      e.version,
		Config:       cp.Config,
		Tasks:        cp.Tasks,
		Dependencies: cp.Dependencies,
	}, nil
}

// Calendar returns the project's calendar.
func (s *Store) Calendar(id string) (*calendar.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	return e.calendar, nil
}

// Board returns the project's Kanban board. Moves on it are committed back
// into the store.
func (s *Store) Board(id string) (*kanban.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	return e.board, nil
}

// Remove deletes the project.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	_, ok := s.projects[id]
	delete(s.projects, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	s.notify(Change{ProjectID: id, Kind: ChangeRemoved, Reason: "project removed"})
	return nil
}

// UpdateTask applies patch to a task. Only edits to dates or duration are
// reported as schedule changes.
func (s *Store) UpdateTask(projectID, taskID string, patch TaskPatch) (task.Task, error) {
	s.mu.Lock()
	e, ok := s.projects[projectID]
	if !ok {
		s.mu.Unlock()
		return task.Task{}, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	cur, ok := e.project.Task(taskID)
	if !ok {
		s.mu.Unlock()
		return task.Task{}, fmt.Errorf("task %q in project %q: %w", taskID, projectID, ErrNotFound)
	}

	t := *cur
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.StartDate != nil {
		t.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		t.EndDate = *patch.EndDate
		if patch.Duration == nil {
			t.Duration = 0
		}
	}
	if patch.Duration != nil {
		t.Duration = *patch.Duration
		t.EndDate = t.StartDate
	}
	if patch.Progress != nil {
		t.Progress = *patch.Progress
	}
	if patch.ActualHours != nil {
		t.ActualHours = *patch.ActualHours
	}
	if patch.ActualCost != nil {
		t.ActualCost = *patch.ActualCost
	}

	if err := t.Normalize(e.calendar); err != nil {
		s.mu.Unlock()
		return task.Task{}, fmt.Errorf("updating task: %w", err)
	}
	if err := t.Validate(); err != nil {
		s.mu.Unlock()
		return task.Task{}, fmt.Errorf("updating task: %w", err)
	}

	scheduling := t.StartDate != cur.StartDate || t.EndDate != cur.EndDate || t.Duration != cur.Duration
	*cur = t
	if scheduling {
		e.version++
	}
	s.mu.Unlock()

	if scheduling {
		s.notify(Change{ProjectID: projectID, Kind: ChangeSchedule, Reason: "task " + taskID + " rescheduled"})
	}
	return t, nil
}

// AddDependency adds dep to the project after checking it against the
// current graph. A dependency that would close a cycle, names an unknown
// task, or duplicates an existing one is rejected and the project is left
// untouched. An empty ID is replaced by a generated one.
func (s *Store) AddDependency(projectID string, dep task.Dependency) (task.Dependency, error) {
	if dep.ID == "" {
		dep.ID = uuid.NewString()
	}

	s.mu.Lock()
	e, ok := s.projects[projectID]
	if !ok {
		s.mu.Unlock()
		return task.Dependency{}, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	for _, d := range e.project.Dependencies {
		if d.ID == dep.ID {
			s.mu.Unlock()
			return task.Dependency{}, &graph.InvalidDependencyError{DependencyID: dep.ID, Reason: "duplicate dependency ID"}
		}
	}
	if err := checkDependency(e.project.Tasks, e.project.Dependencies, &dep); err != nil {
		s.mu.Unlock()
		return task.Dependency{}, fmt.Errorf("adding dependency %s: %w", dep, err)
	}
	e.project.Dependencies = append(e.project.Dependencies, dep)
	e.version++
	s.mu.Unlock()

	s.notify(Change{ProjectID: projectID, Kind: ChangeSchedule, Reason: "dependency " + dep.ID + " added"})
	return dep, nil
}

// UpdateDependency replaces the dependency with the same ID, under the same
// checks as AddDependency.
func (s *Store) UpdateDependency(projectID string, dep task.Dependency) (task.Dependency, error) {
	s.mu.Lock()
	e, ok := s.projects[projectID]
	if !ok {
		s.mu.Unlock()
		return task.Dependency{}, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	at := -1
	others := make([]task.Dependency, 0, len(e.project.Dependencies))
	for i, d := range e.project.Dependencies {
		if d.ID == dep.ID {
			at = i
			continue
		}
		others = append(others, d)
	}
	if at < 0 {
		s.mu.Unlock()
		return task.Dependency{}, fmt.Errorf("dependency %q in project %q: %w", dep.ID, projectID, ErrNotFound)
	}
	if err := checkDependency(e.project.Tasks, others, &dep); err != nil {
		s.mu.Unlock()
		return task.Dependency{}, fmt.Errorf("updating dependency %s: %w", dep, err)
	}
	changed := e.project.Dependencies[at] != dep
	e.project.Dependencies[at] = dep
	if changed {
		e.version++
	}
	s.mu.Unlock()

	if changed {
		s.notify(Change{ProjectID: projectID, Kind: ChangeSchedule, Reason: "dependency " + dep.ID + " updated"})
	}
	return dep, nil
}

// checkDependency validates dep against the graph formed by tasks and deps.
// On success dep's type is defaulted.
func checkDependency(tasks []task.Task, deps []task.Dependency, dep *task.Dependency) error {
	if err := dep.Validate(); err != nil {
		return &graph.InvalidDependencyError{DependencyID: dep.ID, Reason: err.Error()}
	}
	g, err := graph.Build(tasks, deps)
	if err != nil {
		return fmt.Errorf("existing dependencies are invalid: %w", err)
	}
	_, err = g.WithDependency(*dep)
	return err
}

// RemoveDependency deletes a dependency.
func (s *Store) RemoveDependency(projectID, depID string) error {
	s.mu.Lock()
	e, ok := s.projects[projectID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	deps := e.project.Dependencies
	at := -1
	for i, d := range deps {
		if d.ID == depID {
			at = i
			break
		}
	}
	if at < 0 {
		s.mu.Unlock()
		return fmt.Errorf("dependency %q in project %q: %w", depID, projectID, ErrNotFound)
	}
	e.project.Dependencies = append(deps[:at:at], deps[at+1:]...)
	e.version++
	s.mu.Unlock()

	s.notify(Change{ProjectID: projectID, Kind: ChangeSchedule, Reason: "dependency " + depID + " removed"})
	return nil
}

// CommitOrdering writes Kanban placements. Either every placement is applied
// or, when one names an unknown task, none is. Ordering changes never affect
// the schedule and are not reported.
func (s *Store) CommitOrdering(projectID string, changes []kanban.Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.projects[projectID]
	if !ok {
		return fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	targets := make([]*task.Task, len(changes))
	for i, c := range changes {
		t, ok := e.project.Task(c.TaskID)
		if !ok {
			return fmt.Errorf("task %q in project %q: %w", c.TaskID, projectID, ErrNotFound)
		}
		targets[i] = t
	}
	for i, c := range changes {
		targets[i].Status = c.Status
		targets[i].KanbanOrder = c.Order
	}
	s.logger.Debug("ordering committed", "project", projectID, "placements", len(changes))
	return nil
}
