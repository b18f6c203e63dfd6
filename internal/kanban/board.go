// Package kanban maintains the per-column ordering of a project's tasks and
// applies moves between columns. Every column is a dense, zero-based
// sequence; a move changes a task's status and order together or not at all.
//
// Moves never affect the schedule: status is independent of the dependency
// graph.
package kanban

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/critpath/internal/logging"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

// Placement is a task's column and position.
type Placement struct {
	TaskID string      `json:"task_id"`
	Status task.Status `json:"status"`
	Order  int         `json:"order"`
}

// Committer persists placements. A move is applied to the board only after
// CommitOrdering succeeds.
type Committer interface {
	CommitOrdering(changes []Placement) error
}

// CommitFunc adapts a function to Committer.
type CommitFunc func(changes []Placement) error

// CommitOrdering calls f(changes).
func (f CommitFunc) CommitOrdering(changes []Placement) error { return f(changes) }

// MoveRequest asks for TaskID to be placed at Index in the Status column.
// An Index past the end of the column appends. BaseVersion, when non-zero,
// is the board version the caller's view was derived from.
type MoveRequest struct {
	TaskID      string      `json:"task_id"`
	Status      task.Status `json:"status"`
	Index       int         `json:"order"`
	BaseVersion uint64      `json:"base_version,omitempty"`
}

// Ordering is the outcome of a move.
type Ordering struct {
	TaskID  string      `json:"task_id"`
	From    task.Status `json:"from"`
	To      task.Status `json:"to"`
	Index   int         `json:"order"`
	Version uint64      `json:"version"`
	// Columns holds the full order of the columns the move touched.
	Columns map[task.Status][]string `json:"columns"`
	// Changes lists every task whose status or order changed, by task ID.
	Changes []Placement `json:"changes"`
	// Resolved is set when the move was re-applied after an ordering
	// conflict.
	Resolved bool                   `json:"resolved"`
	Conflict *OrderingConflictError `json:"-"`
}

// Column is one status column in display order.
type Column struct {
	Status  task.Status `json:"status"`
	TaskIDs []string    `json:"task_ids"`
}

// Board is the ordering state of one project. Its mutex is the project's
// ordering lock: moves on the same board are applied one at a time.
type Board struct {
	mu      sync.Mutex
	columns map[task.Status][]string
	status  map[string]task.Status
	version uint64

	normalized []Placement
	committer  Committer
	logger     *log.Logger
}

// Option configures a Board.
type Option func(*Board)

// WithCommitter persists every move through c before it is applied.
func WithCommitter(c Committer) Option {
	return func(b *Board) { b.committer = c }
}

// WithLogger sets the logger used for conflict reports.
func WithLogger(l *log.Logger) Option {
	return func(b *Board) { b.logger = l }
}

// NewBoard groups tasks into columns ordered by KanbanOrder, then ID.
// Columns whose stored orders are duplicated or have gaps are compacted;
// the resulting placements are available from Normalized. The board starts
// at version 1.
func NewBoard(tasks []task.Task, opts ...Option) (*Board, error) {
	b := &Board{
		columns: make(map[task.Status][]string, len(task.Statuses())),
		status:  make(map[string]task.Status, len(tasks)),
		version: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logging.New("kanban")
	}

	stored := make(map[string]int, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		st := t.Status
		if st == "" {
			st = task.StatusTodo
		}
		if !st.IsValid() {
			return nil, fmt.Errorf("building board: task %q: %w: status %q", t.ID, ErrInvalidMove, st)
		}
		if _, dup := b.status[t.ID]; dup {
			return nil, fmt.Errorf("building board: duplicate task %q", t.ID)
		}
		b.status[t.ID] = st
		b.columns[st] = append(b.columns[st], t.ID)
		stored[t.ID] = t.KanbanOrder
	}

	for _, st := range task.Statuses() {
		col := b.columns[st]
		sort.SliceStable(col, func(i, j int) bool {
			if stored[col[i]] != stored[col[j]] {
				return stored[col[i]] < stored[col[j]]
			}
			return col[i] < col[j]
		})
		repaired := 0
		for i, id := range col {
			if stored[id] != i {
				b.normalized = append(b.normalized, Placement{TaskID: id, Status: st, Order: i})
				repaired++
			}
		}
		if repaired > 0 {
			conflict := &OrderingConflictError{
				Column: st,
				Reason: fmt.Sprintf("%d stored orders were duplicated or non-contiguous", repaired),
			}
			b.logger.Warn("ordering conflict resolved", "column", st, "err", conflict)
		}
	}
	sort.Slice(b.normalized, func(i, j int) bool { return b.normalized[i].TaskID < b.normalized[j].TaskID })
	return b, nil
}

// Normalized returns the placements NewBoard had to repair.
func (b *Board) Normalized() []Placement {
	out := make([]Placement, len(b.normalized))
	copy(out, b.normalized)
	return out
}

// Version returns the board version. It increases by one with every
// applied move.
func (b *Board) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// Columns returns every column in display order.
func (b *Board) Columns() []Column {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Column, 0, len(task.Statuses()))
	for _, st := range task.Statuses() {
		ids := make([]string, len(b.columns[st]))
		copy(ids, b.columns[st])
		out = append(out, Column{Status: st, TaskIDs: ids})
	}
	return out
}

// Placement returns where a task currently sits.
func (b *Board) Placement(taskID string) (Placement, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.status[taskID]
	if !ok {
		return Placement{}, false
	}
	for i, id := range b.columns[st] {
		if id == taskID {
			return Placement{TaskID: taskID, Status: st, Order: i}, true
		}
	}
	return Placement{}, false
}

// Move removes the task from its column, compacting the orders behind it,
// and inserts it at req.Index in req.Status, shifting later tasks up by one.
//
// A req.BaseVersion that does not match the board is an ordering conflict:
// the move is re-applied to the current ordering with the index clamped, and
// the result is marked Resolved. If the committer fails nothing changes.
func (b *Board) Move(req MoveRequest) (Ordering, error) {
	if !req.Status.IsValid() {
		return Ordering{}, fmt.Errorf("moving %q: %w: unknown status %q", req.TaskID, ErrInvalidMove, req.Status)
	}
	if req.Index < 0 {
		return Ordering{}, fmt.Errorf("moving %q: %w: negative index %d", req.TaskID, ErrInvalidMove, req.Index)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	from, ok := b.status[req.TaskID]
	if !ok {
		return Ordering{}, fmt.Errorf("moving %q: %w", req.TaskID, ErrUnknownTask)
	}

	var conflict *OrderingConflictError
	if req.BaseVersion != 0 && req.BaseVersion != b.version {
		conflict = &OrderingConflictError{Column: req.Status, BaseVersion: req.BaseVersion, Version: b.version}
	}

	src := without(b.columns[from], req.TaskID)
	dst := src
	if req.Status != from {
		dst = append([]string(nil), b.columns[req.Status]...)
	}
	index := min(req.Index, len(dst))
	dst = insertAt(dst, index, req.TaskID)

	next := map[task.Status][]string{req.Status: dst}
	if req.Status != from {
		next[from] = src
	}
	changes := b.diff(next, req.TaskID, req.Status)

	if len(changes) > 0 && b.committer != nil {
		if err := b.committer.CommitOrdering(changes); err != nil {
			return Ordering{}, fmt.Errorf("committing move of %q: %w", req.TaskID, err)
		}
	}

	if len(changes) > 0 {
		for st, ids := range next {
			b.columns[st] = ids
		}
		b.status[req.TaskID] = req.Status
		b.version++
	}

	if conflict != nil {
		b.logger.Warn("ordering conflict resolved", "task", req.TaskID, "err", conflict)
	}
	b.logger.Debug("task moved", "task", req.TaskID, "from", from, "to", req.Status, "index", index, "version", b.version)

	cols := make(map[task.Status][]string, len(next))
	for st, ids := range next {
		cols[st] = append([]string(nil), ids...)
	}
	return Ordering{
		TaskID:   req.TaskID,
		From:     from,
		To:       req.Status,
		Index:    index,
		Version:  b.version,
		Columns:  cols,
		Changes:  changes,
		Resolved: conflict != nil,
		Conflict: conflict,
	}, nil
}

// diff lists the placements in next that differ from the current board.
func (b *Board) diff(next map[task.Status][]string, moved string, to task.Status) []Placement {
	current := make(map[string]int)
	for st := range next {
		for i, id := range b.columns[st] {
			current[id] = i
		}
	}

	changes := []Placement{}
	for st, ids := range next {
		for i, id := range ids {
			old, ok := current[id]
			if id == moved && b.status[id] != to {
				ok = false
			}
			if !ok || old != i {
				changes = append(changes, Placement{TaskID: id, Status: st, Order: i})
			}
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].TaskID < changes[j].TaskID })
	return changes
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func insertAt(ids []string, i int, id string) []string {
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}
