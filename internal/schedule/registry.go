package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/AbdelazizMoustafa10m/critpath/internal/cpm"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
)

// DefaultConcurrency caps RecomputeAll when no limit is given.
const DefaultConcurrency = 4

// Registry is the process-wide table of schedule controllers, one per open
// project. A controller is created on first use and torn down when its
// project is removed. Projects share no mutable state, so the registry lock
// is only held to look controllers up.
type Registry struct {
	source Source
	opts   []Option
	logger *log.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewRegistry creates an empty registry. opts are applied to every
// controller it creates.
func NewRegistry(source Source, opts ...Option) *Registry {
	o := buildOptions(opts)
	return &Registry{
		source:      source,
		opts:        append([]Option{WithLogger(o.logger)}, opts...),
		logger:      o.logger,
		controllers: make(map[string]*Controller),
	}
}

// Open returns the controller for projectID, creating it if needed.
func (r *Registry) Open(projectID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[projectID]; ok {
		return c
	}
	c := NewController(projectID, r.source, r.opts...)
	r.controllers[projectID] = c
	r.logger.Debug("schedule controller opened", "project", projectID)
	return c
}

// Get returns the controller for projectID if one is open.
func (r *Registry) Get(projectID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[projectID]
	return c, ok
}

// IDs returns the open project IDs in ascending order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.controllers))
	for id := range r.controllers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Remove closes and forgets the controller for projectID. It reports
// whether one was open.
func (r *Registry) Remove(projectID string) bool {
	r.mu.Lock()
	c, ok := r.controllers[projectID]
	delete(r.controllers, projectID)
	r.mu.Unlock()
	if ok {
		c.Close()
		r.logger.Debug("schedule controller removed", "project", projectID)
	}
	return ok
}

// MarkDirty marks the schedule of projectID dirty, opening its controller
// if needed.
func (r *Registry) MarkDirty(projectID, reason string) {
	r.Open(projectID).MarkDirty(reason)
}

// HandleChange applies a store change notification. It has the shape of a
// project.ChangeFunc.
func (r *Registry) HandleChange(ch project.Change) {
	switch ch.Kind {
	case project.ChangeRemoved:
		r.Remove(ch.ProjectID)
	default:
		r.MarkDirty(ch.ProjectID, ch.Reason)
	}
}

// Recompute recomputes one project, opening its controller if needed. The
// controller is removed again when the source no longer knows the project.
func (r *Registry) Recompute(ctx context.Context, projectID string) (*cpm.Result, error) {
	res, err := r.Open(projectID).Recompute(ctx)
	if errors.Is(err, project.ErrNotFound) {
		r.Remove(projectID)
	}
	return res, err
}

// Schedule returns the view of projectID. It never opens a controller: a
// project without one reports a dirty view with no result.
func (r *Registry) Schedule(projectID string) View {
	c, ok := r.Get(projectID)
	if !ok {
		return View{ProjectID: projectID, State: StateDirty}
	}
	return c.Schedule()
}

// Outcome is the result of recomputing one project in RecomputeAll.
type Outcome struct {
	ProjectID string
	Result    *cpm.Result
	Err       error
}

// RecomputeAll recomputes the given projects (every open project when ids
// is empty) concurrently, at most limit at a time. A failing project does
// not stop the others; outcomes are returned in ID order and the returned
// error joins every failure.
func (r *Registry) RecomputeAll(ctx context.Context, limit int, ids ...string) ([]Outcome, error) {
	if len(ids) == 0 {
		ids = r.IDs()
	} else {
		ids = append([]string(nil), ids...)
		sort.Strings(ids)
	}
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	outcomes := make([]Outcome, len(ids))
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			res, err := r.Recompute(ctx, id)
			outcomes[i] = Outcome{ProjectID: id, Result: res, Err: err}
			// Per-project failures are reported through outcomes.
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("project %s: %w", o.ProjectID, o.Err))
		}
	}
	return outcomes, errors.Join(errs...)
}

// Close tears down every controller.
func (r *Registry) Close() {
	r.mu.Lock()
	controllers := r.controllers
	r.controllers = make(map[string]*Controller)
	r.mu.Unlock()
	for _, c := range controllers {
		c.Close()
	}
}
