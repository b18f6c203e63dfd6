// Package schedule owns the published schedule of every project. A
// Controller moves one project through dirty, computing, clean and failed
// states, serializing recomputation so that each published result is
// derived from one consistent snapshot. The Registry holds the controllers
// of all open projects.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/cpm"
	"github.com/AbdelazizMoustafa10m/critpath/internal/graph"
	"github.com/AbdelazizMoustafa10m/critpath/internal/logging"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
)

// ErrClosed is returned by Recompute on a controller that has been removed.
var ErrClosed = errors.New("schedule controller closed")

var errSuperseded = errors.New("superseded by a newer edit")

// Source provides the scheduling inputs of a project. *project.Store
// implements it.
type Source interface {
	Snapshot(projectID string) (*project.Snapshot, error)
}

// Settings tunes recomputation. The zero value is usable; see
// DefaultSettings for the values the CLI starts from.
type Settings struct {
	Anchor     cpm.SinkAnchor
	MaxPaths   int
	MaxLagDays int
	MaxGapDays int
	// MaxRestarts bounds how often a superseded computation is restarted
	// before the latest consistent result is published anyway.
	MaxRestarts int
	// AutoRecompute starts a worker that recomputes after every dirty signal.
	AutoRecompute bool
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Anchor:      cpm.AnchorOwnFinish,
		MaxPaths:    cpm.DefaultMaxPaths,
		MaxLagDays:  3650,
		MaxGapDays:  calendar.DefaultMaxGap,
		MaxRestarts: 3,
	}
}

// Option configures a Controller or a Registry.
type Option func(*options)

type options struct {
	settings Settings
	logger   *log.Logger
	events   chan<- Event
}

// WithSettings replaces DefaultSettings.
func WithSettings(s Settings) Option {
	return func(o *options) { o.settings = s }
}

// WithLogger attaches a logger. The default is the "schedule" component
// logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEvents sets the channel on which lifecycle events are broadcast.
func WithEvents(ch chan<- Event) Option {
	return func(o *options) { o.events = ch }
}

func buildOptions(opts []Option) options {
	o := options{settings: DefaultSettings()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.New("schedule")
	}
	return o
}

// call is one in-flight recomputation that concurrent callers join.
type call struct {
	done chan struct{}
	res  *cpm.Result
	err  error
}

// Controller serializes the recomputation of one project.
type Controller struct {
	projectID string
	source    Source
	settings  Settings
	logger    *log.Logger
	events    chan<- Event

	mu          sync.Mutex
	state       State
	generation  uint64
	result      *cpm.Result
	fingerprint uint64
	lastErr     error
	inflight    *call
	cancelRun   context.CancelCauseFunc
	closed      bool

	trigger chan struct{}
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

// NewController creates a dirty controller for projectID. With
// Settings.AutoRecompute a background worker is started; call Close to stop
// it.
func NewController(projectID string, source Source, opts ...Option) *Controller {
	o := buildOptions(opts)
	c := &Controller{
		projectID: projectID,
		source:    source,
		settings:  o.settings,
		logger:    o.logger.With("project", projectID),
		events:    o.events,
		state:     StateDirty,
		trigger:   make(chan struct{}, 1),
	}
	if c.settings.AutoRecompute {
		ctx, cancel := context.WithCancel(context.Background())
		c.stop = cancel
		c.wg.Add(1)
		go c.work(ctx)
	}
	return c
}

// ProjectID returns the project the controller schedules.
func (c *Controller) ProjectID() string { return c.projectID }

// MarkDirty records that the project's scheduling inputs changed. A running
// computation is abandoned and restarted from the latest data; with
// auto-recompute the worker is woken. Signals arriving while the worker is
// busy coalesce into one.
func (c *Controller) MarkDirty(reason string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.generation++
	gen := c.generation
	if c.state != StateComputing {
		c.state = StateDirty
	}
	if c.cancelRun != nil {
		c.cancelRun(errSuperseded)
	}
	c.emitLocked(EventDirty, reason, nil)
	c.mu.Unlock()

	c.logger.Debug("schedule marked dirty", "reason", reason, "generation", gen)
	if c.settings.AutoRecompute {
		select {
		case c.trigger <- struct{}{}:
		default:
		}
	}
}

// Recompute brings the schedule up to date and returns the published
// result. Concurrent callers share one computation. When the project has
// not changed since the last clean result, that exact result is returned.
// On failure the previous clean result is kept and the error is returned
// and retained for Schedule.
func (c *Controller) Recompute(ctx context.Context) (*cpm.Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("recomputing %s: %w", c.projectID, ErrClosed)
	}
	if cl := c.inflight; cl != nil {
		c.mu.Unlock()
		select {
		case <-cl.done:
			return cl.res, cl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	cl := &call{done: make(chan struct{})}
	c.inflight = cl
	c.mu.Unlock()

	cl.res, cl.err = c.run(ctx)

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()
	close(cl.done)
	return cl.res, cl.err
}

func (c *Controller) run(ctx context.Context) (*cpm.Result, error) {
	for attempt := 0; ; attempt++ {
		last := attempt >= c.settings.MaxRestarts

		c.mu.Lock()
		gen := c.generation
		prev := c.state
		c.state = StateComputing
		runCtx, cancel := context.WithCancelCause(ctx)
		if !last {
			c.cancelRun = cancel
		}
		c.emitLocked(EventStarted, fmt.Sprintf("attempt %d", attempt+1), nil)
		c.mu.Unlock()

		started := time.Now()
		snap, err := c.source.Snapshot(c.projectID)
		var fp uint64
		unchanged := false
		if err == nil {
			fp = snap.Fingerprint()
			c.mu.Lock()
			unchanged = c.result != nil && fp == c.fingerprint
			c.mu.Unlock()
		}
		var res *cpm.Result
		if err == nil && !unchanged {
			res, err = c.compute(runCtx, snap)
		}
		cause := context.Cause(runCtx)
		cancel(nil)

		c.mu.Lock()
		c.cancelRun = nil
		stale := c.generation != gen

		if errors.Is(cause, ErrClosed) {
			c.state = StateDirty
			c.mu.Unlock()
			return nil, fmt.Errorf("recomputing %s: %w", c.projectID, ErrClosed)
		}
		if ctx.Err() != nil {
			// The caller gave up; nothing is published.
			c.state = prev
			if prev == StateComputing || stale {
				c.state = StateDirty
			}
			c.mu.Unlock()
			return nil, ctx.Err()
		}

		if (stale || errors.Is(cause, errSuperseded)) && !last {
			c.emitLocked(EventSuperseded, "restarting from the latest data", nil)
			c.mu.Unlock()
			c.logger.Debug("recompute superseded", "attempt", attempt+1)
			continue
		}

		if err != nil {
			c.state = StateFailed
			if stale {
				c.state = StateDirty
			}
			c.lastErr = err
			c.emitLocked(EventFailed, "recompute failed", err)
			c.mu.Unlock()
			c.logger.Warn("recompute failed", "error", err)
			return nil, err
		}

		c.lastErr = nil
		c.state = StateClean
		if stale {
			c.state = StateDirty
		}
		if unchanged {
			res = c.result
			c.emitLocked(EventUnchanged, "schedule already up to date", nil)
			c.mu.Unlock()
			return res, nil
		}
		c.result = res
		c.fingerprint = fp
		c.emitLocked(EventPublished, fmt.Sprintf("%d tasks, %d critical", len(res.Tasks), len(res.CriticalTasks)), nil)
		c.mu.Unlock()

		c.logger.Info("schedule published",
			"tasks", len(res.Tasks),
			"critical", len(res.CriticalTasks),
			"finish", res.ProjectFinish,
			"duration", time.Since(started),
		)
		for _, w := range res.Warnings {
			c.logger.Warn("schedule diagnostic", "task", w.TaskID, "message", w.Message)
		}
		return res, nil
	}
}

// compute builds the graph and runs the CPM passes over one snapshot.
func (c *Controller) compute(ctx context.Context, snap *project.Snapshot) (*cpm.Result, error) {
	cal, err := snap.Config.Calendar(calendar.WithMaxGap(c.settings.MaxGapDays))
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(snap.Tasks, snap.Dependencies)
	if err != nil {
		return nil, err
	}
	return cpm.Analyze(ctx, cpm.Input{
		Graph:        g,
		Durations:    snap.Durations(),
		Calendar:     cal,
		Start:        snap.Config.Start,
		TargetFinish: snap.Config.TargetFinish,
		Anchor:       c.settings.Anchor,
		MaxLagDays:   c.settings.MaxLagDays,
	}, cpm.Options{MaxPaths: c.settings.MaxPaths})
}

// Schedule returns the current view: the last clean result, the state and
// the last failure.
func (c *Controller) Schedule() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		ProjectID:  c.projectID,
		State:      c.state,
		Result:     c.result,
		Err:        c.lastErr,
		Generation: c.generation,
	}
}

// Close stops the worker and rejects further recomputation. The last result
// stays readable through Schedule.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancelRun != nil {
		c.cancelRun(ErrClosed)
	}
	c.emitLocked(EventRemoved, "controller closed", nil)
	c.mu.Unlock()

	if c.stop != nil {
		c.stop()
	}
	c.wg.Wait()
}

func (c *Controller) work(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.trigger:
			if _, err := c.Recompute(ctx); err != nil && ctx.Err() == nil {
				c.logger.Debug("background recompute failed", "error", err)
			}
		}
	}
}

func (c *Controller) emitLocked(typ, msg string, err error) {
	if c.events == nil {
		return
	}
	ev := Event{
		Type:       typ,
		ProjectID:  c.projectID,
		State:      c.state,
		Generation: c.generation,
		Message:    msg,
		Timestamp:  time.Now(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	select {
	case c.events <- ev:
	default:
	}
}
