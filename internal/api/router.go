// Package api exposes schedules, recomputation, Kanban moves and project
// edits over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

// NewRouter creates the chi router with all routes and middleware.
func NewRouter(store *project.Store, registry *schedule.Registry, apiKey string, logger *log.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes including /health)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	healthH := NewHealthHandler(store, registry)
	scheduleH := NewScheduleHandler(store, registry)
	kanbanH := NewKanbanHandler(store)
	projectH := NewProjectHandler(store, registry)

	r.Get("/health", healthH.Health)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(apiKey))

		r.Post("/tasks/{id}/move", kanbanH.Move)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectH.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projectH.Get)
				r.Get("/schedule", scheduleH.Get)
				r.Post("/recompute", scheduleH.Recompute)
				r.Get("/kanban", kanbanH.Board)
				r.Post("/tasks/{taskID}/move", kanbanH.Move)
				r.Patch("/tasks/{taskID}", projectH.UpdateTask)
				r.Post("/dependencies", projectH.AddDependency)
				r.Put("/dependencies/{depID}", projectH.UpdateDependency)
				r.Delete("/dependencies/{depID}", projectH.RemoveDependency)
				r.Get("/gantt", projectH.Gantt)
				r.Get("/statistics", projectH.Statistics)
				r.Post("/baselines", projectH.SetBaseline)
				r.Get("/variance", projectH.Variance)
			})
		})
	})

	return r
}

// Serve runs an HTTP server on addr until ctx is done, then shuts it down
// gracefully within shutdownTimeout.
func Serve(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
