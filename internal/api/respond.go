package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/cpm"
	"github.com/AbdelazizMoustafa10m/critpath/internal/graph"
	"github.com/AbdelazizMoustafa10m/critpath/internal/kanban"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

const maxBodyBytes = 1 << 20

// ErrorBody is the JSON form of every error response. The identifier lists
// let a client highlight the tasks and dependencies involved.
type ErrorBody struct {
	Error         string   `json:"error"`
	Code          string   `json:"code"`
	Path          []string `json:"path,omitempty"`
	TaskIDs       []string `json:"task_ids,omitempty"`
	DependencyIDs []string `json:"dependency_ids,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorBody{Error: msg, Code: code})
}

// writeErr maps err to a status and structured body. fallback is used for
// errors outside the known taxonomy.
func writeErr(w http.ResponseWriter, err error, fallback int) {
	status, body := describe(err, fallback)
	writeJSON(w, status, body)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

// describe classifies err. Cycles are conflicts with the current graph,
// infeasible lags and unreachable calendars are unprocessable, and bad
// references are client errors.
func describe(err error, fallback int) (int, ErrorBody) {
	body := ErrorBody{Error: err.Error()}

	var (
		cycle    *graph.CycleError
		missing  *graph.MissingReferenceError
		invalid  *graph.InvalidDependencyError
		lag      *cpm.InvalidLagError
		conflict *kanban.OrderingConflictError
	)
	switch {
	case errors.As(err, &cycle):
		body.Code = "cycle"
		body.Path = cycle.Path
		return http.StatusConflict, body
	case errors.As(err, &lag):
		body.Code = "invalid_lag"
		body.TaskIDs = lag.TaskIDs
		body.DependencyIDs = lag.DependencyIDs
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &missing):
		body.Code = "missing_reference"
		body.TaskIDs = []string{missing.TaskID}
		body.DependencyIDs = []string{missing.DependencyID}
		return http.StatusBadRequest, body
	case errors.As(err, &invalid):
		body.Code = "invalid_dependency"
		body.DependencyIDs = []string{invalid.DependencyID}
		return http.StatusBadRequest, body
	case errors.As(err, &conflict):
		body.Code = "ordering_conflict"
		return http.StatusConflict, body
	case errors.Is(err, calendar.ErrNoWorkingDays):
		body.Code = "no_working_days"
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, project.ErrNotFound):
		body.Code = "not_found"
		return http.StatusNotFound, body
	case errors.Is(err, kanban.ErrUnknownTask):
		body.Code = "unknown_task"
		return http.StatusNotFound, body
	case errors.Is(err, kanban.ErrInvalidMove):
		body.Code = "invalid_move"
		return http.StatusBadRequest, body
	case errors.Is(err, schedule.ErrClosed):
		body.Code = "not_found"
		return http.StatusNotFound, body
	}

	switch fallback {
	case http.StatusBadRequest:
		body.Code = "invalid_request"
	default:
		body.Code = "internal"
	}
	return fallback, body
}
