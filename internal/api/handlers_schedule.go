package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/cpm"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

// ScheduleResponse is the body of the schedule and recompute endpoints.
// Tasks and paths come from the last clean schedule; when the latest
// recomputation failed, Status is "Failed" and Error describes why.
type ScheduleResponse struct {
	ProjectID     string           `json:"project_id"`
	Status        string           `json:"status"`
	Tasks         []cpm.TaskTimes  `json:"tasks"`
	CriticalPaths [][]string       `json:"critical_paths"`
	ProjectStart  *calendar.Date   `json:"project_start,omitempty"`
	ProjectFinish *calendar.Date   `json:"project_finish,omitempty"`
	DurationDays  int              `json:"duration_days"`
	Warnings      []cpm.Diagnostic `json:"warnings,omitempty"`
	Error         *ErrorBody       `json:"error,omitempty"`
}

func newScheduleResponse(v schedule.View) ScheduleResponse {
	resp := ScheduleResponse{
		ProjectID:     v.ProjectID,
		Status:        v.State.Status(),
		Tasks:         []cpm.TaskTimes{},
		CriticalPaths: [][]string{},
	}
	if res := v.Result; res != nil {
		start, finish := res.ProjectStart, res.ProjectFinish
		resp.Tasks = res.Tasks
		resp.CriticalPaths = res.CriticalPaths
		resp.ProjectStart = &start
		resp.ProjectFinish = &finish
		resp.DurationDays = res.DurationDays
		resp.Warnings = res.Warnings
	}
	if v.Err != nil && v.State == schedule.StateFailed {
		_, body := describe(v.Err, http.StatusInternalServerError)
		resp.Error = &body
	}
	return resp
}

type ScheduleHandler struct {
	store    *project.Store
	registry *schedule.Registry
}

func NewScheduleHandler(store *project.Store, registry *schedule.Registry) *ScheduleHandler {
	return &ScheduleHandler{store: store, registry: registry}
}

// Get handles GET /projects/{id}/schedule. A project that has never been
// scheduled is computed on first read; afterwards the published schedule
// is returned as is.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.Get(id); err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}

	v := h.registry.Schedule(id)
	if v.Result == nil && v.State == schedule.StateDirty {
		// Failures are reported through the view below.
		_, _ = h.registry.Recompute(r.Context(), id)
		v = h.registry.Schedule(id)
	}
	writeJSON(w, http.StatusOK, newScheduleResponse(v))
}

// Recompute handles POST /projects/{id}/recompute. Unchanged projects
// return the existing schedule. A rejected recomputation answers with the
// error status and the still-published previous schedule.
func (h *ScheduleHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.Get(id); err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}

	_, err := h.registry.Recompute(r.Context(), id)
	resp := newScheduleResponse(h.registry.Schedule(id))
	if err != nil {
		status, body := describe(err, http.StatusInternalServerError)
		resp.Error = &body
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
