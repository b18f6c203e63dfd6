package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

type ProjectHandler struct {
	store    *project.Store
	registry *schedule.Registry
	now      func() time.Time
}

func NewProjectHandler(store *project.Store, registry *schedule.Registry) *ProjectHandler {
	return &ProjectHandler{store: store, registry: registry, now: time.Now}
}

// List handles GET /projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"projects": h.store.IDs()})
}

// Get handles GET /projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateTask handles PATCH /projects/{id}/tasks/{taskID}. Date and duration
// edits mark the schedule dirty through the store's change feed.
func (h *ProjectHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch project.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}
	t, err := h.store.UpdateTask(chi.URLParam(r, "id"), chi.URLParam(r, "taskID"), patch)
	if err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// AddDependency handles POST /projects/{id}/dependencies
func (h *ProjectHandler) AddDependency(w http.ResponseWriter, r *http.Request) {
	var dep task.Dependency
	if err := decodeJSON(r, &dep); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}
	added, err := h.store.AddDependency(chi.URLParam(r, "id"), dep)
	if err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// UpdateDependency handles PUT /projects/{id}/dependencies/{depID}
func (h *ProjectHandler) UpdateDependency(w http.ResponseWriter, r *http.Request) {
	var dep task.Dependency
	if err := decodeJSON(r, &dep); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}
	dep.ID = chi.URLParam(r, "depID")
	updated, err := h.store.UpdateDependency(chi.URLParam(r, "id"), dep)
	if err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// RemoveDependency handles DELETE /projects/{id}/dependencies/{depID}
func (h *ProjectHandler) RemoveDependency(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveDependency(chi.URLParam(r, "id"), chi.URLParam(r, "depID")); err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Gantt handles GET /projects/{id}/gantt. Bars use the published schedule
// when there is one.
func (h *ProjectHandler) Gantt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.store.Get(id)
	if err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, project.BuildGantt(p, h.registry.Schedule(id).Result))
}

// Statistics handles GET /projects/{id}/statistics. The optional as_of
// query parameter (YYYY-MM-DD) sets the reference date for overdue tasks.
func (h *ProjectHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	asOf := calendar.FromTime(h.now())
	if s := r.URL.Query().Get("as_of"); s != "" {
		if asOf, err = calendar.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, project.ComputeStatistics(p, asOf))
}

// SetBaseline handles POST /projects/{id}/baselines with an optional
// {"name": "..."} body.
func (h *ProjectHandler) SetBaseline(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
			return
		}
	}
	b, err := h.store.SetBaseline(chi.URLParam(r, "id"), body.Name)
	if err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Variance handles GET /projects/{id}/variance: the published schedule
// against the baseline dates.
func (h *ProjectHandler) Variance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.store.Get(id)
	if err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	v := h.registry.Schedule(id)
	if v.Result == nil {
		writeError(w, http.StatusConflict, "not_scheduled", "project has no schedule yet; recompute first")
		return
	}
	variance := project.ScheduleVariance(p, v.Result)
	if variance == nil {
		variance = []project.Variance{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"variance": variance})
}
