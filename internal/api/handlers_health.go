package api

import (
	"net/http"

	"github.com/AbdelazizMoustafa10m/critpath/internal/buildinfo"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Projects int               `json:"projects"`
	States   map[string]string `json:"states"`
}

type HealthHandler struct {
	store    *project.Store
	registry *schedule.Registry
}

func NewHealthHandler(store *project.Store, registry *schedule.Registry) *HealthHandler {
	return &HealthHandler{store: store, registry: registry}
}

// Health reports "ok", or "degraded" when any open schedule has failed.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Version:  buildinfo.GetInfo().Version,
		Projects: len(h.store.IDs()),
		States:   make(map[string]string),
	}
	for _, id := range h.registry.IDs() {
		if c, ok := h.registry.Get(id); ok {
			st := c.Schedule().State
			resp.States[id] = string(st)
			if st == schedule.StateFailed {
				resp.Status = "degraded"
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
