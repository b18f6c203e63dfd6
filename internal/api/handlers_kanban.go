package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AbdelazizMoustafa10m/critpath/internal/kanban"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
	"github.com/AbdelazizMoustafa10m/critpath/internal/task"
)

// MoveBody is the body of a Kanban move. ProjectID is required on
// /tasks/{id}/move and taken from the path on the project-scoped route.
type MoveBody struct {
	ProjectID   string      `json:"project_id"`
	Status      task.Status `json:"status"`
	Order       int         `json:"order"`
	BaseVersion uint64      `json:"base_version,omitempty"`
}

// BoardResponse is the body of GET /projects/{id}/kanban.
type BoardResponse struct {
	ProjectID string          `json:"project_id"`
	Version   uint64          `json:"version"`
	Columns   []kanban.Column `json:"columns"`
}

type KanbanHandler struct {
	store *project.Store
}

func NewKanbanHandler(store *project.Store) *KanbanHandler {
	return &KanbanHandler{store: store}
}

// Move handles POST /tasks/{id}/move and POST /projects/{id}/tasks/{taskID}/move.
func (h *KanbanHandler) Move(w http.ResponseWriter, r *http.Request) {
	var body MoveBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}

	taskID := chi.URLParam(r, "taskID")
	projectID := body.ProjectID
	if taskID == "" {
		taskID = chi.URLParam(r, "id")
	} else {
		projectID = chi.URLParam(r, "id")
	}
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "project_id is required")
		return
	}
	if body.Status == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "status is required")
		return
	}

	board, err := h.store.Board(projectID)
	if err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	ordering, err := board.Move(kanban.MoveRequest{
		TaskID:      taskID,
		Status:      body.Status,
		Index:       body.Order,
		BaseVersion: body.BaseVersion,
	})
	if err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ordering)
}

// Board handles GET /projects/{id}/kanban.
func (h *KanbanHandler) Board(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	board, err := h.store.Board(id)
	if err != nil {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, BoardResponse{ProjectID: id, Version: board.Version(), Columns: board.Columns()})
}
