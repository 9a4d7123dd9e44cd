package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/services"

	"github.com/gorilla/mux"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type createTaskRequest struct {
	ColumnID    string              `json:"columnId"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	AssigneeID  string              `json:"assigneeId"`
	DueDate     *time.Time          `json:"dueDate"`
	Tags        []string            `json:"tags"`
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	task, err := h.service.CreateTask(r.Context(), mux.Vars(r)["boardId"], actor, req.ColumnID, req.Title, req.Description, req.Priority, req.AssigneeID, req.DueDate, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

type moveTaskRequest struct {
	ColumnID string `json:"columnId"`
	Position int    `json:"position"`
}

func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req moveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ColumnID == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	task, err := h.service.MoveTask(r.Context(), mux.Vars(r)["taskId"], actor, req.ColumnID, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) ArchiveTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.service.ArchiveTask(r.Context(), mux.Vars(r)["taskId"], actor); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Task archived successfully"}`))
}

type addCommentRequest struct {
	Body string `json:"body"`
}

func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	comment, err := h.service.AddComment(r.Context(), mux.Vars(r)["taskId"], actor, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *TaskHandler) GetTasksByBoard(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	tasks, err := h.service.GetTasksByBoard(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	task, err := h.service.GetTaskByID(r.Context(), mux.Vars(r)["taskId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
