package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/repositories"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/services"

	"github.com/gorilla/mux"
)

type BoardHandler struct {
	service *services.BoardService
	events  *repositories.EventRepo
}

func NewBoardHandler(service *services.BoardService, events *repositories.EventRepo) *BoardHandler {
	return &BoardHandler{service: service, events: events}
}

// GetBoardForSprint returns the sprint's board, creating it on first
// request. Startups are refused until the payment gate is open.
func (h *BoardHandler) GetBoardForSprint(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	board, err := h.service.GetOrCreateForSprint(r.Context(), mux.Vars(r)["sprintId"], actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	board, err := h.service.GetByID(r.Context(), mux.Vars(r)["boardId"], actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

type addColumnRequest struct {
	Name     string            `json:"name"`
	Role     models.ColumnRole `json:"role"`
	Position int               `json:"position"`
}

func (h *BoardHandler) AddColumn(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	var req addColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	board, err := h.service.AddColumn(r.Context(), mux.Vars(r)["boardId"], actor, req.Name, req.Role, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *BoardHandler) ArchiveColumn(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	board, err := h.service.ArchiveColumn(r.Context(), vars["boardId"], vars["columnId"], actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *BoardHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	var member models.BoardMember
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil || member.UserID == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	board, err := h.service.AddMember(r.Context(), mux.Vars(r)["boardId"], actor, member)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *BoardHandler) ArchiveBoard(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	if err := h.service.ArchiveBoard(r.Context(), mux.Vars(r)["boardId"], actor); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Board archived successfully"}`))
}

// GetBoardEvents returns the realtime feed for a board topic, newest first.
func (h *BoardHandler) GetBoardEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	boardID := mux.Vars(r)["boardId"]
	if _, err := h.service.GetByID(r.Context(), boardID, actor); err != nil {
		writeError(w, err)
		return
	}

	events, err := h.events.GetEventsByTopic(boardID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
