package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/services"

	"github.com/gorilla/mux"
)

type SprintHandler struct {
	service *services.SprintService
}

func NewSprintHandler(service *services.SprintService) *SprintHandler {
	return &SprintHandler{service: service}
}

type createSprintRequest struct {
	QuestionnaireID   string                 `json:"questionnaireId"`
	Name              string                 `json:"name"`
	Description       string                 `json:"description"`
	Type              string                 `json:"type"`
	EstimatedDuration string                 `json:"estimatedDuration"`
	PackageOptions    []models.PackageOption `json:"packageOptions"`
}

func (h *SprintHandler) CreateSprint(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	var req createSprintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	sprint, err := h.service.CreateFromQuestionnaire(r.Context(), req.QuestionnaireID, actor, req.Name, req.Description, req.Type, req.EstimatedDuration, req.PackageOptions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sprint)
}

type selectPackageRequest struct {
	PackageID string `json:"packageId"`
}

func (h *SprintHandler) SelectPackage(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, models.RoleStartup)
	if !ok {
		return
	}

	var req selectPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PackageID == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	sprint, err := h.service.SelectPackage(r.Context(), mux.Vars(r)["sprintId"], actor, req.PackageID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

func (h *SprintHandler) SubmitDocuments(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, models.RoleStartup)
	if !ok {
		return
	}

	sprint, err := h.service.SubmitDocuments(r.Context(), mux.Vars(r)["sprintId"], actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

type scheduleMeetingRequest struct {
	URL          string    `json:"url"`
	ScheduledFor time.Time `json:"scheduledFor"`
	Type         string    `json:"type"`
}

func (h *SprintHandler) ScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req scheduleMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	sprint, err := h.service.ScheduleMeeting(r.Context(), mux.Vars(r)["sprintId"], actor, req.URL, req.ScheduledFor, req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

type setStatusRequest struct {
	Status models.SprintStatus `json:"status"`
	Note   string              `json:"note"`
}

func (h *SprintHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	sprint, err := h.service.SetStatus(r.Context(), mux.Vars(r)["sprintId"], actor, req.Status, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

func (h *SprintHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	sprint, err := h.service.VerifyPayment(r.Context(), mux.Vars(r)["sprintId"], actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

type assignTeamRequest struct {
	MemberIDs []string `json:"memberIds"`
}

func (h *SprintHandler) AssignTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	var req assignTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	sprint, err := h.service.AssignTeam(r.Context(), mux.Vars(r)["sprintId"], actor, req.MemberIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

type milestonesRequest struct {
	CompletedMilestones int    `json:"completedMilestones"`
	TotalMilestones     int    `json:"totalMilestones"`
	CurrentPhase        string `json:"currentPhase"`
}

func (h *SprintHandler) UpdateMilestones(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	var req milestonesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	sprint, err := h.service.UpdateMilestones(r.Context(), mux.Vars(r)["sprintId"], actor, req.CompletedMilestones, req.TotalMilestones, req.CurrentPhase)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

func (h *SprintHandler) GetSprint(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	sprint, err := h.service.GetByID(r.Context(), mux.Vars(r)["sprintId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprint)
}

func (h *SprintHandler) ListSprints(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	sprints, err := h.service.ListSprints(r.Context(), models.SprintStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sprints)
}
