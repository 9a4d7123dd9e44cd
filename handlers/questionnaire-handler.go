package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuestionnaireHandler struct {
	service *services.QuestionnaireService
}

func NewQuestionnaireHandler(service *services.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{service: service}
}

type submitQuestionnaireRequest struct {
	BasicInfo    *models.BasicInfo        `json:"basicInfo"`
	Requirements *models.Requirements     `json:"requirements"`
	Selection    *models.ServiceSelection `json:"serviceSelection"`
}

// SubmitQuestionnaire accepts both authenticated and anonymous submissions;
// anonymous ones get a temporaryId back for later linking.
func (h *QuestionnaireHandler) SubmitQuestionnaire(w http.ResponseWriter, r *http.Request) {
	var req submitQuestionnaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	q := &models.Questionnaire{
		BasicInfo:    req.BasicInfo,
		Requirements: req.Requirements,
		Selection:    req.Selection,
	}
	if actor, ok := requireActorOptional(r); ok && actor.Role == models.RoleStartup {
		startupID, err := primitive.ObjectIDFromHex(actor.ID)
		if err == nil {
			q.StartupID = &startupID
		}
	}

	created, err := h.service.SubmitQuestionnaire(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *QuestionnaireHandler) UpdateQuestionnaire(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req submitQuestionnaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateContent(r.Context(), mux.Vars(r)["questionnaireId"], actor, req.BasicInfo, req.Requirements, req.Selection)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type reviewRequest struct {
	Status          models.QuestionnaireStatus `json:"status"`
	Notes           string                     `json:"notes"`
	RejectionReason string                     `json:"rejectionReason"`
}

func (h *QuestionnaireHandler) ReviewQuestionnaire(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, models.RoleAdmin)
	if !ok {
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	reviewed, err := h.service.Review(r.Context(), mux.Vars(r)["questionnaireId"], actor, req.Status, req.Notes, req.RejectionReason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewed)
}

type linkRequest struct {
	TemporaryID string `json:"temporaryId"`
}

func (h *QuestionnaireHandler) LinkQuestionnaire(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, models.RoleStartup)
	if !ok {
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TemporaryID == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	linked, err := h.service.LinkToOwner(r.Context(), req.TemporaryID, actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, linked)
}

func (h *QuestionnaireHandler) GetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	q, err := h.service.GetByID(r.Context(), mux.Vars(r)["questionnaireId"])
	if err != nil {
		writeError(w, err)
		return
	}
	if !actor.IsAdmin() && (q.StartupID == nil || q.StartupID.Hex() != actor.ID) {
		writeError(w, models.AccessDenied("questionnaire does not belong to this startup"))
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *QuestionnaireHandler) ListQuestionnaires(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if actor.IsAdmin() {
		questionnaires, err := h.service.ListByStatus(r.Context(), models.QuestionnaireStatus(r.URL.Query().Get("status")))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, questionnaires)
		return
	}

	questionnaires, err := h.service.ListByOwner(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questionnaires)
}
