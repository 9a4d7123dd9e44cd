package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/logging"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/middleware"
	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps taxonomy errors to HTTP statuses; anything else is an
// internal error with the detail kept out of the response.
func writeError(w http.ResponseWriter, err error) {
	if e, ok := models.AsError(err); ok {
		writeJSON(w, statusForCode(e.Code), e)
		return
	}
	logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"code": "INTERNAL_ERROR", "message": "internal server error"})
}

func statusForCode(code models.ErrorCode) int {
	switch code {
	case models.ErrCodeValidation:
		return http.StatusBadRequest
	case models.ErrCodeNotFound:
		return http.StatusNotFound
	case models.ErrCodeAccessDenied:
		return http.StatusForbidden
	case models.ErrCodePreconditionFail:
		return http.StatusPreconditionFailed
	case models.ErrCodeInvalidState, models.ErrCodeAlreadyExists, models.ErrCodeAlreadySelected, models.ErrCodeAlreadyLinked:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// requireActorOptional returns the actor when the request carried valid
// authentication; anonymous endpoints use this.
func requireActorOptional(r *http.Request) (models.Actor, bool) {
	return middleware.ActorFromContext(r.Context())
}

// requireActor pulls the authenticated actor off the context, optionally
// restricting to a role set.
func requireActor(w http.ResponseWriter, r *http.Request, allowedRoles ...models.ActorRole) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Access forbidden: missing authentication", http.StatusUnauthorized)
		return models.Actor{}, false
	}
	if len(allowedRoles) == 0 {
		return actor, true
	}
	for _, role := range allowedRoles {
		if actor.Role == role {
			return actor, true
		}
	}
	http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
	return models.Actor{}, false
}
