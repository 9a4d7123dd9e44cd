package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ROYA-Venture-Studio/taotter-api-sub000/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func signToken(t *testing.T, id string, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": id, "role": role})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func actorRecorder(captured *models.Actor, found *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		*captured = actor
		*found = ok
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTAuthMiddlewareResolvesActor(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	var actor models.Actor
	var found bool
	handler := JWTAuthMiddleware(actorRecorder(&actor, &found))

	req := httptest.NewRequest(http.MethodGet, "/api/sprints", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", "admin"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, found)
	assert.Equal(t, "user-1", actor.ID)
	assert.Equal(t, models.RoleAdmin, actor.Role)
}

func TestJWTAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	handler := JWTAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without authentication")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/sprints", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalJWTAuthMiddlewareAnonymous(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	var actor models.Actor
	var found bool
	handler := OptionalJWTAuthMiddleware(actorRecorder(&actor, &found))

	req := httptest.NewRequest(http.MethodPost, "/api/questionnaires", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, found)
}

func TestOptionalJWTAuthMiddlewareAttributesLoggedInStartup(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	var actor models.Actor
	var found bool
	handler := OptionalJWTAuthMiddleware(actorRecorder(&actor, &found))

	req := httptest.NewRequest(http.MethodPost, "/api/questionnaires", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "startup-7", "startup"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, found)
	assert.Equal(t, "startup-7", actor.ID)
	assert.Equal(t, models.RoleStartup, actor.Role)
}

func TestOptionalJWTAuthMiddlewareRejectsBadToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	handler := OptionalJWTAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with a bad token")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/questionnaires", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
