package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/utils"
)

const testSecret = "middleware-secret"

func tokenFor(t *testing.T, userID int64, role string) string {
	t.Helper()
	token, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    userID,
		Username:  "tester",
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, testSecret)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	m := NewMiddleware(testSecret)

	var seen Actor
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, 9, utils.RoleAdmin))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, int64(9), seen.UserID)
		assert.True(t, seen.IsAdmin)
	})

	t.Run("query token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?access_token="+tokenFor(t, 3, utils.RoleUser), nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, int64(3), seen.UserID)
		assert.False(t, seen.IsAdmin)
	})
}

func TestRequireAdmin(t *testing.T) {
	m := NewMiddleware(testSecret)
	handler := m.Authenticate(m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, 5, utils.RoleUser))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, 5, utils.RoleAdmin))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
