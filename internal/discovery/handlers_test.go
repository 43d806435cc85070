package discovery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-nearby/internal/auth"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/utils"
)

const testSecret = "discovery-test-secret"

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	svc, _ := newNearbyFixture(t)
	router := mux.NewRouter()
	RegisterRoutes(router, NewHandler(svc), auth.NewMiddleware(testSecret))
	return router
}

func bearer(t *testing.T, userID int64) string {
	t.Helper()
	token, err := utils.GenerateJWT(&utils.JWTClaims{UserID: userID, Role: utils.RoleUser}, testSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestGetNearbyHandler(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discovery/nearby?profile=matchmaking&limit=2", nil)
	req.Header.Set("Authorization", bearer(t, 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp RankResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, int64(2), resp.Results[0].UserID)
}

func TestGetNearbyHandlerErrors(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		url    string
		auth   bool
		status int
	}{
		{"no token", "/api/v1/discovery/nearby", false, http.StatusUnauthorized},
		{"bad number", "/api/v1/discovery/nearby?max_meters=far", true, http.StatusBadRequest},
		{"unknown profile", "/api/v1/discovery/nearby?profile=popular", true, http.StatusBadRequest},
		{"negative offset", "/api/v1/discovery/nearby?offset=-1", true, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.auth {
				req.Header.Set("Authorization", bearer(t, 1))
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRankHandler(t *testing.T) {
	router := newTestRouter(t)

	body := []byte(`{
		"requester": {"id": 1, "interest_tags": ["jazz"], "latitude": 6.5, "longitude": 3.3},
		"candidates": [
			{"id": 2, "interest_tags": ["JAZZ"], "latitude": 6.501, "longitude": 3.3},
			{"id": 3, "interest_tags": [], "latitude": 6.5, "longitude": 3.3},
			{"id": 4, "interest_tags": ["jazz"]}
		],
		"options": {"weights": {"tag_sim": 1, "distance": 0}}
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/discovery/rank", bytes.NewReader(body))
	req.Header.Set("Authorization", bearer(t, 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp RankResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []int64{2, 3}, ids(resp.Results))
	assert.Equal(t, []string{"jazz"}, resp.Results[0].SharedTags)
}

func TestRankHandlerValidation(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/discovery/rank",
		bytes.NewReader([]byte(`{"requester": {"id": 0}, "candidates": []}`)))
	req.Header.Set("Authorization", bearer(t, 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScatterHandler(t *testing.T) {
	router := newTestRouter(t)

	body := []byte(`{"center": {"lat": 6.5, "lon": 3.3}, "users": [{"id": 9, "username": "ada"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/discovery/scatter", bytes.NewReader(body))
	req.Header.Set("Authorization", bearer(t, 1))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Users []PositionedUser `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Users, 1)
	assert.Equal(t, int64(9), resp.Users[0].UserID)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/discovery/scatter",
		bytes.NewReader([]byte(`{"center": {"lat": 123, "lon": 3.3}}`)))
	req.Header.Set("Authorization", bearer(t, 1))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
