package discovery

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/imadgeboyega/kiekky-nearby/internal/auth"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetNearby serves GET /discovery/nearby?profile=&half_life_meters=&max_meters=&offset=&limit=
func (h *Handler) GetNearby(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q, err := parseNearbyQuery(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateStruct(q); err != nil {
		utils.RespondWithAppError(w, err, "Invalid query")
		return
	}

	resp, err := h.service.Nearby(r.Context(), userID, *q)
	if err != nil {
		utils.RespondWithAppError(w, err, "Failed to load nearby users")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithAppError(w, err, "Invalid request payload")
		return
	}

	resp, err := h.service.Rank(r.Context(), &req)
	if err != nil {
		utils.RespondWithAppError(w, err, "Failed to rank candidates")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) Scatter(w http.ResponseWriter, r *http.Request) {
	var req ScatterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithAppError(w, err, "Invalid request payload")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"users": h.service.Scatter(r.Context(), &req),
	})
}

func parseNearbyQuery(r *http.Request) (*OptionsDTO, error) {
	values := r.URL.Query()
	q := &OptionsDTO{Profile: values.Get("profile")}

	if v := values.Get("half_life_meters"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errBadParam("half_life_meters")
		}
		q.HalfLifeMeters = &f
	}
	if v := values.Get("max_meters"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errBadParam("max_meters")
		}
		q.MaxMeters = &f
	}
	if v := values.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errBadParam("offset")
		}
		q.Offset = n
	}
	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errBadParam("limit")
		}
		q.Limit = n
	}

	return q, nil
}

type errBadParam string

func (e errBadParam) Error() string { return "Invalid " + string(e) + " parameter" }
