package users

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-nearby/internal/auth"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, err, "Failed to get profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) BlockUser(w http.ResponseWriter, r *http.Request) {
	userID, targetID, ok := blockParams(w, r)
	if !ok {
		return
	}

	if err := h.service.BlockUser(r.Context(), userID, targetID); err != nil {
		utils.RespondWithAppError(w, err, "Failed to block user")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"blocked_id": targetID,
		"blocked":    true,
	})
}

func (h *Handler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	userID, targetID, ok := blockParams(w, r)
	if !ok {
		return
	}

	if err := h.service.UnblockUser(r.Context(), userID, targetID); err != nil {
		utils.RespondWithAppError(w, err, "Failed to unblock user")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"blocked_id": targetID,
		"blocked":    false,
	})
}

func blockParams(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return 0, 0, false
	}

	targetID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || targetID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return 0, 0, false
	}

	return userID, targetID, true
}
