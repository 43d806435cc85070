package moderation

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-nearby/internal/auth"
	"github.com/imadgeboyega/kiekky-nearby/internal/common/utils"
)

type Handler struct {
	reports    ReportService
	dispatcher *Dispatcher
}

func NewHandler(reports ReportService, dispatcher *Dispatcher) *Handler {
	return &Handler{reports: reports, dispatcher: dispatcher}
}

func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req SubmitReportRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.reports.SubmitReport(r.Context(), userID, &req)
	if err != nil {
		utils.RespondWithAppError(w, err, "Failed to submit report")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ReportFilter{}

	if raw := q.Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			utils.RespondWithAppError(w, err, "Invalid status")
			return
		}
		filter.Status = &status
	}
	if raw := q.Get("reported_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid reported_id parameter")
			return
		}
		filter.ReportedID = &id
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid offset parameter")
			return
		}
		filter.Offset = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		filter.Limit = n
	}

	page, err := h.reports.ListReports(r.Context(), filter)
	if err != nil {
		utils.RespondWithAppError(w, err, "Failed to list reports")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, page)
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid report ID")
	if !ok {
		return
	}

	report, err := h.reports.GetReport(r.Context(), id)
	if err != nil {
		utils.RespondWithAppError(w, err, "Failed to get report")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}

func (h *Handler) UpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := adminTarget(w, r, "Invalid report ID")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !decode(w, r, &req) {
		return
	}

	report, err := h.dispatcher.UpdateReportStatus(r.Context(), actor, id, req.Status, req.ResolutionNote)
	if err != nil {
		utils.RespondWithAppError(w, err, "Failed to update report")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}

func (h *Handler) AdjustTrust(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := adminTarget(w, r, "Invalid user ID")
	if !ok {
		return
	}

	var req AdjustTrustRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.dispatcher.AdjustTrust(r.Context(), actor, id, req.adjustment())
	if err != nil {
		utils.RespondWithAppError(w, err, "Failed to adjust trust score")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) BanUser(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := adminTarget(w, r, "Invalid user ID")
	if !ok {
		return
	}

	// the body is optional
	var req BanRequest
	if r.ContentLength != 0 {
		if !decode(w, r, &req) {
			return
		}
	}

	state, err := h.dispatcher.BanUser(r.Context(), actor, id, req.Reason)
	if err != nil {
		utils.RespondWithAppError(w, err, "Failed to ban user")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, state)
}

func (h *Handler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := adminTarget(w, r, "Invalid user ID")
	if !ok {
		return
	}

	state, err := h.dispatcher.UnbanUser(r.Context(), actor, id)
	if err != nil {
		utils.RespondWithAppError(w, err, "Failed to unban user")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, state)
}

func (h *Handler) ActionHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid user ID")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	actions, err := h.reports.ActionHistory(r.Context(), id, limit)
	if err != nil {
		utils.RespondWithAppError(w, err, "Failed to load moderation history")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, actions)
}

func (h *Handler) ReportedUsers(w http.ResponseWriter, r *http.Request) {
	reported, err := h.reports.ReportedUsers(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, err, "Failed to load reported users")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, reported)
}

// decode reads a JSON body, keeping numbers as json.Number so untyped
// fields like severity keep their exact text, then validates it.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	if err := utils.ValidateStruct(dst); err != nil {
		utils.RespondWithAppError(w, err, "Invalid request payload")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, msg string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, msg)
		return 0, false
	}
	return id, true
}

func adminTarget(w http.ResponseWriter, r *http.Request, msg string) (auth.Actor, int64, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return auth.Actor{}, 0, false
	}

	id, ok := pathID(w, r, msg)
	if !ok {
		return auth.Actor{}, 0, false
	}
	return actor, id, true
}
