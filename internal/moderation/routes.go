package moderation

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-nearby/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, hub *Hub, authMiddleware *auth.Middleware) {
	router.Handle("/api/v1/reports", authMiddleware.Authenticate(http.HandlerFunc(handler.SubmitReport))).Methods("POST")

	admin := router.PathPrefix("/api/v1/admin").Subrouter()
	admin.Use(authMiddleware.Authenticate, authMiddleware.RequireAdmin)

	// Reports
	admin.HandleFunc("/reports", handler.ListReports).Methods("GET")
	admin.HandleFunc("/reports/{id:[0-9]+}", handler.GetReport).Methods("GET")
	admin.HandleFunc("/reports/{id:[0-9]+}/status", handler.UpdateReportStatus).Methods("PATCH")

	// Users
	admin.HandleFunc("/users/{id:[0-9]+}/trust", handler.AdjustTrust).Methods("POST")
	admin.HandleFunc("/users/{id:[0-9]+}/ban", handler.BanUser).Methods("POST")
	admin.HandleFunc("/users/{id:[0-9]+}/ban", handler.UnbanUser).Methods("DELETE")
	admin.HandleFunc("/users/{id:[0-9]+}/actions", handler.ActionHistory).Methods("GET")
	admin.HandleFunc("/reported-users", handler.ReportedUsers).Methods("GET")

	// Live feed
	if hub != nil {
		admin.HandleFunc("/ws", hub.ServeWS).Methods("GET")
	}
}
