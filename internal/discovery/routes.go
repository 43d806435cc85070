package discovery

import (
	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-nearby/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/discovery").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/nearby", handler.GetNearby).Methods("GET")
	api.HandleFunc("/rank", handler.Rank).Methods("POST")
	api.HandleFunc("/scatter", handler.Scatter).Methods("POST")
}
