package users

import (
	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-nearby/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/users").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/me", handler.GetMe).Methods("GET")
	api.HandleFunc("/{id:[0-9]+}/block", handler.BlockUser).Methods("POST")
	api.HandleFunc("/{id:[0-9]+}/block", handler.UnblockUser).Methods("DELETE")
}
