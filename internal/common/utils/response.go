// internal/common/utils/response.go
// JSON response helpers shared by every handler

package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/apperr"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// RespondWithJSON sends a JSON response with the specified status code and payload
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Error marshaling JSON"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError sends an error response with the specified status code and message
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorBody{Error: message})
}

// RespondWithAppError maps a domain error onto its HTTP status. Internal
// errors are logged and replaced by fallback so details never leak.
func RespondWithAppError(w http.ResponseWriter, err error, fallback string) {
	code := apperr.HTTPStatus(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg(fallback)
		RespondWithError(w, code, fallback)
		return
	}

	RespondWithJSON(w, code, ErrorBody{
		Error:     err.Error(),
		Retryable: apperr.IsRetryable(err),
	})
}
