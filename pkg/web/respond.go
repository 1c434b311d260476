package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ritzau/campus-nav/pkg/logging"
	"github.com/ritzau/campus-nav/pkg/navigation"
)

// Response statuses.
const (
	statusSuccess = "success"
	statusError   = "error"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to write response", "error", err)
	}
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorResponse{Status: statusError, Message: message})
}

// statusFor maps navigation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, navigation.ErrInputNotFound):
		return http.StatusNotFound
	case errors.Is(err, navigation.ErrGraphUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, navigation.ErrNoPathFound):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
