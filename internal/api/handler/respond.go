package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/notifyhub/announcements/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrTooManyTargets):
		respondError(w, http.StatusRequestEntityTooLarge, domain.ErrTooManyTargets.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
	}
}

// MethodNotAllowed keeps 405 responses in the JSON error shape.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
}
