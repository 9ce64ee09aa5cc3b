package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"quintal/internal/costing"
	applog "quintal/internal/log"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps costing errors onto HTTP statuses. Unknown errors
// are logged and masked behind the fallback message so internals never
// reach clients.
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	var validationErr *costing.ValidationError
	var conflictErr *costing.ConflictError

	switch {
	case errors.As(err, &validationErr):
		writeJSONError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &conflictErr):
		writeJSONError(w, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, costing.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	default:
		applog.Error(ctx, fallback, "error", err)
		writeJSONError(w, http.StatusInternalServerError, fallback)
	}
}
