package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alumnet/alumni-backend/internal/approval"
	"github.com/alumnet/alumni-backend/internal/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// decodeBody parses a JSON request body into dst. A false return
// means a 400 has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeApprovalError maps workflow errors to HTTP statuses. Forbidden
// stays generic so the privilege model is not leaked to denied
// callers; everything unexpected is a store failure.
func writeApprovalError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, approval.ErrNotFound):
		writeError(w, http.StatusNotFound, "Profile not found")
	case errors.Is(err, approval.ErrInvalidState):
		writeError(w, http.StatusConflict, "Profile has already been processed")
	case errors.Is(err, approval.ErrForbidden):
		writeError(w, http.StatusForbidden, "You are not authorized to perform this action")
	default:
		middleware.GetLoggerFromContext(r.Context()).Error("approval operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
