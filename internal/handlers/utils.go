package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse acknowledges a write.
type SuccessResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeSoftError reports a failure in the body with a 200 status. The
// login and current-user endpoints keep this contract because the
// frontend distinguishes failure by parsing the body, not the status.
func writeSoftError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, ErrorResponse{Error: message})
}
