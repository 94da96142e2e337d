package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/stackit-qa/stackit-api/internal/middleware"
)

// writeJSON encodes data as the whole response body, without the error envelope.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// NotFound renders unmatched routes as a JSON error.
func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.RespondError(w, r, http.StatusNotFound, "Not Found", "The requested resource does not exist")
	})
}

// MethodNotAllowed renders a JSON 405. gorilla/mux has already set the Allow header.
func MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.RespondError(w, r, http.StatusMethodNotAllowed, "Method Not Allowed", "Method "+r.Method+" is not supported for this resource")
	})
}
