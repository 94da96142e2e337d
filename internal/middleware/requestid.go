package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/stackit-qa/stackit-api/internal/request"
)

const maxRequestIDLength = 128

// RequestID assigns every request an ID, reusing a well-formed incoming
// X-Request-ID and otherwise generating a UUID. The ID is echoed in the
// response and stored in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(request.RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
			r.Header.Set(request.RequestIDHeader, id)
		}
		w.Header().Set(request.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(request.WithRequestID(r.Context(), id)))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
