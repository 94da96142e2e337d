package middleware

import (
	"mime"
	"net/http"
	"strings"
)

// DefaultAllowedContentTypes are the body encodings the route group collaborators accept:
// JSON for resources, form encodings for the auth token endpoint and uploads.
var DefaultAllowedContentTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

// ContentType validates Content-Type headers for requests with bodies
func ContentType(allowed ...string) func(http.Handler) http.Handler {
	if len(allowed) == 0 {
		allowed = DefaultAllowedContentTypes
	}
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedSet[strings.ToLower(a)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasBody(r) {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				respondErrorJSON(w, r, http.StatusBadRequest, "Bad Request", "Content-Type header is required", nil)
				return
			}

			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil {
				respondErrorJSON(w, r, http.StatusBadRequest, "Bad Request", "Content-Type header is malformed", nil)
				return
			}
			if _, ok := allowedSet[mediaType]; !ok {
				respondErrorJSON(w, r, http.StatusUnsupportedMediaType, "Unsupported Media Type", "Content-Type must be one of: "+strings.Join(allowed, ", "), nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// hasBody reports whether the request method carries a body that needs a content type.
// Bodyless POSTs (e.g. vote or accept actions) are let through.
func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	default:
		return false
	}
}
