package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		wantStatus  int
	}{
		{"GET without content type", http.MethodGet, "", "", http.StatusOK},
		{"DELETE without content type", http.MethodDelete, "", "", http.StatusOK},
		{"bodyless POST", http.MethodPost, "", "", http.StatusOK},
		{"JSON POST", http.MethodPost, "application/json", `{"title":"q"}`, http.StatusOK},
		{"JSON with charset", http.MethodPatch, "application/json; charset=utf-8", `{}`, http.StatusOK},
		{"upper case media type", http.MethodPut, "Application/JSON", `{}`, http.StatusOK},
		{"form login", http.MethodPost, "application/x-www-form-urlencoded", "username=a&password=b", http.StatusOK},
		{"missing content type", http.MethodPost, "", `{}`, http.StatusBadRequest},
		{"malformed content type", http.MethodPost, "application/json; =", `{}`, http.StatusBadRequest},
		{"unsupported content type", http.MethodPost, "text/xml", "<q/>", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			var req *http.Request
			if tt.body == "" {
				req = httptest.NewRequest(tt.method, "/api/questions", nil)
			} else {
				req = httptest.NewRequest(tt.method, "/api/questions", strings.NewReader(tt.body))
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()

			ContentType()(handler).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestContentType_CustomAllowList(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	ContentType("application/json")(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}
}
