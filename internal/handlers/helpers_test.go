package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stackit-qa/stackit-api/internal/middleware"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		data   any
		want   string
	}{
		{name: "object", status: http.StatusOK, data: map[string]string{"message": "hello"}, want: `{"message":"hello"}`},
		{name: "array", status: http.StatusCreated, data: []int{1, 2}, want: `[1,2]`},
		{name: "nil", status: http.StatusOK, data: nil, want: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			writeJSON(w, tt.status, tt.data)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if got := w.Body.String(); got != tt.want+"\n" {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.Handler
		method  string
		status  int
		errType string
	}{
		{name: "not found", handler: NotFound(), method: http.MethodGet, status: http.StatusNotFound, errType: "Not Found"},
		{name: "method not allowed", handler: MethodNotAllowed(), method: http.MethodPost, status: http.StatusMethodNotAllowed, errType: "Method Not Allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, httptest.NewRequest(tt.method, "/nowhere", nil))

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var body middleware.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Success {
				t.Error("success = true, want false")
			}
			if body.Error != tt.errType {
				t.Errorf("error = %q, want %q", body.Error, tt.errType)
			}
			if body.Path != "/nowhere" {
				t.Errorf("path = %q", body.Path)
			}
			if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
				t.Errorf("timestamp %q is not RFC3339: %v", body.Timestamp, err)
			}
		})
	}
}
