package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

func TestLiveness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want map[string]string
	}{
		{path: "/", want: map[string]string{"message": "Welcome to StackIt API"}},
		{path: "/health", want: map[string]string{"status": "healthy"}},
	}

	r := mux.NewRouter()
	NewHealthChecker(nil).RegisterRoutes(r)

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			var got map[string]string
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("body = %v, want %v", got, tt.want)
			}
		})
	}
}

func newPingMock(t *testing.T) (*HealthChecker, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewHealthChecker(db), mock
}

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339", resp.Timestamp)
	}
	return resp
}

func TestHealthCheck_BasicModeSkipsDependencies(t *testing.T) {
	t.Parallel()

	h, mock := newPingMock(t)

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decodeHealth(t, w)
	if resp.Status != "healthy" || resp.Checks != nil {
		t.Errorf("unexpected response %+v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database activity: %v", err)
	}
}

func TestHealthCheck_Extended(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	tests := []struct {
		name       string
		dbErr      error
		redis      *redis.Client
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "all healthy",
			redis:      redis.NewClient(&redis.Options{Addr: mr.Addr()}),
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"database": "healthy", "redis": "healthy"},
		},
		{
			name:       "redis not configured",
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"database": "healthy", "redis": "not configured"},
		},
		{
			name:       "database down",
			dbErr:      errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"database": "unhealthy: connection refused", "redis": "not configured"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, mock := newPingMock(t)
			mock.ExpectPing().WillReturnError(tt.dbErr)
			h.WithRedis(tt.redis)
			if tt.redis != nil {
				t.Cleanup(func() { _ = tt.redis.Close() })
			}

			w := httptest.NewRecorder()
			h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/healthz?mode=extended", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			resp := decodeHealth(t, w)
			if !reflect.DeepEqual(resp.Checks, tt.wantChecks) {
				t.Errorf("checks = %v, want %v", resp.Checks, tt.wantChecks)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("ping not issued: %v", err)
			}
		})
	}
}

func TestHealthCheck_RedisDown(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	h, mock := newPingMock(t)
	mock.ExpectPing()
	h.WithRedis(client)

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/healthz?mode=extended", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	resp := decodeHealth(t, w)
	if resp.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", resp.Status)
	}
	if resp.Checks["database"] != "healthy" {
		t.Errorf("database check = %q", resp.Checks["database"])
	}
	if got := resp.Checks["redis"]; len(got) < len("unhealthy") || got[:len("unhealthy")] != "unhealthy" {
		t.Errorf("redis check = %q, want unhealthy", got)
	}
}
