package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/felixge/httpsnoop"
)

const (
	// DefaultRequestTimeout is the default request timeout (30 seconds)
	DefaultRequestTimeout = 30 * time.Second
)

// Timeout puts a deadline on the request context. Handlers and the upstream
// proxy observe it and answer for themselves; the response is streamed
// untouched. If the deadline passes and the handler returns without writing
// anything, a 503 JSON error is sent instead.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			r = r.WithContext(ctx)

			var wrote atomic.Bool
			tw := httpsnoop.Wrap(w, httpsnoop.Hooks{
				WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
					return func(code int) {
						wrote.Store(true)
						next(code)
					}
				},
				Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
					return func(b []byte) (int, error) {
						wrote.Store(true)
						return next(b)
					}
				},
				Flush: func(next httpsnoop.FlushFunc) httpsnoop.FlushFunc {
					return func() {
						wrote.Store(true)
						next()
					}
				},
				ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
					return func(src io.Reader) (int64, error) {
						wrote.Store(true)
						return next(src)
					}
				},
			})

			next.ServeHTTP(tw, r)

			if !wrote.Load() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				RespondError(w, r, http.StatusServiceUnavailable, "Service Unavailable", "Request timed out")
			}
		})
	}
}
