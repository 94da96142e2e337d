package routes

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	logpkg "github.com/stackit-qa/stackit-api/internal/logger"
	"github.com/stackit-qa/stackit-api/internal/middleware"
	"github.com/stackit-qa/stackit-api/internal/request"
)

// Proxy is a Module that forwards every request under its prefix to an
// upstream service, keeping the full request path.
type Proxy struct {
	name   string
	target *url.URL
	log    *zap.Logger
	rp     *httputil.ReverseProxy
}

// ProxyOption customizes a Proxy.
type ProxyOption func(*Proxy)

// WithTransport replaces the outbound transport (before tracing instrumentation is applied).
func WithTransport(rt http.RoundTripper) ProxyOption {
	return func(p *Proxy) {
		p.rp.Transport = instrument(rt)
	}
}

// NewProxy creates a proxy to upstream, which must be an absolute http(s) URL.
// A path on upstream is prepended to the forwarded path.
func NewProxy(name, upstream string, log *zap.Logger, opts ...ProxyOption) (*Proxy, error) {
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("parse upstream for %s: %w", name, err)
	}
	if (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, fmt.Errorf("upstream for %s must be an absolute http(s) URL, got %q", name, upstream)
	}
	target.Path = strings.TrimSuffix(target.Path, "/")

	p := &Proxy{
		name:   name,
		target: target,
		log:    log.With(zap.String("group", name), zap.String("upstream", target.Redacted())),
	}
	p.rp = &httputil.ReverseProxy{
		Rewrite:        p.rewrite,
		ModifyResponse: stripOwnedHeaders,
		ErrorHandler:   p.handleError,
		Transport:      instrument(newTransport()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Target returns the upstream base URL.
func (p *Proxy) Target() *url.URL {
	u := *p.target
	return &u
}

// RegisterRoutes implements Module.
func (p *Proxy) RegisterRoutes(r *mux.Router) {
	r.PathPrefix("").Handler(p)
}

// ServeHTTP implements http.Handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.rp.ServeHTTP(w, r)
}

func (p *Proxy) rewrite(pr *httputil.ProxyRequest) {
	pr.SetURL(p.target)
	pr.SetXForwarded()
	if id := request.RequestIDFromContext(pr.In.Context()); id != "" {
		pr.Out.Header.Set(request.RequestIDHeader, id)
	}
}

func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		p.log.Info("proxy_request_body_too_large",
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			zap.Int64("limit", tooLarge.Limit),
		)
		middleware.RespondError(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Request body exceeds the maximum allowed size")
		return
	}

	if errors.Is(r.Context().Err(), context.Canceled) {
		p.log.Debug("proxy_request_cancelled_by_client",
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
		)
		return
	}

	status, message := http.StatusBadGateway, "Upstream service unavailable"
	if isTimeout(r, err) {
		status, message = http.StatusGatewayTimeout, "Upstream service timed out"
	}

	p.log.Error("proxy_request_failed",
		zap.String("method", r.Method),
		zap.String("path", logpkg.SanitizePath(r.URL.Path)),
		zap.Int("status_code", status),
		zap.String("request_id", request.RequestIDFromContext(r.Context())),
		zap.String("error", logpkg.SanitizeError(err)),
	)
	middleware.RespondError(w, r, status, http.StatusText(status), message)
}

// isTimeout covers the request deadline as well as transport timeouts such as
// ResponseHeaderTimeout.
func isTimeout(r *http.Request, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ownedHeaders are set by the composer on every response; upstream copies are dropped.
var ownedHeaders = middleware.SecurityHeaderNames()

// stripOwnedHeaders drops CORS and security headers set by an upstream so that
// only the composer's policy reaches the client.
func stripOwnedHeaders(resp *http.Response) error {
	for name := range resp.Header {
		if strings.HasPrefix(name, "Access-Control-") {
			resp.Header.Del(name)
		}
	}
	for _, name := range ownedHeaders {
		resp.Header.Del(name)
	}
	return nil
}

func newTransport() http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 32
	t.IdleConnTimeout = 90 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}

func instrument(rt http.RoundTripper) http.RoundTripper {
	return otelhttp.NewTransport(rt,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("%s %s @%s", r.Method, r.URL.Path, r.URL.Host)
		}),
	)
}
