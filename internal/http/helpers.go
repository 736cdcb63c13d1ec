package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// newRequestID returns the caller's id when it is a well-formed UUID and a
// fresh random one otherwise.
func newRequestID(incoming string) string {
	if id, err := uuid.Parse(strings.TrimSpace(incoming)); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// RequestIDFromContext returns the id assigned by withRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func requestIDOf(r *http.Request) string {
	return RequestIDFromContext(r.Context())
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// knownRoutes bounds the route label used for metrics.
var knownRoutes = map[string]bool{
	"/":            true,
	"/income":      true,
	"/outcome":     true,
	"/reset":       true,
	"/api/records": true,
	"/api/chart":   true,
	"/export.xlsx": true,
	"/export.csv":  true,
	"/healthz":     true,
	"/readyz":      true,
	"/metrics":     true,
}

func routeLabel(r *http.Request) string {
	if knownRoutes[r.URL.Path] {
		return r.URL.Path
	}
	if strings.HasPrefix(r.URL.Path, "/static/") {
		return "/static/"
	}
	return "other"
}

// wantsJSON reports whether the client asked for a JSON answer.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
