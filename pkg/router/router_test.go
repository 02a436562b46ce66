package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchWildcardRoute(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		want    bool
	}{
		{"/api/v1/jobs/abc", "/api/v1/jobs/*", true},
		{"/api/v1/jobs/abc/errors", "/api/v1/jobs/*", true},
		{"/api/v1/jobs/abc/errors", "/api/v1/jobs/*/errors", true},
		{"/api/v1/jobs/abc/stats", "/api/v1/jobs/*/errors", false},
		{"/api/v1/other/abc", "/api/v1/jobs/*", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchWildcardRoute(tt.path, tt.pattern), "%s vs %s", tt.path, tt.pattern)
	}
}

func newTestRouter() *Router {
	r := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.GET("/api/v1/jobs", func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "list") })
	r.GET("/api/v1/jobs/*", func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "job") })
	r.GET("/api/v1/jobs/*/errors", func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "errors") })
	r.POST("/api/v1/batches", func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "batch") })
	r.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "metrics") }))
	return r
}

func TestRouter_Dispatch(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/api/v1/jobs", http.StatusOK, "list"},
		{http.MethodGet, "/api/v1/jobs/123", http.StatusOK, "job"},
		{http.MethodGet, "/api/v1/jobs/123/errors", http.StatusOK, "errors"},
		{http.MethodPost, "/api/v1/batches", http.StatusOK, "batch"},
		{http.MethodGet, "/api/v1/batches", http.StatusMethodNotAllowed, "Method Not Allowed\n"},
		{http.MethodGet, "/nope", http.StatusNotFound, "Not Found\n"},
		{http.MethodGet, "/metrics", http.StatusOK, "metrics"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.status, rec.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.body, rec.Body.String(), "%s %s", tt.method, tt.path)
	}
}
