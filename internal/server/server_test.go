package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shotlens/shotlens/internal/core/dispatch"
	"github.com/shotlens/shotlens/internal/core/engine"
	"github.com/shotlens/shotlens/internal/core/transport"
	"github.com/shotlens/shotlens/internal/dribbble"
	apperrors "github.com/shotlens/shotlens/internal/errors"
)

// newFacade wires the real gate, transport, dispatcher and client against a
// fake upstream.
func newFacade(t *testing.T, quota int, upstream http.HandlerFunc) *Server {
	t.Helper()

	api := httptest.NewServer(upstream)
	t.Cleanup(api.Close)

	d, err := dispatch.New(
		engine.NewRateGate(quota, nil),
		transport.NewWithClient(api.Client(), "", nil),
		dispatch.Config{
			BaseURL:          api.URL,
			ThrowOnRateLimit: true,
			Clock:            func() time.Time { return time.Unix(6000, 0) },
		},
	)
	require.NoError(t, err)

	return New(Options{Host: "127.0.0.1", API: dribbble.NewClient(d), Quota: d, Version: "test"})
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := New(Options{Host: "127.0.0.1"})

	rec := get(t, srv, "/does-not-exist")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.NotEmpty(t, body.Error.RequestID)

	// Without an API the /v1 routes are not mounted.
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/v1/shots/1").Code)
}

func TestFacadeServesPlayerShots(t *testing.T) {
	var upstreamPath, upstreamQuery string
	srv := newFacade(t, 60, func(w http.ResponseWriter, r *http.Request) {
		upstreamPath, upstreamQuery = r.URL.Path, r.URL.RawQuery
		_, _ = w.Write([]byte(`{"page":2,"pages":4,"per_page":5,"total":20,"shots":[{"id":1,"title":"Moon"}]}`))
	})

	rec := get(t, srv, "/v1/players/simplebits/shots/following?page=2&per_page=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/players/simplebits/shots/following", upstreamPath)
	assert.Equal(t, "page=2&per_page=5", upstreamQuery)

	var list dribbble.ShotList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 4, list.Pages)
	assert.Equal(t, "Moon", list.Shots[0].Title)
}

func TestFacadeMapsUpstreamFailureToNotFound(t *testing.T) {
	srv := newFacade(t, 60, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	rec := get(t, srv, "/v1/shots/9")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFacadeRateLimitsAndReportsQuota(t *testing.T) {
	calls := 0
	srv := newFacade(t, 2, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"id":1,"username":"simplebits"}`))
	})

	assert.Equal(t, http.StatusOK, get(t, srv, "/v1/players/1").Code)
	assert.Equal(t, http.StatusOK, get(t, srv, "/v1/players/simplebits").Code)

	rec := get(t, srv, "/v1/players/1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 2, calls)

	rec = get(t, srv, "/v1/quota")
	require.Equal(t, http.StatusOK, rec.Code)

	var quota struct {
		Window    int64 `json:"window"`
		Used      int   `json:"used"`
		Remaining int   `json:"remaining"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quota))
	assert.Equal(t, int64(100), quota.Window)
	assert.Equal(t, 3, quota.Used)
	assert.Equal(t, 0, quota.Remaining)
}

func TestFacadeRejectsInvalidInputBeforeCallingUpstream(t *testing.T) {
	calls := 0
	srv := newFacade(t, 60, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/v1/lists/trending").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/v1/shots/0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/v1/shots/1/comments?page=0").Code)
	assert.Zero(t, calls)
}

func TestHealthIncludesRateGate(t *testing.T) {
	srv := newFacade(t, 60, func(w http.ResponseWriter, r *http.Request) {})

	rec := get(t, srv, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rate_gate":"healthy"`)

	assert.Equal(t, http.StatusOK, get(t, srv, "/version").Code)
}
