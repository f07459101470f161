package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPTransportReturnsBodyOn200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		require.Equal(t, "shotlens-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"id":42}`))
	}))
	defer server.Close()

	tr := NewWithClient(server.Client(), "shotlens-test", nil)
	status, body, err := tr.Get(context.Background(), server.URL+"/shots/42")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, `{"id":42}`, string(body))
}

func TestHTTPTransportNon200HasNoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"down"}`))
	}))
	defer server.Close()

	tr := NewWithClient(server.Client(), "", nil)
	status, body, err := tr.Get(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Nil(t, body)
}

func TestHTTPTransportIOFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	tr := New(Options{}, nil)
	status, body, err := tr.Get(context.Background(), url)
	require.ErrorIs(t, err, ErrIOFailure)
	require.Zero(t, status)
	require.Nil(t, body)
}

func TestHTTPTransportBadURL(t *testing.T) {
	tr := New(DefaultOptions(), nil)
	_, _, err := tr.Get(context.Background(), "http://[::1]:namedport")
	require.ErrorIs(t, err, ErrIOFailure)
}

func TestHTTPTransportCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := NewWithClient(server.Client(), "", nil)
	_, _, err := tr.Get(ctx, server.URL)
	require.ErrorIs(t, err, ErrIOFailure)
	require.ErrorIs(t, err, context.Canceled)
}

func TestHTTPTransportConcurrentUse(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	tr := NewWithClient(server.Client(), "", nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, body, err := tr.Get(context.Background(), server.URL)
			if err == nil && status == http.StatusOK && string(body) == "ok" {
				return
			}
			t.Errorf("unexpected response: status=%d body=%q err=%v", status, body, err)
		}()
	}
	wg.Wait()

	require.Equal(t, int64(20), hits.Load())
}
