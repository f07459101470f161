package integration

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shotlens/shotlens/internal/core/dispatch"
	"github.com/shotlens/shotlens/internal/core/engine"
	"github.com/shotlens/shotlens/internal/core/transport"
	"github.com/shotlens/shotlens/internal/dribbble"
	"github.com/shotlens/shotlens/internal/metrics"
	"github.com/shotlens/shotlens/internal/observability"
	"github.com/shotlens/shotlens/internal/server"
)

// cleanupMetrics tears down global telemetry state so each test starts clean.
// This matters in sandboxes where lingering exporters can block future binds.
func cleanupMetrics(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		if observability.PrometheusExporter != nil {
			_ = observability.PrometheusExporter.Stop()
			observability.PrometheusExporter = nil
		}
		observability.TelemetrySystem = nil
	})
}

// isPermissionError normalizes OS-specific permission errors (macOS/Linux/BSD)
// so we can gracefully skip when loopback sockets are blocked.
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EACCES) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{"permission denied", "operation not permitted", "not permitted"} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// initMetricsOrSkip attempts to start the metrics exporter; if the environment
// forbids network binds we skip instead of failing the entire suite.
func initMetricsOrSkip(t *testing.T) {
	t.Helper()
	if err := observability.InitMetrics("test", 0); err != nil {
		if isPermissionError(err) {
			t.Skipf("skipping metrics tests due to sandbox permissions: %v", err)
		}
		require.NoError(t, err)
	}
	cleanupMetrics(t)
}

func listenOrSkip(t *testing.T) net.Listener {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if isPermissionError(err) {
			t.Skipf("skipping server setup: %v", err)
		}
		require.NoError(t, err)
	}
	return listener
}

// newFacade starts the /v1 facade over a fake Dribbble upstream with the given quota.
func newFacade(t *testing.T, quota int, upstream http.Handler) (*httptest.Server, *http.Client) {
	t.Helper()

	api := &httptest.Server{Listener: listenOrSkip(t), Config: &http.Server{Handler: upstream}}
	api.Start()
	t.Cleanup(api.Close)

	d, err := dispatch.New(
		engine.NewRateGate(quota, nil),
		transport.NewWithClient(api.Client(), "shotlens-test", nil),
		dispatch.Config{BaseURL: api.URL, ThrowOnRateLimit: true, Observer: metrics.CallObserver{}},
	)
	require.NoError(t, err)

	srv := server.New(server.Options{Host: "127.0.0.1", API: dribbble.NewClient(d), Quota: d, Version: "test"})

	ts := &httptest.Server{Listener: listenOrSkip(t), Config: &http.Server{Handler: srv.Handler()}}
	ts.Start()
	t.Cleanup(ts.Close)
	return ts, ts.Client()
}

func scrape(t *testing.T, client *http.Client, baseURL string) (string, *http.Response) {
	t.Helper()
	resp, err := client.Get(baseURL + "/metrics")
	require.NoError(t, err)
	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, readErr)
	return string(body), resp
}

func TestFacadeUnderLoadHonorsQuota(t *testing.T) {
	observability.InitServerLogger("test", "info", "test")
	initMetricsOrSkip(t)

	var upstreamCalls atomic.Int32
	ts, client := newFacade(t, 20, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
		time.Sleep(5 * time.Millisecond)
		_, _ = w.Write([]byte(`{"id":7,"title":"Moon"}`))
	}))

	const numRequests = 50
	const numWorkers = 10

	requestChan := make(chan int, numRequests)
	for i := 0; i < numRequests; i++ {
		requestChan <- i
	}
	close(requestChan)

	var ok, limited atomic.Int32
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for range requestChan {
				resp, err := client.Get(ts.URL + "/v1/shots/7")
				if err != nil {
					continue
				}
				switch resp.StatusCode {
				case http.StatusOK:
					ok.Add(1)
				case http.StatusTooManyRequests:
					limited.Add(1)
				}
				_ = resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	// A window boundary during the run can admit up to one extra quota.
	assert.LessOrEqual(t, upstreamCalls.Load(), int32(40))
	assert.Equal(t, upstreamCalls.Load(), ok.Load())
	assert.Equal(t, int32(numRequests), ok.Load()+limited.Load())

	content, resp := scrape(t, client, ts.URL)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, content, "test_http_requests_total")
	assert.Contains(t, content, "test_dribbble_calls_total")
	assert.Contains(t, content, "test_dribbble_gate_rejections_total")
}

func TestMetricsEndpoint_PrometheusFormat(t *testing.T) {
	observability.InitServerLogger("test", "info", "test")
	initMetricsOrSkip(t)

	ts, client := newFacade(t, 60, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"username":"simplebits"}`))
	}))

	resp, err := client.Get(ts.URL + "/v1/players/simplebits")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	content, resp := scrape(t, client, ts.URL)
	contentType := resp.Header.Get("Content-Type")
	assert.True(t, strings.HasPrefix(contentType, "text/plain; version=0.0.4"),
		"Expected Prometheus content type, got: %s", contentType)

	metricLines := 0
	labelled := false
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		metricLines++
		if strings.Contains(line, "{") && len(strings.Fields(line)) >= 2 {
			labelled = true
		}
	}
	assert.True(t, labelled, "Should have labelled Prometheus metric lines")
	assert.Greater(t, metricLines, 0)
}

func TestMetricsEndpoint_WithTelemetryDisabled(t *testing.T) {
	observability.InitServerLogger("test", "info", "test")

	originalExporter := observability.PrometheusExporter
	originalTelemetry := observability.TelemetrySystem
	observability.PrometheusExporter = nil
	observability.TelemetrySystem = nil
	t.Cleanup(func() {
		observability.PrometheusExporter = originalExporter
		observability.TelemetrySystem = originalTelemetry
	})

	ts, client := newFacade(t, 60, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":7}`))
	}))

	resp, err := client.Get(ts.URL + "/v1/shots/7")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, resp = scrape(t, client, ts.URL)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
