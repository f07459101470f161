package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shotlens/shotlens/internal/core"
	"github.com/shotlens/shotlens/internal/core/engine"
	"github.com/shotlens/shotlens/internal/core/transport"
)

type stubTransport struct {
	mu     sync.Mutex
	urls   []string
	status int
	body   []byte
	err    error
}

func (s *stubTransport) Get(ctx context.Context, url string) (int, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, url)
	return s.status, s.body, s.err
}

func (s *stubTransport) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}

type stubGate struct {
	decision engine.Decision
	err      error
	windows  []int64
}

func (s *stubGate) Admit(ctx context.Context, window int64) (engine.Decision, error) {
	s.windows = append(s.windows, window)
	return s.decision, s.err
}

func (s *stubGate) Snapshot(ctx context.Context, window int64) (core.QuotaState, error) {
	return core.QuotaState{Window: window, Limit: 60}, nil
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []core.Outcome
	resource []string
}

func (r *recordingObserver) ObserveCall(resource string, outcome core.Outcome, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
	r.resource = append(r.resource, resource)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestDispatchReturnsRawBody(t *testing.T) {
	tr := &stubTransport{status: http.StatusOK, body: []byte(`{"id":42}`)}
	observer := &recordingObserver{}
	d, err := New(engine.NewRateGate(60, nil), tr, Config{Observer: observer})
	require.NoError(t, err)

	body, err := d.Dispatch(context.Background(), "players/42", "page=1&per_page=15")
	require.NoError(t, err)
	require.Equal(t, `{"id":42}`, string(body))
	require.Equal(t, []string{"http://api.dribbble.com/players/42?page=1&per_page=15"}, tr.urls)
	require.Equal(t, []core.Outcome{core.OutcomeAdmitted}, observer.outcomes)
	require.Equal(t, []string{"players"}, observer.resource)
}

func TestDispatchWithoutQuery(t *testing.T) {
	tr := &stubTransport{status: http.StatusOK, body: []byte(`{}`)}
	d, err := New(engine.NewRateGate(60, nil), tr, Config{BaseURL: "http://example.test"})
	require.NoError(t, err)
	require.Equal(t, "http://example.test/", d.BaseURL())

	_, err = d.Dispatch(context.Background(), "/shots/7", "  ")
	require.NoError(t, err)
	require.Equal(t, []string{"http://example.test/shots/7"}, tr.urls)
}

func TestDispatchRejectsEmptyPath(t *testing.T) {
	tr := &stubTransport{status: http.StatusOK}
	gate := &stubGate{decision: engine.Admitted}
	observer := &recordingObserver{}
	d, err := New(gate, tr, Config{Observer: observer})
	require.NoError(t, err)

	for _, path := range []string{"", "   ", "/"} {
		body, err := d.Dispatch(context.Background(), path, "")
		require.ErrorIs(t, err, ErrInvalidArgument)
		require.Nil(t, body)
	}

	require.Empty(t, gate.windows)
	require.Zero(t, tr.calls())
	require.Equal(t, core.OutcomeInvalid, observer.outcomes[0])
}

func TestDispatchNeverCallsTransportWhenRejected(t *testing.T) {
	tr := &stubTransport{status: http.StatusOK, body: []byte(`{}`)}
	gate := &stubGate{decision: engine.Rejected}

	silent, err := New(gate, tr, Config{ThrowOnRateLimit: false})
	require.NoError(t, err)
	body, err := silent.Dispatch(context.Background(), "shots/1", "")
	require.NoError(t, err)
	require.Nil(t, body)

	loud, err := New(gate, tr, Config{ThrowOnRateLimit: true})
	require.NoError(t, err)
	require.True(t, loud.ThrowOnRateLimit())
	body, err = loud.Dispatch(context.Background(), "shots/1", "")
	require.ErrorIs(t, err, ErrRateLimited)
	require.Nil(t, body)

	require.Zero(t, tr.calls())
}

func TestDispatchNon200IsNoResult(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		tr := &stubTransport{status: status}
		observer := &recordingObserver{}
		d, err := New(engine.NewRateGate(60, nil), tr, Config{ThrowOnRateLimit: true, Observer: observer})
		require.NoError(t, err)

		body, err := d.Dispatch(context.Background(), "shots/1", "")
		require.NoError(t, err, "status %d", status)
		require.Nil(t, body)
		require.Equal(t, []core.Outcome{core.OutcomeRemoteFailure}, observer.outcomes)
	}
}

func TestDispatchTransportFailureIsNoResult(t *testing.T) {
	tr := &stubTransport{err: transport.ErrIOFailure}
	gate := engine.NewRateGate(60, nil)
	d, err := New(gate, tr, Config{Clock: fixedClock(time.Unix(6000, 0))})
	require.NoError(t, err)

	body, err := d.Dispatch(context.Background(), "shots/1", "")
	require.NoError(t, err)
	require.Nil(t, body)

	// The failed call still counts against the window.
	window, hits := gate.State()
	require.Equal(t, int64(100), window)
	require.Equal(t, 1, hits)
}

func TestDispatchUsesWindowFromClock(t *testing.T) {
	gate := &stubGate{decision: engine.Admitted}
	tr := &stubTransport{status: http.StatusOK}
	d, err := New(gate, tr, Config{Clock: fixedClock(time.Unix(6059, 0))})
	require.NoError(t, err)

	_, _ = d.Dispatch(context.Background(), "shots/1", "")
	require.Equal(t, []int64{100}, gate.windows)
	require.Equal(t, int64(100), d.CurrentWindow())

	state, err := d.Quota(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(100), state.Window)
}

func TestDispatchGateError(t *testing.T) {
	gate := &stubGate{err: errors.New("redis down")}
	tr := &stubTransport{status: http.StatusOK}
	observer := &recordingObserver{}
	d, err := New(gate, tr, Config{Observer: observer})
	require.NoError(t, err)

	_, err = d.Dispatch(context.Background(), "shots/1", "")
	require.ErrorIs(t, err, ErrGateUnavailable)
	require.Zero(t, tr.calls())
	require.Equal(t, []core.Outcome{core.OutcomeGateUnavailable}, observer.outcomes)
	require.Equal(t, []string{"shots"}, observer.resource)
}

func TestDispatchQuotaExhaustion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	gate := engine.NewRateGate(3, nil)
	tr := transport.NewWithClient(server.Client(), "", nil)
	d, err := New(gate, tr, Config{
		BaseURL:          server.URL,
		ThrowOnRateLimit: true,
		Clock:            fixedClock(time.Unix(120, 0)),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		body, err := d.Dispatch(context.Background(), "shots/popular", "page=1&per_page=15")
		require.NoError(t, err)
		require.Equal(t, `{"ok":true}`, string(body))
	}

	_, err = d.Dispatch(context.Background(), "shots/popular", "")
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(nil, &stubTransport{}, Config{})
	require.Error(t, err)

	_, err = New(engine.NewRateGate(1, nil), nil, Config{})
	require.Error(t, err)
}

func TestResourceLabel(t *testing.T) {
	require.Equal(t, "players", resourceLabel("players/42/shots"))
	require.Equal(t, "shots", resourceLabel("shots"))
}
