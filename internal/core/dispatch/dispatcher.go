// Package dispatch turns one logical API request into at most one gated
// network call.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shotlens/shotlens/internal/core"
	"github.com/shotlens/shotlens/internal/core/engine"
	"github.com/shotlens/shotlens/internal/core/transport"
)

// DefaultBaseURL is the Dribbble API host.
const DefaultBaseURL = "http://api.dribbble.com/"

var (
	// ErrInvalidArgument reports a malformed request; nothing was counted or sent.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRateLimited is returned on rejection when ThrowOnRateLimit is set.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrGateUnavailable wraps a gate that could not reach a decision.
	ErrGateUnavailable = errors.New("rate gate unavailable")
)

// Observer receives one notification per dispatch attempt.
type Observer interface {
	ObserveCall(resource string, outcome core.Outcome, duration time.Duration)
}

// Config holds the dispatcher's construction-time settings.
type Config struct {
	BaseURL          string
	ThrowOnRateLimit bool
	Window           time.Duration
	Clock            func() time.Time
	Logger           core.Logger
	Observer         Observer
}

// Dispatcher composes URLs, asks the gate for admission and hands admitted
// calls to the transport. Its settings are fixed at construction.
type Dispatcher struct {
	baseURL          string
	gate             engine.Gate
	transport        transport.Transport
	throwOnRateLimit bool
	window           time.Duration
	clock            func() time.Time
	logger           core.Logger
	observer         Observer
}

// New builds a dispatcher.
func New(gate engine.Gate, tr transport.Transport, cfg Config) (*Dispatcher, error) {
	if gate == nil {
		return nil, errors.New("dispatcher requires a rate gate")
	}
	if tr == nil {
		return nil, errors.New("dispatcher requires a transport")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Dispatcher{
		baseURL:          baseURL,
		gate:             gate,
		transport:        tr,
		throwOnRateLimit: cfg.ThrowOnRateLimit,
		window:           engine.NormalizeWindow(cfg.Window),
		clock:            cfg.Clock,
		logger:           core.OrNop(cfg.Logger),
		observer:         cfg.Observer,
	}, nil
}

// Dispatch fetches path (relative to the base URL) with an optional raw query
// string. It returns the body of a 200 verbatim. A rejected call returns
// (nil, nil), or ErrRateLimited when the dispatcher was built to throw. A
// non-200 status or transport failure always returns (nil, nil).
func (d *Dispatcher) Dispatch(ctx context.Context, path, query string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		d.observe("", core.OutcomeInvalid, 0)
		return nil, fmt.Errorf("%w: endpoint cannot be empty", ErrInvalidArgument)
	}

	url := d.baseURL + path
	if q := strings.TrimSpace(query); q != "" {
		url += "?" + q
	}
	resource := resourceLabel(path)

	window := d.CurrentWindow()
	decision, err := d.gate.Admit(ctx, window)
	if err != nil {
		d.logger.Warn("Rate gate failed", zap.String("endpoint", path), zap.Error(err))
		d.observe(resource, core.OutcomeGateUnavailable, 0)
		return nil, fmt.Errorf("%w: %w", ErrGateUnavailable, err)
	}

	if decision == engine.Rejected {
		d.observe(resource, core.OutcomeRejected, 0)
		if d.throwOnRateLimit {
			return nil, fmt.Errorf("%w: window %d is over quota, slow down", ErrRateLimited, window)
		}
		return nil, nil
	}

	callID := uuid.New().String()
	start := time.Now()
	status, body, err := d.transport.Get(ctx, url)
	elapsed := time.Since(start)

	if err != nil || status != http.StatusOK {
		d.logger.Debug("Remote call yielded no data",
			zap.String("call_id", callID),
			zap.String("url", url),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		d.observe(resource, core.OutcomeRemoteFailure, elapsed)
		return nil, nil
	}

	d.logger.Debug("Remote call succeeded",
		zap.String("call_id", callID),
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", elapsed))
	d.observe(resource, core.OutcomeAdmitted, elapsed)
	return body, nil
}

// CurrentWindow returns the quota window for the dispatcher's clock.
func (d *Dispatcher) CurrentWindow() int64 {
	return engine.WindowIndex(d.now(), d.window)
}

// Quota reports the gate's state for the current window.
func (d *Dispatcher) Quota(ctx context.Context) (core.QuotaState, error) {
	return d.gate.Snapshot(ctx, d.CurrentWindow())
}

// ThrowOnRateLimit reports the rejection policy.
func (d *Dispatcher) ThrowOnRateLimit() bool {
	return d.throwOnRateLimit
}

// BaseURL returns the normalized base URL.
func (d *Dispatcher) BaseURL() string {
	return d.baseURL
}

func (d *Dispatcher) observe(resource string, outcome core.Outcome, elapsed time.Duration) {
	if d.observer == nil {
		return
	}
	d.observer.ObserveCall(resource, outcome, elapsed)
}

func (d *Dispatcher) now() time.Time {
	if d.clock != nil {
		return d.clock()
	}
	return time.Now().UTC()
}

// resourceLabel keeps metric cardinality low: "players/42/shots" -> "players".
func resourceLabel(path string) string {
	head, _, _ := strings.Cut(path, "/")
	head, _, _ = strings.Cut(head, "?")
	return head
}
