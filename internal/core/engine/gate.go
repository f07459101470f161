package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shotlens/shotlens/internal/core"
)

// DefaultQuota is the number of calls Dribbble admits per window.
const DefaultQuota = 60

// DefaultWindow is the length of one quota window.
const DefaultWindow = time.Minute

// Decision is the gate's verdict for one call attempt.
type Decision int

const (
	Rejected Decision = iota
	Admitted
)

// String returns a readable decision name.
func (d Decision) String() string {
	switch d {
	case Admitted:
		return "admitted"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Gate decides whether a call attempt may proceed to the network.
type Gate interface {
	// Admit counts one attempt against the given window and returns the verdict.
	Admit(ctx context.Context, window int64) (Decision, error)

	// Snapshot reports the quota state for the given window without counting.
	Snapshot(ctx context.Context, window int64) (core.QuotaState, error)
}

// NormalizeWindow truncates window to whole seconds. Anything shorter than a
// second becomes DefaultWindow. Every gate and window index goes through it so
// bucket length and key lifetime always agree.
func NormalizeWindow(window time.Duration) time.Duration {
	if window < time.Second {
		return DefaultWindow
	}
	return window.Truncate(time.Second)
}

// WindowIndex returns the calendar-aligned window containing t.
func WindowIndex(t time.Time, window time.Duration) int64 {
	size := int64(NormalizeWindow(window) / time.Second)
	secs := t.Unix()
	idx := secs / size
	if secs%size != 0 && secs < 0 {
		idx--
	}
	return idx
}

// RateGate is an in-process fixed-window gate. The zero value is not usable;
// construct with NewRateGate.
type RateGate struct {
	limit  int
	logger core.Logger

	mu     sync.Mutex
	window int64
	hits   int
}

// NewRateGate returns a gate admitting limit calls per window. A non-positive
// limit falls back to DefaultQuota.
func NewRateGate(limit int, logger core.Logger) *RateGate {
	if limit <= 0 {
		limit = DefaultQuota
	}
	return &RateGate{limit: limit, logger: core.OrNop(logger)}
}

// Admit implements Gate. It never returns an error.
func (g *RateGate) Admit(_ context.Context, window int64) (Decision, error) {
	return g.admit(window), nil
}

func (g *RateGate) admit(window int64) Decision {
	g.mu.Lock()
	if window != g.window {
		g.window = window
		g.hits = 1
		g.mu.Unlock()
		return Admitted
	}
	g.hits++
	hits := g.hits
	g.mu.Unlock()

	if hits > g.limit {
		g.logger.Debug("Quota exhausted for window",
			zap.Int64("window", window),
			zap.Int("hits", hits),
			zap.Int("limit", g.limit))
		return Rejected
	}
	return Admitted
}

// Snapshot implements Gate.
func (g *RateGate) Snapshot(_ context.Context, window int64) (core.QuotaState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := core.QuotaState{Window: window, Limit: g.limit}
	if window == g.window {
		state.Hits = g.hits
	}
	return state, nil
}

// State returns the tracked window and hit counter.
func (g *RateGate) State() (window int64, hits int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.window, g.hits
}

// Limit returns the per-window quota.
func (g *RateGate) Limit() int {
	return g.limit
}
