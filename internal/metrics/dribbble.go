package metrics

import (
	"time"

	"github.com/shotlens/shotlens/internal/core"
	"github.com/shotlens/shotlens/internal/observability"
)

// Dribbble call metrics
const (
	DribbbleCallsTotal        = "dribbble_calls_total"
	DribbbleGateRejections    = "dribbble_gate_rejections_total"
	DribbbleTransportDuration = "dribbble_transport_duration_ms"
	DribbbleQuotaRemaining    = "dribbble_quota_remaining"
)

// CallObserver reports dispatcher outcomes to the telemetry system.
type CallObserver struct{}

// ObserveCall records one dispatch attempt.
func (CallObserver) ObserveCall(resource string, outcome core.Outcome, duration time.Duration) {
	sys := observability.TelemetrySystem
	if sys == nil {
		return
	}

	_ = sys.Counter(
		DribbbleCallsTotal,
		1,
		map[string]string{
			"endpoint": resource,
			"outcome":  outcome.String(),
		},
	)

	switch outcome {
	case core.OutcomeRejected:
		_ = sys.Counter(DribbbleGateRejections, 1, nil)
	case core.OutcomeAdmitted, core.OutcomeRemoteFailure:
		_ = sys.Histogram(
			DribbbleTransportDuration,
			duration,
			map[string]string{"endpoint": resource},
		)
	}
}

// SetQuotaRemaining publishes the calls left in the current window.
func SetQuotaRemaining(state core.QuotaState) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			DribbbleQuotaRemaining,
			float64(state.Remaining()),
			nil,
		)
	}
}
