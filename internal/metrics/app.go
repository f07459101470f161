package metrics

import (
	"time"

	"github.com/shotlens/shotlens/internal/observability"
)

// Application-level metrics following Prometheus conventions
var (
	// Archive metrics
	ArchiveWritesTotal = "archive_writes_total"

	// Health check metrics
	HealthCheckTotal    = "health_check_total"
	HealthCheckDuration = "health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "server_start_time_seconds"
)

// RecordArchiveWrite records one archive upsert for the given record kind.
func RecordArchiveWrite(kind string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ArchiveWritesTotal,
			1,
			map[string]string{
				"kind":   kind,
				"status": status,
			},
		)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}
