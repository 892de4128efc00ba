package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Feed health
	MetricTrackingLatency   = "tracking.update_latency"
	MetricTrackingTickDrift = "tracking.tick_drift_seconds"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricQuotesIssued    = "business.fare_quotes_issued"
	MetricTripsSimulated  = "business.trips_simulated"
	MetricCuratedHitRatio = "business.curated_corridor_hit_ratio"
)
