package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	MatchesFetched       *prometheus.CounterVec
	GamesIngested        *prometheus.CounterVec
	ParseDiagnostics     *prometheus.CounterVec
	GamesExcluded        *prometheus.CounterVec
	ProcessorTransitions *prometheus.CounterVec
	NotificationsSent    *prometheus.CounterVec
	NotificationsFailed  *prometheus.CounterVec
	FetchErrors          *prometheus.CounterVec
	StatsRefreshes       prometheus.Counter
	SnapshotsWritten     prometheus.Counter
	ProcessingDuration   prometheus.Histogram
	StartupTimeSeconds   prometheus.Gauge
}
