package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncMatchesFetched(source string)
	AddGamesIngested(source string, count int)
	IncParseDiagnostics(reason string)
	AddGamesExcluded(reason string, count int)
	IncProcessorTransitions(status string)
	IncNotificationsSent(kind string)
	IncNotificationsFailed(kind string)
	IncFetchErrors(source string)
	IncStatsRefreshes()
	IncSnapshotsWritten()
	ObserveProcessingDuration(duration float64)
	SetStartupTime(duration float64)
}

// MetricsStore defines the interface for the durable business counters
// surfaced by the metrics Slack command and the CLI.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
	Reset() error
}
