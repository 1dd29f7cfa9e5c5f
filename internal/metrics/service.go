package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttstats_matches_fetched_total",
			Help: "The total number of matches fetched from upstream sources.",
		}, []string{"source"}),
		GamesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttstats_games_ingested_total",
			Help: "The total number of individual games ingested into the store.",
		}, []string{"source"}),
		ParseDiagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttstats_parse_diagnostics_total",
			Help: "The total number of diagnostics produced by the score parser.",
		}, []string{"reason"}),
		GamesExcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttstats_games_excluded_total",
			Help: "The total number of games excluded from aggregation.",
		}, []string{"reason"}),
		ProcessorTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttstats_processor_transitions_total",
			Help: "The total number of processing status transitions.",
		}, []string{"status"}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttstats_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}, []string{"kind"}),
		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttstats_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}, []string{"kind"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttstats_fetch_errors_total",
			Help: "The total number of upstream fetch failures.",
		}, []string{"source"}),
		StatsRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ttstats_stats_refreshes_total",
			Help: "The total number of player stats recomputations.",
		}),
		SnapshotsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ttstats_snapshots_written_total",
			Help: "The total number of JSON snapshots written to disk.",
		}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ttstats_match_processing_duration_seconds",
			Help:    "The duration of individual match processing.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ttstats_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesFetched,
		s.GamesIngested,
		s.ParseDiagnostics,
		s.GamesExcluded,
		s.ProcessorTransitions,
		s.NotificationsSent,
		s.NotificationsFailed,
		s.FetchErrors,
		s.StatsRefreshes,
		s.SnapshotsWritten,
		s.ProcessingDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesFetched(source string) {
	s.MatchesFetched.WithLabelValues(source).Inc()
}

func (s *Service) AddGamesIngested(source string, count int) {
	s.GamesIngested.WithLabelValues(source).Add(float64(count))
}

func (s *Service) IncParseDiagnostics(reason string) {
	s.ParseDiagnostics.WithLabelValues(reason).Inc()
}

func (s *Service) AddGamesExcluded(reason string, count int) {
	s.GamesExcluded.WithLabelValues(reason).Add(float64(count))
}

func (s *Service) IncProcessorTransitions(status string) {
	s.ProcessorTransitions.WithLabelValues(status).Inc()
}

func (s *Service) IncNotificationsSent(kind string) {
	s.NotificationsSent.WithLabelValues(kind).Inc()
}

func (s *Service) IncNotificationsFailed(kind string) {
	s.NotificationsFailed.WithLabelValues(kind).Inc()
}

func (s *Service) IncFetchErrors(source string) {
	s.FetchErrors.WithLabelValues(source).Inc()
}

func (s *Service) IncStatsRefreshes() {
	s.StatsRefreshes.Inc()
}

func (s *Service) IncSnapshotsWritten() {
	s.SnapshotsWritten.Inc()
}

func (s *Service) ObserveProcessingDuration(duration float64) {
	s.ProcessingDuration.Observe(duration)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
