package http

import (
	"net/http"

	"ttstats/internal/config"
	"ttstats/internal/export"
	"ttstats/internal/league"
	"ttstats/internal/metrics"
	"ttstats/internal/notifier"
	"ttstats/internal/processor"
	"ttstats/internal/pubsub"
	"ttstats/internal/schedule"
	"ttstats/internal/ttbl"
	"ttstats/internal/wtt"
)

func NewServer(store league.LeagueStore, scheduleStore schedule.ScheduleStore, metricsSvc metrics.Metrics, counters metrics.MetricsStore, metricsHandler http.Handler, cfg config.Config, ttblClient ttbl.TTBLClient, wttClient wtt.WTTClient, notifier notifier.Notifier, processor *processor.Processor, exporter *export.Writer, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Schedule:       scheduleStore,
		Metrics:        metricsSvc,
		Counters:       counters,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		TTBLClient:     ttblClient,
		WTTClient:      wttClient,
		Notifier:       notifier,
		Processor:      processor,
		Exporter:       exporter,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, e.g.
	// Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear-store", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/stats", Chain(s.StatsHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/matches/{matchID}", Chain(s.GetMatchHandler(), paramsMiddleware))
	s.Router.Handle("/match-states", Chain(s.MatchStatesHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/games", Chain(s.ListGamesHandler(), paramsMiddleware))
	s.Router.Handle("/gameday-runs", Chain(s.GamedayRunsHandler(), paramsMiddleware))
	s.Router.Handle("/parse-score", Chain(s.ParseScoreHandler(), paramsMiddleware))
	s.Router.Handle("/check-rank", Chain(s.CheckRankHandler(), paramsMiddleware))
	s.Router.Handle("/fetch-ttbl", Chain(s.FetchTTBLHandler(), paramsMiddleware))
	s.Router.Handle("/fetch-wtt", Chain(s.FetchWTTHandler(), paramsMiddleware))
	s.Router.Handle("/process-matches", Chain(s.ProcessMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/refresh-stats", Chain(s.RefreshStatsHandler(), paramsMiddleware))
	s.Router.Handle("/export", Chain(s.ExportHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/push", Chain(s.PubSubPushHandler(), paramsMiddleware))
	s.Router.Handle("/slack/commands", Chain(s.SlackCommandHandler(), paramsMiddleware, slackSignatureMiddleware(s.Cfg.Slack.SigningSecret)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
