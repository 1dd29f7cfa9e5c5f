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

type Server struct {
	Store          league.LeagueStore
	Schedule       schedule.ScheduleStore
	Metrics        metrics.Metrics
	Counters       metrics.MetricsStore
	MetricsHandler http.Handler
	Cfg            config.Config
	TTBLClient     ttbl.TTBLClient
	WTTClient      wtt.WTTClient
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Exporter       *export.Writer
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
