package processor

import (
	"ttstats/internal/metrics"
	"ttstats/internal/pubsub"
)

// Processor handles the business logic of processing matches.
type Processor struct {
	store    Store
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics
	topic    string
}
