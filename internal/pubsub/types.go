package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventTypePlayerStatsUpdate EventType = "PLAYER_STATS_UPDATE"
	EventTypeLeaderboardPost   EventType = "LEADERBOARD_POST"
)

// Event is the envelope for every message published to the events
// topic. Which fields are set depends on the type: stats updates carry
// the match that triggered them, leaderboard posts only the season.
type Event struct {
	Type       EventType `msgpack:"type" json:"type"`
	MatchID    string    `msgpack:"match_id,omitempty" json:"match_id,omitempty"`
	Season     string    `msgpack:"season,omitempty" json:"season,omitempty"`
	OccurredAt int64     `msgpack:"occurred_at" json:"occurred_at"`
}
