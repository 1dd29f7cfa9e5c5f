package processor

import (
	"ttstats/internal/league"
	"ttstats/internal/notifier"
)

// Store defines the database operations required by the processor.
type Store interface {
	GetMatchesForProcessing() ([]*league.Match, error)
	GetGamesForMatch(matchID string) ([]*league.Game, error)
	UpdateProcessingStatus(matchID string, status league.ProcessingStatus) error
}

// Notifier defines the notification operations required by the processor.
// This is an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
