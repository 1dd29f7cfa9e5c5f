package notifier

import (
	"ttstats/internal/league"
	"ttstats/internal/scores"
	"ttstats/internal/stats"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For finished matches
	SendResultNotification(match *league.Match, games []*league.Game, dryRun bool) error
	// For scheduled leaderboard posts
	SendLeaderboard(entries []stats.LeaderboardEntry, minGames int, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(entries []stats.LeaderboardEntry, minGames int) (any, error)
	FormatPlayerStatsResponse(stat *stats.PlayerStats, query string) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
	FormatParsedScoreResponse(raw string, game scores.Game, diagnostics []scores.Diagnostic) (any, error)
	FormatMetricsResponse(counters map[string]int) (any, error)
}
