package export

import (
	"ttstats/internal/league"
	"ttstats/internal/stats"
)

// SnapshotVersion is stamped into metadata.json so downstream consumers
// can detect format changes.
const SnapshotVersion = "2.0"

// Snapshot is the full set of files written for one export run.
type Snapshot struct {
	PlayerStats   []*stats.PlayerStats
	TopPlayers    []stats.LeaderboardEntry
	Matches       []MatchSummary
	MatchStates   map[league.MatchState]int
	Players       []league.Player
	Games         []*league.Game
	ExcludedGames []stats.ExcludedGame
	Metadata      Metadata
}

// MatchSummary is one row of matches_summary.json.
type MatchSummary struct {
	ID        string            `json:"id"`
	Source    league.Source     `json:"source"`
	Season    string            `json:"season"`
	Gameday   int               `json:"gameday"`
	HomeTeam  string            `json:"home_team"`
	AwayTeam  string            `json:"away_team"`
	Result    string            `json:"result"`
	State     league.MatchState `json:"state"`
	StartTime int64             `json:"start_time"`
}

// Metadata mirrors the run summary block of metadata.json.
type Metadata struct {
	GeneratedAt         string   `json:"generated_at"`
	Season              string   `json:"season"`
	TotalMatches        int      `json:"total_matches"`
	TotalGamedays       int      `json:"total_gamedays"`
	UniquePlayers       int      `json:"unique_players"`
	PlayersWithStats    int      `json:"players_with_stats"`
	TotalGamesProcessed int      `json:"total_games_processed"`
	ExcludedGames       int      `json:"excluded_games"`
	Sources             []string `json:"sources"`
	Version             string   `json:"version"`
}
