package stats

import "ttstats/internal/scores"

// Default thresholds for leaderboard projections. Callers supply their
// own values; these are the observed domain defaults.
const (
	DefaultMinGames = 5
	DefaultTopN     = 20
)

// CompletionState marks whether a game reached a final result.
type CompletionState string

const (
	StateFinished    CompletionState = "FINISHED"
	StateNotFinished CompletionState = "NOT_FINISHED"
)

// GameRecord is one normalized singles contest, ready for aggregation.
// Construction (player identity, score parsing, state mapping) is the
// caller's concern; the engine folds whatever it is given.
type GameRecord struct {
	GameID      string          `json:"game_id"`
	PlayerAID   string          `json:"player_a_id"`
	PlayerAName string          `json:"player_a_name"`
	PlayerBID   string          `json:"player_b_id"`
	PlayerBName string          `json:"player_b_name"`
	Winner      scores.Side     `json:"winner"`
	State       CompletionState `json:"state"`
	Timestamp   int64           `json:"timestamp"`
}

// PlayerStats accumulates one player's results across an aggregation
// run. GamesPlayed always equals Wins plus Losses; WinRate is the
// rounded percentage of games won, meaningful only when GamesPlayed is
// positive.
type PlayerStats struct {
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	WinRate     int    `json:"win_rate"`
	LastGameID  string `json:"last_game_id,omitempty"`
}

// LeaderboardEntry is a read-only projection of PlayerStats, produced
// filtered, sorted and truncated by Leaderboard.
type LeaderboardEntry PlayerStats

// ExclusionReason classifies why a record was left out of the fold.
type ExclusionReason string

const (
	// ExcludedNotFinished marks a game that never reached a final result.
	ExcludedNotFinished ExclusionReason = "NOT_FINISHED"
	// ExcludedNoWinner marks a finished game with an indeterminate winner,
	// typically the residue of malformed score data.
	ExcludedNoWinner ExclusionReason = "NO_WINNER"
)

// ExcludedGame surfaces a record that contributed to no player's
// counts, so callers can see what was dropped instead of having it
// silently counted as a loss for somebody.
type ExcludedGame struct {
	GameRecord
	Reason ExclusionReason `json:"reason"`
}
