package league

import (
	"database/sql"
	"sync"

	"ttstats/internal/scores"
	"ttstats/internal/stats"
)

// store handles all database operations for the league.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Source identifies which upstream a record was ingested from.
type Source string

const (
	SourceTTBL Source = "ttbl"
	SourceWTT  Source = "wtt"
)

// MatchState is the lifecycle state of a team match as reported by the
// upstream, normalized to our own enum.
type MatchState string

const (
	MatchStateScheduled MatchState = "SCHEDULED"
	MatchStateLive      MatchState = "LIVE"
	MatchStateFinished  MatchState = "FINISHED"
	MatchStateUnknown   MatchState = "UNKNOWN"
)

// ProcessingStatus defines the internal processing state of a match.
type ProcessingStatus string

const (
	StatusNew             ProcessingStatus = "NEW"
	StatusResultAvailable ProcessingStatus = "RESULT_AVAILABLE"
	StatusResultNotified  ProcessingStatus = "RESULT_NOTIFIED"
	StatusStatsUpdated    ProcessingStatus = "STATS_UPDATED"
	StatusCompleted       ProcessingStatus = "COMPLETED"
)

// TeamInfo identifies one team in a match.
type TeamInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// Match represents a team-vs-team fixture composed of multiple games.
type Match struct {
	ID               string           `json:"id"`
	Source           Source           `json:"source"`
	Season           string           `json:"season"`
	Gameday          int              `json:"gameday"`
	GamedayName      string           `json:"gameday_name"`
	State            MatchState       `json:"state"`
	HomeTeam         TeamInfo         `json:"home_team"`
	AwayTeam         TeamInfo         `json:"away_team"`
	Venue            string           `json:"venue"`
	StartTime        int64            `json:"start_time"`
	HomeGameWins     int              `json:"home_game_wins"`
	AwayGameWins     int              `json:"away_game_wins"`
	HomeSetWins      int              `json:"home_set_wins"`
	AwaySetWins      int              `json:"away_set_wins"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
}

// TournamentInfo carries the event context of a WTT game; empty for
// league games that belong to a team match instead.
type TournamentInfo struct {
	ID    string `json:"id,omitempty"`
	Event string `json:"event,omitempty"`
	Stage string `json:"stage,omitempty"`
	Round string `json:"round,omitempty"`
}

// Game represents one individual singles contest. TTBL games hang off a
// team match via MatchID; WTT games stand alone with tournament context.
type Game struct {
	ID          string                `json:"id"`
	Source      Source                `json:"source"`
	MatchID     string                `json:"match_id,omitempty"`
	Index       int                   `json:"index"`
	PlayerAID   string                `json:"player_a_id"`
	PlayerAName string                `json:"player_a_name"`
	PlayerBID   string                `json:"player_b_id"`
	PlayerBName string                `json:"player_b_name"`
	Winner      scores.Side           `json:"winner"`
	State       stats.CompletionState `json:"state"`
	RawScore    string                `json:"raw_score,omitempty"`
	SetsA       int                   `json:"sets_a"`
	SetsB       int                   `json:"sets_b"`
	Walkover    bool                  `json:"walkover"`
	Timestamp   int64                 `json:"timestamp"`
	Tournament  TournamentInfo        `json:"tournament,omitempty"`
}

// Player is one row of the player directory. The first ingested
// spelling of a name sticks; later upserts only fill blank fields.
type Player struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Association   string `json:"association,omitempty"`
	TeamName      string `json:"team_name,omitempty"`
	Source        Source `json:"source"`
	WorldRank     *int   `json:"world_rank,omitempty"`
	RankCheckedAt *int64 `json:"rank_checked_at,omitempty"`
}

// Summary holds store-wide counts used by exports and health output.
type Summary struct {
	Matches         int `json:"matches"`
	FinishedMatches int `json:"finished_matches"`
	Gamedays        int `json:"gamedays"`
	Games           int `json:"games"`
	Players         int `json:"players"`
}
