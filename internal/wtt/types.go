package wtt

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"ttstats/internal/league"
	"ttstats/internal/scores"
)

// Config holds everything the client needs to talk to the fabrik list
// and the rankings gateway.
type Config struct {
	BaseURL     string
	RankingsURL string
	ListID      string
	PageLimit   int
	Delay       time.Duration
}

// YearResult collects everything a year sweep produced.
type YearResult struct {
	Games       []*league.Game
	Players     []league.Player
	Diagnostics []RowDiagnostic
	Pages       int
}

// RowDiagnostic ties a score parse diagnostic to the game it came from.
type RowDiagnostic struct {
	GameID     string            `json:"game_id"`
	Diagnostic scores.Diagnostic `json:"diagnostic"`
}

// Ranking is one entry of the rankings gateway response.
type Ranking struct {
	PlayerName   string `json:"PlayerName"`
	Rank         int    `json:"Rank"`
	SubEventName string `json:"SubEventName"`
}

type rankingsResponse struct {
	Result []Ranking `json:"Result"`
}

// matchRow is one row of the fabrik match list. Field coverage is
// limited to what we actually read.
type matchRow struct {
	ID           flexString `json:"vw_matches___id"`
	PlayerAID    flexString `json:"vw_matches___player_a_id"`
	PlayerAName  flexString `json:"vw_matches___name_a"`
	PlayerXID    flexString `json:"vw_matches___player_x_id"`
	PlayerXName  flexString `json:"vw_matches___name_x"`
	PlayerAAssoc flexString `json:"vw_matches___assoc_a"`
	PlayerXAssoc flexString `json:"vw_matches___assoc_x"`
	TournamentID flexString `json:"vw_matches___tournament_id"`
	Event        flexString `json:"vw_matches___event"`
	Stage        flexString `json:"vw_matches___stage"`
	Round        flexString `json:"vw_matches___round"`
	YearRaw      flexString `json:"vw_matches___yr_raw"`
	Year         flexString `json:"vw_matches___yr"`
	GamesRaw     flexString `json:"vw_matches___games_raw"`
	Walkover     flexString `json:"vw_matches___wo"`
	WalkoverRaw  flexString `json:"vw_matches___wo_raw"`
}

func (r *matchRow) walkover() bool {
	return r.Walkover == "1" || r.WalkoverRaw == "1"
}

// year prefers the raw value; fabrik exposes both a formatted and a raw
// column for the same field.
func (r *matchRow) year() string {
	if r.YearRaw != "" {
		return string(r.YearRaw)
	}
	return string(r.Year)
}

// flexString decodes a JSON value that may arrive as a string, a number
// or null. Fabrik is not consistent about field types across rows.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	*f = flexString(data)
	return nil
}

func (f flexString) String() string { return string(f) }
