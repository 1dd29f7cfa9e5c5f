package ttbl

import "ttstats/internal/league"

// MatchDetail bundles everything a single match fetch yields, mapped to
// league types. Season and gameday number are stamped by the caller,
// which knows which schedule page the match was discovered on.
type MatchDetail struct {
	Match   *league.Match
	Games   []*league.Game
	Players []league.Player
}

// Wire types for www.ttbl.de's internal match API. Field coverage is
// limited to what we actually read.

type matchResponse struct {
	ID               string        `json:"id"`
	MatchState       string        `json:"matchState"`
	TimeStamp        int64         `json:"timeStamp"`
	Gameday          gamedayInfo   `json:"gameday"`
	HomeTeam         teamInfo      `json:"homeTeam"`
	AwayTeam         teamInfo      `json:"awayTeam"`
	Venue            venueInfo     `json:"venue"`
	HomeGameWins     int           `json:"homeGameWins"`
	AwayGameWins     int           `json:"awayGameWins"`
	HomeSetWins      int           `json:"homeSetWins"`
	AwaySetWins      int           `json:"awaySetWins"`
	Games            []gameEntry   `json:"games"`
	HomePlayerOne    *playerEntry  `json:"homePlayerOne"`
	HomePlayerTwo    *playerEntry  `json:"homePlayerTwo"`
	HomePlayerThree  *playerEntry  `json:"homePlayerThree"`
	GuestPlayerOne   *playerEntry  `json:"guestPlayerOne"`
	GuestPlayerTwo   *playerEntry  `json:"guestPlayerTwo"`
	GuestPlayerThree *playerEntry  `json:"guestPlayerThree"`
}

type gamedayInfo struct {
	Name string `json:"name"`
}

type teamInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

type venueInfo struct {
	Name string `json:"name"`
}

type playerEntry struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageUrl"`
}

// gameEntry is one board of a team match. Regular players appear under
// homePlayer/awayPlayer; substitutes only under the leaguePlayer keys.
type gameEntry struct {
	ID               string       `json:"id"`
	Index            int          `json:"index"`
	GameState        string       `json:"gameState"`
	WinnerSide       string       `json:"winnerSide"`
	HomePlayer       *playerEntry `json:"homePlayer"`
	HomeLeaguePlayer *playerEntry `json:"homeLeaguePlayer"`
	AwayPlayer       *playerEntry `json:"awayPlayer"`
	AwayLeaguePlayer *playerEntry `json:"awayLeaguePlayer"`
}
