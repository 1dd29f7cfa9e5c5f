package league

import "ttstats/internal/stats"

// LeagueStore defines the interface for interacting with the league's data.
type LeagueStore interface {
	UpsertMatch(match *Match) error
	UpsertMatches(matches []*Match) error
	UpsertGames(games []*Game) error
	UpsertPlayers(players []Player) error
	GetMatch(matchID string) (*Match, error)
	GetAllMatches() ([]*Match, error)
	GetMatchesForProcessing() ([]*Match, error)
	UpdateProcessingStatus(matchID string, status ProcessingStatus) error
	GetGamesForMatch(matchID string) ([]*Game, error)
	GetAllGames(source Source) ([]*Game, error)
	KnownGameIDs(source Source) (map[string]struct{}, error)
	GameRecords() ([]stats.GameRecord, error)
	MatchStateCounts() (map[MatchState]int, error)
	GetAllPlayers() ([]Player, error)
	GetPlayerByName(name string) (*Player, error)
	SetPlayerRank(playerID string, rank int, checkedAt int64) error
	Summary() (Summary, error)
	Clear()
}
