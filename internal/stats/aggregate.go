package stats

import (
	"math"

	"ttstats/internal/scores"
)

// lastGame tracks the comparison key for a player's most recent game.
type lastGame struct {
	timestamp int64
	gameID    string
}

// Aggregate folds a sequence of game records into a per-player
// statistics table. Only finished games with a determined winner
// contribute; everything else is returned in the excluded slice and
// touches no player entry at all, not even games played. The fold is
// independent of input order: numeric fields are commutative, the
// player name is fixed by the record carrying the first occurrence of
// the player id, and LastGameID is chosen by timestamp (ties going to
// the smaller game id). Names are never revised by later records, so a
// corrected spelling upstream only lands after the next full rebuild.
func Aggregate(games []GameRecord) (map[string]*PlayerStats, []ExcludedGame) {
	table := make(map[string]*PlayerStats)
	lastSeen := make(map[string]lastGame)
	var excluded []ExcludedGame

	for _, game := range games {
		if game.State != StateFinished {
			excluded = append(excluded, ExcludedGame{GameRecord: game, Reason: ExcludedNotFinished})
			continue
		}
		if game.Winner != scores.SideA && game.Winner != scores.SideB {
			excluded = append(excluded, ExcludedGame{GameRecord: game, Reason: ExcludedNoWinner})
			continue
		}

		playerA := ensurePlayer(table, game.PlayerAID, game.PlayerAName)
		playerB := ensurePlayer(table, game.PlayerBID, game.PlayerBName)

		playerA.GamesPlayed++
		playerB.GamesPlayed++
		if game.Winner == scores.SideA {
			playerA.Wins++
			playerB.Losses++
		} else {
			playerB.Wins++
			playerA.Losses++
		}

		updateLastGame(lastSeen, playerA, game)
		updateLastGame(lastSeen, playerB, game)
	}

	for _, player := range table {
		player.WinRate = winRate(player.Wins, player.GamesPlayed)
	}
	return table, excluded
}

// ensurePlayer returns the entry for id, creating it with the supplied
// name on first sight. The name is never overwritten afterwards.
func ensurePlayer(table map[string]*PlayerStats, id, name string) *PlayerStats {
	if player, ok := table[id]; ok {
		return player
	}
	player := &PlayerStats{PlayerID: id, PlayerName: name}
	table[id] = player
	return player
}

// updateLastGame advances the player's LastGameID when the game has a
// greater timestamp than anything seen so far, or the same timestamp
// with a smaller game id.
func updateLastGame(lastSeen map[string]lastGame, player *PlayerStats, game GameRecord) {
	current, ok := lastSeen[player.PlayerID]
	if ok {
		if current.timestamp > game.Timestamp {
			return
		}
		if current.timestamp == game.Timestamp && current.gameID <= game.GameID {
			return
		}
	}
	lastSeen[player.PlayerID] = lastGame{timestamp: game.Timestamp, gameID: game.GameID}
	player.LastGameID = game.GameID
}

// winRate is the percentage of games won, rounded to the nearest whole
// number. Zero games played yields zero rather than dividing.
func winRate(wins, played int) int {
	if played == 0 {
		return 0
	}
	return int(math.Round(float64(wins) * 100 / float64(played)))
}
