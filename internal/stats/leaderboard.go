package stats

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidTopN is returned when a caller asks for a non-positive
	// number of leaderboard entries.
	ErrInvalidTopN = errors.New("top n must be positive")
	// ErrInvalidMinGames is returned when a caller supplies a negative
	// minimum games threshold.
	ErrInvalidMinGames = errors.New("min games must not be negative")
)

// Leaderboard projects a statistics table into a ranked list: players
// with at least minGames games, ordered by win rate descending, ties
// broken by games played descending and then player id ascending,
// truncated to topN entries. Players with no games on record are never
// ranked, their win rate being undefined. An empty result is not an
// error; invalid thresholds are, since they indicate a programming
// mistake rather than dirty data.
func Leaderboard(table map[string]*PlayerStats, minGames, topN int) ([]LeaderboardEntry, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("leaderboard: %w, got %d", ErrInvalidTopN, topN)
	}
	if minGames < 0 {
		return nil, fmt.Errorf("leaderboard: %w, got %d", ErrInvalidMinGames, minGames)
	}

	entries := make([]LeaderboardEntry, 0, len(table))
	for _, player := range table {
		if player.GamesPlayed == 0 || player.GamesPlayed < minGames {
			continue
		}
		entries = append(entries, LeaderboardEntry(*player))
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed > b.GamesPlayed
		}
		return a.PlayerID < b.PlayerID
	})

	if len(entries) > topN {
		entries = entries[:topN]
	}
	return entries, nil
}
