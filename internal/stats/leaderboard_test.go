package stats_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ttstats/internal/stats"
)

func statsTable(players ...*stats.PlayerStats) map[string]*stats.PlayerStats {
	table := make(map[string]*stats.PlayerStats, len(players))
	for _, player := range players {
		table[player.PlayerID] = player
	}
	return table
}

func TestLeaderboard(t *testing.T) {
	t.Run("rejects a non positive top n", func(t *testing.T) {
		for _, topN := range []int{0, -1, -20} {
			_, err := stats.Leaderboard(statsTable(), 0, topN)
			require.Error(t, err)
			assert.ErrorIs(t, err, stats.ErrInvalidTopN)
		}
	})

	t.Run("rejects a negative min games", func(t *testing.T) {
		_, err := stats.Leaderboard(statsTable(), -1, 10)
		require.Error(t, err)
		assert.ErrorIs(t, err, stats.ErrInvalidMinGames)
	})

	t.Run("returns empty for an empty table", func(t *testing.T) {
		entries, err := stats.Leaderboard(statsTable(), stats.DefaultMinGames, stats.DefaultTopN)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("filters players below the minimum games", func(t *testing.T) {
		table := statsTable(
			&stats.PlayerStats{PlayerID: "p1", GamesPlayed: 8, Wins: 6, Losses: 2, WinRate: 75},
			&stats.PlayerStats{PlayerID: "p2", GamesPlayed: 5, Wins: 2, Losses: 3, WinRate: 40},
		)
		for i := 3; i <= 10; i++ {
			id := fmt.Sprintf("p%d", i)
			table[id] = &stats.PlayerStats{PlayerID: id, GamesPlayed: 2, Wins: 2, WinRate: 100}
		}

		entries, err := stats.Leaderboard(table, 5, 20)
		require.NoError(t, err)

		require.Len(t, entries, 2)
		assert.Equal(t, "p1", entries[0].PlayerID)
		assert.Equal(t, "p2", entries[1].PlayerID)
		for _, entry := range entries {
			assert.GreaterOrEqual(t, entry.GamesPlayed, 5)
		}
	})

	t.Run("orders by win rate then games played then player id", func(t *testing.T) {
		table := statsTable(
			&stats.PlayerStats{PlayerID: "p-delta", GamesPlayed: 10, Wins: 7, Losses: 3, WinRate: 70},
			&stats.PlayerStats{PlayerID: "p-alpha", GamesPlayed: 10, Wins: 9, Losses: 1, WinRate: 90},
			&stats.PlayerStats{PlayerID: "p-bravo", GamesPlayed: 20, Wins: 14, Losses: 6, WinRate: 70},
			&stats.PlayerStats{PlayerID: "p-charlie", GamesPlayed: 10, Wins: 7, Losses: 3, WinRate: 70},
		)

		entries, err := stats.Leaderboard(table, 0, 10)
		require.NoError(t, err)

		require.Len(t, entries, 4)
		assert.Equal(t, "p-alpha", entries[0].PlayerID)
		assert.Equal(t, "p-bravo", entries[1].PlayerID)
		assert.Equal(t, "p-charlie", entries[2].PlayerID)
		assert.Equal(t, "p-delta", entries[3].PlayerID)

		for i := 1; i < len(entries); i++ {
			prev, cur := entries[i-1], entries[i]
			better := prev.WinRate > cur.WinRate ||
				(prev.WinRate == cur.WinRate && prev.GamesPlayed >= cur.GamesPlayed)
			assert.True(t, better, "entry %d out of order", i)
		}
	})

	t.Run("resolves full ties deterministically across runs", func(t *testing.T) {
		table := statsTable(
			&stats.PlayerStats{PlayerID: "p-z", GamesPlayed: 6, Wins: 3, Losses: 3, WinRate: 50},
			&stats.PlayerStats{PlayerID: "p-a", GamesPlayed: 6, Wins: 3, Losses: 3, WinRate: 50},
		)

		first, err := stats.Leaderboard(table, 0, 10)
		require.NoError(t, err)

		for i := 0; i < 20; i++ {
			again, err := stats.Leaderboard(table, 0, 10)
			require.NoError(t, err)
			require.Equal(t, first, again)
		}
		assert.Equal(t, "p-a", first[0].PlayerID)
		assert.Equal(t, "p-z", first[1].PlayerID)
	})

	t.Run("truncates to top n", func(t *testing.T) {
		table := statsTable()
		for i := 0; i < 30; i++ {
			id := fmt.Sprintf("p%02d", i)
			table[id] = &stats.PlayerStats{PlayerID: id, GamesPlayed: 10, Wins: i % 10, WinRate: (i % 10) * 10}
		}

		entries, err := stats.Leaderboard(table, 0, 20)
		require.NoError(t, err)
		assert.Len(t, entries, 20)
	})

	t.Run("returns every qualifier when fewer than top n", func(t *testing.T) {
		table := statsTable(
			&stats.PlayerStats{PlayerID: "p1", GamesPlayed: 7, Wins: 7, WinRate: 100},
		)

		entries, err := stats.Leaderboard(table, 5, 20)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("never ranks a player without games even at threshold zero", func(t *testing.T) {
		table := statsTable(
			&stats.PlayerStats{PlayerID: "p-empty"},
			&stats.PlayerStats{PlayerID: "p-played", GamesPlayed: 1, Wins: 1, WinRate: 100},
		)

		entries, err := stats.Leaderboard(table, 0, 10)
		require.NoError(t, err)

		require.Len(t, entries, 1)
		assert.Equal(t, "p-played", entries[0].PlayerID)
	})
}
