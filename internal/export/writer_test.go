package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ttstats/internal/league"
	"ttstats/internal/scores"
	"ttstats/internal/stats"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		PlayerStats: []*stats.PlayerStats{
			{PlayerID: "p-2", PlayerName: "FAN Zhendong", GamesPlayed: 8, Wins: 5, Losses: 3, WinRate: 63},
			{PlayerID: "p-1", PlayerName: "MA Long", GamesPlayed: 10, Wins: 9, Losses: 1, WinRate: 90},
		},
		TopPlayers: []stats.LeaderboardEntry{
			{PlayerID: "p-1", PlayerName: "MA Long", GamesPlayed: 10, Wins: 9, Losses: 1, WinRate: 90},
		},
		Matches: []MatchSummary{
			{ID: "m-1", Source: league.SourceTTBL, Season: "2024/25", Gameday: 1, HomeTeam: "Borussia Düsseldorf", AwayTeam: "TTC Fulda-Maberzell", Result: "3:1", State: league.MatchStateFinished, StartTime: 1735689600},
		},
		MatchStates: map[league.MatchState]int{league.MatchStateFinished: 1},
		Players: []league.Player{
			{ID: "p-2", Name: "FAN Zhendong", Source: league.SourceWTT},
			{ID: "p-1", Name: "MA Long", Source: league.SourceWTT},
		},
		Games: []*league.Game{
			{ID: "g-1", Source: league.SourceTTBL, Winner: scores.SideA, State: stats.StateFinished},
		},
		Metadata: Metadata{Season: "2024/25"},
	}
}

func TestStamp(t *testing.T) {
	assert.Equal(t, "20250101T120000Z", Stamp(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func TestWriteSnapshotAndManifest(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 3)

	require.NoError(t, w.Write("20250101T000000Z", sampleSnapshot()))

	// All snapshot files land in the stamp directory.
	for _, name := range []string{
		"player_stats.json",
		"top_players.json",
		"matches_summary.json",
		"match_states.json",
		"players.json",
		"games.json",
		"excluded_games.json",
		"metadata.json",
	} {
		_, err := os.Stat(filepath.Join(dir, "20250101T000000Z", name))
		assert.NoError(t, err, name)
	}

	// Player stats come back sorted best-first regardless of input order.
	data, err := os.ReadFile(filepath.Join(dir, "20250101T000000Z", "player_stats.json"))
	require.NoError(t, err)
	var ps []*stats.PlayerStats
	require.NoError(t, json.Unmarshal(data, &ps))
	require.Len(t, ps, 2)
	assert.Equal(t, "p-1", ps[0].PlayerID)
	assert.Equal(t, "p-2", ps[1].PlayerID)

	// Metadata is stamped with a generation time and format version.
	data, err = os.ReadFile(filepath.Join(dir, "20250101T000000Z", "metadata.json"))
	require.NoError(t, err)
	var meta Metadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.NotEmpty(t, meta.GeneratedAt)
	assert.Equal(t, SnapshotVersion, meta.Version)
	assert.Equal(t, "2024/25", meta.Season)

	m, err := readManifest(filepath.Join(dir, "manifest.json"), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"20250101T000000Z"}, m.Snapshots)
	assert.Equal(t, "20250101T000000Z", m.Latest)
	assert.Equal(t, 3, m.Keep)
	assert.False(t, m.GeneratedAt.IsZero())
}

func TestWritePrunesOldSnapshots(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 2)

	for _, stamp := range []string{"20250101T000000Z", "20250102T000000Z", "20250103T000000Z"} {
		require.NoError(t, w.Write(stamp, sampleSnapshot()))
	}

	// The oldest snapshot directory is removed once retention is exceeded.
	_, err := os.Stat(filepath.Join(dir, "20250101T000000Z"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "20250103T000000Z"))
	assert.NoError(t, err)

	m, err := readManifest(filepath.Join(dir, "manifest.json"), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"20250102T000000Z", "20250103T000000Z"}, m.Snapshots)
	assert.Equal(t, "20250103T000000Z", m.Latest)
}

func TestWriteValidation(t *testing.T) {
	t.Run("nil writer", func(t *testing.T) {
		var w *Writer
		err := w.Write("20250101T000000Z", Snapshot{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})

	t.Run("empty stamp", func(t *testing.T) {
		w := NewWriter(t.TempDir(), 2)
		require.Error(t, w.Write("", Snapshot{}))
	})
}

func TestNewWriterDefaultsKeep(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 0)

	require.NoError(t, w.Write("20250601T000000Z", sampleSnapshot()))

	m, err := readManifest(filepath.Join(dir, "manifest.json"), 0)
	require.NoError(t, err)
	assert.Equal(t, 10, m.Keep)
}

func TestSummarizeMatches(t *testing.T) {
	matches := []*league.Match{
		{
			ID:           "m-1",
			Source:       league.SourceTTBL,
			Season:       "2024/25",
			Gameday:      5,
			HomeTeam:     league.TeamInfo{ID: "t-1", Name: "Borussia Düsseldorf"},
			AwayTeam:     league.TeamInfo{ID: "t-2", Name: "TTC Fulda-Maberzell"},
			HomeGameWins: 3,
			AwayGameWins: 1,
			State:        league.MatchStateFinished,
			StartTime:    1735689600,
		},
	}

	summaries := SummarizeMatches(matches)

	require.Len(t, summaries, 1)
	assert.Equal(t, MatchSummary{
		ID:        "m-1",
		Source:    league.SourceTTBL,
		Season:    "2024/25",
		Gameday:   5,
		HomeTeam:  "Borussia Düsseldorf",
		AwayTeam:  "TTC Fulda-Maberzell",
		Result:    "3:1",
		State:     league.MatchStateFinished,
		StartTime: 1735689600,
	}, summaries[0])
}

func TestBuild(t *testing.T) {
	store := league.NewMock()
	store.GameRecordsFunc = func() ([]stats.GameRecord, error) {
		return []stats.GameRecord{
			{GameID: "g-1", PlayerAID: "p-1", PlayerAName: "MA Long", PlayerBID: "p-2", PlayerBName: "FAN Zhendong", Winner: scores.SideA, State: stats.StateFinished, Timestamp: 100},
			{GameID: "g-2", PlayerAID: "p-1", PlayerAName: "MA Long", PlayerBID: "p-2", PlayerBName: "FAN Zhendong", Winner: scores.SideB, State: stats.StateFinished, Timestamp: 200},
			{GameID: "g-3", PlayerAID: "p-1", PlayerAName: "MA Long", PlayerBID: "p-2", PlayerBName: "FAN Zhendong", Winner: scores.SideNone, State: stats.StateNotFinished, Timestamp: 300},
		}, nil
	}
	store.GetAllMatchesFunc = func() ([]*league.Match, error) {
		return []*league.Match{
			{ID: "m-1", Source: league.SourceTTBL, Season: "2024/25", Gameday: 3, HomeTeam: league.TeamInfo{Name: "Borussia Düsseldorf"}, AwayTeam: league.TeamInfo{Name: "TTC Fulda-Maberzell"}, HomeGameWins: 3, AwayGameWins: 1, State: league.MatchStateFinished, StartTime: 1000},
		}, nil
	}
	store.MatchStateCountsFunc = func() (map[league.MatchState]int, error) {
		return map[league.MatchState]int{league.MatchStateFinished: 1}, nil
	}
	store.GetAllPlayersFunc = func() ([]league.Player, error) {
		return []league.Player{
			{ID: "p-1", Name: "MA Long"},
			{ID: "p-2", Name: "FAN Zhendong"},
		}, nil
	}
	store.GetAllGamesFunc = func(source league.Source) ([]*league.Game, error) {
		return []*league.Game{
			{ID: "g-1", Source: league.SourceTTBL},
			{ID: "g-2", Source: league.SourceWTT},
			{ID: "g-3", Source: league.SourceTTBL},
		}, nil
	}
	store.SummaryFunc = func() (league.Summary, error) {
		return league.Summary{Matches: 1, FinishedMatches: 1, Gamedays: 1, Games: 3, Players: 2}, nil
	}

	snapshot, err := Build(store, "2024/25", 1, 10)
	require.NoError(t, err)

	assert.Len(t, snapshot.PlayerStats, 2)

	// Both players sit at 1W/1L, so the tie breaks on player ID.
	require.Len(t, snapshot.TopPlayers, 2)
	assert.Equal(t, "p-1", snapshot.TopPlayers[0].PlayerID)
	assert.Equal(t, "p-2", snapshot.TopPlayers[1].PlayerID)

	require.Len(t, snapshot.Matches, 1)
	assert.Equal(t, "3:1", snapshot.Matches[0].Result)
	assert.Equal(t, 1, snapshot.MatchStates[league.MatchStateFinished])
	assert.Len(t, snapshot.Players, 2)
	assert.Len(t, snapshot.Games, 3)

	require.Len(t, snapshot.ExcludedGames, 1)
	assert.Equal(t, "g-3", snapshot.ExcludedGames[0].GameID)
	assert.Equal(t, stats.ExcludedNotFinished, snapshot.ExcludedGames[0].Reason)

	meta := snapshot.Metadata
	assert.Equal(t, "2024/25", meta.Season)
	assert.Equal(t, 1, meta.TotalMatches)
	assert.Equal(t, 1, meta.TotalGamedays)
	assert.Equal(t, 2, meta.UniquePlayers)
	assert.Equal(t, 2, meta.PlayersWithStats)
	assert.Equal(t, 2, meta.TotalGamesProcessed)
	assert.Equal(t, 1, meta.ExcludedGames)
	assert.Equal(t, []string{"ttbl", "wtt"}, meta.Sources)
	assert.Equal(t, SnapshotVersion, meta.Version)
	assert.NotEmpty(t, meta.GeneratedAt)
}
