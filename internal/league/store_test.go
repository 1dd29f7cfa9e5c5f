package league_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ttstats/internal/database"
	"ttstats/internal/league"
	"ttstats/internal/scores"
	"ttstats/internal/stats"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (league.LeagueStore, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := league.New(db)
	return store, dbTeardown
}

func testMatch(id string) *league.Match {
	return &league.Match{
		ID:          id,
		Source:      league.SourceTTBL,
		Season:      "2025-2026",
		Gameday:     3,
		GamedayName: "3. Spieltag",
		State:       league.MatchStateFinished,
		HomeTeam:    league.TeamInfo{ID: "team-d", Name: "Borussia Duesseldorf", Rank: 1},
		AwayTeam:    league.TeamInfo{ID: "team-s", Name: "TTC Schwalbe Bergneustadt", Rank: 8},
		Venue:       "ARAG CenterCourt",
		StartTime:   1_760_000_000,
	}
}

func testGame(id, matchID string) *league.Game {
	return &league.Game{
		ID:          id,
		Source:      league.SourceTTBL,
		MatchID:     matchID,
		Index:       1,
		PlayerAID:   "p-home",
		PlayerAName: "Timo Boll",
		PlayerBID:   "p-away",
		PlayerBName: "Benedikt Duda",
		Winner:      scores.SideA,
		State:       stats.StateFinished,
		RawScore:    "11:9 11:7 9:11 11:8",
		SetsA:       3,
		SetsB:       1,
		Timestamp:   1_760_000_000,
	}
}

func TestUpsertMatch(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	match := testMatch("match-1")
	require.NoError(t, store.UpsertMatch(match))

	got, err := store.GetMatch("match-1")
	require.NoError(t, err)
	assert.Equal(t, "Borussia Duesseldorf", got.HomeTeam.Name)
	assert.Equal(t, league.StatusNew, got.ProcessingStatus)

	t.Run("updates fields without touching processing status", func(t *testing.T) {
		require.NoError(t, store.UpdateProcessingStatus("match-1", league.StatusResultNotified))

		match.Venue = "Messe Duesseldorf"
		require.NoError(t, store.UpsertMatch(match))

		got, err := store.GetMatch("match-1")
		require.NoError(t, err)
		assert.Equal(t, "Messe Duesseldorf", got.Venue)
		assert.Equal(t, league.StatusResultNotified, got.ProcessingStatus)
	})
}

func TestGetMatchNotFound(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	_, err := store.GetMatch("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "match not found")
}

func TestGetMatchesForProcessing(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertMatches([]*league.Match{
		testMatch("match-1"), testMatch("match-2"), testMatch("match-3"),
	}))
	require.NoError(t, store.UpdateProcessingStatus("match-2", league.StatusCompleted))

	pending, err := store.GetMatchesForProcessing()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, match := range pending {
		assert.NotEqual(t, league.ProcessingStatus("COMPLETED"), match.ProcessingStatus)
	}
}

func TestUpsertGames(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertMatch(testMatch("match-1")))

	first := testGame("match-1:1", "match-1")
	second := testGame("match-1:2", "match-1")
	second.Index = 2
	second.Winner = scores.SideB
	require.NoError(t, store.UpsertGames([]*league.Game{second, first}))

	games, err := store.GetGamesForMatch("match-1")
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "match-1:1", games[0].ID, "games come back in board order")
	assert.Equal(t, "match-1:2", games[1].ID)

	t.Run("re-upserting refreshes the result", func(t *testing.T) {
		first.Winner = scores.SideB
		first.SetsA, first.SetsB = 1, 3
		require.NoError(t, store.UpsertGames([]*league.Game{first}))

		games, err := store.GetGamesForMatch("match-1")
		require.NoError(t, err)
		assert.Equal(t, scores.SideB, games[0].Winner)
		assert.Equal(t, 3, games[0].SetsB)
	})

	t.Run("a wtt game needs no parent match", func(t *testing.T) {
		game := testGame("wtt-900", "")
		game.Source = league.SourceWTT
		game.Tournament = league.TournamentInfo{ID: "t-1", Event: "MS", Stage: "MT", Round: "R32"}
		require.NoError(t, store.UpsertGames([]*league.Game{game}))

		games, err := store.GetAllGames(league.SourceWTT)
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Empty(t, games[0].MatchID)
		assert.Equal(t, "R32", games[0].Tournament.Round)
	})
}

func TestUpsertPlayersKeepsFirstSeenName(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayers([]league.Player{
		{ID: "p1", Name: "Timo Boll", Source: league.SourceTTBL},
		{ID: "p2", Name: "", Source: league.SourceTTBL},
	}))
	require.NoError(t, store.UpsertPlayers([]league.Player{
		{ID: "p1", Name: "T. Boll", TeamName: "Borussia Duesseldorf"},
		{ID: "p2", Name: "Dang Qiu"},
	}))

	players, err := store.GetAllPlayers()
	require.NoError(t, err)
	require.Len(t, players, 2)

	byID := make(map[string]league.Player)
	for _, player := range players {
		byID[player.ID] = player
	}
	assert.Equal(t, "Timo Boll", byID["p1"].Name, "existing name is kept")
	assert.Equal(t, "Borussia Duesseldorf", byID["p1"].TeamName, "blank fields are filled")
	assert.Equal(t, "Dang Qiu", byID["p2"].Name, "blank name is filled by a later upsert")
}

func TestGetPlayerByName(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayers([]league.Player{
		{ID: "p1", Name: "Timo Boll", Source: league.SourceTTBL},
	}))

	player, err := store.GetPlayerByName("boll")
	require.NoError(t, err)
	assert.Equal(t, "p1", player.ID)

	_, err = store.GetPlayerByName("waldner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSetPlayerRank(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayers([]league.Player{
		{ID: "p1", Name: "Truls Moregard", Source: league.SourceWTT},
	}))

	require.NoError(t, store.SetPlayerRank("p1", 4, 1_760_000_000))

	players, err := store.GetAllPlayers()
	require.NoError(t, err)
	require.Len(t, players, 1)
	require.NotNil(t, players[0].WorldRank)
	assert.Equal(t, 4, *players[0].WorldRank)

	assert.Error(t, store.SetPlayerRank("ghost", 1, 0))
}

func TestGameRecords(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertMatch(testMatch("match-1")))

	finished := testGame("match-1:1", "match-1")
	unfinished := testGame("match-1:2", "match-1")
	unfinished.Index = 2
	unfinished.Winner = scores.SideNone
	unfinished.State = stats.StateNotFinished
	require.NoError(t, store.UpsertGames([]*league.Game{finished, unfinished}))

	records, err := store.GameRecords()
	require.NoError(t, err)
	require.Len(t, records, 2, "the store reports everything, exclusion is the engine's job")

	byID := make(map[string]stats.GameRecord)
	for _, record := range records {
		byID[record.GameID] = record
	}
	assert.Equal(t, scores.SideA, byID["match-1:1"].Winner)
	assert.Equal(t, stats.StateFinished, byID["match-1:1"].State)
	assert.Equal(t, "Timo Boll", byID["match-1:1"].PlayerAName)
	assert.Equal(t, stats.StateNotFinished, byID["match-1:2"].State)

	table, excluded := stats.Aggregate(records)
	assert.Len(t, table, 2)
	assert.Len(t, excluded, 1)
}

func TestKnownGameIDs(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	wtt := testGame("wtt-1", "")
	wtt.Source = league.SourceWTT
	require.NoError(t, store.UpsertGames([]*league.Game{wtt}))

	ids, err := store.KnownGameIDs(league.SourceWTT)
	require.NoError(t, err)
	assert.Contains(t, ids, "wtt-1")

	ids, err = store.KnownGameIDs(league.SourceTTBL)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMatchStateCounts(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	scheduled := testMatch("match-2")
	scheduled.State = league.MatchStateScheduled
	require.NoError(t, store.UpsertMatches([]*league.Match{
		testMatch("match-1"), scheduled, testMatch("match-3"),
	}))

	counts, err := store.MatchStateCounts()
	require.NoError(t, err)
	assert.Equal(t, 2, counts[league.MatchStateFinished])
	assert.Equal(t, 1, counts[league.MatchStateScheduled])
}

func TestSummary(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertMatch(testMatch("match-1")))
	require.NoError(t, store.UpsertGames([]*league.Game{testGame("match-1:1", "match-1")}))
	require.NoError(t, store.UpsertPlayers([]league.Player{
		{ID: "p-home", Name: "Timo Boll"},
		{ID: "p-away", Name: "Benedikt Duda"},
	}))

	summary, err := store.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Matches)
	assert.Equal(t, 1, summary.FinishedMatches)
	assert.Equal(t, 1, summary.Gamedays)
	assert.Equal(t, 1, summary.Games)
	assert.Equal(t, 2, summary.Players)
}

func TestClear(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertMatch(testMatch("match-1")))
	require.NoError(t, store.UpsertGames([]*league.Game{testGame("match-1:1", "match-1")}))
	require.NoError(t, store.UpsertPlayers([]league.Player{{ID: "p1", Name: "X"}}))

	store.Clear()

	summary, err := store.Summary()
	require.NoError(t, err)
	assert.Equal(t, league.Summary{}, summary)
}
