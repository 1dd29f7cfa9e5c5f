package ttbl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ttstats/internal/league"
	"ttstats/internal/scores"
	"ttstats/internal/stats"
)

func newTestClient(serverURL string) *APIClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		BaseURL:    serverURL,
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
		},
	}
}

func TestDiscoverMatchIDs(t *testing.T) {
	// Schedule page with two real match links, one duplicate, one link
	// without a UUID and one unrelated link.
	scheduleHTML := `<html><body>
		<a href="/bundesliga/gameday/1b4e28ba-2fa1-11d2-883f-0016d3cca427">TTF Ochsenhausen vs Borussia Duesseldorf</a>
		<a href="/bundesliga/gameday/6ba7b810-9dad-11d1-80b4-00c04fd430c8">1. FC Saarbruecken vs TTC Fulda-Maberzell</a>
		<a href="/bundesliga/gameday/1b4e28ba-2fa1-11d2-883f-0016d3cca427">Duplicate link</a>
		<a href="/bundesliga/gameday/overview">Overview</a>
		<a href="/bundesliga/table">Table</a>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bundesliga/gameschedule/2025-2026/3/all", r.URL.Path)
		fmt.Fprint(w, scheduleHTML)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ids, err := client.DiscoverMatchIDs(context.Background(), "2025-2026", 3)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"1b4e28ba-2fa1-11d2-883f-0016d3cca427",
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8",
	}, ids)
}

func TestGetMatch(t *testing.T) {
	mockJSONResponse := `{
		"id": "match-uuid-1",
		"matchState": "Finished",
		"timeStamp": 1757800800,
		"gameday": { "name": "3. Spieltag" },
		"homeTeam": { "id": "team-1", "name": "Borussia Duesseldorf", "rank": 1 },
		"awayTeam": { "id": "team-2", "name": "TTC Schwalbe Bergneustadt", "rank": 8 },
		"venue": { "name": "ARAG CenterCourt" },
		"homeGameWins": 3,
		"awayGameWins": 1,
		"homeSetWins": 9,
		"awaySetWins": 5,
		"homePlayerOne": { "id": "p-boll", "firstName": "Timo", "lastName": "Boll" },
		"guestPlayerOne": { "id": "p-duda", "firstName": "Benedikt", "lastName": "Duda" },
		"games": [
			{
				"id": "game-1",
				"index": 1,
				"gameState": "Finished",
				"winnerSide": "Home",
				"homePlayer": { "id": "p-boll", "firstName": "Timo", "lastName": "Boll" },
				"awayPlayer": { "id": "p-duda", "firstName": "Benedikt", "lastName": "Duda" }
			},
			{
				"index": 2,
				"gameState": "Finished",
				"winnerSide": "Away",
				"homeLeaguePlayer": { "id": "p-sub", "firstName": "Kay", "lastName": "Stumper" },
				"awayPlayer": { "id": "p-duda", "firstName": "Benedikt", "lastName": "Duda" }
			},
			{
				"index": 3,
				"gameState": "Scheduled",
				"winnerSide": ""
			}
		]
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/internal/match/match-uuid-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, mockJSONResponse)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	detail, err := client.GetMatch(context.Background(), "match-uuid-1")
	require.NoError(t, err)

	match := detail.Match
	assert.Equal(t, "match-uuid-1", match.ID)
	assert.Equal(t, league.SourceTTBL, match.Source)
	assert.Equal(t, league.MatchStateFinished, match.State)
	assert.Equal(t, "3. Spieltag", match.GamedayName)
	assert.Equal(t, "Borussia Duesseldorf", match.HomeTeam.Name)
	assert.Equal(t, 8, match.AwayTeam.Rank)
	assert.Equal(t, "ARAG CenterCourt", match.Venue)
	assert.Equal(t, int64(1757800800), match.StartTime)
	assert.Equal(t, 3, match.HomeGameWins)
	assert.Equal(t, 5, match.AwaySetWins)

	require.Len(t, detail.Games, 3)

	first := detail.Games[0]
	assert.Equal(t, "game-1", first.ID)
	assert.Equal(t, "match-uuid-1", first.MatchID)
	assert.Equal(t, "p-boll", first.PlayerAID)
	assert.Equal(t, "Timo Boll", first.PlayerAName)
	assert.Equal(t, "Benedikt Duda", first.PlayerBName)
	assert.Equal(t, scores.SideA, first.Winner)
	assert.Equal(t, stats.StateFinished, first.State)
	assert.Equal(t, int64(1757800800), first.Timestamp)

	t.Run("falls back to league player and synthesizes missing game id", func(t *testing.T) {
		second := detail.Games[1]
		assert.Equal(t, "match-uuid-1-game-2", second.ID)
		assert.Equal(t, "p-sub", second.PlayerAID)
		assert.Equal(t, "Kay Stumper", second.PlayerAName)
		assert.Equal(t, scores.SideB, second.Winner)
	})

	t.Run("unplayed game has no winner and unknown players", func(t *testing.T) {
		third := detail.Games[2]
		assert.Equal(t, scores.SideNone, third.Winner)
		assert.Equal(t, stats.StateNotFinished, third.State)
		assert.Empty(t, third.PlayerAID)
		assert.Equal(t, "Unknown", third.PlayerAName)
		assert.Equal(t, "Unknown", third.PlayerBName)
	})

	t.Run("collects unique players from lineups and games", func(t *testing.T) {
		require.Len(t, detail.Players, 3)
		byID := make(map[string]league.Player)
		for _, p := range detail.Players {
			byID[p.ID] = p
		}
		assert.Equal(t, "Timo Boll", byID["p-boll"].Name)
		assert.Equal(t, "Borussia Duesseldorf", byID["p-boll"].TeamName)
		assert.Equal(t, "TTC Schwalbe Bergneustadt", byID["p-duda"].TeamName)
		assert.Equal(t, "Kay Stumper", byID["p-sub"].Name)
		assert.Equal(t, league.SourceTTBL, byID["p-sub"].Source)
	})
}

func TestGetMatchUnknownEnums(t *testing.T) {
	mockJSONResponse := `{
		"id": "match-uuid-2",
		"matchState": "Postponed",
		"games": [
			{ "index": 1, "gameState": "Finished", "winnerSide": "Draw" }
		]
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, mockJSONResponse)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	detail, err := client.GetMatch(context.Background(), "match-uuid-2")
	require.NoError(t, err)

	assert.Equal(t, league.MatchStateUnknown, detail.Match.State)
	require.Len(t, detail.Games, 1)
	assert.Equal(t, scores.SideNone, detail.Games[0].Winner)
}

func TestGetMatchNotFoundIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetMatch(context.Background(), "missing")

	assert.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestGetRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"id": "match-uuid-3", "matchState": "Finished"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	detail, err := client.GetMatch(context.Background(), "match-uuid-3")

	require.NoError(t, err)
	assert.Equal(t, "match-uuid-3", detail.Match.ID)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestThrottle(t *testing.T) {
	t.Run("returns once the delay has passed", func(t *testing.T) {
		err := Throttle(context.Background(), time.Millisecond)
		assert.NoError(t, err)
	})

	t.Run("returns early on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Throttle(ctx, time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
