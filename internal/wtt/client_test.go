package wtt

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ttstats/internal/league"
	"ttstats/internal/scores"
	"ttstats/internal/stats"
)

func newTestClient(serverURL string, pageLimit int) *APIClient {
	return &APIClient{
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		BaseURL:     serverURL,
		RankingsURL: serverURL + "/rankings",
		listID:      "31",
		pageLimit:   pageLimit,
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
		},
	}
}

func TestFetchYear(t *testing.T) {
	pageOne := `[
		{
			"vw_matches___id": "900001",
			"vw_matches___player_a_id": "121558",
			"vw_matches___name_a": "MA Long",
			"vw_matches___player_x_id": "121404",
			"vw_matches___name_x": "FAN Zhendong",
			"vw_matches___assoc_a": "CHN",
			"vw_matches___assoc_x": "CHN",
			"vw_matches___tournament_id": "WTT Finals",
			"vw_matches___event": "MS",
			"vw_matches___stage": "Main Draw",
			"vw_matches___round": "F",
			"vw_matches___yr_raw": "2025",
			"vw_matches___games_raw": "11:9 8:11 11:7 11:5",
			"vw_matches___wo": "0"
		},
		{
			"vw_matches___id": 900002,
			"vw_matches___player_a_id": 121558,
			"vw_matches___name_a": "MA Long",
			"vw_matches___player_x_id": "",
			"vw_matches___name_x": "BYE",
			"vw_matches___yr_raw": 2025,
			"vw_matches___games_raw": "",
			"vw_matches___wo": 1
		}
	]`
	pageTwo := `[
		{
			"vw_matches___id": "900001",
			"vw_matches___name_a": "MA Long",
			"vw_matches___games_raw": "11:9 8:11 11:7 11:5"
		},
		{
			"vw_matches___id": "900003",
			"vw_matches___player_a_id": "121404",
			"vw_matches___name_a": "FAN Zhendong",
			"vw_matches___player_x_id": "105649",
			"vw_matches___name_x": "HARIMOTO Tomokazu",
			"vw_matches___assoc_x": "JPN",
			"vw_matches___yr": "2025",
			"vw_matches___games_raw": "11:x 11:7 11:7 11:4",
			"vw_matches___wo": "0"
		}
	]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "com_fabrik", r.URL.Query().Get("option"))
		assert.Equal(t, "31", r.URL.Query().Get("listid"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "2025", r.URL.Query().Get("vw_matches___yr[value]"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("limitstart31") {
		case "0":
			fmt.Fprint(w, pageOne)
		case "2":
			fmt.Fprint(w, pageTwo)
		default:
			fmt.Fprint(w, "[]")
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2)
	result, err := client.FetchYear(context.Background(), 2025)
	require.NoError(t, err)

	// Three unique rows across both pages; the duplicate of 900001 on
	// page two is dropped.
	require.Len(t, result.Games, 3)
	assert.Equal(t, 2, result.Pages)

	t.Run("maps a regular result", func(t *testing.T) {
		game := result.Games[0]
		assert.Equal(t, "900001", game.ID)
		assert.Equal(t, league.SourceWTT, game.Source)
		assert.Equal(t, "121558", game.PlayerAID)
		assert.Equal(t, "MA Long", game.PlayerAName)
		assert.Equal(t, "FAN Zhendong", game.PlayerBName)
		assert.Equal(t, scores.SideA, game.Winner)
		assert.Equal(t, stats.StateFinished, game.State)
		assert.Equal(t, 3, game.SetsA)
		assert.Equal(t, 1, game.SetsB)
		assert.False(t, game.Walkover)
		assert.Equal(t, "11:9 8:11 11:7 11:5", game.RawScore)
		assert.Equal(t, "WTT Finals", game.Tournament.ID)
		assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC).Unix(), game.Timestamp)
	})

	t.Run("maps numeric fields and walkovers", func(t *testing.T) {
		game := result.Games[1]
		assert.Equal(t, "900002", game.ID)
		assert.Equal(t, "121558", game.PlayerAID)
		assert.True(t, game.Walkover)
		assert.Equal(t, scores.SideNone, game.Winner)
		assert.Zero(t, game.SetsA)
	})

	t.Run("surfaces parse diagnostics", func(t *testing.T) {
		game := result.Games[2]
		assert.Equal(t, "900003", game.ID)
		assert.Equal(t, scores.SideA, game.Winner)
		assert.Equal(t, 3, game.SetsA)

		require.Len(t, result.Diagnostics, 1)
		diag := result.Diagnostics[0]
		assert.Equal(t, "900003", diag.GameID)
		assert.Equal(t, "11:x", diag.Diagnostic.Token)
		assert.Equal(t, 1, diag.Diagnostic.Position)
		assert.Equal(t, scores.ReasonMalformedToken, diag.Diagnostic.Reason)
	})

	t.Run("collects unique players", func(t *testing.T) {
		require.Len(t, result.Players, 3)
		byID := make(map[string]league.Player)
		for _, p := range result.Players {
			byID[p.ID] = p
		}
		assert.Equal(t, "MA Long", byID["121558"].Name)
		assert.Equal(t, "CHN", byID["121558"].Association)
		assert.Equal(t, "JPN", byID["105649"].Association)
		assert.Equal(t, league.SourceWTT, byID["121404"].Source)
	})
}

func TestFetchYearStopsWhenStagnant(t *testing.T) {
	// The server ignores the offset and always serves the same rows.
	var pages int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		fmt.Fprint(w, `[{"vw_matches___id": "900001", "vw_matches___games_raw": "11:5 11:6 11:7"}]`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1)
	result, err := client.FetchYear(context.Background(), 2025)
	require.NoError(t, err)

	assert.Len(t, result.Games, 1)
	// First page yields the row, then two stagnant pages before giving up.
	assert.Equal(t, 3, pages)
}

func TestFetchYearNestedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[{"vw_matches___id": "900009", "vw_matches___games_raw": "11:1 11:2 11:3"}]]`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 50)
	result, err := client.FetchYear(context.Background(), 2025)
	require.NoError(t, err)

	require.Len(t, result.Games, 1)
	assert.Equal(t, "900009", result.Games[0].ID)
	assert.Equal(t, scores.SideA, result.Games[0].Winner)
}

func TestGetWorldRank(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rankings", r.URL.Path)
		assert.Equal(t, "121558", r.URL.Query().Get("IttfId"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"Result": [{"PlayerName": "MA Long", "Rank": 2, "SubEventName": "MS"}]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 50)
	ranking, err := client.GetWorldRank(context.Background(), "121558")

	require.NoError(t, err)
	assert.Equal(t, "MA Long", ranking.PlayerName)
	assert.Equal(t, 2, ranking.Rank)
}

func TestGetWorldRankNotRanked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Result": []}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 50)
	_, err := client.GetWorldRank(context.Background(), "999999")

	assert.ErrorIs(t, err, ErrNotRanked)
}
