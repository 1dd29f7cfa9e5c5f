package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	season   string
	gameday  int
	year     int
	minGames int
	topN     int
	source   string
	walkover bool
	dryRun   bool
)

func init() {
	fetchTTBLCmd.Flags().StringVar(&season, "season", "", "Season to sweep, e.g. 2025-2026 (server default when empty)")
	fetchTTBLCmd.Flags().IntVar(&gameday, "gameday", 0, "Single gameday to sweep (all configured gamedays when 0)")
	fetchTTBLCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Discover and fetch without persisting")
	fetchWTTCmd.Flags().IntVar(&year, "year", 0, "Year to sweep (server default when 0)")
	fetchWTTCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Fetch without persisting")
	leaderboardCmd.Flags().IntVar(&minGames, "min-games", 0, "Minimum games played to qualify (server default when 0)")
	leaderboardCmd.Flags().IntVar(&topN, "top-n", 0, "Number of entries to return (server default when 0)")
	gamesCmd.Flags().StringVar(&source, "source", "", "Filter games by source (ttbl or wtt)")
	runsCmd.Flags().StringVar(&season, "season", "", "Season to list runs for (server default when empty)")
	parseCmd.Flags().BoolVar(&walkover, "walkover", false, "Treat the score as a walkover")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(fetchTTBLCmd)
	rootCmd.AddCommand(fetchWTTCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(matchStatesCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkRankCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(clearStoreCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health", nil)
	},
}

var fetchTTBLCmd = &cobra.Command{
	Use:   "fetch-ttbl",
	Short: "Discover and fetch Bundesliga matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if season != "" {
			params.Set("season", season)
		}
		if gameday > 0 {
			params.Set("gameday", strconv.Itoa(gameday))
		}
		if dryRun {
			params.Set("dry_run", "true")
		}
		return performGetRequest("/fetch-ttbl", params)
	},
}

var fetchWTTCmd = &cobra.Command{
	Use:   "fetch-wtt",
	Short: "Fetch one year of WTT results",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if year > 0 {
			params.Set("year", strconv.Itoa(year))
		}
		if dryRun {
			params.Set("dry_run", "true")
		}
		return performGetRequest("/fetch-wtt", params)
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Advance fetched matches through the processing state machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/process-matches", nil)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild player stats and write a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/refresh-stats", nil)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated player stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/stats", nil)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if minGames > 0 {
			params.Set("min_games", strconv.Itoa(minGames))
		}
		if topN > 0 {
			params.Set("top_n", strconv.Itoa(topN))
		}
		return performGetRequest("/leaderboard", params)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players", nil)
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the matches in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches", nil)
	},
}

var matchStatesCmd = &cobra.Command{
	Use:   "match-states",
	Short: "Show match counts per state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/match-states", nil)
	},
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the games in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if source != "" {
			params.Set("source", source)
		}
		return performGetRequest("/games", params)
	},
}

var runsCmd = &cobra.Command{
	Use:   "gameday-runs",
	Short: "List discovery runs for a season",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if season != "" {
			params.Set("season", season)
		}
		return performGetRequest("/gameday-runs", params)
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse [score]",
	Short: "Parse a raw score string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("raw", args[0])
		if walkover {
			params.Set("walkover", "true")
		}
		return performGetRequest("/parse-score", params)
	},
}

var checkRankCmd = &cobra.Command{
	Use:   "check-rank [player-id]",
	Short: "Look a player up on the world ranking",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("player_id", args[0])
		return performGetRequest("/check-rank", params)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a JSON snapshot of the current stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/export", nil)
	},
}

var clearStoreCmd = &cobra.Command{
	Use:   "clear-store",
	Short: "Wipe all matches, games and players from the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/clear-store", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics", nil)
	},
}

func performGetRequest(endpoint string, params url.Values) error {
	requestURL := host + endpoint
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}
	fmt.Printf("Making request to %s\n", requestURL)

	resp, err := http.Get(requestURL)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
