package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"ttstats/internal/export"
	"ttstats/internal/league"
	"ttstats/internal/pubsub"
	"ttstats/internal/scores"
	"ttstats/internal/stats"
	"ttstats/internal/ttbl"
	"ttstats/internal/wtt"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

// statsResponse bundles the aggregated table with what the aggregation
// dropped, so callers can see both sides of the fold.
type statsResponse struct {
	Players  []*stats.PlayerStats `json:"players"`
	Excluded []stats.ExcludedGame `json:"excluded,omitempty"`
}

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.Store.GameRecords()
		if err != nil {
			http.Error(w, "Failed to load game records", http.StatusInternalServerError)
			log.Error("Failed to load game records from store", "error", err)
			return
		}

		table, excluded := stats.Aggregate(records)

		players := make([]*stats.PlayerStats, 0, len(table))
		for _, player := range table {
			players = append(players, player)
		}
		sort.Slice(players, func(i, j int) bool {
			a, b := players[i], players[j]
			if a.WinRate != b.WinRate {
				return a.WinRate > b.WinRate
			}
			if a.GamesPlayed != b.GamesPlayed {
				return a.GamesPlayed > b.GamesPlayed
			}
			return a.PlayerID < b.PlayerID
		})

		resp := statsResponse{Players: players}
		if r.URL.Query().Get("verbose") == "true" {
			resp.Excluded = excluded
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("Failed to encode player stats to JSON", "error", err)
		}
	}
}

// LeaderboardHandler serves the filtered, ranked leaderboard. Threshold
// parameters fall back to the configured defaults.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minGames := s.Cfg.Stats.MinGames
		topN := s.Cfg.Stats.TopN

		if v := r.URL.Query().Get("min_games"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				http.Error(w, "Invalid 'min_games' parameter", http.StatusBadRequest)
				return
			}
			minGames = parsed
		}
		if v := r.URL.Query().Get("top_n"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				http.Error(w, "Invalid 'top_n' parameter", http.StatusBadRequest)
				return
			}
			topN = parsed
		}

		records, err := s.Store.GameRecords()
		if err != nil {
			http.Error(w, "Failed to load game records", http.StatusInternalServerError)
			log.Error("Failed to load game records from store", "error", err)
			return
		}

		table, _ := stats.Aggregate(records)
		entries, err := stats.Leaderboard(table, minGames, topN)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			log.Warn("Rejected leaderboard parameters", "min_games", minGames, "top_n", topN, "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			log.Error("Failed to encode leaderboard to JSON", "error", err)
		}
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.GetAllMatches()
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(matches); err != nil {
			log.Error("Failed to encode matches to JSON", "error", err)
		}
	}
}

type matchDetailResponse struct {
	Match *league.Match  `json:"match"`
	Games []*league.Game `json:"games"`
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.PathValue("matchID")

		match, err := s.Store.GetMatch(matchID)
		if err != nil {
			http.Error(w, "Match not found", http.StatusNotFound)
			log.Warn("Match lookup failed", "matchID", matchID, "error", err)
			return
		}
		games, err := s.Store.GetGamesForMatch(matchID)
		if err != nil {
			http.Error(w, "Failed to get games", http.StatusInternalServerError)
			log.Error("Failed to get games from store", "matchID", matchID, "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(matchDetailResponse{Match: match, Games: games}); err != nil {
			log.Error("Failed to encode match to JSON", "error", err)
		}
	}
}

func (s *Server) MatchStatesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		states, err := s.Store.MatchStateCounts()
		if err != nil {
			http.Error(w, "Failed to get match states", http.StatusInternalServerError)
			log.Error("Failed to get match state counts from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(states); err != nil {
			log.Error("Failed to encode match states to JSON", "error", err)
		}
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(players); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) ListGamesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source := league.Source(r.URL.Query().Get("source"))

		games, err := s.Store.GetAllGames(source)
		if err != nil {
			http.Error(w, "Failed to get games", http.StatusInternalServerError)
			log.Error("Failed to get games from store", "source", source, "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(games); err != nil {
			log.Error("Failed to encode games to JSON", "error", err)
		}
	}
}

func (s *Server) GamedayRunsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		season := r.URL.Query().Get("season")
		if season == "" {
			season = s.Cfg.TTBL.Season
		}

		runs, err := s.Schedule.RunsBySeason(season)
		if err != nil {
			http.Error(w, "Failed to get gameday runs", http.StatusInternalServerError)
			log.Error("Failed to get gameday runs from store", "season", season, "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(runs); err != nil {
			log.Error("Failed to encode gameday runs to JSON", "error", err)
		}
	}
}

type parseScoreResponse struct {
	Raw         string              `json:"raw"`
	Game        scores.Game         `json:"game"`
	Diagnostics []scores.Diagnostic `json:"diagnostics"`
}

// ParseScoreHandler exposes the score parser directly, mostly for
// debugging upstream data.
func (s *Server) ParseScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("raw")

		var game scores.Game
		var diagnostics []scores.Diagnostic
		if r.URL.Query().Get("walkover") == "true" {
			game, diagnostics = scores.Parse(raw, true)
		} else {
			game, diagnostics = scores.Parse(raw)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(parseScoreResponse{Raw: raw, Game: game, Diagnostics: diagnostics}); err != nil {
			log.Error("Failed to encode parse result to JSON", "error", err)
		}
	}
}

type rankCheckResponse struct {
	PlayerID   string `json:"player_id"`
	Ranked     bool   `json:"ranked"`
	Rank       int    `json:"rank,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	SubEvent   string `json:"sub_event,omitempty"`
}

// CheckRankHandler looks a player up on the rankings gateway and
// persists the current world rank on a hit.
func (s *Server) CheckRankHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("player_id")
		if playerID == "" {
			http.Error(w, "Missing 'player_id' parameter", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)

		ranking, err := s.WTTClient.GetWorldRank(r.Context(), playerID)
		if err != nil {
			if errors.Is(err, wtt.ErrNotRanked) {
				log.Info("Player has no current ranking", "playerID", playerID)
				w.Header().Set("Content-Type", "application/json")
				if err := json.NewEncoder(w).Encode(rankCheckResponse{PlayerID: playerID}); err != nil {
					log.Error("Failed to encode rank check to JSON", "error", err)
				}
				return
			}
			s.Metrics.IncFetchErrors("wtt")
			http.Error(w, "Failed to check rank", http.StatusInternalServerError)
			log.Error("Failed to check world rank", "playerID", playerID, "error", err)
			return
		}

		if !isDryRun {
			if err := s.Store.SetPlayerRank(playerID, ranking.Rank, time.Now().Unix()); err != nil {
				log.Error("Failed to persist world rank", "playerID", playerID, "error", err)
			}
		} else {
			log.Info("[Dry Run] Would persist world rank", "playerID", playerID, "rank", ranking.Rank)
		}

		w.Header().Set("Content-Type", "application/json")
		resp := rankCheckResponse{
			PlayerID:   playerID,
			Ranked:     true,
			Rank:       ranking.Rank,
			PlayerName: ranking.PlayerName,
			SubEvent:   ranking.SubEventName,
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("Failed to encode rank check to JSON", "error", err)
		}
	}
}

// FetchTTBLHandler discovers match IDs on the schedule pages and fetches
// every discovered match the store does not hold yet.
func (s *Server) FetchTTBLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting TTBL fetch...")
		isDryRun := isDryRunFromContext(r)

		season := r.URL.Query().Get("season")
		if season == "" {
			season = s.Cfg.TTBL.Season
		}

		var gamedays []int
		if v := r.URL.Query().Get("gameday"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 1 {
				http.Error(w, "Invalid 'gameday' parameter", http.StatusBadRequest)
				return
			}
			gamedays = []int{parsed}
		} else {
			for gameday := 1; gameday <= s.Cfg.TTBL.Gamedays; gameday++ {
				gamedays = append(gamedays, gameday)
			}
		}

		delay := time.Duration(s.Cfg.TTBL.DelayMS) * time.Millisecond

		// Discovery sweeps the schedule pages, one bookkeeping run each.
		gamedayByID := make(map[string]int)
		for i, gameday := range gamedays {
			if i > 0 {
				if err := ttbl.Throttle(r.Context(), delay); err != nil {
					log.Warn("Discovery interrupted", "error", err)
					break
				}
			}

			var runID string
			if !isDryRun {
				run, err := s.Schedule.StartRun(season, gameday)
				if err != nil {
					log.Error("Failed to start discovery run", "season", season, "gameday", gameday, "error", err)
					continue
				}
				runID = run.ID
			}

			ids, err := s.TTBLClient.DiscoverMatchIDs(r.Context(), season, gameday)
			if err != nil {
				s.Metrics.IncFetchErrors("ttbl")
				log.Error("Error discovering matches", "season", season, "gameday", gameday, "error", err)
				if !isDryRun {
					if failErr := s.Schedule.FailRun(runID, err); failErr != nil {
						log.Error("Failed to mark discovery run failed", "runID", runID, "error", failErr)
					}
				}
				continue
			}
			for _, id := range ids {
				gamedayByID[id] = gameday
			}

			if !isDryRun {
				if err := s.Schedule.RecordMatchIDs(runID, ids); err != nil {
					log.Error("Failed to record match ids", "runID", runID, "error", err)
				}
				if err := s.Schedule.CompleteRun(runID); err != nil {
					log.Error("Failed to complete discovery run", "runID", runID, "error", err)
				}
			}
		}

		var toFetch []string
		if isDryRun {
			for id := range gamedayByID {
				toFetch = append(toFetch, id)
			}
			sort.Strings(toFetch)
		} else {
			pending, err := s.Schedule.PendingMatchIDs(season)
			if err != nil {
				http.Error(w, "Failed to load pending matches", http.StatusInternalServerError)
				log.Error("Failed to load pending match ids", "season", season, "error", err)
				return
			}
			toFetch = pending

			// Pending can reach back to earlier discovery runs, so pull
			// those runs in to recover each match's gameday number.
			runs, err := s.Schedule.RunsBySeason(season)
			if err != nil {
				log.Error("Failed to load discovery runs", "season", season, "error", err)
			}
			for _, run := range runs {
				for _, id := range run.MatchIDs {
					if _, ok := gamedayByID[id]; !ok {
						gamedayByID[id] = run.Gameday
					}
				}
			}
		}

		log.Info("Fetching matches", "season", season, "count", len(toFetch))

		var details []*ttbl.MatchDetail
		var mu sync.Mutex
		var wg sync.WaitGroup
		for _, id := range toFetch {
			wg.Add(1)
			go func(matchID string) {
				defer wg.Done()
				detail, err := s.TTBLClient.GetMatch(r.Context(), matchID)
				if err != nil {
					s.Metrics.IncFetchErrors("ttbl")
					log.Error("Error fetching match", "matchID", matchID, "error", err)
					return
				}
				detail.Match.Season = season
				detail.Match.Gameday = gamedayByID[matchID]
				s.Metrics.IncMatchesFetched("ttbl")

				mu.Lock()
				details = append(details, detail)
				mu.Unlock()
			}(id)
		}
		wg.Wait()

		if len(details) > 0 {
			if !isDryRun {
				if err := s.upsertMatchDetails(details); err != nil {
					http.Error(w, "Failed to save matches", http.StatusInternalServerError)
					log.Error("Failed to save fetched matches", "error", err)
					return
				}
			} else {
				log.Info("[Dry Run] Would have upserted matches", "count", len(details))
			}
		}

		s.Counters.Increment("ttbl_fetches")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "TTBL fetch completed.")
		log.Info("TTBL fetch finished.", "season", season, "discovered", len(gamedayByID), "fetched", len(details))
	}
}

// upsertMatchDetails persists fetched matches in dependency order:
// matches before games because of the foreign key, players in between
// so both can reference them.
func (s *Server) upsertMatchDetails(details []*ttbl.MatchDetail) error {
	matches := make([]*league.Match, 0, len(details))
	var players []league.Player
	var games []*league.Game
	for _, detail := range details {
		matches = append(matches, detail.Match)
		players = append(players, detail.Players...)
		games = append(games, detail.Games...)
	}

	log.Info("Upserting matches", "count", len(matches))
	if err := s.Store.UpsertMatches(matches); err != nil {
		return fmt.Errorf("upserting matches: %w", err)
	}
	if err := s.Store.UpsertPlayers(players); err != nil {
		return fmt.Errorf("upserting players: %w", err)
	}
	if err := s.Store.UpsertGames(games); err != nil {
		return fmt.Errorf("upserting games: %w", err)
	}
	s.Metrics.AddGamesIngested("ttbl", len(games))
	return nil
}

// FetchWTTHandler sweeps one year of the results list and ingests the
// games the store has not seen yet.
func (s *Server) FetchWTTHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting WTT fetch...")
		isDryRun := isDryRunFromContext(r)

		year := s.Cfg.WTT.Year
		if v := r.URL.Query().Get("year"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 1 {
				http.Error(w, "Invalid 'year' parameter", http.StatusBadRequest)
				return
			}
			year = parsed
		}

		result, err := s.WTTClient.FetchYear(r.Context(), year)
		if err != nil {
			s.Metrics.IncFetchErrors("wtt")
			http.Error(w, "Failed to fetch WTT results", http.StatusInternalServerError)
			log.Error("Error fetching WTT results", "year", year, "error", err)
			return
		}

		for _, d := range result.Diagnostics {
			s.Metrics.IncParseDiagnostics(string(d.Diagnostic.Reason))
		}
		if len(result.Diagnostics) > 0 {
			log.Warn("Score parse diagnostics during WTT fetch", "year", year, "count", len(result.Diagnostics))
		}

		known, err := s.Store.KnownGameIDs(league.SourceWTT)
		if err != nil {
			http.Error(w, "Failed to load known games", http.StatusInternalServerError)
			log.Error("Failed to load known game ids", "error", err)
			return
		}
		newGames := make([]*league.Game, 0, len(result.Games))
		for _, game := range result.Games {
			if _, ok := known[game.ID]; ok {
				continue
			}
			newGames = append(newGames, game)
		}

		if !isDryRun {
			if err := s.Store.UpsertPlayers(result.Players); err != nil {
				http.Error(w, "Failed to save players", http.StatusInternalServerError)
				log.Error("Failed to save WTT players", "error", err)
				return
			}
			if err := s.Store.UpsertGames(newGames); err != nil {
				http.Error(w, "Failed to save games", http.StatusInternalServerError)
				log.Error("Failed to save WTT games", "error", err)
				return
			}
			s.Metrics.IncMatchesFetched("wtt")
			s.Metrics.AddGamesIngested("wtt", len(newGames))
		} else {
			log.Info("[Dry Run] Would have upserted WTT games", "count", len(newGames))
		}

		s.Counters.Increment("wtt_fetches")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "WTT fetch completed.")
		log.Info("WTT fetch finished.", "year", year, "pages", result.Pages, "games", len(result.Games), "new_games", len(newGames), "diagnostics", len(result.Diagnostics))
	}
}

func (s *Server) ProcessMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)

		s.Processor.ProcessMatches(isDryRun)
		s.Counters.Increment("processor_runs")

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Match processing completed.")
	}
}

// writeSnapshot builds a snapshot from the current store contents and
// writes it under a fresh stamp.
func (s *Server) writeSnapshot(dryRun bool) (string, error) {
	snapshot, err := export.Build(s.Store, s.Cfg.TTBL.Season, s.Cfg.Stats.MinGames, s.Cfg.Stats.TopN)
	if err != nil {
		return "", err
	}

	excludedByReason := make(map[string]int)
	for _, excluded := range snapshot.ExcludedGames {
		excludedByReason[string(excluded.Reason)]++
	}
	for reason, count := range excludedByReason {
		s.Metrics.AddGamesExcluded(reason, count)
	}

	if dryRun {
		log.Info("[Dry Run] Would have written snapshot", "players", len(snapshot.PlayerStats), "games", len(snapshot.Games))
		return "dry-run", nil
	}

	stamp := export.Stamp(time.Now())
	if err := s.Exporter.Write(stamp, snapshot); err != nil {
		return "", err
	}
	s.Metrics.IncSnapshotsWritten()
	s.Counters.Increment("snapshots_written")
	log.Info("Snapshot written", "stamp", stamp, "players", len(snapshot.PlayerStats), "games", len(snapshot.Games))
	return stamp, nil
}

func (s *Server) RefreshStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Refreshing player stats...")
		isDryRun := isDryRunFromContext(r)

		stamp, err := s.writeSnapshot(isDryRun)
		if err != nil {
			http.Error(w, "Failed to refresh stats", http.StatusInternalServerError)
			log.Error("Failed to refresh stats", "error", err)
			return
		}
		s.Metrics.IncStatsRefreshes()
		s.Counters.Increment("stats_refreshes")

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Stats refreshed, snapshot %s written.\n", stamp)
		log.Info("Stats refresh finished.", "snapshot", stamp)
	}
}

func (s *Server) ExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)

		stamp, err := s.writeSnapshot(isDryRun)
		if err != nil {
			http.Error(w, "Failed to write snapshot", http.StatusInternalServerError)
			log.Error("Failed to write snapshot", "error", err)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Snapshot %s written.\n", stamp)
	}
}

// PubSubPushHandler receives push deliveries from the events topic and
// dispatches on the event type.
func (s *Server) PubSubPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received pubsub push", "body", string(bodyBytes))
		// Define a small struct to decode the incoming JSON's `data` field
		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}

		// Parse the outer JSON to get `data`
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		// Decode base64 to raw MessagePack bytes
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)

		var event pubsub.Event
		if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
			log.Error("Failed to decode event payload", "error", err)
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}

		switch event.Type {
		case pubsub.EventTypePlayerStatsUpdate:
			log.Info("Processing player stats update event", "matchID", event.MatchID, "season", event.Season)
			if _, err := s.writeSnapshot(isDryRun); err != nil {
				http.Error(w, "Failed to refresh stats", http.StatusInternalServerError)
				log.Error("Failed to refresh stats", "error", err)
				return
			}
			s.Metrics.IncStatsRefreshes()
			s.Counters.Increment("stats_refreshes")

		case pubsub.EventTypeLeaderboardPost:
			log.Info("Processing leaderboard post event", "season", event.Season)
			records, err := s.Store.GameRecords()
			if err != nil {
				http.Error(w, "Failed to load game records", http.StatusInternalServerError)
				log.Error("Failed to load game records from store", "error", err)
				return
			}
			table, _ := stats.Aggregate(records)
			entries, err := stats.Leaderboard(table, s.Cfg.Stats.MinGames, s.Cfg.Stats.TopN)
			if err != nil {
				http.Error(w, "Failed to build leaderboard", http.StatusInternalServerError)
				log.Error("Failed to build leaderboard", "error", err)
				return
			}
			if err := s.Notifier.SendLeaderboard(entries, s.Cfg.Stats.MinGames, isDryRun); err != nil {
				http.Error(w, "Failed to post leaderboard", http.StatusInternalServerError)
				log.Error("Failed to post leaderboard", "error", err)
				return
			}
			s.Counters.Increment("leaderboards_posted")

		default:
			// Ack unknown events so the subscription does not redeliver
			// them forever.
			log.Warn("Ignoring event of unknown type", "type", event.Type)
		}

		w.Write([]byte("OK"))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// respondCommand unwraps a formatted response and writes it, mapping
// formatter failures to plain HTTP errors.
func respondCommand(w http.ResponseWriter, msg any, err error) {
	if err != nil {
		http.Error(w, "Failed to format response", http.StatusInternalServerError)
		log.Error("Failed to format slash command response", "error", err)
		return
	}
	slackMsg, ok := msg.(slack.Message)
	if !ok {
		http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
		log.Error("Failed to cast message to slack.Message")
		return
	}
	respondWithSlackMsg(w, slackMsg)
}

// SlackCommandHandler serves every slash command from a single signed
// endpoint, dispatching on the command name.
func (s *Server) SlackCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}

		command := r.FormValue("command")
		text := r.FormValue("text")
		log.Info("Received slash command", "command", command, "text", text)

		switch command {
		case "/tt-leaderboard":
			records, err := s.Store.GameRecords()
			if err != nil {
				http.Error(w, "Failed to load game records", http.StatusInternalServerError)
				log.Error("Failed to load game records from store", "error", err)
				return
			}
			table, _ := stats.Aggregate(records)
			entries, err := stats.Leaderboard(table, s.Cfg.Stats.MinGames, s.Cfg.Stats.TopN)
			if err != nil {
				http.Error(w, "Failed to build leaderboard", http.StatusInternalServerError)
				log.Error("Failed to build leaderboard", "error", err)
				return
			}
			msg, err := s.Notifier.FormatLeaderboardResponse(entries, s.Cfg.Stats.MinGames)
			respondCommand(w, msg, err)

		case "/tt-player":
			if text == "" {
				http.Error(w, "Player name is required.", http.StatusBadRequest)
				return
			}
			player, err := s.Store.GetPlayerByName(text)
			if err != nil || player == nil {
				log.Warn("Could not find player", "player", text, "error", err)
				msg, err := s.Notifier.FormatPlayerNotFoundResponse(text)
				respondCommand(w, msg, err)
				return
			}
			records, err := s.Store.GameRecords()
			if err != nil {
				http.Error(w, "Failed to load game records", http.StatusInternalServerError)
				log.Error("Failed to load game records from store", "error", err)
				return
			}
			table, _ := stats.Aggregate(records)
			stat, ok := table[player.ID]
			if !ok {
				log.Warn("Player has no aggregated games", "player", player.Name)
				msg, err := s.Notifier.FormatPlayerNotFoundResponse(text)
				respondCommand(w, msg, err)
				return
			}
			msg, err := s.Notifier.FormatPlayerStatsResponse(stat, text)
			respondCommand(w, msg, err)

		case "/tt-score":
			if text == "" {
				http.Error(w, "Score text is required.", http.StatusBadRequest)
				return
			}
			game, diagnostics := scores.Parse(text)
			msg, err := s.Notifier.FormatParsedScoreResponse(text, game, diagnostics)
			respondCommand(w, msg, err)

		case "/tt-metrics":
			counters, err := s.Counters.GetAll()
			if err != nil {
				http.Error(w, "Failed to load metrics", http.StatusInternalServerError)
				log.Error("Failed to load metrics from store", "error", err)
				return
			}
			msg, err := s.Notifier.FormatMetricsResponse(counters)
			respondCommand(w, msg, err)

		default:
			log.Warn("Unknown slash command", "command", command)
			http.Error(w, "Unknown command", http.StatusBadRequest)
		}
	}
}
