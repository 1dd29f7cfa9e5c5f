package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ttstats/internal/league"
	"ttstats/internal/stats"
)

const stampLayout = "20060102T150405Z"

// Stamp formats a snapshot directory name for the given time.
func Stamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

// Writer persists snapshots and a manifest with pruning.
type Writer struct {
	basePath string
	keep     int
}

// NewWriter constructs a writer rooted at basePath that keeps the most
// recent snapshots.
func NewWriter(basePath string, keep int) *Writer {
	if keep <= 0 {
		keep = 10
	}
	return &Writer{
		basePath: basePath,
		keep:     keep,
	}
}

// BasePath exposes the writer root path (primarily for testing).
func (w *Writer) BasePath() string {
	if w == nil {
		return ""
	}
	return w.basePath
}

// Write persists the snapshot under basePath/stamp and prunes old
// snapshot directories. Each file is written atomically so a crashed
// run never leaves a half-written JSON behind.
func (w *Writer) Write(stamp string, snapshot Snapshot) error {
	if w == nil {
		return fmt.Errorf("snapshot writer not configured")
	}
	if stamp == "" {
		return fmt.Errorf("stamp required")
	}

	target := filepath.Join(w.basePath, stamp)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return err
	}

	sort.Slice(snapshot.PlayerStats, func(i, j int) bool {
		a, b := snapshot.PlayerStats[i], snapshot.PlayerStats[j]
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed > b.GamesPlayed
		}
		return a.PlayerID < b.PlayerID
	})
	sort.Slice(snapshot.Players, func(i, j int) bool {
		return snapshot.Players[i].ID < snapshot.Players[j].ID
	})
	sort.Slice(snapshot.ExcludedGames, func(i, j int) bool {
		return snapshot.ExcludedGames[i].GameID < snapshot.ExcludedGames[j].GameID
	})

	if snapshot.Metadata.GeneratedAt == "" {
		snapshot.Metadata.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if snapshot.Metadata.Version == "" {
		snapshot.Metadata.Version = SnapshotVersion
	}

	files := []struct {
		name    string
		payload any
	}{
		{"player_stats.json", snapshot.PlayerStats},
		{"top_players.json", snapshot.TopPlayers},
		{"matches_summary.json", snapshot.Matches},
		{"match_states.json", snapshot.MatchStates},
		{"players.json", snapshot.Players},
		{"games.json", snapshot.Games},
		{"excluded_games.json", snapshot.ExcludedGames},
		{"metadata.json", snapshot.Metadata},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(target, f.name), f.payload); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
	}

	return w.updateManifest(stamp)
}

func writeJSON(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (w *Writer) updateManifest(stamp string) error {
	manifestPath := filepath.Join(w.basePath, "manifest.json")
	m, _ := readManifest(manifestPath, w.keep)

	stamps, err := w.listSnapshots()
	if err != nil {
		return err
	}
	if !containsStamp(stamps, stamp) {
		stamps = append(stamps, stamp)
		sort.Strings(stamps)
	}
	kept, err := w.prune(stamps)
	if err != nil {
		return err
	}

	m.Keep = w.keep
	m.Snapshots = kept
	if len(kept) > 0 {
		m.Latest = kept[len(kept)-1]
	}

	return writeManifest(w.basePath, m)
}

func containsStamp(stamps []string, stamp string) bool {
	for _, s := range stamps {
		if s == stamp {
			return true
		}
	}
	return false
}

// listSnapshots returns the snapshot directory names under basePath,
// sorted ascending. The stamp layout sorts chronologically.
func (w *Writer) listSnapshots() ([]string, error) {
	entries, err := os.ReadDir(w.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	var stamps []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse(stampLayout, e.Name()); err != nil {
			continue
		}
		stamps = append(stamps, e.Name())
	}
	sort.Strings(stamps)
	return stamps, nil
}

func (w *Writer) prune(stamps []string) ([]string, error) {
	if len(stamps) <= w.keep {
		return stamps, nil
	}
	drop := stamps[:len(stamps)-w.keep]
	for _, s := range drop {
		if err := os.RemoveAll(filepath.Join(w.basePath, s)); err != nil {
			return nil, err
		}
	}
	return stamps[len(stamps)-w.keep:], nil
}

// SummarizeMatches projects matches into the compact form written to
// matches_summary.json.
func SummarizeMatches(matches []*league.Match) []MatchSummary {
	summaries := make([]MatchSummary, 0, len(matches))
	for _, m := range matches {
		summaries = append(summaries, MatchSummary{
			ID:        m.ID,
			Source:    m.Source,
			Season:    m.Season,
			Gameday:   m.Gameday,
			HomeTeam:  m.HomeTeam.Name,
			AwayTeam:  m.AwayTeam.Name,
			Result:    fmt.Sprintf("%d:%d", m.HomeGameWins, m.AwayGameWins),
			State:     m.State,
			StartTime: m.StartTime,
		})
	}
	return summaries
}

// Build assembles a Snapshot from the current store contents.
func Build(store league.LeagueStore, season string, minGames, topN int) (Snapshot, error) {
	records, err := store.GameRecords()
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading game records: %w", err)
	}
	table, excluded := stats.Aggregate(records)

	top, err := stats.Leaderboard(table, minGames, topN)
	if err != nil {
		return Snapshot{}, fmt.Errorf("building leaderboard: %w", err)
	}

	matches, err := store.GetAllMatches()
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading matches: %w", err)
	}
	states, err := store.MatchStateCounts()
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading match states: %w", err)
	}
	players, err := store.GetAllPlayers()
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading players: %w", err)
	}
	games, err := store.GetAllGames("")
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading games: %w", err)
	}
	summary, err := store.Summary()
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading store summary: %w", err)
	}

	playerStats := make([]*stats.PlayerStats, 0, len(table))
	for _, st := range table {
		playerStats = append(playerStats, st)
	}

	seen := make(map[league.Source]struct{})
	var sources []string
	for _, g := range games {
		if _, ok := seen[g.Source]; ok {
			continue
		}
		seen[g.Source] = struct{}{}
		sources = append(sources, string(g.Source))
	}
	sort.Strings(sources)

	return Snapshot{
		PlayerStats:   playerStats,
		TopPlayers:    top,
		Matches:       SummarizeMatches(matches),
		MatchStates:   states,
		Players:       players,
		Games:         games,
		ExcludedGames: excluded,
		Metadata: Metadata{
			GeneratedAt:         time.Now().UTC().Format(time.RFC3339),
			Season:              season,
			TotalMatches:        summary.Matches,
			TotalGamedays:       summary.Gamedays,
			UniquePlayers:       summary.Players,
			PlayersWithStats:    len(table),
			TotalGamesProcessed: len(records) - len(excluded),
			ExcludedGames:       len(excluded),
			Sources:             sources,
			Version:             SnapshotVersion,
		},
	}, nil
}
