package notifier

import (
	"sync"

	"ttstats/internal/league"
	"ttstats/internal/scores"
	"ttstats/internal/stats"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for send functions
	SendResultNotificationFunc func(match *league.Match, games []*league.Game, dryRun bool) error
	SendLeaderboardFunc        func(entries []stats.LeaderboardEntry, minGames int, dryRun bool) error

	// Spies for format functions
	FormatLeaderboardResponseFunc    func(entries []stats.LeaderboardEntry, minGames int) (any, error)
	FormatPlayerStatsResponseFunc    func(stat *stats.PlayerStats, query string) (any, error)
	FormatPlayerNotFoundResponseFunc func(query string) (any, error)
	FormatParsedScoreResponseFunc    func(raw string, game scores.Game, diagnostics []scores.Diagnostic) (any, error)
	FormatMetricsResponseFunc        func(counters map[string]int) (any, error)

	// Call records
	SendResultNotificationCalls []struct {
		Match  *league.Match
		Games  []*league.Game
		DryRun bool
	}
	SendLeaderboardCalls []struct {
		Entries  []stats.LeaderboardEntry
		MinGames int
		DryRun   bool
	}

	// Call records for format functions
	LastLeaderboardResponse    any
	LastPlayerStatsResponse    any
	LastPlayerNotFoundResponse any
}

// Ensure Mock implements the interface.
var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
	m.SendLeaderboardCalls = nil
	m.LastLeaderboardResponse = nil
	m.LastPlayerStatsResponse = nil
	m.LastPlayerNotFoundResponse = nil
}

func (m *Mock) SendResultNotification(match *league.Match, games []*league.Game, dryRun bool) error {
	m.mu.Lock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, struct {
		Match  *league.Match
		Games  []*league.Game
		DryRun bool
	}{match, games, dryRun})
	m.mu.Unlock()
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(match, games, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(entries []stats.LeaderboardEntry, minGames int, dryRun bool) error {
	m.mu.Lock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, struct {
		Entries  []stats.LeaderboardEntry
		MinGames int
		DryRun   bool
	}{entries, minGames, dryRun})
	m.mu.Unlock()
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(entries, minGames, dryRun)
	}
	return nil
}

func (m *Mock) FormatLeaderboardResponse(entries []stats.LeaderboardEntry, minGames int) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(entries, minGames)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_leaderboard", nil
}

func (m *Mock) FormatPlayerStatsResponse(stat *stats.PlayerStats, query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerStatsResponseFunc != nil {
		resp, err := m.FormatPlayerStatsResponseFunc(stat, query)
		m.LastPlayerStatsResponse = resp
		return resp, err
	}
	return "formatted_player_stats", nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerNotFoundResponseFunc != nil {
		resp, err := m.FormatPlayerNotFoundResponseFunc(query)
		m.LastPlayerNotFoundResponse = resp
		return resp, err
	}
	return "formatted_player_not_found", nil
}

func (m *Mock) FormatParsedScoreResponse(raw string, game scores.Game, diagnostics []scores.Diagnostic) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatParsedScoreResponseFunc != nil {
		return m.FormatParsedScoreResponseFunc(raw, game, diagnostics)
	}
	return "formatted_parsed_score", nil
}

func (m *Mock) FormatMetricsResponse(counters map[string]int) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatMetricsResponseFunc != nil {
		return m.FormatMetricsResponseFunc(counters)
	}
	return "formatted_metrics", nil
}
