package league

import (
	"sync"

	"ttstats/internal/stats"
)

// MockStore is a mock implementation of the LeagueStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertMatchFunc             func(match *Match) error
	UpsertMatchesFunc           func(matches []*Match) error
	UpsertGamesFunc             func(games []*Game) error
	UpsertPlayersFunc           func(players []Player) error
	GetMatchFunc                func(matchID string) (*Match, error)
	GetAllMatchesFunc           func() ([]*Match, error)
	GetMatchesForProcessingFunc func() ([]*Match, error)
	UpdateProcessingStatusFunc  func(matchID string, status ProcessingStatus) error
	GetGamesForMatchFunc        func(matchID string) ([]*Game, error)
	GetAllGamesFunc             func(source Source) ([]*Game, error)
	KnownGameIDsFunc            func(source Source) (map[string]struct{}, error)
	GameRecordsFunc             func() ([]stats.GameRecord, error)
	MatchStateCountsFunc        func() (map[MatchState]int, error)
	GetAllPlayersFunc           func() ([]Player, error)
	GetPlayerByNameFunc         func(name string) (*Player, error)
	SetPlayerRankFunc           func(playerID string, rank int, checkedAt int64) error
	SummaryFunc                 func() (Summary, error)
	ClearFunc                   func()

	// Call records
	UpsertMatchCalls            []*Match
	UpsertMatchesCalls          [][]*Match
	UpsertGamesCalls            [][]*Game
	UpsertPlayersCalls          [][]Player
	UpdateProcessingStatusCalls []struct {
		MatchID string
		Status  ProcessingStatus
	}
	SetPlayerRankCalls []struct {
		PlayerID string
		Rank     int
	}
	ClearCalls int
}

var _ LeagueStore = (*MockStore)(nil)

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertMatchCalls = nil
	m.UpsertMatchesCalls = nil
	m.UpsertGamesCalls = nil
	m.UpsertPlayersCalls = nil
	m.UpdateProcessingStatusCalls = nil
	m.SetPlayerRankCalls = nil
	m.ClearCalls = 0
}

func (m *MockStore) UpsertMatch(match *Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertMatchCalls = append(m.UpsertMatchCalls, match)
	if m.UpsertMatchFunc != nil {
		return m.UpsertMatchFunc(match)
	}
	return nil
}

func (m *MockStore) UpsertMatches(matches []*Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertMatchesCalls = append(m.UpsertMatchesCalls, matches)
	if m.UpsertMatchesFunc != nil {
		return m.UpsertMatchesFunc(matches)
	}
	return nil
}

func (m *MockStore) UpsertGames(games []*Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertGamesCalls = append(m.UpsertGamesCalls, games)
	if m.UpsertGamesFunc != nil {
		return m.UpsertGamesFunc(games)
	}
	return nil
}

func (m *MockStore) UpsertPlayers(players []Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) GetMatch(matchID string) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return nil, nil
}

func (m *MockStore) GetAllMatches() ([]*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllMatchesFunc != nil {
		return m.GetAllMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) GetMatchesForProcessing() ([]*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchesForProcessingFunc != nil {
		return m.GetMatchesForProcessingFunc()
	}
	return nil, nil
}

func (m *MockStore) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateProcessingStatusCalls = append(m.UpdateProcessingStatusCalls, struct {
		MatchID string
		Status  ProcessingStatus
	}{matchID, status})
	if m.UpdateProcessingStatusFunc != nil {
		return m.UpdateProcessingStatusFunc(matchID, status)
	}
	return nil
}

func (m *MockStore) GetGamesForMatch(matchID string) ([]*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetGamesForMatchFunc != nil {
		return m.GetGamesForMatchFunc(matchID)
	}
	return nil, nil
}

func (m *MockStore) GetAllGames(source Source) ([]*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllGamesFunc != nil {
		return m.GetAllGamesFunc(source)
	}
	return nil, nil
}

func (m *MockStore) KnownGameIDs(source Source) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.KnownGameIDsFunc != nil {
		return m.KnownGameIDsFunc(source)
	}
	return map[string]struct{}{}, nil
}

func (m *MockStore) GameRecords() ([]stats.GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GameRecordsFunc != nil {
		return m.GameRecordsFunc()
	}
	return nil, nil
}

func (m *MockStore) MatchStateCounts() (map[MatchState]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MatchStateCountsFunc != nil {
		return m.MatchStateCountsFunc()
	}
	return map[MatchState]int{}, nil
}

func (m *MockStore) GetAllPlayers() ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPlayerByName(name string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerByNameFunc != nil {
		return m.GetPlayerByNameFunc(name)
	}
	return nil, nil
}

func (m *MockStore) SetPlayerRank(playerID string, rank int, checkedAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetPlayerRankCalls = append(m.SetPlayerRankCalls, struct {
		PlayerID string
		Rank     int
	}{playerID, rank})
	if m.SetPlayerRankFunc != nil {
		return m.SetPlayerRankFunc(playerID, rank, checkedAt)
	}
	return nil
}

func (m *MockStore) Summary() (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SummaryFunc != nil {
		return m.SummaryFunc()
	}
	return Summary{}, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
