package schedule

import "sync"

// MockStore is a mock implementation of the ScheduleStore interface for testing.
type MockStore struct {
	mu sync.Mutex

	StartRunFunc        func(season string, gameday int) (*DiscoveryRun, error)
	RecordMatchIDsFunc  func(runID string, matchIDs []string) error
	CompleteRunFunc     func(runID string) error
	FailRunFunc         func(runID string, cause error) error
	LatestRunFunc       func(season string, gameday int) (*DiscoveryRun, error)
	RunsBySeasonFunc    func(season string) ([]*DiscoveryRun, error)
	PendingMatchIDsFunc func(season string) ([]string, error)

	StartRunCalls []struct {
		Season  string
		Gameday int
	}
	RecordMatchIDsCalls []struct {
		RunID    string
		MatchIDs []string
	}
	CompleteRunCalls []string
	FailRunCalls     []struct {
		RunID string
		Cause error
	}
}

// NewMock creates a new mock schedule store.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) StartRun(season string, gameday int) (*DiscoveryRun, error) {
	m.mu.Lock()
	m.StartRunCalls = append(m.StartRunCalls, struct {
		Season  string
		Gameday int
	}{season, gameday})
	m.mu.Unlock()
	if m.StartRunFunc != nil {
		return m.StartRunFunc(season, gameday)
	}
	return &DiscoveryRun{ID: "mock-run", Season: season, Gameday: gameday, Status: RunStatusRunning}, nil
}

func (m *MockStore) RecordMatchIDs(runID string, matchIDs []string) error {
	m.mu.Lock()
	m.RecordMatchIDsCalls = append(m.RecordMatchIDsCalls, struct {
		RunID    string
		MatchIDs []string
	}{runID, matchIDs})
	m.mu.Unlock()
	if m.RecordMatchIDsFunc != nil {
		return m.RecordMatchIDsFunc(runID, matchIDs)
	}
	return nil
}

func (m *MockStore) CompleteRun(runID string) error {
	m.mu.Lock()
	m.CompleteRunCalls = append(m.CompleteRunCalls, runID)
	m.mu.Unlock()
	if m.CompleteRunFunc != nil {
		return m.CompleteRunFunc(runID)
	}
	return nil
}

func (m *MockStore) FailRun(runID string, cause error) error {
	m.mu.Lock()
	m.FailRunCalls = append(m.FailRunCalls, struct {
		RunID string
		Cause error
	}{runID, cause})
	m.mu.Unlock()
	if m.FailRunFunc != nil {
		return m.FailRunFunc(runID, cause)
	}
	return nil
}

func (m *MockStore) LatestRun(season string, gameday int) (*DiscoveryRun, error) {
	if m.LatestRunFunc != nil {
		return m.LatestRunFunc(season, gameday)
	}
	return &DiscoveryRun{ID: "mock-run", Season: season, Gameday: gameday, Status: RunStatusCompleted}, nil
}

func (m *MockStore) RunsBySeason(season string) ([]*DiscoveryRun, error) {
	if m.RunsBySeasonFunc != nil {
		return m.RunsBySeasonFunc(season)
	}
	return nil, nil
}

func (m *MockStore) PendingMatchIDs(season string) ([]string, error) {
	if m.PendingMatchIDsFunc != nil {
		return m.PendingMatchIDsFunc(season)
	}
	return nil, nil
}

// Reset clears all recorded calls.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartRunCalls = nil
	m.RecordMatchIDsCalls = nil
	m.CompleteRunCalls = nil
	m.FailRunCalls = nil
}

// Ensure MockStore implements the interface.
var _ ScheduleStore = (*MockStore)(nil)
