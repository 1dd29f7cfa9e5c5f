package ttbl

import (
	"context"
	"sync"
)

// MockClient is a mock implementation of the TTBLClient interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	DiscoverMatchIDsFunc func(ctx context.Context, season string, gameday int) ([]string, error)
	GetMatchFunc         func(ctx context.Context, matchID string) (*MatchDetail, error)

	// Call records
	DiscoverMatchIDsCalls []struct {
		Season  string
		Gameday int
	}
	GetMatchCalls []string
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DiscoverMatchIDsCalls = nil
	m.GetMatchCalls = nil
}

func (m *MockClient) DiscoverMatchIDs(ctx context.Context, season string, gameday int) ([]string, error) {
	m.mu.Lock()
	m.DiscoverMatchIDsCalls = append(m.DiscoverMatchIDsCalls, struct {
		Season  string
		Gameday int
	}{season, gameday})
	m.mu.Unlock()
	if m.DiscoverMatchIDsFunc != nil {
		return m.DiscoverMatchIDsFunc(ctx, season, gameday)
	}
	return nil, nil
}

func (m *MockClient) GetMatch(ctx context.Context, matchID string) (*MatchDetail, error) {
	m.mu.Lock()
	m.GetMatchCalls = append(m.GetMatchCalls, matchID)
	m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(ctx, matchID)
	}
	return &MatchDetail{}, nil
}

// Ensure MockClient implements the interface.
var _ TTBLClient = (*MockClient)(nil)
