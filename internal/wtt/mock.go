package wtt

import (
	"context"
	"sync"
)

// MockClient is a mock implementation of the WTTClient interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	FetchYearFunc    func(ctx context.Context, year int) (*YearResult, error)
	GetWorldRankFunc func(ctx context.Context, ittfID string) (*Ranking, error)

	// Call records
	FetchYearCalls    []int
	GetWorldRankCalls []string
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchYearCalls = nil
	m.GetWorldRankCalls = nil
}

func (m *MockClient) FetchYear(ctx context.Context, year int) (*YearResult, error) {
	m.mu.Lock()
	m.FetchYearCalls = append(m.FetchYearCalls, year)
	m.mu.Unlock()
	if m.FetchYearFunc != nil {
		return m.FetchYearFunc(ctx, year)
	}
	return &YearResult{}, nil
}

func (m *MockClient) GetWorldRank(ctx context.Context, ittfID string) (*Ranking, error) {
	m.mu.Lock()
	m.GetWorldRankCalls = append(m.GetWorldRankCalls, ittfID)
	m.mu.Unlock()
	if m.GetWorldRankFunc != nil {
		return m.GetWorldRankFunc(ctx, ittfID)
	}
	return nil, ErrNotRanked
}

// Ensure MockClient implements the interface.
var _ WTTClient = (*MockClient)(nil)
