package wtt

import "context"

// WTTClient defines the interface for interacting with the ITTF results
// site and the WTT rankings gateway. This allows for mock
// implementations to be used in tests.
type WTTClient interface {
	FetchYear(ctx context.Context, year int) (*YearResult, error)
	GetWorldRank(ctx context.Context, ittfID string) (*Ranking, error)
}
