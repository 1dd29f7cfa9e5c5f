package ttbl

import "context"

// TTBLClient defines the interface for interacting with the TTBL website
// and its internal match API. This allows for mock implementations to be
// used in tests.
type TTBLClient interface {
	DiscoverMatchIDs(ctx context.Context, season string, gameday int) ([]string, error)
	GetMatch(ctx context.Context, matchID string) (*MatchDetail, error)
}
