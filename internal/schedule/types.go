package schedule

import (
	"database/sql"
	"sync"
)

// store handles database operations for gameday discovery bookkeeping.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// RunStatus tracks a discovery run's lifecycle.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
)

// DiscoveryRun records one pass over a gameday schedule page: when it
// started, how it ended, and which match IDs it found.
type DiscoveryRun struct {
	ID          string    `json:"id"`
	Season      string    `json:"season"`
	Gameday     int       `json:"gameday"`
	StartedAt   int64     `json:"started_at"`
	CompletedAt *int64    `json:"completed_at,omitempty"`
	Status      RunStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	MatchIDs    []string  `json:"match_ids"`
}
