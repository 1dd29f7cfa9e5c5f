package schedule

// ScheduleStore tracks gameday discovery runs and the match IDs they
// turned up, so fetches can skip what the league store already holds.
type ScheduleStore interface {
	StartRun(season string, gameday int) (*DiscoveryRun, error)
	RecordMatchIDs(runID string, matchIDs []string) error
	CompleteRun(runID string) error
	FailRun(runID string, cause error) error
	LatestRun(season string, gameday int) (*DiscoveryRun, error)
	RunsBySeason(season string) ([]*DiscoveryRun, error)
	PendingMatchIDs(season string) ([]string, error)
}
