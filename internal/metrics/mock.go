package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	matchesFetched      map[string]int
	gamesIngested       map[string]int
	parseDiagnostics    map[string]int
	gamesExcluded       map[string]int
	transitions         map[string]int
	notificationsSent   map[string]int
	notificationsFailed map[string]int
	fetchErrors         map[string]int
	statsRefreshes      int
	snapshotsWritten    int
	processingDurations []float64
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		matchesFetched:      make(map[string]int),
		gamesIngested:       make(map[string]int),
		parseDiagnostics:    make(map[string]int),
		gamesExcluded:       make(map[string]int),
		transitions:         make(map[string]int),
		notificationsSent:   make(map[string]int),
		notificationsFailed: make(map[string]int),
		fetchErrors:         make(map[string]int),
	}
}

var _ Metrics = (*Mock)(nil)

func (m *Mock) IncMatchesFetched(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesFetched[source]++
}

func (m *Mock) AddGamesIngested(source string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesIngested[source] += count
}

func (m *Mock) IncParseDiagnostics(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parseDiagnostics[reason]++
}

func (m *Mock) AddGamesExcluded(reason string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesExcluded[reason] += count
}

func (m *Mock) IncProcessorTransitions(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[status]++
}

func (m *Mock) IncNotificationsSent(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsSent[kind]++
}

func (m *Mock) IncNotificationsFailed(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsFailed[kind]++
}

func (m *Mock) IncFetchErrors(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErrors[source]++
}

func (m *Mock) IncStatsRefreshes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsRefreshes++
}

func (m *Mock) IncSnapshotsWritten() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotsWritten++
}

func (m *Mock) ObserveProcessingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingDurations = append(m.processingDurations, duration)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MatchesFetched returns how often a source's matches were fetched.
func (m *Mock) MatchesFetched(source string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesFetched[source]
}

// GamesIngested returns how many games were ingested for a source.
func (m *Mock) GamesIngested(source string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesIngested[source]
}

// ParseDiagnostics returns how often a diagnostic reason was counted.
func (m *Mock) ParseDiagnostics(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parseDiagnostics[reason]
}

// Transitions returns how often a processing status was entered.
func (m *Mock) Transitions(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitions[status]
}

// NotificationsSent returns how many notifications of a kind were sent.
func (m *Mock) NotificationsSent(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsSent[kind]
}

// NotificationsFailed returns how many notifications of a kind failed.
func (m *Mock) NotificationsFailed(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsFailed[kind]
}

// FetchErrors returns how many fetch failures a source accumulated.
func (m *Mock) FetchErrors(source string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchErrors[source]
}

// StatsRefreshes returns the number of stats recomputations.
func (m *Mock) StatsRefreshes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsRefreshes
}

// SnapshotsWritten returns the number of snapshots written.
func (m *Mock) SnapshotsWritten() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotsWritten
}

// MockStore is an in-memory MetricsStore for testing.
type MockStore struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewMockStore creates a new in-memory counter store.
func NewMockStore() *MockStore {
	return &MockStore{counters: make(map[string]int)}
}

var _ MetricsStore = (*MockStore)(nil)

func (m *MockStore) Increment(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
}

func (m *MockStore) GetAll() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out, nil
}

func (m *MockStore) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = make(map[string]int)
	return nil
}
