package metrics

import "sync"

// MockMetrics is a no-op Metrics implementation that records call counts.
type MockMetrics struct {
	mu sync.Mutex

	MatchesCreatedCalls   []string
	MatchesFinalizedCalls []string
	DraftPickCalls        int
	VoteCalls             int
	BalanceObservations   []float64
	NotifSentCalls        int
	NotifFailedCalls      int
}

var _ Metrics = (*MockMetrics)(nil)

// NewMock creates a new mock instance.
func NewMock() *MockMetrics {
	return &MockMetrics{}
}

func (m *MockMetrics) IncMatchesCreated(matchType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesCreatedCalls = append(m.MatchesCreatedCalls, matchType)
}

func (m *MockMetrics) IncMatchesFinalized(matchType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesFinalizedCalls = append(m.MatchesFinalizedCalls, matchType)
}

func (m *MockMetrics) IncDraftPicks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DraftPickCalls++
}

func (m *MockMetrics) IncVotesCast() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VoteCalls++
}

func (m *MockMetrics) ObserveBalanceDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BalanceObservations = append(m.BalanceObservations, duration)
}

func (m *MockMetrics) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifSentCalls++
}

func (m *MockMetrics) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifFailedCalls++
}

func (m *MockMetrics) SetStartupTime(duration float64) {}
