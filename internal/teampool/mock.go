package teampool

import "sync"

// MockService is a mock implementation of the Service interface for
// testing. It is safe for concurrent use.
type MockService struct {
	mu sync.Mutex

	// Spies for method calls
	CreateFunc func() error
	SignFunc   func(playerID string) (*SignResult, error)
	PoolFunc   func() ([]string, error)
	SplitFunc  func(numTeams int) (*SplitResult, error)
	ResultFunc func() (*SplitResult, error)
	AbortFunc  func() (bool, error)

	// Call records
	CreateCalls int
	SignCalls   []string
	SplitCalls  []int
	AbortCalls  int
}

// NewMock creates a new mock instance.
func NewMock() *MockService {
	return &MockService{}
}

func (m *MockService) Create() error {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc()
	}
	return nil
}

func (m *MockService) Sign(playerID string) (*SignResult, error) {
	m.mu.Lock()
	m.SignCalls = append(m.SignCalls, playerID)
	m.mu.Unlock()
	if m.SignFunc != nil {
		return m.SignFunc(playerID)
	}
	return &SignResult{Count: 1}, nil
}

func (m *MockService) Pool() ([]string, error) {
	if m.PoolFunc != nil {
		return m.PoolFunc()
	}
	return nil, nil
}

func (m *MockService) Split(numTeams int) (*SplitResult, error) {
	m.mu.Lock()
	m.SplitCalls = append(m.SplitCalls, numTeams)
	m.mu.Unlock()
	if m.SplitFunc != nil {
		return m.SplitFunc(numTeams)
	}
	return &SplitResult{}, nil
}

func (m *MockService) Result() (*SplitResult, error) {
	if m.ResultFunc != nil {
		return m.ResultFunc()
	}
	return nil, nil
}

func (m *MockService) Abort() (bool, error) {
	m.mu.Lock()
	m.AbortCalls++
	m.mu.Unlock()
	if m.AbortFunc != nil {
		return m.AbortFunc()
	}
	return false, nil
}
