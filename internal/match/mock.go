package match

import "sync"

// MockService is a mock implementation of the Service interface for
// testing. It is safe for concurrent use.
type MockService struct {
	mu sync.Mutex

	// Spies for method calls
	CreateFunc                 func(matchType Type, initiatorID, opponentID string) (*Pregame, error)
	RespondFunc                func(accept bool, responderID string) (*Pregame, error)
	SignToPoolFunc             func(playerID string) (*SignResult, error)
	RemoveFromPoolFunc         func(playerID string) (*SignResult, error)
	PickFunc                   func(captainID, targetID string) (*PickResult, error)
	SubmitResultFunc           func(matchID, submitterID string, team Side) (*ResultOutcome, error)
	AbortFunc                  func() (bool, error)
	GetCurrentMatchFunc        func() (*Pregame, error)
	GetOngoingMatchForUserFunc func(playerID string) (*OngoingMatch, error)
	GetOngoingMatchesFunc      func() ([]*OngoingMatch, error)
	GetFinalizedMatchFunc      func(matchID string) (*FinalizedMatch, error)
	RecentFinalizedForUserFunc func(playerID string, limit int) ([]*FinalizedMatch, error)

	// Call records
	CreateCalls []struct {
		Type        Type
		InitiatorID string
		OpponentID  string
	}
	SignToPoolCalls   []string
	PickCalls         []struct{ CaptainID, TargetID string }
	SubmitResultCalls []struct {
		MatchID     string
		SubmitterID string
		Team        Side
	}
	AbortCalls int
}

// NewMock creates a new mock instance.
func NewMock() *MockService {
	return &MockService{}
}

func (m *MockService) Create(matchType Type, initiatorID, opponentID string) (*Pregame, error) {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, struct {
		Type        Type
		InitiatorID string
		OpponentID  string
	}{matchType, initiatorID, opponentID})
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(matchType, initiatorID, opponentID)
	}
	return nil, nil
}

func (m *MockService) Respond(accept bool, responderID string) (*Pregame, error) {
	if m.RespondFunc != nil {
		return m.RespondFunc(accept, responderID)
	}
	return nil, nil
}

func (m *MockService) SignToPool(playerID string) (*SignResult, error) {
	m.mu.Lock()
	m.SignToPoolCalls = append(m.SignToPoolCalls, playerID)
	m.mu.Unlock()
	if m.SignToPoolFunc != nil {
		return m.SignToPoolFunc(playerID)
	}
	return &SignResult{}, nil
}

func (m *MockService) RemoveFromPool(playerID string) (*SignResult, error) {
	if m.RemoveFromPoolFunc != nil {
		return m.RemoveFromPoolFunc(playerID)
	}
	return &SignResult{}, nil
}

func (m *MockService) Pick(captainID, targetID string) (*PickResult, error) {
	m.mu.Lock()
	m.PickCalls = append(m.PickCalls, struct{ CaptainID, TargetID string }{captainID, targetID})
	m.mu.Unlock()
	if m.PickFunc != nil {
		return m.PickFunc(captainID, targetID)
	}
	return &PickResult{}, nil
}

func (m *MockService) SubmitResult(matchID, submitterID string, team Side) (*ResultOutcome, error) {
	m.mu.Lock()
	m.SubmitResultCalls = append(m.SubmitResultCalls, struct {
		MatchID     string
		SubmitterID string
		Team        Side
	}{matchID, submitterID, team})
	m.mu.Unlock()
	if m.SubmitResultFunc != nil {
		return m.SubmitResultFunc(matchID, submitterID, team)
	}
	return &ResultOutcome{}, nil
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

func (m *MockService) GetCurrentMatch() (*Pregame, error) {
	if m.GetCurrentMatchFunc != nil {
		return m.GetCurrentMatchFunc()
	}
	return nil, nil
}

func (m *MockService) GetOngoingMatchForUser(playerID string) (*OngoingMatch, error) {
	if m.GetOngoingMatchForUserFunc != nil {
		return m.GetOngoingMatchForUserFunc(playerID)
	}
	return nil, nil
}

func (m *MockService) GetOngoingMatches() ([]*OngoingMatch, error) {
	if m.GetOngoingMatchesFunc != nil {
		return m.GetOngoingMatchesFunc()
	}
	return nil, nil
}

func (m *MockService) GetFinalizedMatch(matchID string) (*FinalizedMatch, error) {
	if m.GetFinalizedMatchFunc != nil {
		return m.GetFinalizedMatchFunc(matchID)
	}
	return nil, nil
}

func (m *MockService) RecentFinalizedForUser(playerID string, limit int) ([]*FinalizedMatch, error) {
	if m.RecentFinalizedForUserFunc != nil {
		return m.RecentFinalizedForUserFunc(playerID, limit)
	}
	return nil, nil
}
