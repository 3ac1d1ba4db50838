package players

import "sync"

// MockDirectory is a mock implementation of the Directory interface for
// testing. It is safe for concurrent use.
type MockDirectory struct {
	mu sync.Mutex

	// Spies for method calls
	RegisterFunc        func(profile Profile) (bool, error)
	UpdateFunc          func(playerID string, upd ProfileUpdate) error
	DeactivateFunc      func(playerID string) error
	GetByIDFunc         func(playerID string) (*Profile, error)
	GetByHandleFunc     func(handle string) (*Profile, error)
	GetProfilesFunc     func(playerIDs []string) ([]Profile, error)
	ListAllFunc         func() ([]Profile, error)
	ApplyPointDeltaFunc func(playerID string, delta int) error

	// Call records
	RegisterCalls        []Profile
	GetProfilesCalls     [][]string
	ApplyPointDeltaCalls []struct {
		PlayerID string
		Delta    int
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockDirectory {
	return &MockDirectory{}
}

func (m *MockDirectory) Register(profile Profile) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RegisterCalls = append(m.RegisterCalls, profile)
	if m.RegisterFunc != nil {
		return m.RegisterFunc(profile)
	}
	return true, nil
}

func (m *MockDirectory) Update(playerID string, upd ProfileUpdate) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(playerID, upd)
	}
	return nil
}

func (m *MockDirectory) Deactivate(playerID string) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(playerID)
	}
	return nil
}

func (m *MockDirectory) GetByID(playerID string) (*Profile, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(playerID)
	}
	return nil, nil
}

func (m *MockDirectory) GetByHandle(handle string) (*Profile, error) {
	if m.GetByHandleFunc != nil {
		return m.GetByHandleFunc(handle)
	}
	return nil, nil
}

func (m *MockDirectory) GetProfiles(playerIDs []string) ([]Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetProfilesCalls = append(m.GetProfilesCalls, playerIDs)
	if m.GetProfilesFunc != nil {
		return m.GetProfilesFunc(playerIDs)
	}
	return []Profile{}, nil
}

func (m *MockDirectory) ListAll() ([]Profile, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc()
	}
	return nil, nil
}

func (m *MockDirectory) ApplyPointDelta(playerID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyPointDeltaCalls = append(m.ApplyPointDeltaCalls, struct {
		PlayerID string
		Delta    int
	}{playerID, delta})
	if m.ApplyPointDeltaFunc != nil {
		return m.ApplyPointDeltaFunc(playerID, delta)
	}
	return nil
}
