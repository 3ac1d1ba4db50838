package inngest

import (
	"net/http"
	"sync"
)

// Mock is an InngestClient implementation that records sent events.
type Mock struct {
	mu sync.Mutex

	ServeFunc      func() http.Handler
	SendEventCalls []struct {
		Name string
		Data map[string]any
	}
}

var _ InngestClient = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Serve() http.Handler {
	if m.ServeFunc != nil {
		return m.ServeFunc()
	}
	return http.NotFoundHandler()
}

func (m *Mock) SendEvent(name string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendEventCalls = append(m.SendEventCalls, struct {
		Name string
		Data map[string]any
	}{name, data})
}
