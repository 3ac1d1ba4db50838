package notifier

import (
	"sync"

	"github.com/psdleague/psdl-bot/internal/match"
	"github.com/psdleague/psdl-bot/internal/players"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendChallengeCreatedCalls []*match.Pregame
	SendDraftStartedCalls     []*match.Pregame
	SendPoolProgressCalls     []struct {
		Pregame *match.Pregame
		Target  int
	}
	SendTeamsReadyCalls      []*match.OngoingMatch
	SendResultFinalizedCalls []*match.FinalizedMatch

	// Spies for format functions
	FormatLadderResponseCalls        [][]players.Profile
	FormatLadderResponseFunc         func(profiles []players.Profile) (any, error)
	FormatPlayerInfoResponseFunc     func(profile *players.Profile, recent []*match.FinalizedMatch) (any, error)
	FormatCurrentMatchResponseFunc   func(pregame *match.Pregame, ongoing []*match.OngoingMatch) (any, error)
	FormatPlayerNotFoundResponseFunc func(query string) (any, error)
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendChallengeCreatedCalls = nil
	m.SendDraftStartedCalls = nil
	m.SendPoolProgressCalls = nil
	m.SendTeamsReadyCalls = nil
	m.SendResultFinalizedCalls = nil
	m.FormatLadderResponseCalls = nil
}

func (m *Mock) SendChallengeCreated(pregame *match.Pregame, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendChallengeCreatedCalls = append(m.SendChallengeCreatedCalls, pregame)
	return nil
}

func (m *Mock) SendDraftStarted(pregame *match.Pregame, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendDraftStartedCalls = append(m.SendDraftStartedCalls, pregame)
	return nil
}

func (m *Mock) SendPoolProgress(pregame *match.Pregame, target int, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPoolProgressCalls = append(m.SendPoolProgressCalls, struct {
		Pregame *match.Pregame
		Target  int
	}{pregame, target})
	return nil
}

func (m *Mock) SendTeamsReady(om *match.OngoingMatch, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendTeamsReadyCalls = append(m.SendTeamsReadyCalls, om)
	return nil
}

func (m *Mock) SendResultFinalized(fm *match.FinalizedMatch, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultFinalizedCalls = append(m.SendResultFinalizedCalls, fm)
	return nil
}

func (m *Mock) FormatLadderResponse(profiles []players.Profile) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FormatLadderResponseCalls = append(m.FormatLadderResponseCalls, profiles)
	if m.FormatLadderResponseFunc != nil {
		return m.FormatLadderResponseFunc(profiles)
	}
	return "formatted_ladder", nil
}

func (m *Mock) FormatPlayerInfoResponse(profile *players.Profile, recent []*match.FinalizedMatch) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerInfoResponseFunc != nil {
		return m.FormatPlayerInfoResponseFunc(profile, recent)
	}
	return "formatted_player_info", nil
}

func (m *Mock) FormatCurrentMatchResponse(pregame *match.Pregame, ongoing []*match.OngoingMatch) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatCurrentMatchResponseFunc != nil {
		return m.FormatCurrentMatchResponseFunc(pregame, ongoing)
	}
	return "formatted_current_match", nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerNotFoundResponseFunc != nil {
		return m.FormatPlayerNotFoundResponseFunc(query)
	}
	return "formatted_player_not_found", nil
}
