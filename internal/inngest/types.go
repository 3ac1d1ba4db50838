package inngest

import (
	"github.com/inngest/inngestgo"
)

type client struct {
	inngestClient inngestgo.Client
}

// EventTeamsReady is sent when both rosters are locked in; it triggers
// the result reminder.
const EventTeamsReady = "match/teams.ready"

// MatchEvent is the payload for match lifecycle events.
type MatchEvent struct {
	MatchID string `json:"matchId"`
	Type    string `json:"type"`
}

// Map renders the payload as inngest event data.
func (e MatchEvent) Map() map[string]any {
	return map[string]any{"matchId": e.MatchID, "type": e.Type}
}
