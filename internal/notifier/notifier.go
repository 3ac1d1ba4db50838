package notifier

import (
	"github.com/psdleague/psdl-bot/internal/match"
	"github.com/psdleague/psdl-bot/internal/players"
)

// Notifier defines a high-level interface for sending notifications about league events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For the match lifecycle
	SendChallengeCreated(pregame *match.Pregame, dryRun bool) error
	SendDraftStarted(pregame *match.Pregame, dryRun bool) error
	SendPoolProgress(pregame *match.Pregame, target int, dryRun bool) error
	SendTeamsReady(m *match.OngoingMatch, dryRun bool) error
	SendResultFinalized(m *match.FinalizedMatch, dryRun bool) error

	// For formatting responses to slash commands
	FormatLadderResponse(profiles []players.Profile) (any, error)
	FormatPlayerInfoResponse(profile *players.Profile, recent []*match.FinalizedMatch) (any, error)
	FormatCurrentMatchResponse(pregame *match.Pregame, ongoing []*match.OngoingMatch) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
