package match

import "github.com/psdleague/psdl-bot/internal/players"

// Service is the match lifecycle engine: it owns the single pregame and
// the ongoing matches, and sequences creation, pool-filling, drafting or
// balancing, result resolution and archival.
type Service interface {
	// Create opens a new pregame. A challenge requires an opponent; a
	// start match auto-enrolls the initiator into the pool. Fails with
	// ErrMatchInProgress while a non-terminal pregame exists.
	Create(matchType Type, initiatorID, opponentID string) (*Pregame, error)
	// Respond accepts or rejects a pending challenge. Only the challenged
	// captain may respond; accepting opens sign-ups, rejecting deletes the
	// pregame (nil is returned in that case).
	Respond(accept bool, responderID string) (*Pregame, error)
	// SignToPool adds a player to the pregame pool. Filling a pickup pool
	// balances teams, creates the ongoing match and deletes the pregame.
	SignToPool(playerID string) (*SignResult, error)
	// RemoveFromPool takes a player back out of the pool.
	RemoveFromPool(playerID string) (*SignResult, error)
	// Pick applies one captain draft pick. Completing the draft creates
	// the ongoing match and deletes the pregame.
	Pick(captainID, targetID string) (*PickResult, error)
	// SubmitResult reports a winner for an ongoing match: a single
	// captain report for challenge matches, one quorum vote for pickup
	// matches.
	SubmitResult(matchID, submitterID string, team Side) (*ResultOutcome, error)
	// Abort unconditionally deletes the current pregame, reporting
	// whether one existed.
	Abort() (bool, error)
	// GetCurrentMatch returns the active pregame, or nil.
	GetCurrentMatch() (*Pregame, error)
	// GetOngoingMatchForUser finds the ongoing match whose roster,
	// captains included, contains the player.
	GetOngoingMatchForUser(playerID string) (*OngoingMatch, error)
	// GetOngoingMatches lists every ongoing match.
	GetOngoingMatches() ([]*OngoingMatch, error)
	// GetFinalizedMatch fetches one archival record, or nil.
	GetFinalizedMatch(matchID string) (*FinalizedMatch, error)
	// RecentFinalizedForUser returns the player's most recent finalized
	// matches, newest first.
	RecentFinalizedForUser(playerID string, limit int) ([]*FinalizedMatch, error)
}

// ProfileDirectory is the slice of the player directory the engine needs
// to enrich pooled ids with role and tier before balancing.
type ProfileDirectory interface {
	GetProfiles(playerIDs []string) ([]players.Profile, error)
}
