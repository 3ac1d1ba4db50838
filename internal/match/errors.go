package match

import "errors"

// The closed set of caller-recoverable outcomes. The command layer maps
// each to a user-facing message with errors.Is; anything else is an I/O
// failure and propagates wrapped.
var (
	// State conflicts.
	ErrNoMatch          = errors.New("no-match")
	ErrMatchInProgress  = errors.New("match-in-progress")
	ErrMatchReady       = errors.New("match-ready")
	ErrNotOpen          = errors.New("not-open")
	ErrDrafting         = errors.New("drafting")
	ErrAlreadySigned    = errors.New("already-signed")
	ErrNotSigned        = errors.New("not-signed")
	ErrPickingStarted   = errors.New("picking-started")
	ErrAlreadyVoted     = errors.New("already-voted")
	ErrAlreadyResponded = errors.New("already-responded")

	// Authorization.
	ErrNotCaptain  = errors.New("not-captain")
	ErrNotYourTurn = errors.New("not-your-turn")

	// Validation.
	ErrInvalidTeam      = errors.New("invalid-team")
	ErrNotInPool        = errors.New("not-in-pool")
	ErrNotParticipant   = errors.New("not-participant")
	ErrNotEnoughPlayers = errors.New("not-enough-players")
	ErrNotApplicable    = errors.New("not-applicable")

	// Dependency integrity.
	ErrPoolLookup = errors.New("pool-error")
)
