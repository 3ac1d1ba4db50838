package match

import (
	"database/sql"
	"math/rand"
	"sync"

	"github.com/psdleague/psdl-bot/internal/config"
	"github.com/psdleague/psdl-bot/internal/metrics"
)

// store handles all database operations for the match lifecycle. Mutating
// operations take the write lock and run inside a single transaction so a
// read-modify-write on the pregame row can never lose an update.
type store struct {
	db        *sql.DB
	mu        sync.Mutex
	directory ProfileDirectory
	cfg       config.LeagueConfig
	metrics   metrics.Metrics
	rng       *rand.Rand
}

// Type discriminates the two match flavors.
type Type string

const (
	// TypeChallenge is a captains draft between two fixed players.
	TypeChallenge Type = "challenge"
	// TypeStart is an open pickup match filled from a sign-up pool.
	TypeStart Type = "start"
)

// Status is the pregame phase.
type Status string

const (
	StatusPending Status = "pending"
	StatusWaiting Status = "waiting"
	StatusReady   Status = "ready"
)

// Side names a team slot.
type Side string

const (
	SideRadiant Side = "radiant"
	SideDire    Side = "dire"
)

// ParseSide validates a user-supplied team name.
func ParseSide(raw string) (Side, error) {
	switch Side(raw) {
	case SideRadiant, SideDire:
		return Side(raw), nil
	default:
		return "", ErrInvalidTeam
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideRadiant {
		return SideDire
	}
	return SideRadiant
}

// Picks tracks drafted player ids per side.
type Picks struct {
	Radiant []string `json:"radiant"`
	Dire    []string `json:"dire"`
}

// Total is the number of picks made so far.
func (p Picks) Total() int {
	return len(p.Radiant) + len(p.Dire)
}

// Votes tracks result votes per side for pickup matches.
type Votes struct {
	Radiant []string `json:"radiant"`
	Dire    []string `json:"dire"`
}

// Contains reports whether the player voted for either side.
func (v Votes) Contains(playerID string) bool {
	for _, id := range v.Radiant {
		if id == playerID {
			return true
		}
	}
	for _, id := range v.Dire {
		if id == playerID {
			return true
		}
	}
	return false
}

// Count returns the tally for one side.
func (v Votes) Count(side Side) int {
	if side == SideRadiant {
		return len(v.Radiant)
	}
	return len(v.Dire)
}

// Pregame is the single active match record before both rosters are
// finalized. At most one exists system-wide.
type Pregame struct {
	Type      Type     `json:"type"`
	Status    Status   `json:"status"`
	Captain1  string   `json:"captain1,omitempty"` // challenge only, radiant
	Captain2  string   `json:"captain2,omitempty"` // challenge only, dire
	Starter   string   `json:"starter,omitempty"`  // start only
	Pool      []string `json:"pool"`
	Picks     *Picks   `json:"picks,omitempty"` // challenge only
	FirstPick Side     `json:"first_pick,omitempty"`
	StartedAt int64    `json:"started_at"`
}

// Roster is the canonical team shape: a nil captain for pickup matches,
// the fixed captain for challenge matches.
type Roster struct {
	Captain *string  `json:"captain"`
	Players []string `json:"players"`
}

// All returns every member of the roster, captain included.
func (r Roster) All() []string {
	if r.Captain == nil {
		return r.Players
	}
	out := make([]string, 0, len(r.Players)+1)
	out = append(out, *r.Captain)
	out = append(out, r.Players...)
	return out
}

// Contains reports whether the player is on the roster, captain included.
func (r Roster) Contains(playerID string) bool {
	if r.Captain != nil && *r.Captain == playerID {
		return true
	}
	for _, id := range r.Players {
		if id == playerID {
			return true
		}
	}
	return false
}

// OngoingMatch is a match with both rosters fixed, awaiting a result.
type OngoingMatch struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Radiant   Roster `json:"radiant"`
	Dire      Roster `json:"dire"`
	Votes     Votes  `json:"votes"`
	LobbyName string `json:"lobby_name"`
	Password  string `json:"password"`
	CreatedAt int64  `json:"created_at"`
}

// HasParticipant reports whether the player is rostered on either side.
func (m *OngoingMatch) HasParticipant(playerID string) bool {
	return m.Radiant.Contains(playerID) || m.Dire.Contains(playerID)
}

// FinalizedMatch is the immutable archival record of a scored match.
type FinalizedMatch struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Radiant   Roster `json:"radiant"`
	Dire      Roster `json:"dire"`
	Winner    Side   `json:"winner"`
	LobbyName string `json:"lobby_name"`
	Password  string `json:"password"`
	CreatedAt int64  `json:"created_at"`
}

// FinalizedTeams is the payload returned the moment a pregame becomes an
// ongoing match.
type FinalizedTeams struct {
	MatchID   string `json:"match_id"`
	Radiant   Roster `json:"radiant"`
	Dire      Roster `json:"dire"`
	LobbyName string `json:"lobby_name"`
	Password  string `json:"password"`
}

// SignResult reports pool progress after a join or leave. Finalized is
// set when the join filled a pickup pool.
type SignResult struct {
	Status    Status          `json:"status"`
	Count     int             `json:"count"`
	PoolSize  int             `json:"pool_size,omitempty"`
	Finalized *FinalizedTeams `json:"finalized,omitempty"`
}

// PickResult reports a draft pick. Finalized is set when the pick
// completed the draft.
type PickResult struct {
	Side      Side            `json:"side"`
	Finalized *FinalizedTeams `json:"finalized,omitempty"`
}

// ResultOutcome reports a result submission. Before quorum on a pickup
// match, Finalized is false and Votes carries the current tally.
type ResultOutcome struct {
	Finalized bool   `json:"finalized"`
	MatchID   string `json:"match_id,omitempty"`
	Winner    Side   `json:"winner,omitempty"`
	Votes     *Votes `json:"votes,omitempty"`
}
