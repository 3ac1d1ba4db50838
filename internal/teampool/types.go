package teampool

import (
	"database/sql"
	"errors"
	"math/rand"
	"sync"

	"github.com/psdleague/psdl-bot/internal/metrics"
	"github.com/psdleague/psdl-bot/internal/players"
)

// store handles database operations for the open team pool.
type store struct {
	db        *sql.DB
	mu        sync.Mutex
	directory ProfileDirectory
	metrics   metrics.Metrics
	rng       *rand.Rand
}

// PoolStatus is the lifecycle phase of the open pool.
type PoolStatus string

const (
	StatusOpen  PoolStatus = "open"
	StatusSplit PoolStatus = "split"
)

// TeamSize is the fixed roster size for split teams.
const TeamSize = 5

var (
	ErrNoPool        = errors.New("no-pool")
	ErrAlreadySigned = errors.New("already-signed")
	ErrNotEnough     = errors.New("not-enough")
)

// SignResult reports pool progress after a sign-up.
type SignResult struct {
	Count int `json:"count"`
}

// SplitResult carries the balanced teams once the pool is split.
type SplitResult struct {
	Teams [][]string `json:"teams"`
}

// Service manages an unbounded sign-up pool that can be split into any
// number of balanced 5-player teams, outside the ladder.
type Service interface {
	// Create opens a fresh pool, replacing any previous one.
	Create() error
	// Sign adds a player to the open pool.
	Sign(playerID string) (*SignResult, error)
	// Pool returns the pooled ids while the pool is open, or nil.
	Pool() ([]string, error)
	// Split partitions the first numTeams*5 signees into balanced teams
	// and closes the pool to further sign-ups.
	Split(numTeams int) (*SplitResult, error)
	// Result returns the split teams, or nil if the pool is not split.
	Result() (*SplitResult, error)
	// Abort discards the pool entirely, reporting whether one existed.
	Abort() (bool, error)
}

// ProfileDirectory resolves pooled ids to profiles for balancing.
type ProfileDirectory interface {
	GetProfiles(playerIDs []string) ([]players.Profile, error)
}
