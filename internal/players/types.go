package players

import (
	"database/sql"
	"sync"
)

// store handles all database operations for the player directory.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Role is the in-game role a player queues as.
type Role string

const (
	RoleCore    Role = "core"
	RoleSupport Role = "support"
)

// Profile represents a registered player. Tier runs 1 (best) to 5.
type Profile struct {
	ID           string `json:"id"`
	Handle       string `json:"handle"`
	Role         Role   `json:"role"`
	Tier         int    `json:"tier"`
	Points       int    `json:"points"`
	Active       bool   `json:"active"`
	RegisteredAt int64  `json:"registered_at"`
}

// ProfileUpdate carries optional field updates for an existing player.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Handle *string
	Role   *Role
	Tier   *int
	Points *int
	Active *bool
}
