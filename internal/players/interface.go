package players

// Directory defines the interface for the player directory.
type Directory interface {
	// Register creates a new player. Returns false if the id is taken.
	Register(profile Profile) (bool, error)
	// Update applies the non-nil fields of upd to an existing player.
	Update(playerID string, upd ProfileUpdate) error
	// Deactivate flags a player as inactive without deleting history.
	Deactivate(playerID string) error
	// GetByID returns the profile for an id, or nil if unknown.
	GetByID(playerID string) (*Profile, error)
	// GetByHandle resolves a chat handle (normalized to lower case) to a
	// profile, or nil if unknown.
	GetByHandle(handle string) (*Profile, error)
	// GetProfiles returns the profiles for the given ids. Unknown ids are
	// omitted from the result.
	GetProfiles(playerIDs []string) ([]Profile, error)
	// ListAll returns every player, active or not, ordered by points.
	ListAll() ([]Profile, error)
	// ApplyPointDelta adjusts a player's ladder points. Unknown ids are
	// silently skipped.
	ApplyPointDelta(playerID string, delta int) error
}
