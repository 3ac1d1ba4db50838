package players

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new Directory backed by the given database.
func New(db *sql.DB) Directory {
	return &store{
		db: db,
	}
}

func (s *store) Register(profile Profile) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", profile.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check if player exists: %w", err)
	}
	if exists {
		return false, nil
	}

	if profile.Points == 0 {
		profile.Points = 1000
	}
	if profile.RegisteredAt == 0 {
		profile.RegisteredAt = time.Now().Unix()
	}

	_, err = s.db.Exec(`
		INSERT INTO players (id, handle, role, tier, points, active, registered_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)`,
		profile.ID, normalizeHandle(profile.Handle), string(profile.Role), profile.Tier, profile.Points, profile.RegisteredAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to register player: %w", err)
	}
	log.Info("Registered new player", "playerID", profile.ID, "role", profile.Role, "tier", profile.Tier)
	return true, nil
}

func (s *store) Update(playerID string, upd ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sets []string
	var args []any
	if upd.Handle != nil {
		sets = append(sets, "handle = ?")
		args = append(args, normalizeHandle(*upd.Handle))
	}
	if upd.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, string(*upd.Role))
	}
	if upd.Tier != nil {
		sets = append(sets, "tier = ?")
		args = append(args, *upd.Tier)
	}
	if upd.Points != nil {
		sets = append(sets, "points = ?")
		args = append(args, *upd.Points)
	}
	if upd.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, boolToInt(*upd.Active))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, playerID)

	res, err := s.db.Exec("UPDATE players SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("player %s not found", playerID)
	}
	return nil
}

func (s *store) Deactivate(playerID string) error {
	active := false
	return s.Update(playerID, ProfileUpdate{Active: &active})
}

func (s *store) GetByID(playerID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, handle, role, tier, points, active, registered_at
		FROM players WHERE id = ?`, playerID)
	return scanProfile(row)
}

func (s *store) GetByHandle(handle string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, handle, role, tier, points, active, registered_at
		FROM players WHERE handle = ? LIMIT 1`, normalizeHandle(handle))
	return scanProfile(row)
}

func (s *store) GetProfiles(playerIDs []string) ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(playerIDs) == 0 {
		return []Profile{}, nil
	}

	placeholders := strings.Repeat("?,", len(playerIDs)-1) + "?"
	args := make([]any, len(playerIDs))
	for i, id := range playerIDs {
		args[i] = id
	}

	rows, err := s.db.Query(`
		SELECT id, handle, role, tier, points, active, registered_at
		FROM players WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		p, err := scanProfileRow(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (s *store) ListAll() ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, handle, role, tier, points, active, registered_at
		FROM players ORDER BY points DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfileRow(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (s *store) ApplyPointDelta(playerID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE players SET points = points + ? WHERE id = ?", delta, playerID)
	if err != nil {
		return fmt.Errorf("failed to apply point delta: %w", err)
	}
	return nil
}

type rowScanner interface{ Scan(...any) error }

func scanProfile(row *sql.Row) (*Profile, error) {
	p, err := scanProfileRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func scanProfileRow(scanner rowScanner) (*Profile, error) {
	var p Profile
	var role string
	var active int
	err := scanner.Scan(&p.ID, &p.Handle, &role, &p.Tier, &p.Points, &active, &p.RegisteredAt)
	if err != nil {
		return nil, err
	}
	p.Role = Role(role)
	p.Active = active != 0
	return &p, nil
}

// normalizeHandle lowercases and trims a chat handle so lookups are
// case-insensitive the way the registration flow stores them.
func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
