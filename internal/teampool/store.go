package teampool

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/psdleague/psdl-bot/internal/balance"
	"github.com/psdleague/psdl-bot/internal/metrics"
)

// New creates a team pool service. A nil rng falls back to a time-seeded
// source.
func New(db *sql.DB, directory ProfileDirectory, m metrics.Metrics, rng *rand.Rand) Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &store{
		db:        db,
		directory: directory,
		metrics:   m,
		rng:       rng,
	}
}

func (s *store) Create() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO team_pools (id, status, pool_json, teams_json)
		VALUES ('current', ?, '[]', NULL)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			pool_json = excluded.pool_json,
			teams_json = excluded.teams_json`,
		string(StatusOpen),
	)
	if err != nil {
		return fmt.Errorf("failed to create team pool: %w", err)
	}
	log.Info("Opened a fresh team pool")
	return nil
}

func (s *store) Sign(playerID string) (*SignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	status, pool, _, err := getPoolTx(tx)
	if err != nil {
		return nil, err
	}
	if status != StatusOpen {
		return nil, ErrNoPool
	}
	for _, id := range pool {
		if id == playerID {
			return nil, ErrAlreadySigned
		}
	}
	pool = append(pool, playerID)

	poolJSON, err := json.Marshal(pool)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec("UPDATE team_pools SET pool_json = ? WHERE id = 'current'", string(poolJSON)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &SignResult{Count: len(pool)}, nil
}

func (s *store) Pool() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	status, pool, _, err := getPoolTx(tx)
	if err != nil {
		return nil, err
	}
	if status != StatusOpen {
		return nil, nil
	}
	return pool, nil
}

func (s *store) Split(numTeams int) (*SplitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, pool, _, err := s.getPool()
	if err != nil {
		return nil, err
	}
	if status != StatusOpen {
		return nil, ErrNoPool
	}

	needed := numTeams * TeamSize
	if len(pool) < needed {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnough, len(pool), needed)
	}

	// Any signees beyond numTeams*5 are left out of the split.
	profiles, err := s.directory.GetProfiles(pool[:needed])
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pooled profiles: %w", err)
	}
	if len(profiles) != needed {
		return nil, fmt.Errorf("%w: pool references unregistered players", ErrNotEnough)
	}

	balanceStart := time.Now()
	teams, err := balance.Split(profiles, numTeams, s.rng)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveBalanceDuration(time.Since(balanceStart).Seconds())

	teamsJSON, err := json.Marshal(teams)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(
		"UPDATE team_pools SET status = ?, teams_json = ? WHERE id = 'current' AND status = ?",
		string(StatusSplit), string(teamsJSON), string(StatusOpen),
	); err != nil {
		return nil, err
	}

	log.Info("Split team pool", "teams", numTeams, "pooled", len(pool))
	return &SplitResult{Teams: teams}, nil
}

func (s *store) Result() (*SplitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	status, _, teams, err := getPoolTx(tx)
	if err != nil {
		return nil, err
	}
	if status != StatusSplit || teams == nil {
		return nil, nil
	}
	return &SplitResult{Teams: teams}, nil
}

func (s *store) Abort() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM team_pools WHERE id = 'current'")
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func getPoolTx(tx *sql.Tx) (PoolStatus, []string, [][]string, error) {
	return scanPool(tx.QueryRow("SELECT status, pool_json, teams_json FROM team_pools WHERE id = 'current'"))
}

func (s *store) getPool() (PoolStatus, []string, [][]string, error) {
	return scanPool(s.db.QueryRow("SELECT status, pool_json, teams_json FROM team_pools WHERE id = 'current'"))
}

func scanPool(row *sql.Row) (PoolStatus, []string, [][]string, error) {
	var status string
	var poolJSON string
	var teamsJSON sql.NullString
	err := row.Scan(&status, &poolJSON, &teamsJSON)
	if err == sql.ErrNoRows {
		return "", nil, nil, ErrNoPool
	}
	if err != nil {
		return "", nil, nil, err
	}

	var pool []string
	if err := json.Unmarshal([]byte(poolJSON), &pool); err != nil {
		return "", nil, nil, fmt.Errorf("failed to unmarshal pool_json: %w", err)
	}
	var teams [][]string
	if teamsJSON.Valid && teamsJSON.String != "" {
		if err := json.Unmarshal([]byte(teamsJSON.String), &teams); err != nil {
			return "", nil, nil, fmt.Errorf("failed to unmarshal teams_json: %w", err)
		}
	}
	return PoolStatus(status), pool, teams, nil
}
