package match

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/psdleague/psdl-bot/internal/balance"
	"github.com/psdleague/psdl-bot/internal/config"
	"github.com/psdleague/psdl-bot/internal/metrics"
)

// New creates the match lifecycle engine. A nil rng falls back to a
// time-seeded source; tests inject a seeded one.
func New(db *sql.DB, directory ProfileDirectory, cfg config.LeagueConfig, m metrics.Metrics, rng *rand.Rand) Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &store{
		db:        db,
		directory: directory,
		cfg:       cfg,
		metrics:   m,
		rng:       rng,
	}
}

func (s *store) Create(matchType Type, initiatorID, opponentID string) (*Pregame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := getPregameTx(tx)
	if err != nil {
		return nil, err
	}
	if current != nil {
		if current.Status != StatusReady {
			return nil, ErrMatchInProgress
		}
		// A lingering ready pregame is terminal; tear it down so a fresh
		// one can start.
		if err := deletePregameTx(tx); err != nil {
			return nil, err
		}
	}

	p := &Pregame{
		Type:      matchType,
		Status:    StatusPending,
		StartedAt: time.Now().Unix(),
	}
	switch matchType {
	case TypeChallenge:
		if opponentID == "" {
			return nil, fmt.Errorf("challenge requires an opponent")
		}
		if opponentID == initiatorID {
			return nil, fmt.Errorf("cannot challenge yourself")
		}
		p.Captain1 = initiatorID
		p.Captain2 = opponentID
		p.Pool = []string{}
		p.Picks = &Picks{Radiant: []string{}, Dire: []string{}}
	case TypeStart:
		p.Starter = initiatorID
		p.Pool = []string{initiatorID}
	default:
		return nil, fmt.Errorf("invalid match type %q", matchType)
	}

	if err := insertPregameTx(tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Info("Created pregame", "type", matchType, "initiator", initiatorID, "opponent", opponentID)
	return p, nil
}

func (s *store) Respond(accept bool, responderID string) (*Pregame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := getPregameTx(tx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoMatch
	}
	if p.Type != TypeChallenge {
		return nil, ErrNotApplicable
	}
	if p.Status != StatusPending {
		return nil, ErrAlreadyResponded
	}
	if responderID != p.Captain2 {
		return nil, ErrNotCaptain
	}

	if !accept {
		if err := deletePregameTx(tx); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		log.Info("Challenge rejected", "responder", responderID)
		return nil, nil
	}

	p.Status = StatusWaiting
	if err := updatePregameTx(tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	log.Info("Challenge accepted, sign-ups open", "responder", responderID)
	return p, nil
}

func (s *store) SignToPool(playerID string) (*SignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := getPregameTx(tx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoMatch
	}
	// Captains are already in the match; the pool never holds them.
	if p.isCaptain(playerID) {
		return nil, ErrAlreadySigned
	}
	if err := p.join(playerID); err != nil {
		return nil, err
	}
	if err := updatePregameTx(tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if p.Type == TypeStart && len(p.Pool) == s.cfg.StartPoolSize {
		return s.finalizeStartLocked(p)
	}

	return &SignResult{
		Status:   p.Status,
		Count:    len(p.Pool),
		PoolSize: s.poolSizeFor(p),
	}, nil
}

// finalizeStartLocked turns a filled pickup pool into an ongoing match:
// profile enrichment, balancing, token generation, atomic swap of the
// pregame for the ongoing record. Caller holds the store lock.
func (s *store) finalizeStartLocked(p *Pregame) (*SignResult, error) {
	profiles, err := s.directory.GetProfiles(p.Pool)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoolLookup, err)
	}
	if len(profiles) != len(p.Pool) {
		log.Error("Pool references unknown players", "pooled", len(p.Pool), "found", len(profiles))
		return nil, ErrPoolLookup
	}

	balanceStart := time.Now()
	teams, err := balance.Pair(profiles, s.rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoolLookup, err)
	}
	s.metrics.ObserveBalanceDuration(time.Since(balanceStart).Seconds())

	ongoing := &OngoingMatch{
		ID:        uuid.New().String(),
		Type:      TypeStart,
		Radiant:   Roster{Players: teams.Radiant},
		Dire:      Roster{Players: teams.Dire},
		Votes:     Votes{Radiant: []string{}, Dire: []string{}},
		LobbyName: GenerateLobbyName(s.rng),
		Password:  GeneratePassword(s.rng),
		CreatedAt: time.Now().Unix(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := insertOngoingTx(tx, ongoing); err != nil {
		return nil, err
	}
	if err := deletePregameTx(tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("Pickup pool filled, match is live", "matchID", ongoing.ID, "lobby", ongoing.LobbyName)
	return &SignResult{
		Status:   StatusReady,
		Count:    len(p.Pool),
		PoolSize: s.cfg.StartPoolSize,
		Finalized: &FinalizedTeams{
			MatchID:   ongoing.ID,
			Radiant:   ongoing.Radiant,
			Dire:      ongoing.Dire,
			LobbyName: ongoing.LobbyName,
			Password:  ongoing.Password,
		},
	}, nil
}

func (s *store) RemoveFromPool(playerID string) (*SignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := getPregameTx(tx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoMatch
	}
	if err := p.leave(playerID); err != nil {
		return nil, err
	}
	if err := updatePregameTx(tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &SignResult{
		Status:   p.Status,
		Count:    len(p.Pool),
		PoolSize: s.poolSizeFor(p),
	}, nil
}

func (s *store) Pick(captainID, targetID string) (*PickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := getPregameTx(tx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoMatch
	}

	hadFirstPick := p.FirstPick != ""
	side, done, err := p.applyPick(captainID, targetID, s.cfg.MinPoolForDraft, s.cfg.TotalPicks, s.cfg.CaptainsCountInMinimum, s.rng)
	if err != nil {
		// The opening coin flip is rolled once per draft: when the wrong
		// captain tries first, the rolled side still sticks.
		if errors.Is(err, ErrNotYourTurn) && !hadFirstPick && p.FirstPick != "" {
			if uerr := updatePregameTx(tx, p); uerr != nil {
				return nil, uerr
			}
			if cerr := tx.Commit(); cerr != nil {
				return nil, cerr
			}
		}
		return nil, err
	}

	if !done {
		if err := updatePregameTx(tx, p); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		log.Info("Draft pick applied", "captain", captainID, "target", targetID, "side", side)
		return &PickResult{Side: side}, nil
	}

	// Draft complete: materialize the ongoing match and consume the
	// pregame in the same transaction.
	cap1, cap2 := p.Captain1, p.Captain2
	ongoing := &OngoingMatch{
		ID:        uuid.New().String(),
		Type:      TypeChallenge,
		Radiant:   Roster{Captain: &cap1, Players: append([]string(nil), p.Picks.Radiant...)},
		Dire:      Roster{Captain: &cap2, Players: append([]string(nil), p.Picks.Dire...)},
		Votes:     Votes{Radiant: []string{}, Dire: []string{}},
		LobbyName: GenerateLobbyName(s.rng),
		Password:  GeneratePassword(s.rng),
		CreatedAt: time.Now().Unix(),
	}
	if err := insertOngoingTx(tx, ongoing); err != nil {
		return nil, err
	}
	if err := deletePregameTx(tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info("Draft complete, match is live", "matchID", ongoing.ID, "lobby", ongoing.LobbyName)
	return &PickResult{
		Side: side,
		Finalized: &FinalizedTeams{
			MatchID:   ongoing.ID,
			Radiant:   ongoing.Radiant,
			Dire:      ongoing.Dire,
			LobbyName: ongoing.LobbyName,
			Password:  ongoing.Password,
		},
	}, nil
}

func (s *store) SubmitResult(matchID, submitterID string, team Side) (*ResultOutcome, error) {
	// Validated before any state lookup.
	if team != SideRadiant && team != SideDire {
		return nil, ErrInvalidTeam
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	m, err := getOngoingTx(tx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		// Either never existed or already archived by a concurrent
		// submission; the deletion of the row is the exactly-once guard.
		return nil, ErrNoMatch
	}

	switch m.Type {
	case TypeChallenge:
		if m.Radiant.Captain == nil || m.Dire.Captain == nil {
			return nil, fmt.Errorf("challenge match %s has no captains", matchID)
		}
		if submitterID != *m.Radiant.Captain && submitterID != *m.Dire.Captain {
			return nil, ErrNotCaptain
		}
		finalID, err := s.finalizeResultTx(tx, m, team)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		log.Info("Challenge result recorded", "matchID", finalID, "winner", team, "reportedBy", submitterID)
		return &ResultOutcome{Finalized: true, MatchID: finalID, Winner: team}, nil

	case TypeStart:
		if err := m.castVote(submitterID, team); err != nil {
			return nil, err
		}
		if m.Votes.Count(team) >= s.cfg.VoteQuorum {
			finalID, err := s.finalizeResultTx(tx, m, team)
			if err != nil {
				return nil, err
			}
			if err := tx.Commit(); err != nil {
				return nil, err
			}
			log.Info("Pickup result finalized by quorum", "matchID", finalID, "winner", team, "votes", m.Votes.Count(team))
			return &ResultOutcome{Finalized: true, MatchID: finalID, Winner: team}, nil
		}
		if err := updateVotesTx(tx, m); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		votes := m.Votes
		return &ResultOutcome{Finalized: false, Votes: &votes}, nil

	default:
		return nil, fmt.Errorf("unknown match type %q", m.Type)
	}
}

// finalizeResultTx archives the match, applies the symmetric point deltas
// and deletes the ongoing record, all in the caller's transaction so the
// three writes commit or fail as one step.
func (s *store) finalizeResultTx(tx *sql.Tx, m *OngoingMatch, winner Side) (string, error) {
	final := &FinalizedMatch{
		ID:        uuid.New().String(),
		Type:      m.Type,
		Radiant:   m.Radiant,
		Dire:      m.Dire,
		Winner:    winner,
		LobbyName: m.LobbyName,
		Password:  m.Password,
		CreatedAt: time.Now().Unix(),
	}
	if err := insertFinalizedTx(tx, final); err != nil {
		return "", err
	}

	winners, losers := m.winnersAndLosers(winner)
	if err := applyDeltasTx(tx, winners, s.cfg.PointDelta); err != nil {
		return "", err
	}
	if err := applyDeltasTx(tx, losers, -s.cfg.PointDelta); err != nil {
		return "", err
	}

	if err := deleteOngoingTx(tx, m.ID); err != nil {
		return "", err
	}
	return final.ID, nil
}

func (s *store) Abort() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	p, err := getPregameTx(tx)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}
	if err := deletePregameTx(tx); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	log.Info("Pregame aborted", "type", p.Type)
	return true, nil
}

func (s *store) GetCurrentMatch() (*Pregame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	return getPregameTx(tx)
}

func (s *store) GetOngoingMatchForUser(playerID string) (*OngoingMatch, error) {
	matches, err := s.GetOngoingMatches()
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if m.HasParticipant(playerID) {
			return m, nil
		}
	}
	return nil, nil
}

func (s *store) GetOngoingMatches() ([]*OngoingMatch, error) {
	rows, err := s.db.Query(`
		SELECT id, type, radiant_json, dire_json, votes_json, lobby_name, password, created_at
		FROM ongoing_matches ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*OngoingMatch
	for rows.Next() {
		m, err := scanOngoing(rows)
		if err != nil {
			log.Error("Failed to scan ongoing match row", "error", err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *store) GetFinalizedMatch(matchID string) (*FinalizedMatch, error) {
	row := s.db.QueryRow(`
		SELECT id, type, radiant_json, dire_json, winner, lobby_name, password, created_at
		FROM finalized_matches WHERE id = ?`, matchID)
	m, err := scanFinalized(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (s *store) RecentFinalizedForUser(playerID string, limit int) ([]*FinalizedMatch, error) {
	rows, err := s.db.Query(`
		SELECT id, type, radiant_json, dire_json, winner, lobby_name, password, created_at
		FROM finalized_matches ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recent []*FinalizedMatch
	for rows.Next() {
		m, err := scanFinalized(rows)
		if err != nil {
			log.Error("Failed to scan finalized match row", "error", err)
			continue
		}
		if m.Radiant.Contains(playerID) || m.Dire.Contains(playerID) {
			recent = append(recent, m)
			if len(recent) == limit {
				break
			}
		}
	}
	return recent, rows.Err()
}

// poolSizeFor reports the progress denominator: the configured pool size
// for pickup matches, the total picks for a challenge draft.
func (s *store) poolSizeFor(p *Pregame) int {
	if p.Type == TypeStart {
		return s.cfg.StartPoolSize
	}
	return s.cfg.TotalPicks
}

// --- row marshalling ---

func getPregameTx(tx *sql.Tx) (*Pregame, error) {
	row := tx.QueryRow(`
		SELECT type, status, captain1, captain2, starter, pool_json, picks_json, first_pick, started_at
		FROM pregame WHERE id = 'current'`)

	var p Pregame
	var captain1, captain2, starter, picksJSON, firstPick sql.NullString
	var poolJSON string
	err := row.Scan(&p.Type, &p.Status, &captain1, &captain2, &starter, &poolJSON, &picksJSON, &firstPick, &p.StartedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Captain1 = captain1.String
	p.Captain2 = captain2.String
	p.Starter = starter.String
	p.FirstPick = Side(firstPick.String)
	if err := json.Unmarshal([]byte(poolJSON), &p.Pool); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pool_json: %w", err)
	}
	if picksJSON.Valid && picksJSON.String != "" {
		p.Picks = &Picks{}
		if err := json.Unmarshal([]byte(picksJSON.String), p.Picks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal picks_json: %w", err)
		}
	}
	return &p, nil
}

func insertPregameTx(tx *sql.Tx, p *Pregame) error {
	poolJSON, picksJSON, err := encodePregame(p)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO pregame (id, type, status, captain1, captain2, starter, pool_json, picks_json, first_pick, started_at)
		VALUES ('current', ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(p.Type), string(p.Status), nullable(p.Captain1), nullable(p.Captain2), nullable(p.Starter),
		poolJSON, picksJSON, nullable(string(p.FirstPick)), p.StartedAt,
	)
	return err
}

func updatePregameTx(tx *sql.Tx, p *Pregame) error {
	poolJSON, picksJSON, err := encodePregame(p)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		UPDATE pregame SET status = ?, pool_json = ?, picks_json = ?, first_pick = ?
		WHERE id = 'current'`,
		string(p.Status), poolJSON, picksJSON, nullable(string(p.FirstPick)),
	)
	return err
}

func deletePregameTx(tx *sql.Tx) error {
	_, err := tx.Exec("DELETE FROM pregame WHERE id = 'current'")
	return err
}

func encodePregame(p *Pregame) (poolJSON string, picksJSON sql.NullString, err error) {
	pool, err := json.Marshal(p.Pool)
	if err != nil {
		return "", sql.NullString{}, err
	}
	if p.Picks != nil {
		picks, err := json.Marshal(p.Picks)
		if err != nil {
			return "", sql.NullString{}, err
		}
		picksJSON = sql.NullString{String: string(picks), Valid: true}
	}
	return string(pool), picksJSON, nil
}

func insertOngoingTx(tx *sql.Tx, m *OngoingMatch) error {
	radiant, dire, err := encodeRosters(m.Radiant, m.Dire)
	if err != nil {
		return err
	}
	votes, err := json.Marshal(m.Votes)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO ongoing_matches (id, type, radiant_json, dire_json, votes_json, lobby_name, password, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, string(m.Type), radiant, dire, string(votes), m.LobbyName, m.Password, m.CreatedAt,
	)
	return err
}

func getOngoingTx(tx *sql.Tx, matchID string) (*OngoingMatch, error) {
	row := tx.QueryRow(`
		SELECT id, type, radiant_json, dire_json, votes_json, lobby_name, password, created_at
		FROM ongoing_matches WHERE id = ?`, matchID)
	m, err := scanOngoing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func updateVotesTx(tx *sql.Tx, m *OngoingMatch) error {
	votes, err := json.Marshal(m.Votes)
	if err != nil {
		return err
	}
	_, err = tx.Exec("UPDATE ongoing_matches SET votes_json = ? WHERE id = ?", string(votes), m.ID)
	return err
}

func deleteOngoingTx(tx *sql.Tx, matchID string) error {
	res, err := tx.Exec("DELETE FROM ongoing_matches WHERE id = ?", matchID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoMatch
	}
	return nil
}

func insertFinalizedTx(tx *sql.Tx, m *FinalizedMatch) error {
	radiant, dire, err := encodeRosters(m.Radiant, m.Dire)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO finalized_matches (id, type, radiant_json, dire_json, winner, lobby_name, password, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, string(m.Type), radiant, dire, string(m.Winner), m.LobbyName, m.Password, m.CreatedAt,
	)
	return err
}

// applyDeltasTx adjusts ladder points for every listed player that exists;
// unknown ids simply match no row.
func applyDeltasTx(tx *sql.Tx, playerIDs []string, delta int) error {
	for _, id := range playerIDs {
		if _, err := tx.Exec("UPDATE players SET points = points + ? WHERE id = ?", delta, id); err != nil {
			return fmt.Errorf("failed to adjust points for %s: %w", id, err)
		}
	}
	return nil
}

func encodeRosters(radiant, dire Roster) (string, string, error) {
	r, err := json.Marshal(radiant)
	if err != nil {
		return "", "", err
	}
	d, err := json.Marshal(dire)
	if err != nil {
		return "", "", err
	}
	return string(r), string(d), nil
}

type rowScanner interface{ Scan(...any) error }

func scanOngoing(scanner rowScanner) (*OngoingMatch, error) {
	var m OngoingMatch
	var radiantJSON, direJSON, votesJSON string
	err := scanner.Scan(&m.ID, &m.Type, &radiantJSON, &direJSON, &votesJSON, &m.LobbyName, &m.Password, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(radiantJSON), &m.Radiant); err != nil {
		return nil, fmt.Errorf("failed to unmarshal radiant_json: %w", err)
	}
	if err := json.Unmarshal([]byte(direJSON), &m.Dire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dire_json: %w", err)
	}
	if err := json.Unmarshal([]byte(votesJSON), &m.Votes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal votes_json: %w", err)
	}
	return &m, nil
}

func scanFinalized(scanner rowScanner) (*FinalizedMatch, error) {
	var m FinalizedMatch
	var radiantJSON, direJSON string
	err := scanner.Scan(&m.ID, &m.Type, &radiantJSON, &direJSON, &m.Winner, &m.LobbyName, &m.Password, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(radiantJSON), &m.Radiant); err != nil {
		return nil, fmt.Errorf("failed to unmarshal radiant_json: %w", err)
	}
	if err := json.Unmarshal([]byte(direJSON), &m.Dire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dire_json: %w", err)
	}
	return &m, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
