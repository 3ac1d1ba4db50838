package match

import "math/rand"

// nextTurn computes the side to act: whichever side has fewer picks, or
// the first-pick side when the counts are level.
func (p *Pregame) nextTurn() Side {
	if len(p.Picks.Radiant) == len(p.Picks.Dire) {
		return p.FirstPick
	}
	if len(p.Picks.Radiant) < len(p.Picks.Dire) {
		return SideRadiant
	}
	return SideDire
}

// applyPick validates and applies one draft pick in memory. It randomizes
// the first-pick side on the very first pick of the match and reports the
// acting side plus whether the draft is now complete. The minimum-pool
// threshold is enforced only before the first pick; the pool is allowed
// to shrink below it mid-draft.
func (p *Pregame) applyPick(captainID, targetID string, minPool, totalPicks int, captainsCount bool, rng *rand.Rand) (Side, bool, error) {
	if p.Type != TypeChallenge {
		return "", false, ErrNotApplicable
	}
	if p.Picks == nil {
		p.Picks = &Picks{}
	}

	if p.Picks.Total() == 0 {
		signed := len(p.Pool)
		if captainsCount {
			signed += 2
		}
		if signed < minPool {
			return "", false, ErrNotEnoughPlayers
		}
	}

	if !p.inPool(targetID) {
		return "", false, ErrNotInPool
	}

	if p.FirstPick == "" && p.Picks.Total() == 0 {
		if rng.Intn(2) == 0 {
			p.FirstPick = SideRadiant
		} else {
			p.FirstPick = SideDire
		}
	}

	turn := p.nextTurn()
	expected := p.Captain1
	if turn == SideDire {
		expected = p.Captain2
	}
	if captainID != expected {
		return "", false, ErrNotYourTurn
	}

	if turn == SideRadiant {
		p.Picks.Radiant = append(p.Picks.Radiant, targetID)
	} else {
		p.Picks.Dire = append(p.Picks.Dire, targetID)
	}
	if err := removeID(&p.Pool, targetID); err != nil {
		return "", false, err
	}

	return turn, p.Picks.Total() == totalPicks, nil
}

func removeID(pool *[]string, playerID string) error {
	for i, id := range *pool {
		if id == playerID {
			*pool = append((*pool)[:i], (*pool)[i+1:]...)
			return nil
		}
	}
	return ErrNotInPool
}
