package match

// join adds a player to the pregame pool, enforcing the type- and
// phase-specific eligibility rules. Captain exclusion for challenge
// matches is the caller's concern since captain identity lives outside
// the pool itself.
func (p *Pregame) join(playerID string) error {
	if p.Status == StatusReady {
		return ErrMatchReady
	}
	if p.Type == TypeChallenge {
		if p.Status != StatusWaiting {
			return ErrNotOpen
		}
		if p.Picks != nil && p.Picks.Total() > 0 {
			return ErrDrafting
		}
	}
	if p.inPool(playerID) {
		return ErrAlreadySigned
	}
	p.Pool = append(p.Pool, playerID)
	return nil
}

// leave removes a player from the pool, preserving the relative order of
// the remaining ids.
func (p *Pregame) leave(playerID string) error {
	if p.Type == TypeChallenge && p.Picks != nil && p.Picks.Total() > 0 {
		return ErrPickingStarted
	}
	if p.Type == TypeStart && p.Status == StatusReady {
		return ErrMatchReady
	}
	if !p.inPool(playerID) {
		return ErrNotSigned
	}
	kept := p.Pool[:0]
	for _, id := range p.Pool {
		if id != playerID {
			kept = append(kept, id)
		}
	}
	p.Pool = kept
	return nil
}

func (p *Pregame) inPool(playerID string) bool {
	for _, id := range p.Pool {
		if id == playerID {
			return true
		}
	}
	return false
}

// isCaptain reports whether the player is one of the fixed challenge
// captains.
func (p *Pregame) isCaptain(playerID string) bool {
	return p.Type == TypeChallenge && (playerID == p.Captain1 || playerID == p.Captain2)
}
