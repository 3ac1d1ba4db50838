package match

// castVote records a pickup-result vote in memory. One vote per
// participant, for either side, ever.
func (m *OngoingMatch) castVote(voterID string, team Side) error {
	if m.Votes.Contains(voterID) {
		return ErrAlreadyVoted
	}
	if !m.HasParticipant(voterID) {
		return ErrNotParticipant
	}
	if team == SideRadiant {
		m.Votes.Radiant = append(m.Votes.Radiant, voterID)
	} else {
		m.Votes.Dire = append(m.Votes.Dire, voterID)
	}
	return nil
}

// winnersAndLosers splits the full rosters by the reported winner,
// captains included.
func (m *OngoingMatch) winnersAndLosers(winner Side) (winners, losers []string) {
	if winner == SideRadiant {
		return m.Radiant.All(), m.Dire.All()
	}
	return m.Dire.All(), m.Radiant.All()
}
