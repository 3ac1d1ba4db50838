package slack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/psdleague/psdl-bot/internal/match"
	"github.com/psdleague/psdl-bot/internal/players"
	"github.com/slack-go/slack"
)

// formatChallengeCreated announces a pending challenge using Block Kit.
func (s *Notifier) formatChallengeCreated(pregame *match.Pregame) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⚔️ Challenge issued! ⚔️", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("<@%s> has challenged <@%s>.\n<@%s>, reply with `/psdl-respond accept` or `/psdl-respond reject`.",
		pregame.Captain1, pregame.Captain2, pregame.Captain2)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", detailsText, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatDraftStarted announces that a challenge was accepted and signing is open.
func (s *Notifier) formatDraftStarted(pregame *match.Pregame) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "📝 Challenge accepted! Pool is open", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("Captains: <@%s> (Radiant) vs <@%s> (Dire)\nSign with `/psdl-sign` to enter the draft pool.",
		pregame.Captain1, pregame.Captain2)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", detailsText, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatPoolProgress posts the sign-up count for an open pool.
func (s *Notifier) formatPoolProgress(pregame *match.Pregame, target int) slack.Message {
	blocks := make([]slack.Block, 0)

	text := fmt.Sprintf("Pool: %d/%d signed.", len(pregame.Pool), target)
	if len(pregame.Pool) > 0 {
		mentions := make([]string, 0, len(pregame.Pool))
		for _, id := range pregame.Pool {
			mentions = append(mentions, fmt.Sprintf("<@%s>", id))
		}
		text += "\n" + strings.Join(mentions, ", ")
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatTeamsReady posts the final rosters and lobby credentials.
func (s *Notifier) formatTeamsReady(m *match.OngoingMatch) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🎮 Teams are set! 🎮", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject("mrkdwn", "*Radiant*\n"+rosterLines(m.Radiant), false, false), nil, nil))
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject("mrkdwn", "*Dire*\n"+rosterLines(m.Dire), false, false), nil, nil))

	lobbyText := fmt.Sprintf("Lobby: %s\nPassword: %s", m.LobbyName, m.Password)
	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject("plain_text", lobbyText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatResultFinalized posts the final score of a match.
func (s *Notifier) formatResultFinalized(m *match.FinalizedMatch) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Match finished! 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	winners := m.Radiant
	losers := m.Dire
	if m.Winner == match.SideDire {
		winners, losers = losers, winners
	}
	detailsText := fmt.Sprintf("*%s* takes the win.\n\nWinners:\n%s\n\nLosers:\n%s",
		sideName(m.Winner), rosterLines(winners), rosterLines(losers))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", detailsText, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatLadder renders the point ladder sorted by points descending.
func (s *Notifier) formatLadder(profiles []players.Profile) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "📈 Point Ladder 📈", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	sorted := make([]players.Profile, len(profiles))
	copy(sorted, profiles)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].Handle < sorted[j].Handle
	})

	var lines []string
	for i, p := range sorted {
		lines = append(lines, fmt.Sprintf("%d. %s — %d pts", i+1, p.Handle, p.Points))
	}
	if len(lines) == 0 {
		lines = append(lines, "No registered players yet.")
	}
	blocks = append(blocks, slack.NewSectionBlock(
		slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerInfo renders one player's profile and recent results.
func (s *Notifier) formatPlayerInfo(profile *players.Profile, recent []*match.FinalizedMatch) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("Player: %s", profile.Handle), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("Role: %s\nTier: %d\nPoints: %d", profile.Role, profile.Tier, profile.Points)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	if len(recent) > 0 {
		var lines []string
		for _, fm := range recent {
			outcome := "lost"
			side := match.SideDire
			if fm.Radiant.Contains(profile.ID) {
				side = match.SideRadiant
			}
			if fm.Winner == side {
				outcome = "won"
			}
			lines = append(lines, fmt.Sprintf("• %s %s as %s", fm.LobbyName, outcome, side))
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("plain_text", "Recent matches:\n"+strings.Join(lines, "\n"), true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatCurrentMatch renders the live state: the pregame plus any ongoing matches.
func (s *Notifier) formatCurrentMatch(pregame *match.Pregame, ongoing []*match.OngoingMatch) slack.Message {
	blocks := make([]slack.Block, 0)

	if pregame == nil && len(ongoing) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("plain_text", "No match in progress.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	if pregame != nil {
		var text string
		// Pickup pregames stay pending until the pool fills; only a
		// challenge distinguishes pending from waiting.
		switch {
		case pregame.Type == match.TypeChallenge && pregame.Status == match.StatusPending:
			text = fmt.Sprintf("Pending challenge: <@%s> vs <@%s>, awaiting response.", pregame.Captain1, pregame.Captain2)
		case pregame.Type == match.TypeChallenge:
			text = fmt.Sprintf("Challenge draft: <@%s> vs <@%s>, %d in pool.", pregame.Captain1, pregame.Captain2, len(pregame.Pool))
			if pregame.Picks != nil && pregame.Picks.Total() > 0 {
				text += fmt.Sprintf("\nPicks so far: radiant %d, dire %d.", len(pregame.Picks.Radiant), len(pregame.Picks.Dire))
			}
		default:
			text = fmt.Sprintf("Pickup pool open: %d signed.", len(pregame.Pool))
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
	}

	for _, m := range ongoing {
		text := fmt.Sprintf("*%s* (%s)\nRadiant:\n%s\nDire:\n%s\nVotes: radiant %d, dire %d",
			m.LobbyName, m.Type, rosterLines(m.Radiant), rosterLines(m.Dire),
			m.Votes.Count(match.SideRadiant), m.Votes.Count(match.SideDire))
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound renders a not-found message for player lookups.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	blocks := make([]slack.Block, 0)
	text := fmt.Sprintf("Sorry, no player matching '%s' was found.", query)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil))
	return slack.NewBlockMessage(blocks...)
}

func sideName(s match.Side) string {
	if s == match.SideRadiant {
		return "Radiant"
	}
	return "Dire"
}

func rosterLines(r match.Roster) string {
	var lines []string
	if r.Captain != nil {
		lines = append(lines, fmt.Sprintf("• <@%s> (captain)", *r.Captain))
	}
	for _, id := range r.Players {
		lines = append(lines, fmt.Sprintf("• <@%s>", id))
	}
	return strings.Join(lines, "\n")
}
