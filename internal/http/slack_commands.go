package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/psdleague/psdl-bot/internal/inngest"
	"github.com/psdleague/psdl-bot/internal/match"
	"github.com/psdleague/psdl-bot/internal/players"
	"github.com/psdleague/psdl-bot/internal/pubsub"
	"github.com/psdleague/psdl-bot/internal/teampool"
	"github.com/slack-go/slack"
)

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// respondText writes a plain slash command response. inChannel selects
// between a channel-visible and an ephemeral reply.
func respondText(w http.ResponseWriter, inChannel bool, text string) {
	responseType := "ephemeral"
	if inChannel {
		responseType = "in_channel"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	resp := map[string]string{"response_type": responseType, "text": text}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("Failed to encode slash response", "error", err)
	}
}

// respondFormatted casts a Format*Response payload and writes it.
func respondFormatted(w http.ResponseWriter, msg any) {
	slackMsg, ok := msg.(slack.Message)
	if !ok {
		http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
		log.Error("Failed to cast message to slack.Message")
		return
	}
	respondWithSlackMsg(w, slackMsg)
}

// parseMention extracts the user id from a Slack mention like
// "<@U123|name>". A bare id passes through unchanged.
func parseMention(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "<@") || !strings.HasSuffix(raw, ">") {
		return raw
	}
	inner := raw[2 : len(raw)-1]
	if i := strings.IndexByte(inner, '|'); i >= 0 {
		inner = inner[:i]
	}
	return inner
}

// matchErrText maps the engine's sentinel errors onto user-facing
// messages. Unknown errors are treated as internal failures.
func matchErrText(err error) (string, bool) {
	switch {
	case errors.Is(err, match.ErrNoMatch):
		return "There is no match to act on right now.", true
	case errors.Is(err, match.ErrMatchInProgress):
		return "A match is already in progress. Finish or abort it first.", true
	case errors.Is(err, match.ErrMatchReady):
		return "The match is already locked in.", true
	case errors.Is(err, match.ErrNotOpen):
		return "Sign-ups are not open.", true
	case errors.Is(err, match.ErrDrafting):
		return "The draft has already started.", true
	case errors.Is(err, match.ErrAlreadySigned):
		return "You are already signed.", true
	case errors.Is(err, match.ErrNotSigned):
		return "You are not signed.", true
	case errors.Is(err, match.ErrPickingStarted):
		return "Picking has already started, the pool is closed.", true
	case errors.Is(err, match.ErrAlreadyVoted):
		return "You already voted on this match.", true
	case errors.Is(err, match.ErrAlreadyResponded):
		return "The challenge was already answered.", true
	case errors.Is(err, match.ErrNotCaptain):
		return "Only a captain can do that.", true
	case errors.Is(err, match.ErrNotYourTurn):
		return "It is not your turn to pick.", true
	case errors.Is(err, match.ErrInvalidTeam):
		return "Pick a side: radiant or dire.", true
	case errors.Is(err, match.ErrNotInPool):
		return "That player is not in the pool.", true
	case errors.Is(err, match.ErrNotParticipant):
		return "You are not part of this match.", true
	case errors.Is(err, match.ErrNotEnoughPlayers):
		return "Not enough players signed yet.", true
	case errors.Is(err, match.ErrNotApplicable):
		return "That does not apply to the current match.", true
	case errors.Is(err, match.ErrPoolLookup):
		return "Some pooled players are not registered. Ask them to register first.", true
	}
	return "", false
}

// respondCommandErr writes either the mapped user-facing message or a 500.
func respondCommandErr(w http.ResponseWriter, err error) {
	if text, ok := matchErrText(err); ok {
		respondText(w, false, text)
		return
	}
	log.Error("Slash command failed", "error", err)
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

func parseSlashCommand(w http.ResponseWriter, r *http.Request) (slack.SlashCommand, bool) {
	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		http.Error(w, "Error parsing command", http.StatusBadRequest)
		return slack.SlashCommand{}, false
	}
	return cmd, true
}

// publishTeamsReady pushes the freshly created ongoing match onto the
// notification topic and arms the result reminder. Best effort: a
// publish failure never fails the user's command.
func (s *Server) publishTeamsReady(playerID string) {
	om, err := s.Matches.GetOngoingMatchForUser(playerID)
	if err != nil || om == nil {
		log.Error("Could not load ongoing match for teams-ready event", "error", err, "playerID", playerID)
		return
	}
	if err := s.pubsub.SendMessage(pubsub.EventNotifyTeams, om); err != nil {
		log.Error("Failed to publish teams-ready event", "error", err, "matchID", om.ID)
	}
	if s.InngestClient != nil {
		s.InngestClient.SendEvent(inngest.EventTeamsReady, inngest.MatchEvent{
			MatchID: om.ID,
			Type:    string(om.Type),
		}.Map())
	}
}

func (s *Server) RegisterCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, ok := parseSlashCommand(w, r)
		if !ok {
			return
		}
		fields := strings.Fields(cmd.Text)
		if len(fields) != 3 {
			respondText(w, false, "Usage: /psdl-register <handle> <core|support> <tier 1-5>")
			return
		}
		role := players.Role(strings.ToLower(fields[1]))
		if role != players.RoleCore && role != players.RoleSupport {
			respondText(w, false, "Role must be core or support.")
			return
		}
		tier, err := strconv.Atoi(fields[2])
		if err != nil || tier < 1 || tier > 5 {
			respondText(w, false, "Tier must be a number from 1 to 5.")
			return
		}

		created, err := s.Players.Register(players.Profile{
			ID:     cmd.UserID,
			Handle: fields[0],
			Role:   role,
			Tier:   tier,
			Active: true,
		})
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		if !created {
			respondText(w, false, "You are already registered.")
			return
		}
		respondText(w, true, fmt.Sprintf("<@%s> registered as %s (tier %d). Welcome to the league!", cmd.UserID, role, tier))
	}
}

func (s *Server) ChallengeCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, ok := parseSlashCommand(w, r)
		if !ok {
			return
		}
		opponent := parseMention(cmd.Text)
		if opponent == "" {
			respondText(w, false, "Usage: /psdl-challenge @opponent")
			return
		}

		pregame, err := s.Matches.Create(match.TypeChallenge, cmd.UserID, opponent)
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		s.Metrics.IncMatchesCreated(string(match.TypeChallenge))
		if err := s.pubsub.SendMessage(pubsub.EventNotifyChallenge, pregame); err != nil {
			log.Error("Failed to publish challenge event", "error", err)
		}
		respondText(w, false, fmt.Sprintf("Challenge sent to <@%s>.", opponent))
	}
}

func (s *Server) StartCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, ok := parseSlashCommand(w, r)
		if !ok {
			return
		}
		pregame, err := s.Matches.Create(match.TypeStart, cmd.UserID, "")
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		s.Metrics.IncMatchesCreated(string(match.TypeStart))
		if err := s.Notifier.SendPoolProgress(pregame, s.Cfg.League.StartPoolSize, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to announce pickup pool", "error", err)
		}
		respondText(w, true, fmt.Sprintf("<@%s> opened a pickup match. Sign with /psdl-sign! (%d/%d)",
			cmd.UserID, len(pregame.Pool), s.Cfg.League.StartPoolSize))
	}
}

func (s *Server) RespondCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, ok := parseSlashCommand(w, r)
		if !ok {
			return
		}
		var accept bool
		switch strings.ToLower(strings.TrimSpace(cmd.Text)) {
		case "accept", "yes":
			accept = true
		case "reject", "no":
			accept = false
		default:
			respondText(w, false, "Usage: /psdl-respond <accept|reject>")
			return
		}

		pregame, err := s.Matches.Respond(accept, cmd.UserID)
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		if pregame == nil {
			respondText(w, true, fmt.Sprintf("<@%s> rejected the challenge.", cmd.UserID))
			return
		}
		if err := s.pubsub.SendMessage(pubsub.EventNotifyDraft, pregame); err != nil {
			log.Error("Failed to publish draft event", "error", err)
		}
		respondText(w, false, "Challenge accepted. The pool is open.")
	}
}

func (s *Server) SignCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, ok := parseSlashCommand(w, r)
		if !ok {
			return
		}
		res, err := s.Matches.SignToPool(cmd.UserID)
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		if res.Finalized != nil {
			s.publishTeamsReady(cmd.UserID)
			respondText(w, true, fmt.Sprintf("The pool is full! Teams are balanced, lobby *%s* is up.", res.Finalized.LobbyName))
			return
		}
		if res.PoolSize > 0 {
			respondText(w, true, fmt.Sprintf("<@%s> signed. %d/%d.", cmd.UserID, res.Count, res.PoolSize))
			return
		}
		respondText(w, true, fmt.Sprintf("<@%s> signed. %d in the pool.", cmd.UserID, res.Count))
	}
}

func (s *Server) UnsignCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, ok := parseSlashCommand(w, r)
		if !ok {
			return
		}
		res, err := s.Matches.RemoveFromPool(cmd.UserID)
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		respondText(w, true, fmt.Sprintf("<@%s> left the pool. %d remain.", cmd.UserID, res.Count))
	}
}

func (s *Server) PickCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, ok := parseSlashCommand(w, r)
		if !ok {
			return
		}
		target := parseMention(cmd.Text)
		if target == "" {
			respondText(w, false, "Usage: /psdl-pick @player")
			return
		}

		res, err := s.Matches.Pick(cmd.UserID, target)
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		s.Metrics.IncDraftPicks()
		if res.Finalized != nil {
			s.publishTeamsReady(cmd.UserID)
			respondText(w, true, fmt.Sprintf("Draft complete! Lobby *%s* is up.", res.Finalized.LobbyName))
			return
		}
		respondText(w, true, fmt.Sprintf("<@%s> picked <@%s> for %s.", cmd.UserID, target, res.Side))
	}
}

func (s *Server) ResultCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, ok := parseSlashCommand(w, r)
		if !ok {
			return
		}
		side, err := match.ParseSide(strings.ToLower(strings.TrimSpace(cmd.Text)))
		if err != nil {
			respondText(w, false, "Usage: /psdl-result <radiant|dire>")
			return
		}

		om, err := s.Matches.GetOngoingMatchForUser(cmd.UserID)
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		if om == nil {
			respondText(w, false, "You are not in an ongoing match.")
			return
		}

		outcome, err := s.Matches.SubmitResult(om.ID, cmd.UserID, side)
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		if outcome.Finalized {
			s.Metrics.IncMatchesFinalized(string(om.Type))
			fm, err := s.Matches.GetFinalizedMatch(outcome.MatchID)
			if err != nil || fm == nil {
				log.Error("Could not load finalized match for result event", "error", err, "matchID", outcome.MatchID)
			} else if err := s.pubsub.SendMessage(pubsub.EventNotifyResult, fm); err != nil {
				log.Error("Failed to publish result event", "error", err, "matchID", fm.ID)
			}
			respondText(w, true, fmt.Sprintf("Result recorded: *%s* wins. Points updated.", outcome.Winner))
			return
		}
		s.Metrics.IncVotesCast()
		respondText(w, true, fmt.Sprintf("Vote counted. Radiant %d, dire %d.",
			outcome.Votes.Count(match.SideRadiant), outcome.Votes.Count(match.SideDire)))
	}
}

func (s *Server) AbortCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := parseSlashCommand(w, r); !ok {
			return
		}
		aborted, err := s.Matches.Abort()
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		if !aborted {
			respondText(w, false, "There is no pregame to abort.")
			return
		}
		respondText(w, true, "The pregame was aborted.")
	}
}

func (s *Server) CurrentCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := parseSlashCommand(w, r); !ok {
			return
		}
		pregame, err := s.Matches.GetCurrentMatch()
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		ongoing, err := s.Matches.GetOngoingMatches()
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		msg, err := s.Notifier.FormatCurrentMatchResponse(pregame, ongoing)
		if err != nil {
			http.Error(w, "Failed to format match state", http.StatusInternalServerError)
			log.Error("Failed to format match state", "error", err)
			return
		}
		respondFormatted(w, msg)
	}
}

func (s *Server) MyTeamCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, ok := parseSlashCommand(w, r)
		if !ok {
			return
		}
		om, err := s.Matches.GetOngoingMatchForUser(cmd.UserID)
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		if om == nil {
			respondText(w, false, "You are not in an ongoing match.")
			return
		}
		side := match.SideDire
		if om.Radiant.Contains(cmd.UserID) {
			side = match.SideRadiant
		}
		respondText(w, false, fmt.Sprintf("You are on *%s* in lobby %s (password %s).", side, om.LobbyName, om.Password))
	}
}

func (s *Server) InfoCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, ok := parseSlashCommand(w, r)
		if !ok {
			return
		}
		matchID := strings.TrimSpace(cmd.Text)
		if matchID == "" {
			respondText(w, false, "Usage: /psdl-info <match id>")
			return
		}
		fm, err := s.Matches.GetFinalizedMatch(matchID)
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		if fm == nil {
			respondText(w, false, "No finalized match with that id.")
			return
		}
		respondText(w, false, fmt.Sprintf("%s (%s): *%s* won. Radiant %d players, dire %d.",
			fm.LobbyName, fm.Type, fm.Winner, len(fm.Radiant.All()), len(fm.Dire.All())))
	}
}

func (s *Server) PointsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, ok := parseSlashCommand(w, r)
		if !ok {
			return
		}
		query := strings.TrimSpace(cmd.Text)

		var profile *players.Profile
		var err error
		if query == "" {
			profile, err = s.Players.GetByID(cmd.UserID)
			query = cmd.UserName
		} else {
			profile, err = s.Players.GetByHandle(query)
		}
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		if profile == nil {
			msg, err := s.Notifier.FormatPlayerNotFoundResponse(query)
			if err != nil {
				http.Error(w, "Failed to format response", http.StatusInternalServerError)
				return
			}
			respondFormatted(w, msg)
			return
		}

		recent, err := s.Matches.RecentFinalizedForUser(profile.ID, 10)
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		msg, err := s.Notifier.FormatPlayerInfoResponse(profile, recent)
		if err != nil {
			http.Error(w, "Failed to format player info", http.StatusInternalServerError)
			log.Error("Failed to format player info", "error", err)
			return
		}
		respondFormatted(w, msg)
	}
}

func (s *Server) LadderCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := parseSlashCommand(w, r); !ok {
			return
		}
		profiles, err := s.Players.ListAll()
		if err != nil {
			respondCommandErr(w, err)
			return
		}
		msg, err := s.Notifier.FormatLadderResponse(profiles)
		if err != nil {
			http.Error(w, "Failed to format ladder", http.StatusInternalServerError)
			log.Error("Failed to format ladder", "error", err)
			return
		}
		respondFormatted(w, msg)
	}
}

func (s *Server) LobbyCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := parseSlashCommand(w, r); !ok {
			return
		}
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		respondText(w, false, fmt.Sprintf("Lobby: %s\nPassword: %s",
			match.GenerateLobbyName(rng), match.GeneratePassword(rng)))
	}
}

func (s *Server) TeamPoolCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, ok := parseSlashCommand(w, r)
		if !ok {
			return
		}
		fields := strings.Fields(strings.ToLower(cmd.Text))
		sub := ""
		if len(fields) > 0 {
			sub = fields[0]
		}

		switch sub {
		case "open":
			if err := s.TeamPools.Create(); err != nil {
				respondCommandErr(w, err)
				return
			}
			respondText(w, true, "Team pool is open. Sign with /psdl-teampool sign.")
		case "sign":
			res, err := s.TeamPools.Sign(cmd.UserID)
			if err != nil {
				s.respondTeamPoolErr(w, err)
				return
			}
			respondText(w, true, fmt.Sprintf("<@%s> joined the team pool. %d signed.", cmd.UserID, res.Count))
		case "split":
			if len(fields) < 2 {
				respondText(w, false, "Usage: /psdl-teampool split <teams>")
				return
			}
			numTeams, err := strconv.Atoi(fields[1])
			if err != nil || numTeams < 2 {
				respondText(w, false, "Team count must be a number of at least 2.")
				return
			}
			res, err := s.TeamPools.Split(numTeams)
			if err != nil {
				s.respondTeamPoolErr(w, err)
				return
			}
			respondText(w, true, formatSplitTeams(res))
		case "result":
			res, err := s.TeamPools.Result()
			if err != nil {
				s.respondTeamPoolErr(w, err)
				return
			}
			if res == nil {
				respondText(w, false, "The pool has not been split yet.")
				return
			}
			respondText(w, false, formatSplitTeams(res))
		case "abort":
			aborted, err := s.TeamPools.Abort()
			if err != nil {
				s.respondTeamPoolErr(w, err)
				return
			}
			if !aborted {
				respondText(w, false, "There is no team pool to abort.")
				return
			}
			respondText(w, true, "The team pool was discarded.")
		default:
			respondText(w, false, "Usage: /psdl-teampool <open|sign|split N|result|abort>")
		}
	}
}

func (s *Server) respondTeamPoolErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, teampool.ErrNoPool):
		respondText(w, false, "There is no open team pool.")
	case errors.Is(err, teampool.ErrAlreadySigned):
		respondText(w, false, "You are already in the team pool.")
	case errors.Is(err, teampool.ErrNotEnough):
		respondText(w, false, "Not enough players signed for that many teams.")
	default:
		log.Error("Team pool command failed", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func formatSplitTeams(res *teampool.SplitResult) string {
	var b strings.Builder
	b.WriteString("Teams:")
	for i, team := range res.Teams {
		b.WriteString(fmt.Sprintf("\n*Team %d*: ", i+1))
		mentions := make([]string, 0, len(team))
		for _, id := range team {
			mentions = append(mentions, fmt.Sprintf("<@%s>", id))
		}
		b.WriteString(strings.Join(mentions, ", "))
	}
	return b.String()
}
