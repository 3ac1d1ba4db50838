package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/psdleague/psdl-bot/internal/match"
	"github.com/psdleague/psdl-bot/internal/metrics"
	"github.com/psdleague/psdl-bot/internal/notifier"
	"github.com/psdleague/psdl-bot/internal/players"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendChallengeCreated(pregame *match.Pregame, dryRun bool) error {
	msg := s.formatChallengeCreated(pregame)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendDraftStarted(pregame *match.Pregame, dryRun bool) error {
	msg := s.formatDraftStarted(pregame)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendPoolProgress(pregame *match.Pregame, target int, dryRun bool) error {
	msg := s.formatPoolProgress(pregame, target)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendTeamsReady(m *match.OngoingMatch, dryRun bool) error {
	msg := s.formatTeamsReady(m)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendResultFinalized(m *match.FinalizedMatch, dryRun bool) error {
	msg := s.formatResultFinalized(m)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLadderResponse formats the point ladder for a slash command response.
func (s *Notifier) FormatLadderResponse(profiles []players.Profile) (any, error) {
	return s.formatLadder(profiles), nil
}

// FormatPlayerInfoResponse formats a player summary for a slash command response.
func (s *Notifier) FormatPlayerInfoResponse(profile *players.Profile, recent []*match.FinalizedMatch) (any, error) {
	return s.formatPlayerInfo(profile, recent), nil
}

// FormatCurrentMatchResponse formats the live match state for a slash command response.
func (s *Notifier) FormatCurrentMatchResponse(pregame *match.Pregame, ongoing []*match.OngoingMatch) (any, error) {
	return s.formatCurrentMatch(pregame, ongoing), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}
