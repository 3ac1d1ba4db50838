package http

import (
	"net/http"

	"github.com/psdleague/psdl-bot/internal/config"
	"github.com/psdleague/psdl-bot/internal/inngest"
	"github.com/psdleague/psdl-bot/internal/match"
	"github.com/psdleague/psdl-bot/internal/metrics"
	"github.com/psdleague/psdl-bot/internal/notifier"
	"github.com/psdleague/psdl-bot/internal/players"
	"github.com/psdleague/psdl-bot/internal/pubsub"
	"github.com/psdleague/psdl-bot/internal/teampool"
)

func NewServer(directory players.Directory, matches match.Service, teamPools teampool.Service, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient, inngestClient inngest.InngestClient) *Server {
	server := &Server{
		Players:        directory,
		Matches:        matches,
		TeamPools:      teamPools,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
		InngestClient:  inngestClient,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Slash command routes additionally verify the Slack request signature.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/matches/ongoing", Chain(s.ListOngoingHandler(), paramsMiddleware))
	s.Router.Handle("/matches/finalized", Chain(s.GetFinalizedHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/push", Chain(s.PubSubPushHandler(), paramsMiddleware))

	slackMW := []Middleware{paramsMiddleware, s.slackVerifyMiddleware}
	s.Router.Handle("/slack/command/register", Chain(s.RegisterCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/challenge", Chain(s.ChallengeCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/start", Chain(s.StartCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/respond", Chain(s.RespondCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/sign", Chain(s.SignCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/unsign", Chain(s.UnsignCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/pick", Chain(s.PickCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/result", Chain(s.ResultCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/abort", Chain(s.AbortCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/current", Chain(s.CurrentCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/myteam", Chain(s.MyTeamCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/info", Chain(s.InfoCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/points", Chain(s.PointsCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/ladder", Chain(s.LadderCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/lobby", Chain(s.LobbyCommandHandler(), slackMW...))
	s.Router.Handle("/slack/command/teampool", Chain(s.TeamPoolCommandHandler(), slackMW...))

	if s.InngestClient != nil {
		s.Router.Handle("/api/inngest", s.InngestClient.Serve())
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
