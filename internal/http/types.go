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

type Server struct {
	Players        players.Directory
	Matches        match.Service
	TeamPools      teampool.Service
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
	InngestClient  inngest.InngestClient
}
