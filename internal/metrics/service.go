package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psdl_matches_created_total",
			Help: "The total number of pregames created, by match type.",
		}, []string{"type"}),
		MatchesFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psdl_matches_finalized_total",
			Help: "The total number of matches finalized with a result, by match type.",
		}, []string{"type"}),
		DraftPicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psdl_draft_picks_total",
			Help: "The total number of captain draft picks applied.",
		}),
		VotesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psdl_result_votes_total",
			Help: "The total number of pickup result votes cast.",
		}),
		BalanceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "psdl_balance_duration_seconds",
			Help:    "The duration of team balancing runs.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psdl_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psdl_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psdl_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesCreated,
		s.MatchesFinalized,
		s.DraftPicks,
		s.VotesCast,
		s.BalanceDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesCreated(matchType string) {
	s.MatchesCreated.WithLabelValues(matchType).Inc()
}

func (s *Service) IncMatchesFinalized(matchType string) {
	s.MatchesFinalized.WithLabelValues(matchType).Inc()
}

func (s *Service) IncDraftPicks() {
	s.DraftPicks.Inc()
}

func (s *Service) IncVotesCast() {
	s.VotesCast.Inc()
}

func (s *Service) ObserveBalanceDuration(duration float64) {
	s.BalanceDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
