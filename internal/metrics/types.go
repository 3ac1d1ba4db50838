package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds the Prometheus collectors for the league bot.
type Service struct {
	MatchesCreated     *prometheus.CounterVec
	MatchesFinalized   *prometheus.CounterVec
	DraftPicks         prometheus.Counter
	VotesCast          prometheus.Counter
	BalanceDuration    prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
