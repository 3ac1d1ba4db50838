package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncMatchesCreated("challenge")
	s.IncMatchesCreated("challenge")
	s.IncMatchesCreated("start")
	s.IncMatchesFinalized("start")
	s.IncDraftPicks()
	s.IncVotesCast()
	s.IncVotesCast()
	s.IncSlackNotifSent()
	s.IncSlackNotifFailed()
	s.SetStartupTime(1.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.MatchesCreated.WithLabelValues("challenge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.MatchesCreated.WithLabelValues("start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.MatchesFinalized.WithLabelValues("start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.DraftPicks))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.VotesCast))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.SlackNotifSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.SlackNotifFailed))
	assert.Equal(t, 1.5, testutil.ToFloat64(s.StartupTimeSeconds))
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)
	s.IncMatchesCreated("start")
	s.ObserveBalanceDuration(0.002)

	handler := NewMetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `psdl_matches_created_total{type="start"} 1`)
	assert.Contains(t, body, "psdl_balance_duration_seconds_bucket")
}
