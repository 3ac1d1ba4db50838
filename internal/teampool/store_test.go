package teampool

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/psdleague/psdl-bot/internal/database"
	"github.com/psdleague/psdl-bot/internal/metrics"
	"github.com/psdleague/psdl-bot/internal/players"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPool(t *testing.T) (Service, players.Directory, *metrics.MockMetrics, func()) {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	directory := players.New(db)
	metricsMock := metrics.NewMock()
	svc := New(db, directory, metricsMock, rand.New(rand.NewSource(1)))
	return svc, directory, metricsMock, teardown
}

func registerPoolPlayers(t *testing.T, directory players.Directory, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("tp%d", i)
		role := players.RoleCore
		if i%2 == 0 {
			role = players.RoleSupport
		}
		_, err := directory.Register(players.Profile{ID: id, Handle: id, Role: role, Tier: 1 + i%5})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestPoolLifecycle(t *testing.T) {
	svc, directory, metricsMock, teardown := setupPool(t)
	defer teardown()
	ids := registerPoolPlayers(t, directory, 10)

	t.Run("operations require an open pool", func(t *testing.T) {
		_, err := svc.Sign("tp1")
		assert.ErrorIs(t, err, ErrNoPool)
		_, err = svc.Split(2)
		assert.ErrorIs(t, err, ErrNoPool)
	})

	require.NoError(t, svc.Create())

	for i, id := range ids {
		res, err := svc.Sign(id)
		require.NoError(t, err)
		assert.Equal(t, i+1, res.Count)
	}

	t.Run("no duplicate sign-ups", func(t *testing.T) {
		_, err := svc.Sign("tp1")
		assert.ErrorIs(t, err, ErrAlreadySigned)
	})

	pool, err := svc.Pool()
	require.NoError(t, err)
	assert.Equal(t, ids, pool, "pool preserves sign-up order")

	t.Run("no result before the split", func(t *testing.T) {
		res, err := svc.Result()
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("split needs enough signees", func(t *testing.T) {
		_, err := svc.Split(3)
		assert.ErrorIs(t, err, ErrNotEnough)
	})

	split, err := svc.Split(2)
	require.NoError(t, err)
	require.Len(t, split.Teams, 2)
	assert.Len(t, metricsMock.BalanceObservations, 1, "the balancing run is timed")

	seen := map[string]bool{}
	for _, team := range split.Teams {
		assert.Len(t, team, TeamSize)
		for _, id := range team {
			assert.False(t, seen[id], "player %s assigned twice", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 10)

	t.Run("split closes the pool", func(t *testing.T) {
		_, err := svc.Sign("tp11")
		assert.ErrorIs(t, err, ErrNoPool)
		_, err = svc.Split(2)
		assert.ErrorIs(t, err, ErrNoPool)

		pool, err := svc.Pool()
		require.NoError(t, err)
		assert.Nil(t, pool)
	})

	t.Run("result survives until abort", func(t *testing.T) {
		res, err := svc.Result()
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, split.Teams, res.Teams)
	})

	aborted, err := svc.Abort()
	require.NoError(t, err)
	assert.True(t, aborted)

	aborted, err = svc.Abort()
	require.NoError(t, err)
	assert.False(t, aborted)

	_, err = svc.Result()
	assert.ErrorIs(t, err, ErrNoPool)
}

func TestPoolSplitOverflowStaysPooled(t *testing.T) {
	svc, directory, _, teardown := setupPool(t)
	defer teardown()
	ids := registerPoolPlayers(t, directory, 12)

	require.NoError(t, svc.Create())
	for _, id := range ids {
		_, err := svc.Sign(id)
		require.NoError(t, err)
	}

	split, err := svc.Split(2)
	require.NoError(t, err)

	// The two latest signees miss the 10-player cut.
	for _, team := range split.Teams {
		assert.NotContains(t, team, "tp11")
		assert.NotContains(t, team, "tp12")
	}
}

func TestPoolCreateReplacesPrevious(t *testing.T) {
	svc, directory, _, teardown := setupPool(t)
	defer teardown()
	registerPoolPlayers(t, directory, 1)

	require.NoError(t, svc.Create())
	_, err := svc.Sign("tp1")
	require.NoError(t, err)

	require.NoError(t, svc.Create())
	pool, err := svc.Pool()
	require.NoError(t, err)
	assert.Empty(t, pool, "recreating resets the sign-up list")
}

func TestPoolSplitUnregisteredSignee(t *testing.T) {
	svc, directory, metricsMock, teardown := setupPool(t)
	defer teardown()
	ids := registerPoolPlayers(t, directory, 9)

	require.NoError(t, svc.Create())
	for _, id := range append(ids, "stranger") {
		_, err := svc.Sign(id)
		require.NoError(t, err)
	}

	_, err := svc.Split(2)
	assert.ErrorIs(t, err, ErrNotEnough)
	assert.Empty(t, metricsMock.BalanceObservations, "nothing is timed when the split fails early")

	// The failed split leaves the pool open.
	pool, err := svc.Pool()
	require.NoError(t, err)
	assert.Len(t, pool, 10)
}
