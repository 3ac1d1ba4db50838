package match

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/psdleague/psdl-bot/internal/config"
	"github.com/psdleague/psdl-bot/internal/database"
	"github.com/psdleague/psdl-bot/internal/metrics"
	"github.com/psdleague/psdl-bot/internal/players"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCfg() config.LeagueConfig {
	return config.LeagueConfig{
		StartPoolSize:   10,
		MinPoolForDraft: 8,
		TotalPicks:      8,
		VoteQuorum:      6,
		PointDelta:      25,
	}
}

// setupEngine spins up an in-memory database with the full schema, a real
// player directory and a seeded engine.
func setupEngine(t *testing.T, cfg config.LeagueConfig, seed int64) (Service, players.Directory, *metrics.MockMetrics, func()) {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	directory := players.New(db)
	metricsMock := metrics.NewMock()
	svc := New(db, directory, cfg, metricsMock, rand.New(rand.NewSource(seed)))
	return svc, directory, metricsMock, teardown
}

// registerPlayers registers n players p1..pn with alternating roles.
func registerPlayers(t *testing.T, directory players.Directory, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		role := players.RoleCore
		if i%2 == 0 {
			role = players.RoleSupport
		}
		created, err := directory.Register(players.Profile{
			ID:     id,
			Handle: fmt.Sprintf("player_%d", i),
			Role:   role,
			Tier:   1 + i%5,
			Active: true,
		})
		require.NoError(t, err)
		require.True(t, created)
		ids = append(ids, id)
	}
	return ids
}

// pickByEither tries the pick as either captain, since the first-pick
// side is randomized. The opening side sticks once rolled, so alternating
// attempts lands within two rounds. Returns the captain whose turn it
// was.
func pickByEither(t *testing.T, svc Service, cap1, cap2, target string) (string, *PickResult) {
	t.Helper()
	for attempt := 0; attempt < 16; attempt++ {
		captain := cap1
		if attempt%2 == 1 {
			captain = cap2
		}
		res, err := svc.Pick(captain, target)
		if err == nil {
			return captain, res
		}
		require.ErrorIs(t, err, ErrNotYourTurn)
	}
	t.Fatalf("no captain could pick %s", target)
	return "", nil
}

func TestChallengeLifecycle(t *testing.T) {
	svc, directory, _, teardown := setupEngine(t, testCfg(), 42)
	defer teardown()
	ids := registerPlayers(t, directory, 10)
	cap1, cap2 := ids[0], ids[1]
	pool := ids[2:]

	pregame, err := svc.Create(TypeChallenge, cap1, cap2)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, pregame.Status)
	assert.Equal(t, cap1, pregame.Captain1)
	assert.Equal(t, cap2, pregame.Captain2)

	t.Run("only one pregame at a time", func(t *testing.T) {
		_, err := svc.Create(TypeChallenge, "p3", "p4")
		assert.ErrorIs(t, err, ErrMatchInProgress)
		_, err = svc.Create(TypeStart, "p3", "")
		assert.ErrorIs(t, err, ErrMatchInProgress)
	})

	t.Run("pool closed until accepted", func(t *testing.T) {
		_, err := svc.SignToPool("p3")
		assert.ErrorIs(t, err, ErrNotOpen)
	})

	t.Run("only the challenged captain responds", func(t *testing.T) {
		_, err := svc.Respond(true, cap1)
		assert.ErrorIs(t, err, ErrNotCaptain)
		_, err = svc.Respond(true, "p5")
		assert.ErrorIs(t, err, ErrNotCaptain)
	})

	pregame, err = svc.Respond(true, cap2)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, pregame.Status)

	t.Run("captains cannot sign their own draft", func(t *testing.T) {
		_, err := svc.SignToPool(cap1)
		assert.ErrorIs(t, err, ErrAlreadySigned)
	})

	t.Run("pick blocked until the pool is big enough", func(t *testing.T) {
		res, err := svc.SignToPool("p3")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Count)

		_, err = svc.Pick(cap1, "p3")
		assert.ErrorIs(t, err, ErrNotEnoughPlayers)
		_, err = svc.Pick(cap2, "p3")
		assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	})

	t.Run("no duplicate sign-ups", func(t *testing.T) {
		_, err := svc.SignToPool("p3")
		assert.ErrorIs(t, err, ErrAlreadySigned)
	})

	for _, id := range pool[1:] {
		res, err := svc.SignToPool(id)
		require.NoError(t, err)
		assert.Equal(t, StatusWaiting, res.Status)
	}

	t.Run("target must be pooled", func(t *testing.T) {
		_, err := svc.Pick(cap1, "ghost")
		if !errors.Is(err, ErrNotInPool) {
			_, err = svc.Pick(cap2, "ghost")
			assert.ErrorIs(t, err, ErrNotInPool)
		}
	})

	// Full draft: captains alternate strictly, one pick each turn.
	var finalized *FinalizedTeams
	var lastPicker string
	for i, target := range pool {
		picker, res := pickByEither(t, svc, cap1, cap2, target)
		if i > 0 {
			assert.NotEqual(t, lastPicker, picker, "turns must alternate")
		}
		lastPicker = picker

		if i == 1 {
			t.Run("leaving mid-draft is blocked", func(t *testing.T) {
				_, err := svc.RemoveFromPool(pool[4])
				assert.ErrorIs(t, err, ErrPickingStarted)
			})
			t.Run("signing mid-draft is blocked", func(t *testing.T) {
				_, err := svc.SignToPool("p99")
				assert.ErrorIs(t, err, ErrDrafting)
			})
		}
		if i == len(pool)-1 {
			require.NotNil(t, res.Finalized)
			finalized = res.Finalized
		} else {
			assert.Nil(t, res.Finalized)
		}
	}

	// Rosters: each captain plus four picks, pregame consumed.
	require.NotNil(t, finalized.Radiant.Captain)
	require.NotNil(t, finalized.Dire.Captain)
	assert.Equal(t, cap1, *finalized.Radiant.Captain)
	assert.Equal(t, cap2, *finalized.Dire.Captain)
	assert.Len(t, finalized.Radiant.Players, 4)
	assert.Len(t, finalized.Dire.Players, 4)
	assert.Contains(t, finalized.LobbyName, "PSDL-")
	assert.Len(t, finalized.Password, 6)

	current, err := svc.GetCurrentMatch()
	require.NoError(t, err)
	assert.Nil(t, current)

	t.Run("captains are participants of the ongoing match", func(t *testing.T) {
		m, err := svc.GetOngoingMatchForUser(cap1)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, finalized.MatchID, m.ID)
	})

	t.Run("only a captain reports a challenge result", func(t *testing.T) {
		_, err := svc.SubmitResult(finalized.MatchID, pool[0], SideRadiant)
		assert.ErrorIs(t, err, ErrNotCaptain)
	})

	outcome, err := svc.SubmitResult(finalized.MatchID, cap2, SideRadiant)
	require.NoError(t, err)
	assert.True(t, outcome.Finalized)
	assert.Equal(t, SideRadiant, outcome.Winner)

	t.Run("second report hits the exactly-once guard", func(t *testing.T) {
		_, err := svc.SubmitResult(finalized.MatchID, cap1, SideDire)
		assert.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("point deltas are symmetric and captains count", func(t *testing.T) {
		fm, err := svc.GetFinalizedMatch(outcome.MatchID)
		require.NoError(t, err)
		require.NotNil(t, fm)
		assert.Equal(t, SideRadiant, fm.Winner)

		total := 0
		for _, id := range ids {
			profile, err := directory.GetByID(id)
			require.NoError(t, err)
			require.NotNil(t, profile)
			total += profile.Points
			switch {
			case fm.Radiant.Contains(id):
				assert.Equal(t, 1025, profile.Points, "winner %s", id)
			case fm.Dire.Contains(id):
				assert.Equal(t, 975, profile.Points, "loser %s", id)
			}
		}
		assert.Equal(t, 10*1000, total, "ladder total must be conserved")
	})
}

func TestChallengeReject(t *testing.T) {
	svc, directory, _, teardown := setupEngine(t, testCfg(), 1)
	defer teardown()
	registerPlayers(t, directory, 2)

	_, err := svc.Create(TypeChallenge, "p1", "p2")
	require.NoError(t, err)

	pregame, err := svc.Respond(false, "p2")
	require.NoError(t, err)
	assert.Nil(t, pregame)

	current, err := svc.GetCurrentMatch()
	require.NoError(t, err)
	assert.Nil(t, current)

	_, err = svc.Respond(true, "p2")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestChallengeValidation(t *testing.T) {
	svc, _, _, teardown := setupEngine(t, testCfg(), 1)
	defer teardown()

	_, err := svc.Create(TypeChallenge, "p1", "")
	assert.Error(t, err)
	_, err = svc.Create(TypeChallenge, "p1", "p1")
	assert.Error(t, err)
}

// direFirstSeed finds a seed whose opening coin flip gives dire the first
// pick, so the radiant captain's opening attempt is out of turn.
func direFirstSeed(t *testing.T) int64 {
	t.Helper()
	for seed := int64(1); seed < 1024; seed++ {
		if rand.New(rand.NewSource(seed)).Intn(2) == 1 {
			return seed
		}
	}
	t.Fatal("no seed rolls dire first")
	return 0
}

func TestFirstPickSideIsRolledOnce(t *testing.T) {
	svc, directory, _, teardown := setupEngine(t, testCfg(), direFirstSeed(t))
	defer teardown()
	ids := registerPlayers(t, directory, 10)
	cap1, cap2 := ids[0], ids[1]

	_, err := svc.Create(TypeChallenge, cap1, cap2)
	require.NoError(t, err)
	_, err = svc.Respond(true, cap2)
	require.NoError(t, err)
	for _, id := range ids[2:] {
		_, err := svc.SignToPool(id)
		require.NoError(t, err)
	}

	// Dire picks first for this seed, so the radiant captain is turned
	// away. The rolled side must survive the rejected attempt.
	_, err = svc.Pick(cap1, "p3")
	require.ErrorIs(t, err, ErrNotYourTurn)

	pregame, err := svc.GetCurrentMatch()
	require.NoError(t, err)
	assert.Equal(t, SideDire, pregame.FirstPick)

	// Retries by the same captain keep failing instead of rerolling the
	// opening side.
	for i := 0; i < 5; i++ {
		_, err = svc.Pick(cap1, "p3")
		require.ErrorIs(t, err, ErrNotYourTurn)
	}

	res, err := svc.Pick(cap2, "p3")
	require.NoError(t, err)
	assert.Equal(t, SideDire, res.Side)
}

func TestDraftMinimumCountsCaptains(t *testing.T) {
	cfg := testCfg()
	cfg.CaptainsCountInMinimum = true
	svc, directory, _, teardown := setupEngine(t, cfg, 5)
	defer teardown()
	ids := registerPlayers(t, directory, 8)
	cap1, cap2 := ids[0], ids[1]

	_, err := svc.Create(TypeChallenge, cap1, cap2)
	require.NoError(t, err)
	_, err = svc.Respond(true, cap2)
	require.NoError(t, err)

	// Five signed plus the two captains is still one short of eight.
	for _, id := range ids[2:7] {
		_, err := svc.SignToPool(id)
		require.NoError(t, err)
	}
	_, err = svc.Pick(cap1, "p3")
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	_, err = svc.Pick(cap2, "p3")
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	// The sixth signee brings the count to eight, captains included.
	_, err = svc.SignToPool(ids[7])
	require.NoError(t, err)
	pickByEither(t, svc, cap1, cap2, "p3")
}

func TestPickupLifecycle(t *testing.T) {
	svc, directory, metricsMock, teardown := setupEngine(t, testCfg(), 7)
	defer teardown()
	ids := registerPlayers(t, directory, 10)

	pregame, err := svc.Create(TypeStart, ids[0], "")
	require.NoError(t, err)
	assert.Equal(t, ids[0], pregame.Starter)
	assert.Equal(t, []string{ids[0]}, pregame.Pool, "starter is auto-enrolled")

	t.Run("respond does not apply to pickup matches", func(t *testing.T) {
		_, err := svc.Respond(true, ids[1])
		assert.ErrorIs(t, err, ErrNotApplicable)
	})

	t.Run("pick does not apply to pickup matches", func(t *testing.T) {
		_, err := svc.Pick(ids[0], ids[1])
		assert.ErrorIs(t, err, ErrNotApplicable)
	})

	// Leave and re-sign before the pool fills.
	for _, id := range ids[1:9] {
		res, err := svc.SignToPool(id)
		require.NoError(t, err)
		assert.Equal(t, 10, res.PoolSize)
	}
	res, err := svc.RemoveFromPool(ids[8])
	require.NoError(t, err)
	assert.Equal(t, 8, res.Count)
	_, err = svc.RemoveFromPool(ids[8])
	assert.ErrorIs(t, err, ErrNotSigned)
	_, err = svc.SignToPool(ids[8])
	require.NoError(t, err)
	assert.Empty(t, metricsMock.BalanceObservations, "no balancing before the pool fills")

	// The tenth sign-up fills the pool and goes straight to teams.
	res, err = svc.SignToPool(ids[9])
	require.NoError(t, err)
	assert.Equal(t, StatusReady, res.Status)
	assert.Len(t, metricsMock.BalanceObservations, 1, "the balancing run is timed")
	require.NotNil(t, res.Finalized)
	assert.Len(t, res.Finalized.Radiant.Players, 5)
	assert.Len(t, res.Finalized.Dire.Players, 5)
	assert.Nil(t, res.Finalized.Radiant.Captain)
	assert.Nil(t, res.Finalized.Dire.Captain)

	// Every pooled player is on exactly one side.
	for _, id := range ids {
		onRadiant := res.Finalized.Radiant.Contains(id)
		onDire := res.Finalized.Dire.Contains(id)
		assert.True(t, onRadiant != onDire, "player %s must be on exactly one side", id)
	}

	current, err := svc.GetCurrentMatch()
	require.NoError(t, err)
	assert.Nil(t, current, "pregame is consumed on finalization")

	matchID := res.Finalized.MatchID
	radiant := res.Finalized.Radiant.Players
	dire := res.Finalized.Dire.Players

	t.Run("outsiders cannot vote", func(t *testing.T) {
		_, err := svc.SubmitResult(matchID, "ghost", SideRadiant)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("invalid side is rejected before any state change", func(t *testing.T) {
		_, err := svc.SubmitResult(matchID, radiant[0], Side("middle"))
		assert.ErrorIs(t, err, ErrInvalidTeam)
	})

	// Five radiant votes: no quorum yet.
	for i, voter := range radiant {
		outcome, err := svc.SubmitResult(matchID, voter, SideRadiant)
		require.NoError(t, err)
		assert.False(t, outcome.Finalized)
		require.NotNil(t, outcome.Votes)
		assert.Equal(t, i+1, outcome.Votes.Count(SideRadiant))
	}

	t.Run("one vote per participant", func(t *testing.T) {
		_, err := svc.SubmitResult(matchID, radiant[0], SideRadiant)
		assert.ErrorIs(t, err, ErrAlreadyVoted)
		_, err = svc.SubmitResult(matchID, radiant[0], SideDire)
		assert.ErrorIs(t, err, ErrAlreadyVoted)
	})

	t.Run("quorum counts per side, not total", func(t *testing.T) {
		// A dire vote for dire: 5 radiant + 1 dire votes in total, still
		// no side at quorum.
		outcome, err := svc.SubmitResult(matchID, dire[0], SideDire)
		require.NoError(t, err)
		assert.False(t, outcome.Finalized)
	})

	// The sixth vote for radiant finalizes.
	outcome, err := svc.SubmitResult(matchID, dire[1], SideRadiant)
	require.NoError(t, err)
	assert.True(t, outcome.Finalized)
	assert.Equal(t, SideRadiant, outcome.Winner)

	t.Run("votes after finalization hit the exactly-once guard", func(t *testing.T) {
		_, err := svc.SubmitResult(matchID, dire[2], SideDire)
		assert.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("points move by the configured delta", func(t *testing.T) {
		for _, id := range radiant {
			profile, err := directory.GetByID(id)
			require.NoError(t, err)
			assert.Equal(t, 1025, profile.Points)
		}
		for _, id := range dire {
			profile, err := directory.GetByID(id)
			require.NoError(t, err)
			assert.Equal(t, 975, profile.Points)
		}
	})
}

func TestPickupPoolLookupFailure(t *testing.T) {
	svc, directory, _, teardown := setupEngine(t, testCfg(), 3)
	defer teardown()
	registerPlayers(t, directory, 9)

	_, err := svc.Create(TypeStart, "p1", "")
	require.NoError(t, err)
	for i := 2; i <= 9; i++ {
		_, err := svc.SignToPool(fmt.Sprintf("p%d", i))
		require.NoError(t, err)
	}

	// The tenth signer is unregistered, so balancing cannot resolve the
	// pool. The sign-up itself stays committed.
	_, err = svc.SignToPool("unregistered")
	assert.ErrorIs(t, err, ErrPoolLookup)

	current, err := svc.GetCurrentMatch()
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Len(t, current.Pool, 10)
}

func TestAbort(t *testing.T) {
	svc, directory, _, teardown := setupEngine(t, testCfg(), 1)
	defer teardown()
	registerPlayers(t, directory, 2)

	aborted, err := svc.Abort()
	require.NoError(t, err)
	assert.False(t, aborted)

	_, err = svc.Create(TypeChallenge, "p1", "p2")
	require.NoError(t, err)

	aborted, err = svc.Abort()
	require.NoError(t, err)
	assert.True(t, aborted)

	current, err := svc.GetCurrentMatch()
	require.NoError(t, err)
	assert.Nil(t, current)

	// Aborting frees the slot for a fresh pregame.
	_, err = svc.Create(TypeStart, "p1", "")
	require.NoError(t, err)
}

func TestRecentFinalizedForUser(t *testing.T) {
	svc, directory, _, teardown := setupEngine(t, testCfg(), 11)
	defer teardown()
	ids := registerPlayers(t, directory, 10)

	playPickup := func(winner Side) string {
		_, err := svc.Create(TypeStart, ids[0], "")
		require.NoError(t, err)
		var fin *FinalizedTeams
		for _, id := range ids[1:] {
			res, err := svc.SignToPool(id)
			require.NoError(t, err)
			if res.Finalized != nil {
				fin = res.Finalized
			}
		}
		require.NotNil(t, fin)

		voters := fin.Radiant.Players
		if winner == SideDire {
			voters = fin.Dire.Players
		}
		voters = append(append([]string(nil), voters...), fin.Radiant.Players[0], fin.Dire.Players[0])
		var matchID string
		for _, voter := range voters {
			outcome, err := svc.SubmitResult(fin.MatchID, voter, winner)
			if err != nil {
				continue // duplicate voter in the combined list
			}
			if outcome.Finalized {
				matchID = outcome.MatchID
				break
			}
		}
		require.NotEmpty(t, matchID)
		return matchID
	}

	first := playPickup(SideRadiant)
	second := playPickup(SideDire)

	recent, err := svc.RecentFinalizedForUser(ids[0], 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	got := []string{recent[0].ID, recent[1].ID}
	assert.Contains(t, got, first)
	assert.Contains(t, got, second)

	limited, err := svc.RecentFinalizedForUser(ids[0], 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := svc.RecentFinalizedForUser("ghost", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReadyPregameBlocksPoolChanges(t *testing.T) {
	p := &Pregame{Type: TypeStart, Status: StatusReady, Pool: []string{"p1"}}
	assert.ErrorIs(t, p.join("p2"), ErrMatchReady)
	assert.ErrorIs(t, p.leave("p1"), ErrMatchReady)
}

func TestTokens(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	name := GenerateLobbyName(rng)
	assert.Regexp(t, `^PSDL-\d{6}$`, name)

	password := GeneratePassword(rng)
	assert.Regexp(t, `^[0-9a-z]{6}$`, password)

	// Seeded generation is reproducible.
	rng2 := rand.New(rand.NewSource(99))
	assert.Equal(t, name, GenerateLobbyName(rng2))
	assert.Equal(t, password, GeneratePassword(rng2))
}
