package balance

import (
	"math/rand"
	"testing"

	"github.com/psdleague/psdl-bot/internal/players"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profile(id string, role players.Role, tier int) players.Profile {
	return players.Profile{ID: id, Handle: id, Role: role, Tier: tier, Active: true}
}

// evenPool is 6 cores and 4 supports, so a perfect 3/2 composition exists
// on both sides with equal weighted tier sums.
func evenPool() []players.Profile {
	return []players.Profile{
		profile("c1", players.RoleCore, 1),
		profile("c2", players.RoleCore, 1),
		profile("c3", players.RoleCore, 2),
		profile("c4", players.RoleCore, 2),
		profile("c5", players.RoleCore, 3),
		profile("c6", players.RoleCore, 3),
		profile("s1", players.RoleSupport, 1),
		profile("s2", players.RoleSupport, 1),
		profile("s3", players.RoleSupport, 3),
		profile("s4", players.RoleSupport, 3),
	}
}

func byID(pool []players.Profile) map[string]players.Profile {
	m := make(map[string]players.Profile, len(pool))
	for _, p := range pool {
		m[p.ID] = p
	}
	return m
}

func resolve(t *testing.T, lookup map[string]players.Profile, ids []string) []players.Profile {
	t.Helper()
	out := make([]players.Profile, 0, len(ids))
	for _, id := range ids {
		p, ok := lookup[id]
		require.True(t, ok, "unknown id %s in team", id)
		out = append(out, p)
	}
	return out
}

func TestPair(t *testing.T) {
	pool := evenPool()
	lookup := byID(pool)
	rng := rand.New(rand.NewSource(1))

	teams, err := Pair(pool, rng)
	require.NoError(t, err)
	require.Len(t, teams.Radiant, TeamSize)
	require.Len(t, teams.Dire, TeamSize)

	// Every player lands on exactly one side.
	seen := map[string]bool{}
	for _, id := range append(append([]string(nil), teams.Radiant...), teams.Dire...) {
		assert.False(t, seen[id], "player %s assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, 2*TeamSize)

	// With 6 cores and 4 supports the optimum is a clean 3/2 split on
	// both sides with level weighted tiers.
	cR, sR, tR := evaluateTeam(resolve(t, lookup, teams.Radiant))
	cD, sD, tD := evaluateTeam(resolve(t, lookup, teams.Dire))
	assert.Equal(t, 3, cR)
	assert.Equal(t, 2, sR)
	assert.Equal(t, 3, cD)
	assert.Equal(t, 2, sD)
	assert.Equal(t, tR, tD, "weighted tier sums should be level for this pool")
}

func TestPairRequiresExactCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Pair(evenPool()[:9], rng)
	assert.Error(t, err)
	_, err = Pair(append(evenPool(), profile("extra", players.RoleCore, 1)), rng)
	assert.Error(t, err)
}

func TestPairIsDeterministicForASeed(t *testing.T) {
	pool := evenPool()

	first, err := Pair(pool, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	second, err := Pair(pool, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluateTeamOffRolePenalty(t *testing.T) {
	// No cores at all: three supports stand in, each discounted a tier.
	team := []players.Profile{
		profile("s1", players.RoleSupport, 3),
		profile("s2", players.RoleSupport, 3),
		profile("s3", players.RoleSupport, 3),
		profile("s4", players.RoleSupport, 3),
		profile("s5", players.RoleSupport, 3),
	}
	cores, supports, sum := evaluateTeam(team)
	assert.Equal(t, 0, cores)
	assert.Equal(t, 5, supports)
	// Three discounted to tier 2, two keep tier 3, all at support weight.
	assert.Equal(t, 3*2+2*3, sum)

	t.Run("discount floors at tier 1", func(t *testing.T) {
		weak := []players.Profile{
			profile("s1", players.RoleSupport, 1),
			profile("s2", players.RoleSupport, 1),
			profile("s3", players.RoleSupport, 1),
			profile("s4", players.RoleSupport, 1),
			profile("s5", players.RoleSupport, 1),
		}
		_, _, sum := evaluateTeam(weak)
		assert.Equal(t, 5, sum)
	})
}

func TestSplitTwoTeams(t *testing.T) {
	teams, err := Split(evenPool(), 2, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Len(t, teams[0], TeamSize)
	assert.Len(t, teams[1], TeamSize)
}

func TestSplitThreeTeamsSnake(t *testing.T) {
	pool := make([]players.Profile, 0, 15)
	for i := 0; i < 15; i++ {
		role := players.RoleCore
		if i%2 == 1 {
			role = players.RoleSupport
		}
		pool = append(pool, profile(string(rune('a'+i)), role, 1+i%5))
	}

	teams, err := Split(pool, 3, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.Len(t, teams, 3)

	seen := map[string]bool{}
	for _, team := range teams {
		assert.Len(t, team, TeamSize)
		for _, id := range team {
			assert.False(t, seen[id])
			seen[id] = true
		}
	}
	assert.Len(t, seen, 15)
}

func TestSplitValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := Split(evenPool(), 1, rng)
	assert.Error(t, err)

	_, err = Split(evenPool(), 3, rng)
	assert.Error(t, err, "15 players needed for 3 teams")
}

func TestSplitIgnoresOverflow(t *testing.T) {
	pool := append(evenPool(), profile("late1", players.RoleCore, 1), profile("late2", players.RoleSupport, 1))

	teams, err := Split(pool, 2, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	for _, team := range teams {
		assert.NotContains(t, team, "late1")
		assert.NotContains(t, team, "late2")
	}
}
