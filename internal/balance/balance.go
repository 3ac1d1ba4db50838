// Package balance partitions a pool of player profiles into equal teams.
// The scoring minimizes, in priority order, the deviation from the ideal
// 3-core/2-support composition per team, then the absolute difference of
// weighted tier sums (core tiers count double; an off-role player filling
// a gap has its tier discounted by one before weighting).
package balance

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/psdleague/psdl-bot/internal/players"
)

const (
	// TeamSize is the fixed roster size per side.
	TeamSize = 5

	coreWeight    = 2
	idealCores    = 3
	idealSupports = 2

	// exactSearchLimit caps the pool size for the exhaustive bipartition
	// search. C(10,5)=252 candidates is fine; the search is combinatorial
	// and anything past two teams falls back to the snake split.
	exactSearchLimit = 2 * TeamSize
)

// Teams holds a scored bipartition before side assignment.
type Teams struct {
	Radiant []string
	Dire    []string
}

// Pair partitions exactly 2*TeamSize profiles into two teams and randomly
// assigns which becomes radiant. The rng is injected so callers can seed
// deterministically.
func Pair(pool []players.Profile, rng *rand.Rand) (Teams, error) {
	if len(pool) != 2*TeamSize {
		return Teams{}, fmt.Errorf("balance: need exactly %d players, got %d", 2*TeamSize, len(pool))
	}

	best := bestBipartition(pool)
	if best == nil {
		// Should not happen with exact cardinality; fall back to a
		// uniform random split rather than failing the match.
		shuffled := append([]players.Profile(nil), pool...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return Teams{
			Radiant: ids(shuffled[:TeamSize]),
			Dire:    ids(shuffled[TeamSize:]),
		}, nil
	}

	if rng.Intn(2) == 0 {
		return Teams{Radiant: ids(best.teamA), Dire: ids(best.teamB)}, nil
	}
	return Teams{Radiant: ids(best.teamB), Dire: ids(best.teamA)}, nil
}

// Split partitions the first numTeams*TeamSize profiles into numTeams
// balanced teams. Two teams of a small pool use the exact search; larger
// requests use a snake draft over weighted tiers, which preserves the same
// scoring priorities without the combinatorial blowup.
func Split(pool []players.Profile, numTeams int, rng *rand.Rand) ([][]string, error) {
	needed := numTeams * TeamSize
	if numTeams < 2 {
		return nil, fmt.Errorf("balance: need at least 2 teams, got %d", numTeams)
	}
	if len(pool) < needed {
		return nil, fmt.Errorf("balance: need %d players for %d teams, got %d", needed, numTeams, len(pool))
	}
	pool = pool[:needed]

	if numTeams == 2 && needed <= exactSearchLimit {
		pair, err := Pair(pool, rng)
		if err != nil {
			return nil, err
		}
		return [][]string{pair.Radiant, pair.Dire}, nil
	}

	return snakeSplit(pool, numTeams), nil
}

type bipartition struct {
	teamA, teamB []players.Profile
}

// bestBipartition enumerates every size-5 subset as team A and keeps the
// partition with the lowest composition error, tie-broken by tier-sum
// difference. Strict comparisons keep the first optimum, matching the
// deterministic part of the search.
func bestBipartition(pool []players.Profile) *bipartition {
	var best *bipartition
	bestCompError := math.MaxInt
	bestTierDiff := math.MaxInt

	n := len(pool)
	indices := make([]int, TeamSize)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == TeamSize {
			inA := make(map[int]bool, TeamSize)
			for _, i := range indices {
				inA[i] = true
			}
			teamA := make([]players.Profile, 0, TeamSize)
			teamB := make([]players.Profile, 0, TeamSize)
			for i, p := range pool {
				if inA[i] {
					teamA = append(teamA, p)
				} else {
					teamB = append(teamB, p)
				}
			}
			cA, sA, tA := evaluateTeam(teamA)
			cB, sB, tB := evaluateTeam(teamB)
			compError := abs(cA-idealCores) + abs(sA-idealSupports) + abs(cB-idealCores) + abs(sB-idealSupports)
			tierDiff := abs(tA - tB)
			if compError < bestCompError || (compError == bestCompError && tierDiff < bestTierDiff) {
				best = &bipartition{teamA: teamA, teamB: teamB}
				bestCompError = compError
				bestTierDiff = tierDiff
			}
			return
		}
		for i := start; i < n; i++ {
			indices[depth] = i
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return best
}

// evaluateTeam returns the core/support counts and the weighted tier sum.
// When the team is short of cores, supports fill the gap with their tier
// discounted by one (floored at 1), and symmetrically for cores filling
// support slots, penalizing off-role assignments before weighting.
func evaluateTeam(team []players.Profile) (cores, supports, sumTiers int) {
	for _, p := range team {
		if p.Role == players.RoleCore {
			cores++
		} else {
			supports++
		}
	}

	needCore := max(0, idealCores-cores)
	needSupport := max(0, idealSupports-supports)

	for _, p := range team {
		tier := p.Tier
		if p.Role == players.RoleSupport && needCore > 0 {
			tier = max(1, tier-1)
			needCore--
		} else if p.Role == players.RoleCore && needSupport > 0 {
			tier = max(1, tier-1)
			needSupport--
		}
		if p.Role == players.RoleCore {
			sumTiers += tier * coreWeight
		} else {
			sumTiers += tier
		}
	}
	return cores, supports, sumTiers
}

// snakeSplit deals players to teams in serpentine order of weighted tier
// strength (tier 1 is strongest, so ascending sort puts the best first).
func snakeSplit(pool []players.Profile, numTeams int) [][]string {
	sorted := append([]players.Profile(nil), pool...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return weightedTier(sorted[i]) < weightedTier(sorted[j])
	})

	teams := make([][]string, numTeams)
	forward := true
	for i := 0; i < len(sorted); i += numTeams {
		round := sorted[i:min(i+numTeams, len(sorted))]
		for j, p := range round {
			var team int
			if forward {
				team = j
			} else {
				team = numTeams - 1 - j
			}
			teams[team] = append(teams[team], p.ID)
		}
		forward = !forward
	}
	return teams
}

func weightedTier(p players.Profile) int {
	if p.Role == players.RoleCore {
		return p.Tier * coreWeight
	}
	return p.Tier
}

func ids(team []players.Profile) []string {
	out := make([]string, len(team))
	for i, p := range team {
		out[i] = p.ID
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
