// Package matchmaking selects a bounded candidate pool from the roster and
// splits it into two teams of near-equal aggregate rating.
package matchmaking

import (
	"math"
	"math/rand"
)

// Candidate is a player considered for one balancing run. Elo is captured at
// sampling time and only lives for the duration of the search.
type Candidate struct {
	ID  string
	Elo int
}

// SplitTeams partitions cands into two teams, minimizing the distance between
// team A's rating sum and its proportional share of the total. Team A always
// holds ceil(n/2) candidates, so sizes differ by at most one.
//
// The search enumerates every subset of the required size by backtracking over
// indices, trying "include in A" before "exclude". The first subset reached in
// that order wins ties, which makes the result deterministic for a given
// candidate order. Subsets that would split the anchor pair across teams are
// discarded outright.
//
// With tolerance > 0, one of the subsets within tolerance of the target is
// picked uniformly via rng, so repeated calls shuffle between acceptable
// splits. With tolerance 0 the single best subset is returned and rng is
// never consulted.
//
// cands must stay small (the sampler bounds it at 10); the search space is
// 2^n leaves.
func SplitTeams(cands []Candidate, tolerance int, anchorA, anchorB string, rng *rand.Rand) (teamA, teamB []Candidate) {
	n := len(cands)
	if n < 2 {
		return nil, nil
	}

	sizeA := (n + 1) / 2
	total := 0
	for _, c := range cands {
		total += c.Elo
	}
	target := float64(total) * float64(sizeA) / float64(n)

	anchorIdxA, anchorIdxB := -1, -1
	if anchorA != "" && anchorB != "" {
		for i, c := range cands {
			switch c.ID {
			case anchorA:
				anchorIdxA = i
			case anchorB:
				anchorIdxB = i
			}
		}
	}
	enforcePair := anchorIdxA >= 0 && anchorIdxB >= 0

	chosen := searchSubsets(cands, sizeA, target, tolerance, enforcePair, anchorIdxA, anchorIdxB, rng)
	if chosen == nil {
		// Only reachable when the pool is so small that every subset splits
		// the anchor pair (n == 2 and both candidates are anchors). A split
		// ignoring the pair beats returning nothing.
		chosen = searchSubsets(cands, sizeA, target, tolerance, false, -1, -1, rng)
	}

	inA := make([]bool, n)
	for _, i := range chosen {
		inA[i] = true
	}
	for i, c := range cands {
		if inA[i] {
			teamA = append(teamA, c)
		} else {
			teamB = append(teamB, c)
		}
	}
	return teamA, teamB
}

// searchSubsets runs the exhaustive backtracking pass and returns the chosen
// index subset for team A, or nil when no subset satisfies the pair
// constraint.
func searchSubsets(cands []Candidate, sizeA int, target float64, tolerance int, enforcePair bool, anchorIdxA, anchorIdxB int, rng *rand.Rand) []int {
	n := len(cands)

	var best []int
	bestDiff := math.Inf(1)
	var withinTolerance [][]int

	var walk func(idx, sum int, chosen []int)
	walk = func(idx, sum int, chosen []int) {
		if len(chosen) == sizeA {
			if enforcePair && splitsPair(chosen, anchorIdxA, anchorIdxB) {
				return
			}
			diff := math.Abs(float64(sum) - target)
			if diff < bestDiff {
				bestDiff = diff
				best = append([]int(nil), chosen...)
			}
			if tolerance > 0 && diff <= float64(tolerance) {
				withinTolerance = append(withinTolerance, append([]int(nil), chosen...))
			}
			return
		}
		if sizeA-len(chosen) > n-idx {
			return // not enough indices left to fill team A
		}
		walk(idx+1, sum+cands[idx].Elo, append(chosen, idx))
		walk(idx+1, sum, chosen)
	}
	walk(0, 0, nil)

	if len(withinTolerance) > 0 {
		return withinTolerance[rng.Intn(len(withinTolerance))]
	}
	return best
}

// splitsPair reports whether exactly one of the two anchor indices is in the
// chosen subset.
func splitsPair(chosen []int, a, b int) bool {
	inA, inB := false, false
	for _, i := range chosen {
		if i == a {
			inA = true
		}
		if i == b {
			inB = true
		}
	}
	return inA != inB
}
