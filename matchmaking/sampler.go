package matchmaking

import "math/rand"

// SamplePool draws a uniformly-random subset of the available candidates,
// without replacement, capped at bound. This keeps the split search's input
// small enough for exhaustive enumeration no matter how large the roster is.
//
// Fewer than two available candidates cannot form teams, so the pool comes
// back empty. This is the only place randomness enters candidate selection.
func SamplePool(available []Candidate, bound int, rng *rand.Rand) []Candidate {
	if len(available) < 2 {
		return nil
	}
	pool := append([]Candidate(nil), available...)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if bound > 0 && len(pool) > bound {
		pool = pool[:bound]
	}
	return pool
}
