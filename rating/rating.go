// Package rating implements the Elo update applied after a completed match.
// All functions are pure; the K-factor is always passed in so alternate
// values can be exercised in tests and tuned via config.
package rating

import "math"

// Expected returns the expected score for a player rated r against an
// opposing side with mean rating m. It is 0.5 when r == m, approaches 1 as r
// grows past m and 0 as m grows past r.
func Expected(r int, m float64) float64 {
	return 1 / (1 + math.Pow(10, (m-float64(r))/400))
}

// Next returns the updated rating for a player rated r after a match against
// an opposing side with mean rating m. won is true when the player's team won.
// The result is round(r + k*(s - E)) with s in {0, 1}, rounded half-up.
func Next(r int, m float64, won bool, k int) int {
	var score float64
	if won {
		score = 1
	}
	return int(math.Floor(float64(r) + float64(k)*(score-Expected(r, m)) + 0.5))
}

// TeamMean returns the mean of a team's rating snapshot.
func TeamMean(elos []int) float64 {
	if len(elos) == 0 {
		return 0
	}
	sum := 0
	for _, e := range elos {
		sum += e
	}
	return float64(sum) / float64(len(elos))
}
