package matchmaking

import (
	"math"
	"math/rand"
	"testing"
)

func testPool(elos ...int) []Candidate {
	cands := make([]Candidate, len(elos))
	for i, e := range elos {
		cands[i] = Candidate{ID: string(rune('A' + i)), Elo: e}
	}
	return cands
}

func sumElo(team []Candidate) int {
	s := 0
	for _, c := range team {
		s += c.Elo
	}
	return s
}

func ids(team []Candidate) map[string]bool {
	m := make(map[string]bool, len(team))
	for _, c := range team {
		m[c.ID] = true
	}
	return m
}

func TestSplitTeamSizes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 2; n <= 10; n++ {
		elos := make([]int, n)
		for i := range elos {
			elos[i] = 1000 + rng.Intn(800)
		}
		teamA, teamB := SplitTeams(testPool(elos...), 0, "", "", rng)

		if len(teamA)+len(teamB) != n {
			t.Errorf("n=%d: teams cover %d candidates", n, len(teamA)+len(teamB))
		}
		if d := len(teamA) - len(teamB); d < 0 || d > 1 {
			t.Errorf("n=%d: team sizes %d/%d", n, len(teamA), len(teamB))
		}
		a, b := ids(teamA), ids(teamB)
		for id := range a {
			if b[id] {
				t.Errorf("n=%d: candidate %s on both teams", n, id)
			}
		}
	}
}

func TestSplitScenarioToleranceZero(t *testing.T) {
	// Ratings 1500, 1600, 1400, 1550; target = 6050*2/4 = 3025.
	// Two subsets reach the minimal diff of 25; include-before-exclude
	// enumeration reaches {A, D} (1500+1550) before {B, C}.
	cands := testPool(1500, 1600, 1400, 1550)
	teamA, teamB := SplitTeams(cands, 0, "", "", rand.New(rand.NewSource(1)))

	a := ids(teamA)
	if !a["A"] || !a["D"] || len(teamA) != 2 {
		t.Fatalf("expected team A = {A, D}, got %v", teamA)
	}
	b := ids(teamB)
	if !b["B"] || !b["C"] || len(teamB) != 2 {
		t.Fatalf("expected team B = {B, C}, got %v", teamB)
	}
}

func TestSplitRepeatableAtToleranceZero(t *testing.T) {
	cands := testPool(1500, 1610, 1403, 1547, 1388, 1722, 1295)
	firstA, firstB := SplitTeams(cands, 0, "", "", rand.New(rand.NewSource(7)))
	for seed := int64(0); seed < 20; seed++ {
		teamA, teamB := SplitTeams(cands, 0, "", "", rand.New(rand.NewSource(seed)))
		if !sameTeam(teamA, firstA) || !sameTeam(teamB, firstB) {
			t.Fatalf("tolerance 0 not deterministic: seed %d gave %v/%v", seed, teamA, teamB)
		}
	}
}

func sameTeam(a, b []Candidate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSplitMatchesBruteForceMinimum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 25; trial++ {
		n := 2 + rng.Intn(9)
		elos := make([]int, n)
		for i := range elos {
			elos[i] = 900 + rng.Intn(1200)
		}
		cands := testPool(elos...)

		teamA, _ := SplitTeams(cands, 0, "", "", rng)
		got := splitDiff(cands, teamA)
		want := bruteForceMinDiff(cands)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("trial %d (elos %v): got diff %f, brute force min %f", trial, elos, got, want)
		}
	}
}

func splitDiff(cands, teamA []Candidate) float64 {
	total := sumElo(cands)
	target := float64(total) * float64((len(cands)+1)/2) / float64(len(cands))
	return math.Abs(float64(sumElo(teamA)) - target)
}

// bruteForceMinDiff enumerates all subsets of size ceil(n/2) via bitmasks.
func bruteForceMinDiff(cands []Candidate) float64 {
	n := len(cands)
	sizeA := (n + 1) / 2
	total := sumElo(cands)
	target := float64(total) * float64(sizeA) / float64(n)

	best := math.Inf(1)
	for mask := 0; mask < 1<<n; mask++ {
		count, sum := 0, 0
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				count++
				sum += cands[i].Elo
			}
		}
		if count != sizeA {
			continue
		}
		if diff := math.Abs(float64(sum) - target); diff < best {
			best = diff
		}
	}
	return best
}

func TestSplitKeepsAnchorsTogether(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 30; trial++ {
		n := 4 + rng.Intn(7)
		elos := make([]int, n)
		for i := range elos {
			elos[i] = 1000 + rng.Intn(700)
		}
		cands := testPool(elos...)
		anchorA, anchorB := cands[0].ID, cands[n-1].ID

		teamA, teamB := SplitTeams(cands, 50, anchorA, anchorB, rng)
		a, b := ids(teamA), ids(teamB)
		if a[anchorA] != a[anchorB] || b[anchorA] != b[anchorB] {
			t.Fatalf("trial %d: anchors split across teams: A=%v B=%v", trial, teamA, teamB)
		}
	}
}

func TestSplitAnchorsOnlyPool(t *testing.T) {
	// A pool of exactly the two anchors cannot keep them together; the
	// constraint is dropped rather than returning no teams.
	cands := testPool(1500, 1600)
	teamA, teamB := SplitTeams(cands, 0, "A", "B", rand.New(rand.NewSource(1)))
	if len(teamA) != 1 || len(teamB) != 1 {
		t.Fatalf("expected 1v1 fallback, got %v / %v", teamA, teamB)
	}
}

func TestSplitTinyPools(t *testing.T) {
	if a, b := SplitTeams(nil, 0, "", "", nil); a != nil || b != nil {
		t.Errorf("empty pool should give empty teams, got %v / %v", a, b)
	}
	if a, b := SplitTeams(testPool(1500), 0, "", "", nil); a != nil || b != nil {
		t.Errorf("single candidate should give empty teams, got %v / %v", a, b)
	}
}

func TestSplitOddPoolLargerTeamA(t *testing.T) {
	teamA, teamB := SplitTeams(testPool(1500, 1400, 1600, 1450, 1550), 0, "", "", rand.New(rand.NewSource(1)))
	if len(teamA) != 3 || len(teamB) != 2 {
		t.Errorf("odd pool: want 3v2, got %dv%d", len(teamA), len(teamB))
	}
}

func TestSplitToleranceStaysWithinBound(t *testing.T) {
	cands := testPool(1500, 1600, 1400, 1550)
	// Minimum diff for this pool is 25; with tolerance 80 three subsets
	// qualify (diffs 25, 25, 75) and any of them is acceptable.
	for seed := int64(0); seed < 10; seed++ {
		teamA, _ := SplitTeams(cands, 80, "", "", rand.New(rand.NewSource(seed)))
		if diff := splitDiff(cands, teamA); diff > 80 {
			t.Errorf("seed %d: diff %f exceeds tolerance", seed, diff)
		}
	}
}

func TestSplitToleranceFallsBackToBest(t *testing.T) {
	// No subset is within tolerance 10 (minimum diff is 25); the best split
	// is returned anyway.
	cands := testPool(1500, 1600, 1400, 1550)
	teamA, _ := SplitTeams(cands, 10, "", "", rand.New(rand.NewSource(1)))
	if diff := splitDiff(cands, teamA); diff != 25 {
		t.Errorf("expected fallback to best split (diff 25), got %f", diff)
	}
}
