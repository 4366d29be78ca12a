package rating

import (
	"math"
	"testing"
)

func TestExpectedEqualRatings(t *testing.T) {
	if e := Expected(1500, 1500); math.Abs(e-0.5) > 1e-9 {
		t.Errorf("expected 0.5 for equal ratings, got %f", e)
	}
}

func TestExpectedMonotonicInRating(t *testing.T) {
	// E is strictly increasing in r for a fixed opponent mean.
	prev := Expected(1000, 1500)
	for r := 1050; r <= 2000; r += 50 {
		e := Expected(r, 1500)
		if e <= prev {
			t.Fatalf("Expected not increasing in r: E(%d)=%f <= %f", r, e, prev)
		}
		prev = e
	}
}

func TestExpectedMonotonicInOpponentMean(t *testing.T) {
	// E is strictly decreasing in m for a fixed rating.
	prev := Expected(1500, 1000)
	for m := 1050.0; m <= 2000; m += 50 {
		e := Expected(1500, m)
		if e >= prev {
			t.Fatalf("Expected not decreasing in m: E(1500, %f)=%f >= %f", m, e, prev)
		}
		prev = e
	}
}

func TestNextLossAgainstStrongerMean(t *testing.T) {
	// 1500 loses against a team mean of 1600:
	// E = 1/(1+10^(100/400)) ~ 0.360, next = round(1500 - 15*0.360) = 1495.
	got := Next(1500, 1600, false, 15)
	if got != 1495 {
		t.Errorf("Next(1500, 1600, loss, k=15) = %d, want 1495", got)
	}
}

func TestNextWinnerGainsLoserDrops(t *testing.T) {
	win := Next(1500, 1500, true, 15)
	loss := Next(1500, 1500, false, 15)
	if win <= 1500 {
		t.Errorf("winner should gain: got %d", win)
	}
	if loss >= 1500 {
		t.Errorf("loser should drop: got %d", loss)
	}
	// Both raw deltas land on .5 and round half-up: 1507.5 -> 1508,
	// 1492.5 -> 1493.
	if win != 1508 {
		t.Errorf("win at equal ratings = %d, want 1508", win)
	}
	if loss != 1493 {
		t.Errorf("loss at equal ratings = %d, want 1493", loss)
	}
}

func TestNextRespectsKFactor(t *testing.T) {
	small := Next(1400, 1600, true, 8)
	large := Next(1400, 1600, true, 32)
	if large-1400 <= small-1400 {
		t.Errorf("larger K should move the rating more: k=8 -> %d, k=32 -> %d", small, large)
	}
}

func TestTeamMean(t *testing.T) {
	if m := TeamMean([]int{1500, 1600}); m != 1550 {
		t.Errorf("TeamMean([1500 1600]) = %f, want 1550", m)
	}
	if m := TeamMean([]int{1500, 1600, 1550}); math.Abs(m-1550) > 1e-9 {
		t.Errorf("TeamMean of three = %f, want 1550", m)
	}
	if m := TeamMean(nil); m != 0 {
		t.Errorf("TeamMean(nil) = %f, want 0", m)
	}
}
