// Package match holds the roster/match data model and the lifecycle service
// that turns a balanced split into a pending match and settles ratings when
// the match resolves.
package match

import (
	"context"
	"time"
)

// Result is a match's lifecycle state. A match starts pending and moves to
// exactly one terminal result; terminal results never transition again.
type Result string

const (
	Pending   Result = "pending"
	TeamAWon  Result = "team_a_won"
	TeamBWon  Result = "team_b_won"
	Cancelled Result = "cancelled"
)

// Terminal reports whether r is a final state.
func (r Result) Terminal() bool {
	return r == TeamAWon || r == TeamBWon || r == Cancelled
}

// Player is one roster entry. Ratings and counters are only ever mutated by
// the lifecycle service when a match completes.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Elo   int    `json:"elo"`
	Wins  int    `json:"wins"`
	Games int    `json:"games"`
}

// Match is a two-team pairing. TeamAElos/TeamBElos are the rating snapshots
// taken at creation, index-aligned with the id lists, and immutable from then
// on. TeamANewElos/TeamBNewElos are set exactly once, when the match completes
// with a winner; a cancelled match never gets them.
type Match struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	TeamAIDs     []string  `json:"team_a_ids"`
	TeamBIDs     []string  `json:"team_b_ids"`
	TeamAElos    []int     `json:"team_a_elos"`
	TeamBElos    []int     `json:"team_b_elos"`
	Result       Result    `json:"result"`
	TeamANewElos []int     `json:"team_a_new_elos,omitempty"`
	TeamBNewElos []int     `json:"team_b_new_elos,omitempty"`
}

// PlayerUpdate is the post-match write for one player's rating and record.
type PlayerUpdate struct {
	ID    string
	Elo   int
	Wins  int
	Games int
}

// Store abstracts the persistence collaborator. Implementations can be
// swapped for testing (mocks) or different backends.
type Store interface {
	// Read
	FetchPlayers(ctx context.Context) ([]Player, error) // ordered by elo desc
	FetchMatches(ctx context.Context, limit int) ([]Match, error) // newest first
	FetchMatchCount(ctx context.Context) (int, error)
	GetMatch(ctx context.Context, id string) (*Match, error)

	// Write
	CreateMatch(ctx context.Context, m *Match) error
	// CancelMatch marks a pending match cancelled. It must fail with
	// matcherrors.ErrMatchAlreadyResolved when the match is no longer
	// pending, so racing resolutions cannot both win.
	CancelMatch(ctx context.Context, id string) error
	// FinalizeMatch writes the terminal result, the post-match rating
	// snapshots and the player updates as one atomic unit, guarded the same
	// way as CancelMatch.
	FinalizeMatch(ctx context.Context, id string, result Result, teamANewElos, teamBNewElos []int, updates []PlayerUpdate) error
	UpsertPlayers(ctx context.Context, updates []PlayerUpdate) error

	// Lifecycle
	Close()
}

// Notifier pushes live events to connected UI clients. Implementations must
// not block.
type Notifier interface {
	Broadcast(event string, payload any)
}
