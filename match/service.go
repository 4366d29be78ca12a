package match

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"team-balance-server/config"
	"team-balance-server/matcherrors"
	"team-balance-server/matchmaking"
	"team-balance-server/rating"
)

// Service orchestrates team suggestion and the match lifecycle. All rating
// math runs synchronously in the calling request; the store is the only
// shared state.
type Service struct {
	cfg      *config.Config
	store    Store
	notifier Notifier // may be nil
	rng      *rand.Rand
}

// NewService creates a Service. rng seeds the sampler and the tolerance
// shuffle; pass a fixed-seed source in tests. A nil rng gets a time-seeded
// one.
func NewService(cfg *config.Config, store Store, notifier Notifier, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		rng:      rng,
	}
}

// SuggestTeams samples up to PoolBound available players and splits them into
// two teams of near-equal aggregate rating. tolerance < 0 selects the
// configured default. Fewer than two available players is a validation error;
// nothing is persisted either way.
func (s *Service) SuggestTeams(ctx context.Context, availableIDs []string, tolerance int) (teamA, teamB []Player, err error) {
	if tolerance < 0 {
		tolerance = s.cfg.DefaultTolerance
	}

	players, err := s.store.FetchPlayers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch players: %w", err)
	}

	available := make(map[string]bool, len(availableIDs))
	for _, id := range availableIDs {
		available[id] = true
	}

	byID := make(map[string]Player, len(players))
	var cands []matchmaking.Candidate
	for _, p := range players {
		byID[p.ID] = p
		if available[p.ID] {
			cands = append(cands, matchmaking.Candidate{ID: p.ID, Elo: p.Elo})
		}
	}

	pool := matchmaking.SamplePool(cands, s.cfg.PoolBound, s.rng)
	if len(pool) < 2 {
		return nil, nil, matcherrors.ErrNotEnoughPlayers
	}

	a, b := matchmaking.SplitTeams(pool, tolerance, s.cfg.AnchorPlayerA, s.cfg.AnchorPlayerB, s.rng)
	for _, c := range a {
		teamA = append(teamA, byID[c.ID])
	}
	for _, c := range b {
		teamB = append(teamB, byID[c.ID])
	}

	slog.Info("teams suggested", "tag", "match",
		"pool", len(pool), "tolerance", tolerance,
		"teamA", len(teamA), "teamB", len(teamB))
	return teamA, teamB, nil
}

// CreateMatch persists a pending match for the given team id lists, capturing
// each player's current rating as the creation snapshot. Team sizes may
// differ by at most one and the teams must be disjoint.
func (s *Service) CreateMatch(ctx context.Context, teamAIDs, teamBIDs []string) (*Match, error) {
	if len(teamAIDs) == 0 || len(teamBIDs) == 0 {
		return nil, matcherrors.ErrNotEnoughPlayers
	}
	if d := len(teamAIDs) - len(teamBIDs); d < -1 || d > 1 {
		return nil, matcherrors.ErrTeamSizeMismatch
	}
	seen := make(map[string]bool, len(teamAIDs))
	for _, id := range teamAIDs {
		seen[id] = true
	}
	for _, id := range teamBIDs {
		if seen[id] {
			return nil, matcherrors.ErrTeamsOverlap
		}
	}

	players, err := s.store.FetchPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch players: %w", err)
	}
	eloByID := make(map[string]int, len(players))
	for _, p := range players {
		eloByID[p.ID] = p.Elo
	}

	snapshot := func(ids []string) ([]int, error) {
		elos := make([]int, len(ids))
		for i, id := range ids {
			elo, ok := eloByID[id]
			if !ok {
				return nil, fmt.Errorf("%w: %s", matcherrors.ErrPlayerNotFound, id)
			}
			elos[i] = elo
		}
		return elos, nil
	}
	teamAElos, err := snapshot(teamAIDs)
	if err != nil {
		return nil, err
	}
	teamBElos, err := snapshot(teamBIDs)
	if err != nil {
		return nil, err
	}

	m := &Match{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		TeamAIDs:  append([]string(nil), teamAIDs...),
		TeamBIDs:  append([]string(nil), teamBIDs...),
		TeamAElos: teamAElos,
		TeamBElos: teamBElos,
		Result:    Pending,
	}
	if err := s.store.CreateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	slog.Info("match created", "tag", "match", "id", m.ID, "teamA", len(teamAIDs), "teamB", len(teamBIDs))
	s.broadcast("match_created", m)
	return m, nil
}

// Complete resolves a pending match with the given winning side, applies the
// rating update to every participant and increments win/game counters. All
// rating inputs come from the match's creation-time snapshots, not from the
// players' live ratings: other matches may have moved those in the meantime,
// and this match settles against the state it was created under.
//
// The store write is guarded so a match resolves at most once; the losing
// racer gets matcherrors.ErrMatchAlreadyResolved and no ratings move twice.
func (s *Service) Complete(ctx context.Context, m *Match, winner Result) (*Match, []Player, error) {
	if winner != TeamAWon && winner != TeamBWon {
		return nil, nil, matcherrors.ErrInvalidResult
	}
	if m.Result.Terminal() {
		return nil, nil, matcherrors.ErrMatchAlreadyResolved
	}

	meanA := rating.TeamMean(m.TeamAElos)
	meanB := rating.TeamMean(m.TeamBElos)

	teamANew := make([]int, len(m.TeamAElos))
	for i, elo := range m.TeamAElos {
		teamANew[i] = rating.Next(elo, meanB, winner == TeamAWon, s.cfg.EloK)
	}
	teamBNew := make([]int, len(m.TeamBElos))
	for i, elo := range m.TeamBElos {
		teamBNew[i] = rating.Next(elo, meanA, winner == TeamBWon, s.cfg.EloK)
	}

	players, err := s.store.FetchPlayers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch players: %w", err)
	}
	byID := make(map[string]Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	var updates []PlayerUpdate
	var updated []Player
	collect := func(ids []string, newElos []int, won bool) error {
		for i, id := range ids {
			p, ok := byID[id]
			if !ok {
				return fmt.Errorf("%w: %s", matcherrors.ErrPlayerNotFound, id)
			}
			p.Elo = newElos[i]
			p.Games++
			if won {
				p.Wins++
			}
			updates = append(updates, PlayerUpdate{ID: p.ID, Elo: p.Elo, Wins: p.Wins, Games: p.Games})
			updated = append(updated, p)
		}
		return nil
	}
	if err := collect(m.TeamAIDs, teamANew, winner == TeamAWon); err != nil {
		return nil, nil, err
	}
	if err := collect(m.TeamBIDs, teamBNew, winner == TeamBWon); err != nil {
		return nil, nil, err
	}

	if err := s.store.FinalizeMatch(ctx, m.ID, winner, teamANew, teamBNew, updates); err != nil {
		return nil, nil, err
	}

	m.Result = winner
	m.TeamANewElos = teamANew
	m.TeamBNewElos = teamBNew

	slog.Info("match completed", "tag", "match", "id", m.ID, "result", winner)
	s.broadcast("match_completed", m)
	s.broadcast("ratings_updated", updated)
	return m, updated, nil
}

// Cancel voids a pending match. No ratings or counters change; only the
// result field moves, guarded the same way as Complete.
func (s *Service) Cancel(ctx context.Context, m *Match) (*Match, error) {
	if m.Result.Terminal() {
		return nil, matcherrors.ErrMatchAlreadyResolved
	}
	if err := s.store.CancelMatch(ctx, m.ID); err != nil {
		return nil, err
	}
	m.Result = Cancelled

	slog.Info("match cancelled", "tag", "match", "id", m.ID)
	s.broadcast("match_cancelled", m)
	return m, nil
}

func (s *Service) broadcast(event string, payload any) {
	if s.notifier != nil {
		s.notifier.Broadcast(event, payload)
	}
}
