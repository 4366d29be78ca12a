// Package storage is the Postgres-backed persistence collaborator. It owns
// durable Player/Match state; all rating math happens in the match package
// and arrives here as already-computed values.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"team-balance-server/match"
	"team-balance-server/matcherrors"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS players (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	elo        INT  NOT NULL DEFAULT 1200,
	wins       INT  NOT NULL DEFAULT 0,
	games      INT  NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_players_elo ON players(elo DESC);
CREATE TABLE IF NOT EXISTS matches (
	id              UUID PRIMARY KEY,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	team_a_ids      TEXT[] NOT NULL,
	team_b_ids      TEXT[] NOT NULL,
	team_a_elos     INT[] NOT NULL,
	team_b_elos     INT[] NOT NULL,
	result          TEXT NOT NULL DEFAULT 'pending',
	team_a_new_elos INT[],
	team_b_new_elos INT[]
);
CREATE INDEX IF NOT EXISTS idx_matches_created_at ON matches(created_at DESC);
`

// Store persists players and matches in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure *Store implements match.Store at compile time.
var _ match.Store = (*Store)(nil)

// NewStore connects to Postgres and ensures the schema exists.
// If databaseURL is empty, NewStore returns (nil, nil) and no persistence occurs.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// FetchPlayers returns the full roster ordered by rating, best first.
func (s *Store) FetchPlayers(ctx context.Context) ([]match.Player, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, elo, wins, games FROM players ORDER BY elo DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []match.Player
	for rows.Next() {
		var p match.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Elo, &p.Wins, &p.Games); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// CreatePlayer inserts a roster entry. Existing ids are left untouched so a
// re-registration cannot reset a rating.
func (s *Store) CreatePlayer(ctx context.Context, p match.Player) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO players (id, name, elo, wins, games) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Name, p.Elo, p.Wins, p.Games)
	return err
}

// FetchMatches returns up to limit matches, newest first.
func (s *Store) FetchMatches(ctx context.Context, limit int) ([]match.Match, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, team_a_ids, team_b_ids, team_a_elos, team_b_elos, result, team_a_new_elos, team_b_new_elos
		FROM matches ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []match.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// FetchMatchCount returns the total number of recorded matches.
func (s *Store) FetchMatchCount(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM matches`).Scan(&n)
	return n, err
}

// GetMatch returns one match by id.
func (s *Store) GetMatch(ctx context.Context, id string) (*match.Match, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, created_at, team_a_ids, team_b_ids, team_a_elos, team_b_elos, result, team_a_new_elos, team_b_new_elos
		FROM matches WHERE id = $1`, id)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, matcherrors.ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func scanMatch(row pgx.Row) (*match.Match, error) {
	var m match.Match
	err := row.Scan(&m.ID, &m.CreatedAt, &m.TeamAIDs, &m.TeamBIDs, &m.TeamAElos, &m.TeamBElos, &m.Result, &m.TeamANewElos, &m.TeamBNewElos)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMatch inserts a pending match with its creation-time snapshots.
func (s *Store) CreateMatch(ctx context.Context, m *match.Match) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO matches (id, created_at, team_a_ids, team_b_ids, team_a_elos, team_b_elos, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.CreatedAt, m.TeamAIDs, m.TeamBIDs, m.TeamAElos, m.TeamBElos, m.Result)
	return err
}

// CancelMatch marks a pending match cancelled. The WHERE clause is the
// optimistic guard: a match that already left pending is not touched and the
// caller gets ErrMatchAlreadyResolved.
func (s *Store) CancelMatch(ctx context.Context, id string) error {
	ct, err := s.pool.Exec(ctx, `UPDATE matches SET result = $2 WHERE id = $1 AND result = 'pending'`, id, match.Cancelled)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return s.resolveConflict(ctx, id)
	}
	return nil
}

// FinalizeMatch writes the terminal result, the post-match snapshots and all
// player updates in one transaction, guarded against double resolution.
func (s *Store) FinalizeMatch(ctx context.Context, id string, result match.Result, teamANewElos, teamBNewElos []int, updates []match.PlayerUpdate) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		UPDATE matches SET result = $2, team_a_new_elos = $3, team_b_new_elos = $4
		WHERE id = $1 AND result = 'pending'`,
		id, result, teamANewElos, teamBNewElos)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return s.resolveConflict(ctx, id)
	}

	for _, u := range updates {
		if err := upsertPlayer(ctx, tx, u); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// UpsertPlayers writes rating/record updates outside a match transaction
// (roster imports, manual corrections).
func (s *Store) UpsertPlayers(ctx context.Context, updates []match.PlayerUpdate) error {
	for _, u := range updates {
		if err := upsertPlayer(ctx, s.pool, u); err != nil {
			return err
		}
	}
	return nil
}

// execer covers pgxpool.Pool and pgx.Tx so the player upsert can run either
// standalone or inside the finalize transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertPlayer(ctx context.Context, db execer, u match.PlayerUpdate) error {
	_, err := db.Exec(ctx, `
		INSERT INTO players (id, elo, wins, games) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET elo = $2, wins = $3, games = $4, updated_at = now()`,
		u.ID, u.Elo, u.Wins, u.Games)
	return err
}

// resolveConflict classifies a guarded update that matched no rows: either
// the match does not exist or it already has a terminal result.
func (s *Store) resolveConflict(ctx context.Context, id string) error {
	var result match.Result
	err := s.pool.QueryRow(ctx, `SELECT result FROM matches WHERE id = $1`, id).Scan(&result)
	if errors.Is(err, pgx.ErrNoRows) {
		return matcherrors.ErrMatchNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: match %s is %s", matcherrors.ErrMatchAlreadyResolved, id, result)
}
