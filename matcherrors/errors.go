package matcherrors

import "errors"

// Matchmaking/lifecycle sentinel errors. Used by the match, storage and api
// packages to avoid circular imports.
var (
	// ErrNotEnoughPlayers is returned when fewer than 2 available players
	// are given to a team suggestion request.
	ErrNotEnoughPlayers = errors.New("not enough available players")

	// ErrTeamSizeMismatch is returned on manual match creation when the two
	// team sizes differ by more than one.
	ErrTeamSizeMismatch = errors.New("team sizes differ by more than one")

	// ErrMatchAlreadyResolved is returned when completing or cancelling a
	// match whose result is no longer pending. Exactly one of two racing
	// resolutions gets past this.
	ErrMatchAlreadyResolved = errors.New("match already resolved")

	// ErrTeamsOverlap is returned on manual match creation when a player id
	// appears on both teams.
	ErrTeamsOverlap = errors.New("teams share a player")

	// ErrInvalidResult is returned when a completion names a result that is
	// not a winning side.
	ErrInvalidResult = errors.New("result is not a winning side")

	ErrMatchNotFound  = errors.New("match not found")
	ErrPlayerNotFound = errors.New("player not found")
)
