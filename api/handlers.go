// Package api exposes the matchmaking core over a small JSON HTTP surface
// consumed by the UI.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"team-balance-server/auth"
	"team-balance-server/config"
	"team-balance-server/match"
	"team-balance-server/matcherrors"
)

const bearerPrefix = "Bearer "

const defaultMatchLimit = 20

// Lifecycle is the slice of the match service the handlers use.
type Lifecycle interface {
	SuggestTeams(ctx context.Context, availableIDs []string, tolerance int) (teamA, teamB []match.Player, err error)
	CreateMatch(ctx context.Context, teamAIDs, teamBIDs []string) (*match.Match, error)
	Complete(ctx context.Context, m *match.Match, winner match.Result) (*match.Match, []match.Player, error)
	Cancel(ctx context.Context, m *match.Match) (*match.Match, error)
}

// Store is what the read and roster endpoints need from persistence.
type Store interface {
	FetchPlayers(ctx context.Context) ([]match.Player, error)
	FetchMatches(ctx context.Context, limit int) ([]match.Match, error)
	FetchMatchCount(ctx context.Context) (int, error)
	GetMatch(ctx context.Context, id string) (*match.Match, error)
	CreatePlayer(ctx context.Context, p match.Player) error
}

// Handler holds dependencies for API handlers.
type Handler struct {
	Config  *config.Config
	Store   Store
	Service Lifecycle
}

// NewHandler creates a new API handler with the given dependencies.
func NewHandler(cfg *config.Config, store Store, svc Lifecycle) *Handler {
	return &Handler{
		Config:  cfg,
		Store:   store,
		Service: svc,
	}
}

// CORS sets CORS headers on the response. Call before writing body.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// authorized checks the Authorization header on mutating requests. When no
// auth provider is configured the check is skipped (local/dev setups).
func (h *Handler) authorized(r *http.Request) bool {
	if h.Config.AuthBaseURL == "" {
		return true
	}
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return false
	}
	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	claims, err := auth.ValidateToken(h.Config.AuthBaseURL, token)
	if err != nil {
		return false
	}
	return auth.UserIDFromClaims(claims) != ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Encode response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP status codes. Persistence
// failures stay 500 and keep their message out of the response body.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matcherrors.ErrNotEnoughPlayers),
		errors.Is(err, matcherrors.ErrTeamSizeMismatch),
		errors.Is(err, matcherrors.ErrTeamsOverlap),
		errors.Is(err, matcherrors.ErrInvalidResult),
		errors.Is(err, matcherrors.ErrPlayerNotFound):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, matcherrors.ErrMatchAlreadyResolved):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, matcherrors.ErrMatchNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// Players serves GET (roster, best rating first) and POST (register a player).
func (h *Handler) Players(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		players, err := h.Store.FetchPlayers(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if players == nil {
			players = []match.Player{}
		}
		writeJSON(w, http.StatusOK, players)

	case http.MethodPost:
		if !h.authorized(r) {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}
		var req struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		p := match.Player{ID: req.ID, Name: strings.TrimSpace(req.Name), Elo: h.Config.InitialElo}
		if err := h.Store.CreatePlayer(r.Context(), p); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// MatchListResponse is the JSON structure for GET /api/matches.
type MatchListResponse struct {
	Matches []match.Match `json:"matches"`
	Total   int           `json:"total"`
}

// Matches serves GET (recent matches plus total count) and POST (manual
// match creation from two id lists).
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = defaultMatchLimit
		}
		matches, err := h.Store.FetchMatches(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		total, err := h.Store.FetchMatchCount(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if matches == nil {
			matches = []match.Match{}
		}
		writeJSON(w, http.StatusOK, MatchListResponse{Matches: matches, Total: total})

	case http.MethodPost:
		if !h.authorized(r) {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}
		var req struct {
			TeamAIDs []string `json:"team_a_ids"`
			TeamBIDs []string `json:"team_b_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		m, err := h.Service.CreateMatch(r.Context(), req.TeamAIDs, req.TeamBIDs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// SuggestResponse is the JSON structure for POST /api/suggest.
type SuggestResponse struct {
	TeamA []match.Player `json:"team_a"`
	TeamB []match.Player `json:"team_b"`
}

// Suggest proposes a balanced split of the available players. Repeating the
// request with a tolerance above zero shuffles between acceptable splits.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		AvailableIDs []string `json:"available_ids"`
		Tolerance    *int     `json:"tolerance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	tolerance := -1 // service substitutes the configured default
	if req.Tolerance != nil && *req.Tolerance >= 0 {
		tolerance = *req.Tolerance
	}
	teamA, teamB, err := h.Service.SuggestTeams(r.Context(), req.AvailableIDs, tolerance)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuggestResponse{TeamA: teamA, TeamB: teamB})
}

// CompleteResponse is the JSON structure for POST /api/matches/complete.
type CompleteResponse struct {
	Match   *match.Match   `json:"match"`
	Players []match.Player `json:"players"`
}

// Complete resolves a pending match with a winning side and returns the
// updated match and player records.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}
	var req struct {
		MatchID string       `json:"match_id"`
		Winner  match.Result `json:"winner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MatchID == "" {
		http.Error(w, "match_id is required", http.StatusBadRequest)
		return
	}
	m, err := h.Store.GetMatch(r.Context(), req.MatchID)
	if err != nil {
		writeError(w, err)
		return
	}
	done, players, err := h.Service.Complete(r.Context(), m, req.Winner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CompleteResponse{Match: done, Players: players})
}

// Cancel voids a pending match without touching any ratings.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}
	var req struct {
		MatchID string `json:"match_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MatchID == "" {
		http.Error(w, "match_id is required", http.StatusBadRequest)
		return
	}
	m, err := h.Store.GetMatch(r.Context(), req.MatchID)
	if err != nil {
		writeError(w, err)
		return
	}
	cancelled, err := h.Service.Cancel(r.Context(), m)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cancelled)
}
