package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// Config holds all configurable server and matchmaking parameters.
type Config struct {
	APIPort     int    `json:"api_port"`
	DatabaseURL string `json:"database_url"`
	AuthBaseURL string `json:"auth_base_url"`

	// EloK is the K-factor used by the rating update after a match.
	EloK int `json:"elo_k"`
	// InitialElo is the rating assigned to players without a rating row.
	InitialElo int `json:"initial_elo"`

	// PoolBound caps how many available players are sampled into one
	// balancing run. The split search is exhaustive, so this bound is what
	// keeps it tractable; do not raise it casually.
	PoolBound int `json:"pool_bound"`
	// DefaultTolerance is the rating-imbalance tolerance used when a
	// suggestion request does not specify one. At 0 the split is the single
	// most balanced one; above 0 any split within tolerance may be picked.
	DefaultTolerance int `json:"default_tolerance"`

	// AnchorPlayerA/AnchorPlayerB are the two player ids that must always
	// land on the same team when both are in the candidate pool. Leave
	// empty to disable the constraint.
	AnchorPlayerA string `json:"anchor_player_a"`
	AnchorPlayerB string `json:"anchor_player_b"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		APIPort:          8080,
		EloK:             15,
		InitialElo:       1200,
		PoolBound:        10,
		DefaultTolerance: 0,
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	// Try to load from config.json
	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	// Environment variable overrides
	overrideInt(&cfg.APIPort, "API_PORT")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.AuthBaseURL, "AUTH_BASE_URL")
	overrideInt(&cfg.EloK, "ELO_K")
	overrideInt(&cfg.InitialElo, "INITIAL_ELO")
	overrideInt(&cfg.PoolBound, "POOL_BOUND")
	overrideInt(&cfg.DefaultTolerance, "DEFAULT_TOLERANCE")
	overrideString(&cfg.AnchorPlayerA, "ANCHOR_PLAYER_A")
	overrideString(&cfg.AnchorPlayerB, "ANCHOR_PLAYER_B")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
