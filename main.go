package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"team-balance-server/api"
	"team-balance-server/config"
	"team-balance-server/loghandler"
	"team-balance-server/match"
	"team-balance-server/storage"
	"team-balance-server/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found; using environment variables. Set DATABASE_URL and API_PORT.")
	}

	cfg := config.Load()
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, slog.LevelInfo)))

	log.Printf("Configuration: APIPort=%d, EloK=%d, InitialElo=%d, PoolBound=%d, DefaultTolerance=%d",
		cfg.APIPort, cfg.EloK, cfg.InitialElo, cfg.PoolBound, cfg.DefaultTolerance)
	if cfg.AnchorPlayerA != "" && cfg.AnchorPlayerB != "" {
		log.Printf("Anchor pair: %s + %s always land on the same team", cfg.AnchorPlayerA, cfg.AnchorPlayerB)
	}
	if cfg.AuthBaseURL == "" {
		log.Print("Auth: AUTH_BASE_URL is not set — mutating endpoints accept unauthenticated requests")
	} else {
		log.Printf("Auth: configured (base URL: %s)", cfg.AuthBaseURL)
	}

	ctx := context.Background()
	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to storage: %v", err)
	}
	if store == nil {
		log.Fatal("DATABASE_URL is not set")
	}
	defer store.Close()

	// Live update feed
	hub := ws.NewHub()
	go hub.Run(ctx)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	svc := match.NewService(cfg, store, hub, rng)
	handler := api.NewHandler(cfg, store, svc)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/players", handler.Players)
	mux.HandleFunc("/api/matches", handler.Matches)
	mux.HandleFunc("/api/suggest", handler.Suggest)
	mux.HandleFunc("/api/matches/complete", handler.Complete)
	mux.HandleFunc("/api/matches/cancel", handler.Cancel)
	mux.HandleFunc("/ws", hub.ServeWS)

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	log.Printf("Team balance server listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
