package main

import (
	"log"
	"os"

	"github.com/Electric-Coin-Company/simtfl-sim/internal/api"
	"github.com/Electric-Coin-Company/simtfl-sim/internal/store"
	"github.com/Electric-Coin-Company/simtfl-sim/internal/telemetry"
)

func main() {
	log.Println("Starting adapted-Streamlet BFT simulator...")

	// ─── Optional environment variables ──────────────────────────────
	// DATABASE_URL, if set, persists run summaries to PostgreSQL. The
	// simulator runs perfectly well without it — runs just aren't
	// retrievable by ID across restarts.
	// ───────────────────────────────────────────────────────────────

	var runStore *store.RunStore
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		s, err := store.Connect(dbURL)
		if err != nil {
			log.Printf("Warning: failed to connect to PostgreSQL, continuing without persisting runs. Error: %v", err)
		} else {
			defer s.Close()
			if err := s.InitSchema(); err != nil {
				log.Printf("Warning: schema init failed: %v", err)
			} else {
				runStore = s
			}
		}
	} else {
		log.Println("DATABASE_URL not set — runs will not be persisted across restarts")
	}

	// Setup the telemetry hub that fans live simulation log lines out to
	// connected WebSocket dashboards.
	hub := telemetry.NewHub()
	go hub.Run()

	r := api.SetupRouter(runStore, hub)

	port := getEnvOrDefault("PORT", "5339")

	log.Printf("Simulator running on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnvOrDefault returns the env var value or a safe default for
// non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
