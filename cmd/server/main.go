/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the print production tracker server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Open the configured store (sqlite, mysql or memory)
  3. Seed starter clients and materials when requested
  4. Create authenticator, session issuer and API handler
  5. Start the draft sweeper
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (environment default in brackets):
  -port             HTTP server port [PORT] (default: 8080)
  -db-driver        sqlite, mysql or memory [DB_DRIVER] (default: sqlite)
  -db               SQLite path or MySQL DSN [DB_DSN] (default: tracker.db)
  -jwt-secret       Session signing key [JWT_SECRET]
  -strict-readings  Reject saves whose reading delta differs from impressions
                    [STRICT_READINGS]
  -seed             Seed starter data into an empty store [SEED] (default: true)
  -sweep-interval   Draft sweeper period, 0 disables [SWEEP_INTERVAL] (default: 1h)
  -draft-ttl        Age after which drafts are dropped [DRAFT_TTL] (default: 720h)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the draft sweeper
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/tracker.db"

  # Run with in-memory database
  ./server -db-driver=memory

  # Run against MySQL
  DB_DRIVER=mysql DB_DSN="user:pass@tcp(localhost:3306)/tracker" ./server

SEE ALSO:
  - config.go: Flag and environment parsing
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/print-tracker/api"
	"github.com/warp/print-tracker/auth"
	"github.com/warp/print-tracker/production"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Failed to load .env: %v", err)
	}

	cfg, err := parseConfig(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize store
	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer closeStore()

	svc := production.NewService(store)
	if cfg.Seed {
		if err := svc.Seed(context.Background()); err != nil {
			log.Fatalf("Failed to seed store: %v", err)
		}
	}

	// Initialize auth
	authn, err := auth.NewStatic(0, auth.DefaultAccounts...)
	if err != nil {
		log.Fatalf("Failed to initialize accounts: %v", err)
	}
	secret, err := cfg.sessionSecret()
	if err != nil {
		log.Fatalf("Failed to create session secret: %v", err)
	}
	sessions, err := auth.NewSessions(secret, auth.DefaultSessionTTL)
	if err != nil {
		log.Fatalf("Failed to initialize sessions: %v", err)
	}

	// Initialize handler
	handler := api.NewHandler(svc, authn, sessions)
	handler.StrictReadings = cfg.StrictReadings

	sweeper := api.NewDraftSweeper(svc)
	sweeper.Interval = cfg.SweepInterval
	sweeper.TTL = cfg.DraftTTL
	sweeper.Enabled = cfg.SweepInterval > 0
	sweeper.Start()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d (store: %s)", cfg.Port, cfg.Driver)
		log.Printf("API available at http://localhost:%d/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
