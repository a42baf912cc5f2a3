package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/warp/print-tracker/kv"
	"github.com/warp/print-tracker/store/mysql"
	"github.com/warp/print-tracker/store/sqlite"
)

// config is the resolved server configuration.
type config struct {
	Port           int
	Driver         string
	DSN            string
	JWTSecret      string
	StrictReadings bool
	Seed           bool
	SweepInterval  time.Duration
	DraftTTL       time.Duration
}

// parseConfig parses args with defaults taken from getenv.
func parseConfig(args []string, getenv func(string) string) (config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	port, err := strconv.Atoi(env("PORT", "8080"))
	if err != nil {
		return config{}, fmt.Errorf("PORT: %w", err)
	}
	strict, err := strconv.ParseBool(env("STRICT_READINGS", "false"))
	if err != nil {
		return config{}, fmt.Errorf("STRICT_READINGS: %w", err)
	}
	seed, err := strconv.ParseBool(env("SEED", "true"))
	if err != nil {
		return config{}, fmt.Errorf("SEED: %w", err)
	}
	interval, err := time.ParseDuration(env("SWEEP_INTERVAL", "1h"))
	if err != nil {
		return config{}, fmt.Errorf("SWEEP_INTERVAL: %w", err)
	}
	ttl, err := time.ParseDuration(env("DRAFT_TTL", "720h"))
	if err != nil {
		return config{}, fmt.Errorf("DRAFT_TTL: %w", err)
	}

	var cfg config
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", port, "HTTP server port")
	fs.StringVar(&cfg.Driver, "db-driver", env("DB_DRIVER", "sqlite"), "Store backend: sqlite, mysql or memory")
	fs.StringVar(&cfg.DSN, "db", env("DB_DSN", "tracker.db"), "SQLite database path or MySQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", getenv("JWT_SECRET"), "Session signing key (random when empty)")
	fs.BoolVar(&cfg.StrictReadings, "strict-readings", strict, "Reject saves whose reading delta differs from impressions")
	fs.BoolVar(&cfg.Seed, "seed", seed, "Seed starter clients and materials into an empty store")
	fs.DurationVar(&cfg.SweepInterval, "sweep-interval", interval, "Draft sweeper period (0 disables)")
	fs.DurationVar(&cfg.DraftTTL, "draft-ttl", ttl, "Age after which untouched drafts are dropped (0 keeps them)")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	switch cfg.Driver {
	case "sqlite", "mysql", "memory":
	default:
		return config{}, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
	return cfg, nil
}

// sessionSecret returns the configured secret, or a random one that does
// not survive a restart.
func (c config) sessionSecret() ([]byte, error) {
	if c.JWTSecret != "" {
		return []byte(c.JWTSecret), nil
	}
	log.Println("Warning: JWT_SECRET not set, sessions end on restart")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// openStore opens the configured backend. The returned func releases it.
func openStore(c config) (kv.Store, func(), error) {
	switch c.Driver {
	case "memory":
		return kv.NewMemory(), func() {}, nil
	case "mysql":
		s, err := mysql.New(c.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		s, err := sqlite.New(c.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
}
