package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(nil, envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "tracker.db", cfg.DSN)
	assert.False(t, cfg.StrictReadings)
	assert.True(t, cfg.Seed)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, 720*time.Hour, cfg.DraftTTL)
}

func TestParseConfig_EnvThenFlags(t *testing.T) {
	// GIVEN: environment defaults
	env := envOf(map[string]string{
		"PORT":            "9000",
		"DB_DRIVER":       "memory",
		"STRICT_READINGS": "true",
		"SWEEP_INTERVAL":  "0",
		"JWT_SECRET":      "s3cret",
	})

	// WHEN: a flag overrides one of them
	cfg, err := parseConfig([]string{"-port", "9100"}, env)
	require.NoError(t, err)

	// THEN: flags win, the rest comes from the environment
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "memory", cfg.Driver)
	assert.True(t, cfg.StrictReadings)
	assert.Zero(t, cfg.SweepInterval)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"bad port env", nil, map[string]string{"PORT": "http"}},
		{"bad bool env", nil, map[string]string{"SEED": "maybe"}},
		{"bad duration env", nil, map[string]string{"DRAFT_TTL": "soon"}},
		{"unknown driver", []string{"-db-driver", "postgres"}, nil},
		{"unknown flag", []string{"-verbose"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseConfig(tt.args, envOf(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestSessionSecret(t *testing.T) {
	secret, err := config{JWTSecret: "fixed"}.sessionSecret()
	require.NoError(t, err)
	assert.Equal(t, []byte("fixed"), secret)

	a, err := config{}.sessionSecret()
	require.NoError(t, err)
	b, err := config{}.sessionSecret()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestOpenStore(t *testing.T) {
	for _, driver := range []string{"memory", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			st, closeStore, err := openStore(config{Driver: driver, DSN: ":memory:"})
			require.NoError(t, err)
			defer closeStore()

			keys, err := st.Keys(context.Background(), "")
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}
