package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:50007", cfg.TCPAddr)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Zero(t, cfg.TurnTimeout)
	assert.Zero(t, cfg.DraftTimeout)
	assert.Equal(t, time.Second, cfg.TeardownDelay)
	assert.Equal(t, 1, cfg.MaxMatches)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogDev)
	assert.Empty(t, cfg.OTelEndpoint)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ARENA_TCP_ADDR", "0.0.0.0:6000")
	t.Setenv("ARENA_TURN_TIMEOUT", "30s")
	t.Setenv("ARENA_MAX_MATCHES", "8")
	t.Setenv("ARENA_LOG_LEVEL", "debug")
	t.Setenv("ARENA_LOG_DEV", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:6000", cfg.TCPAddr)
	assert.Equal(t, 30*time.Second, cfg.TurnTimeout)
	assert.Equal(t, 8, cfg.MaxMatches)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogDev)
}

func TestLoadDotenvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ARENA_DRAFT_TIMEOUT=45s\nARENA_HTTP_ADDR=:9999\n"), 0o600))
	t.Setenv("ARENA_HTTP_ADDR", ":7070")
	t.Cleanup(func() { _ = os.Unsetenv("ARENA_DRAFT_TIMEOUT") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.DraftTimeout)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name, key, value string
	}{
		{name: "negative turn timeout", key: "ARENA_TURN_TIMEOUT", value: "-1s"},
		{name: "zero max matches", key: "ARENA_MAX_MATCHES", value: "0"},
		{name: "unknown log level", key: "ARENA_LOG_LEVEL", value: "loud"},
		{name: "unparsable duration", key: "ARENA_TEARDOWN_DELAY", value: "soon"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	err := Config{MaxMatches: 0, LogLevel: "info", TurnTimeout: -time.Second}.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "ARENA_TURN_TIMEOUT")
	assert.Contains(t, err.Error(), "ARENA_MAX_MATCHES")
	assert.Contains(t, err.Error(), "no listen address")
}
