package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MAX_SESSIONS", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("DB_DRIVER", "")

	cfg := Load()

	assert.Equal(t, 3, cfg.MaxSessions)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "redis", cfg.SessionBackend)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MAX_SESSIONS", "5")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("RESET_DB", "true")

	cfg := Load()

	assert.Equal(t, 5, cfg.MaxSessions)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.True(t, cfg.ResetDB)
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_SESSIONS", "three")
	t.Setenv("TOKEN_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 3, cfg.MaxSessions)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
}
