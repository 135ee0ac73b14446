package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, DefaultCodeLength, cfg.CodeLength)
	assert.Equal(t, 10, cfg.MaxCodeRetries)
	assert.Equal(t, time.Duration(0), cfg.ProbeTimeout)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CODE_LENGTH", "8")
	t.Setenv("BASE_URL", "https://sho.rt")
	t.Setenv("PROBE_TIMEOUT", "2s")

	cfg := Load()
	assert.Equal(t, 8, cfg.CodeLength)
	assert.Equal(t, "https://sho.rt", cfg.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
}

func TestLoadIgnoresGarbage(t *testing.T) {
	t.Setenv("CODE_LENGTH", "five")
	t.Setenv("PROBE_TIMEOUT", "soon")

	cfg := Load()
	assert.Equal(t, DefaultCodeLength, cfg.CodeLength)
	assert.Equal(t, time.Duration(0), cfg.ProbeTimeout)
}
