package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaults(t *testing.T) {
	// No config file exists relative to the test's working directory.
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(32768), cfg.ReadLimit)
	assert.Equal(t, 32, cfg.SendBuffer)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 5*time.Second, cfg.TypingTTL)
	assert.Equal(t, time.Second, cfg.SweepInterval)
	assert.Equal(t, 2*time.Second, cfg.CallEndedLinger)
	assert.Equal(t, 5, cfg.DialLimit)
	assert.Equal(t, 10*time.Second, cfg.DialInterval)
}
