package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "SECRET_KEY")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("DEBUG", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("REQUEST_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, EnvDevelopment, cfg.Environment)
	require.False(t, cfg.Debug)
	require.Equal(t, "/tmp/boothouse.db", cfg.DBPath)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.Equal(t, 8080, cfg.ServerPort)
}

func TestProductionForcesDebugOff(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("ENVIRONMENT", EnvProduction)
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.Debug)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("DEBUG", "1")
	t.Setenv("ENVIRONMENT", EnvDevelopment)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.Equal(t, 2*time.Second, cfg.RequestTimeout)
	require.True(t, cfg.Debug)
}
