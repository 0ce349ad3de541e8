package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsAutoPicksMemory(t *testing.T) {
	cfg := &Config{StoreDriver: "auto"}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "memory", cfg.StoreDriver)
}

func TestResolveDefaultsAutoPicksSqliteWithPath(t *testing.T) {
	cfg := &Config{StoreDriver: "auto", SQLitePath: "/tmp/events.db"}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "sqlite", cfg.StoreDriver)
}

func TestResolveDefaultsRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{StoreDriver: "postgres"}
	assert.Error(t, cfg.ResolveDefaults())
}

func TestResolveDefaultsSqliteNeedsPath(t *testing.T) {
	cfg := &Config{StoreDriver: "sqlite"}
	assert.Error(t, cfg.ResolveDefaults())
}

func TestNewFromEnvironment(t *testing.T) {
	t.Setenv("UFO_TIMELINE_HTTP_PORT", "9191")
	t.Setenv("UFO_TIMELINE_STORE_DRIVER", "memory")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.StoreDriver)
}

func TestIsDevMode(t *testing.T) {
	assert.True(t, (&Config{Environment: EnvDevelopment}).IsDevMode())
	assert.True(t, (&Config{Environment: EnvProduction, DevMode: true}).IsDevMode())
	assert.False(t, (&Config{Environment: EnvProduction}).IsDevMode())
}
