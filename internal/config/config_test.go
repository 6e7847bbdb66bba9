package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MURMUR_CONFIG_DIR", "/etc/murmur")
	t.Setenv("MURMUR_APPS_FILE", "")
	t.Setenv("MURMUR_ROUTE_TIMEOUT", "")
	t.Setenv("MURMUR_PENDING_TTL", "")
	t.Setenv("MURMUR_DUCK", "")
	t.Setenv("MURMUR_USER", "")

	cfg := Load()
	assert.Equal(t, "/etc/murmur", cfg.ConfigDir)
	assert.Equal(t, filepath.Join("/etc/murmur", "apps.json"), cfg.AppsFile)
	assert.Equal(t, filepath.Join("/etc/murmur", "cores.yaml"), cfg.CoresFile)
	assert.Equal(t, "default", cfg.User)
	assert.Equal(t, 60*time.Second, cfg.RouteTimeout)
	assert.Zero(t, cfg.PendingTTL)
	assert.True(t, cfg.Duck)
	assert.Equal(t, "murmur.route", cfg.NatsSubject)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MURMUR_APPS_FILE", "/tmp/apps.json")
	t.Setenv("MURMUR_PENDING_TTL", "90s")
	t.Setenv("MURMUR_DUCK", "false")
	t.Setenv("MURMUR_USER", "ana")

	cfg := Load()
	assert.Equal(t, "/tmp/apps.json", cfg.AppsFile)
	assert.Equal(t, 90*time.Second, cfg.PendingTTL)
	assert.False(t, cfg.Duck)
	assert.Equal(t, "ana", cfg.User)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MURMUR_ROUTE_TIMEOUT", "soon")
	t.Setenv("MURMUR_PENDING_TTL", "later")
	t.Setenv("MURMUR_DUCK", "maybe")

	cfg := Load()
	assert.Equal(t, 60*time.Second, cfg.RouteTimeout)
	assert.Zero(t, cfg.PendingTTL)
	assert.True(t, cfg.Duck)
}
