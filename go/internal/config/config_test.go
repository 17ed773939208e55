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
	t.Setenv(FileEnvVar, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sleuth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: http://game.example:9000
push:
  transport: nats
  queue_size: 32
reconnect:
  initial_backoff: 2s
player:
  name: Ana
  room_id: 4
locale: es-AR
`), 0o600))

	t.Setenv(FileEnvVar, path)
	t.Setenv("SLEUTH_PLAYER_NAME", "Bob")
	t.Setenv("SLEUTH_RECONNECT_MAX_ATTEMPTS", "5")
	t.Setenv("SLEUTH_INSPECTOR_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://game.example:9000", cfg.API.BaseURL)
	assert.Equal(t, TransportNATS, cfg.Push.Transport)
	assert.Equal(t, 32, cfg.Push.QueueSize)
	assert.Equal(t, 2*time.Second, cfg.Reconnect.InitialBackoff)
	assert.Equal(t, 4, cfg.Player.RoomID)
	assert.Equal(t, "es-AR", cfg.Locale)

	assert.Equal(t, "Bob", cfg.Player.Name)
	assert.Equal(t, 5, cfg.Reconnect.MaxAttempts)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Inspector.AllowedOrigins)

	// untouched by either layer
	assert.Equal(t, Default().Reconnect.MaxBackoff, cfg.Reconnect.MaxBackoff)
	assert.Equal(t, Default().Push.NATSURL, cfg.Push.NATSURL)
}

func TestParseEnvError(t *testing.T) {
	cfg := Default()
	t.Setenv("SLEUTH_PUSH_QUEUE_SIZE", "lots")

	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadFileErrors(t *testing.T) {
	cfg := Default()
	assert.ErrorContains(t, cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")), "failed to read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("push: [1, 2"), 0o600))
	assert.ErrorContains(t, cfg.LoadFile(path), "failed to parse config")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown transport", func(c *Config) { c.Push.Transport = "carrier-pigeon" }, `unknown push transport "carrier-pigeon"`},
		{"missing nats url", func(c *Config) { c.Push.Transport = TransportNATS; c.Push.NATSURL = "" }, "nats url is required"},
		{"empty queue", func(c *Config) { c.Push.QueueSize = 0 }, "queue size must be positive"},
		{"shrinking backoff", func(c *Config) { c.Reconnect.Multiplier = 0.5 }, "multiplier must be at least 1"},
		{"jitter", func(c *Config) { c.Reconnect.Jitter = 2 }, "jitter must be within"},
		{"locale", func(c *Config) { c.Locale = "fr-FR" }, `unsupported locale "fr-FR"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}

	assert.NoError(t, Default().Validate())
}
