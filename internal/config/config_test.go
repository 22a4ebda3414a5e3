package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Equal(t, "prod", c.App.Env)
	assert.True(t, c.Metrics.Enabled)
	assert.Equal(t, 4, c.Display.Precision)
	assert.Equal(t, 60, c.Telegram.TimeoutSec)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`app:
  env: dev
http:
  addr: ":9000"
metrics:
  enabled: false
display:
  precision: 2
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("APP_HTTP_ADDR", ":9999")
	t.Setenv("APP_TELEGRAM_TOKEN", "123:abc")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", c.App.Env)
	assert.Equal(t, ":9999", c.HTTP.Addr)
	assert.False(t, c.Metrics.Enabled)
	assert.Equal(t, 2, c.Display.Precision)
	assert.Equal(t, "123:abc", c.Telegram.Token)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
