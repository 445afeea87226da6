package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
APP:
  NAME: nearby-chat-test
  PORT: ":3000"

DATABASE:
  REDIS:
    ADDR: localhost:6379
`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "application.yaml"), []byte(testConfigYAML), 0644))

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(originalDir)

	require.NoError(t, LoadConfig())
	require.NotNil(t, Conf)

	assert.Equal(t, "nearby-chat-test", Conf.App.Name)
	assert.Equal(t, ":3000", Conf.App.Port)

	// unset chat keys fall back to their defaults
	assert.Equal(t, 500.0, Conf.CHAT.RadiusMeters)
	assert.Equal(t, 3*time.Minute, Conf.StaleWindow())
	assert.Equal(t, 100, Conf.CHAT.HistoryLimit)
	assert.Equal(t, "private.pem", Conf.JWT.PrivateKeyPath)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	dir := t.TempDir()

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(originalDir)

	assert.Error(t, LoadConfig())
}
