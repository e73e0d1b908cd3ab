package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess(t *testing.T) {
	// Default config
	config, err := Process([]string{})
	require.NoError(t, err)
	assert.Equal(t, 29999, config.Server.Ingress.Web.Port)
	assert.Equal(t, "domination", config.Server.Game.Match.Mode)
	assert.Len(t, config.Server.Game.Levels, 2)

	dir := t.TempDir()

	// yaml config
	{
		yaml := filepath.Join(dir, "config.yaml")
		err = os.WriteFile(yaml, []byte(`
server:
  ingress:
    web:
      port: 1234
`), 0644)
		require.NoError(t, err)
		config, err = Process([]string{yaml})
		require.NoError(t, err)
		assert.Equal(t, 1234, config.Server.Ingress.Web.Port)
		assert.Equal(t, "/ws", config.Server.Ingress.Web.Path)
	}

	// json config
	{
		json := filepath.Join(dir, "config.json")
		err = os.WriteFile(json, []byte(`{
  "server": {
    "ingress": {
      "web": {
        "port": 1235
      }
    }
  }
}`), 0644)
		require.NoError(t, err)
		config, err = Process([]string{json})
		require.NoError(t, err)
		assert.Equal(t, 1235, config.Server.Ingress.Web.Port)
	}

	// multiple yaml
	{
		yaml1 := filepath.Join(dir, "config1.yaml")
		err = os.WriteFile(yaml1, []byte(`
server:
  game:
    match:
      mode: kill race
      killRace:
        killLimit: 3
`), 0644)
		require.NoError(t, err)

		yaml2 := filepath.Join(dir, "config2.yaml")
		err = os.WriteFile(yaml2, []byte(`
server:
  description: "Hello, World!"
  game:
    match:
      rotation: [docks]
`), 0644)
		require.NoError(t, err)
		config, err = Process([]string{yaml1, yaml2})
		require.NoError(t, err)

		match := config.Server.Game.Match
		assert.Equal(t, "kill race", match.Mode)
		assert.Equal(t, 3, match.KillRace.KillLimit)
		assert.Equal(t, float64(1), match.KillRace.PollSeconds)
		assert.Equal(t, []string{"docks"}, match.Rotation)
		assert.Equal(t, "Hello, World!", config.Server.Description)
	}
}

func TestProcessInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Process([]string{filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)

	text := filepath.Join(dir, "config.txt")
	require.NoError(t, os.WriteFile(text, []byte("server: {}"), 0644))
	_, err = Process([]string{text})
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("server:\n  colour: blue\n"), 0644))
	_, err = Process([]string{unknown})
	assert.Error(t, err)

	level := filepath.Join(dir, "level.yaml")
	require.NoError(t, os.WriteFile(level, []byte("server:\n  game:\n    level: moon\n"), 0644))
	_, err = Process([]string{level})
	assert.Error(t, err)

	mode := filepath.Join(dir, "mode.yaml")
	require.NoError(t, os.WriteFile(mode, []byte("server:\n  game:\n    match:\n      mode: chess\n"), 0644))
	_, err = Process([]string{mode})
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	config := Config{}
	require.NoError(t, decode(DEFAULT, &config))

	env := map[string]string{
		"ARBITER_REDIS_ADDRESS": "redis:6379",
		"ARBITER_REDIS_ENABLED": "true",
		"ARBITER_WEB_PORT":      "8080",
		"ARBITER_MODE":          "team score",
	}
	lookup := func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}

	require.NoError(t, applyEnv(&config, lookup))
	assert.Equal(t, "redis:6379", config.Server.Redis.Address)
	assert.True(t, config.Server.Redis.Enabled)
	assert.Equal(t, 8080, config.Server.Ingress.Web.Port)
	assert.Equal(t, "team score", config.Server.Game.Match.Mode)
	require.NoError(t, config.Validate())

	env["ARBITER_WEB_PORT"] = "eighty"
	assert.Error(t, applyEnv(&config, lookup))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ARBITER_LEVEL=docks\n"), 0644))

	t.Setenv("ARBITER_LEVEL", "")
	os.Unsetenv("ARBITER_LEVEL")

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), path))
	config, err := Process(nil)
	require.NoError(t, err)
	assert.Equal(t, "docks", config.Server.Game.Level)
}
