package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "console", s.Log.Encoding)
	assert.False(t, s.Log.Development)
	assert.Equal(t, 0, s.Simulation.Workers)
	assert.Equal(t, 10000, s.Simulation.MaxTrials)
	assert.Equal(t, ":8080", s.Server.Addr)
}

func TestLoadSettings_Environment(t *testing.T) {
	t.Setenv("FIREPLAN_LOG_LEVEL", "debug")
	t.Setenv("FIREPLAN_SIMULATION_WORKERS", "3")
	t.Setenv("FIREPLAN_SERVER_ADDR", "127.0.0.1:9000")

	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, 3, s.Simulation.Workers)
	assert.Equal(t, "127.0.0.1:9000", s.Server.Addr)
}

func TestLoadSettings_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fireplan.yaml")
	content := "log:\n  encoding: json\nsimulation:\n  max_trials: 2000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "json", s.Log.Encoding)
	assert.Equal(t, 2000, s.Simulation.MaxTrials)
	assert.Equal(t, "info", s.Log.Level, "unset keys keep their defaults")

	_, err = LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
