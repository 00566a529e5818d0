package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
jobs:
  - event_url: https://www.vlr.gg/event/2097/valorant-champions-2024
    matches: true
    player_stats: true
    maps_agents: true
    detailed_matches: true
    economy: true
    performance: true
    max_matches: 5
    export: true
  - event_url: https://www.vlr.gg/event/2098/masters
`), 0o644))

	jobs, err := loadJobs(path)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	first := jobs[0]
	assert.Equal(t, "https://www.vlr.gg/event/2097/valorant-champions-2024", first.EventURL)
	assert.True(t, first.Matches)
	assert.True(t, first.DetailedMatches)
	assert.True(t, first.Economy)
	assert.True(t, first.Performance)
	assert.Equal(t, 5, first.MaxMatches)
	assert.True(t, first.Export)

	second := jobs[1]
	assert.False(t, second.Matches)
	assert.Zero(t, second.MaxMatches)
}

func TestLoadAppliesLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs:\n  - event_url: https://www.vlr.gg/event/2097/x\n"), 0o644))
	t.Setenv("JOBS_FILE", path)
	t.Setenv("LOG_LEVEL", "debug")
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestLoadUnknownLogLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs:\n  - event_url: https://www.vlr.gg/event/2097/x\n"), 0o644))
	t.Setenv("JOBS_FILE", path)
	t.Setenv("LOG_LEVEL", "loud")
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	_, err := Load(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestLoadJobsMissingEventURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jobs:\n  - matches: true\n"), 0o644))

	_, err := loadJobs(path)
	assert.ErrorContains(t, err, "missing event_url")
}

func TestLoadJobsMissingFile(t *testing.T) {
	_, err := loadJobs(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
