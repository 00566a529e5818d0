package service

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vlr-scraper/internal/config"
	"vlr-scraper/internal/database"
	"vlr-scraper/internal/domain"
	"vlr-scraper/internal/repository"
)

func newExportService(t *testing.T) (*ExportService, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DBPath:    filepath.Join(dir, "test.db"),
		ExportDir: filepath.Join(dir, "exports"),
	}
	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	analytics := repository.NewAnalyticsRepository(db, zerolog.Nop())
	return NewExportService(analytics, cfg, zerolog.Nop()), cfg.ExportDir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportWritesJobFiles(t *testing.T) {
	svc, exportDir := newExportService(t)

	result := &JobResult{
		EventInfo: &domain.EventInfo{EventID: "2097", Title: "Champions"},
		Matches: []domain.MatchSummary{
			{MatchID: "378662", Team1: "Sentinels", Team2: "Fnatic", Score: "2-1", Winner: "Fnatic", ScrapedAt: time.Now()},
		},
		Players: []domain.PlayerEventStats{
			{Player: "TenZ", Team: "SEN", Rating: "1.18"},
		},
		MapUsage: []domain.MapUsageRecord{
			{MapName: "Ascent", TimesPlayed: "8", AttackWinPercent: "47%", DefenseWinPercent: "53%"},
		},
		AgentUsage: []domain.AgentUsageRecord{
			{AgentName: "Jett", TotalUtilization: 55.5},
		},
		Detailed: []*domain.MatchRecord{
			{MatchID: "378662", Team1: domain.TeamRef{Name: "Sentinels"}, Team2: domain.TeamRef{Name: "Fnatic"}},
		},
	}

	require.NoError(t, svc.Export(context.Background(), result))

	dir := filepath.Join(exportDir, "2097")
	matches := readCSV(t, filepath.Join(dir, "matches.csv"))
	require.Len(t, matches, 2)
	assert.Equal(t, "match_id", matches[0][0])
	assert.Equal(t, "378662", matches[1][0])
	assert.Equal(t, "Fnatic", matches[1][9])

	players := readCSV(t, filepath.Join(dir, "player_stats.csv"))
	require.Len(t, players, 2)
	assert.Equal(t, "TenZ", players[1][0])

	agents := readCSV(t, filepath.Join(dir, "agent_usage.csv"))
	require.Len(t, agents, 2)
	assert.Equal(t, []string{"Jett", "55.5"}, agents[1])

	assert.FileExists(t, filepath.Join(dir, "map_usage.csv"))
	assert.FileExists(t, filepath.Join(dir, "detailed_matches.json"))

	// Nothing stored in the database, so the analytics files are not
	// produced.
	assert.NoFileExists(t, filepath.Join(dir, "player_performance.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "agent_aggregate.csv"))
}

func TestExportRequiresEventInfo(t *testing.T) {
	svc, _ := newExportService(t)
	assert.Error(t, svc.Export(context.Background(), &JobResult{}))
}

func TestExportSkipsEmptySections(t *testing.T) {
	svc, exportDir := newExportService(t)

	result := &JobResult{EventInfo: &domain.EventInfo{EventID: "2098"}}
	require.NoError(t, svc.Export(context.Background(), result))

	entries, err := os.ReadDir(filepath.Join(exportDir, "2098"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
