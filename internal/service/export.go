package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"vlr-scraper/internal/config"
	"vlr-scraper/internal/repository"
)

// ExportService writes a job's results to CSV and JSON files. Values
// come straight from the normalized records and the analytics queries;
// nothing is re-derived at export time.
type ExportService struct {
	analytics *repository.AnalyticsRepository
	cfg       *config.Config
	logger    zerolog.Logger
}

func NewExportService(analytics *repository.AnalyticsRepository, cfg *config.Config, logger zerolog.Logger) *ExportService {
	return &ExportService{analytics: analytics, cfg: cfg, logger: logger}
}

// Export writes every output file for one finished job, fanning the
// independent files out concurrently.
func (s *ExportService) Export(ctx context.Context, result *JobResult) error {
	if result.EventInfo == nil {
		return fmt.Errorf("nothing to export: no event info")
	}

	dir := filepath.Join(s.cfg.ExportDir, result.EventInfo.EventID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.exportMatchesCSV(dir, result) })
	g.Go(func() error { return s.exportPlayersCSV(dir, result) })
	g.Go(func() error { return s.exportMapAgentUsageCSV(dir, result) })
	g.Go(func() error { return s.exportDetailedJSON(dir, result) })
	g.Go(func() error { return s.exportPerformanceCSV(ctx, dir) })
	g.Go(func() error { return s.exportAggregatesCSV(ctx, dir) })

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info().Str("dir", dir).Msg("export finished")
	return nil
}

func (s *ExportService) exportMatchesCSV(dir string, result *JobResult) error {
	if len(result.Matches) == 0 {
		return nil
	}
	records := [][]string{{
		"match_id", "team1", "team2", "score", "stage", "week", "date", "time", "status", "winner", "match_url",
	}}
	for _, m := range result.Matches {
		records = append(records, []string{
			m.MatchID, m.Team1, m.Team2, m.Score, m.Stage, m.Week, m.Date, m.Time, m.Status, m.Winner, m.MatchURL,
		})
	}
	return writeCSV(filepath.Join(dir, "matches.csv"), records)
}

func (s *ExportService) exportPlayersCSV(dir string, result *JobResult) error {
	if len(result.Players) == 0 {
		return nil
	}
	records := [][]string{{
		"player", "team", "rating", "acs", "kills", "deaths", "assists", "plus_minus",
		"kast", "adr", "hs_percent", "first_kills", "first_deaths", "kd_ratio",
	}}
	for _, p := range result.Players {
		records = append(records, []string{
			p.Player, p.Team, p.Rating, p.ACS, p.Kills, p.Deaths, p.Assists, p.PlusMinus,
			p.KAST, p.ADR, p.HSPercent, p.FirstKills, p.FirstDeaths, p.KDRatio,
		})
	}
	return writeCSV(filepath.Join(dir, "player_stats.csv"), records)
}

func (s *ExportService) exportMapAgentUsageCSV(dir string, result *JobResult) error {
	if len(result.MapUsage) > 0 {
		records := [][]string{{"map", "times_played", "attack_win_percent", "defense_win_percent"}}
		for _, m := range result.MapUsage {
			records = append(records, []string{m.MapName, m.TimesPlayed, m.AttackWinPercent, m.DefenseWinPercent})
		}
		if err := writeCSV(filepath.Join(dir, "map_usage.csv"), records); err != nil {
			return err
		}
	}

	if len(result.AgentUsage) > 0 {
		records := [][]string{{"agent", "total_utilization_percent"}}
		for _, a := range result.AgentUsage {
			records = append(records, []string{
				a.AgentName,
				strconv.FormatFloat(a.TotalUtilization, 'f', 1, 64),
			})
		}
		if err := writeCSV(filepath.Join(dir, "agent_usage.csv"), records); err != nil {
			return err
		}
	}
	return nil
}

// exportDetailedJSON writes the normalized match tree as is.
func (s *ExportService) exportDetailedJSON(dir string, result *JobResult) error {
	if len(result.Detailed) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(result.Detailed, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode detailed matches: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "detailed_matches.json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write detailed matches: %w", err)
	}
	return nil
}

func (s *ExportService) exportPerformanceCSV(ctx context.Context, dir string) error {
	rows, err := s.analytics.QueryPlayerPerformance(ctx, repository.PlayerPerformanceFilter{})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	records := [][]string{{
		"match_id", "event", "map", "team", "player", "agent", "agents_display", "agents_count",
		"rating", "acs", "kills", "deaths", "assists", "adr", "kast", "hs_percent", "first_kills", "first_deaths",
	}}
	for _, r := range rows {
		records = append(records, []string{
			r.MatchID, r.EventName, r.MapName, r.TeamName, r.PlayerName, r.Agent,
			r.AgentDisplay, strconv.Itoa(r.AgentCount),
			strconv.FormatFloat(r.Rating, 'f', 2, 64),
			strconv.FormatFloat(r.ACS, 'f', 1, 64),
			strconv.Itoa(r.Kills), strconv.Itoa(r.Deaths), strconv.Itoa(r.Assists),
			strconv.FormatFloat(r.ADR, 'f', 1, 64),
			r.KAST, r.HSPercent,
			strconv.Itoa(r.FirstKills), strconv.Itoa(r.FirstDeaths),
		})
	}
	return writeCSV(filepath.Join(dir, "player_performance.csv"), records)
}

func (s *ExportService) exportAggregatesCSV(ctx context.Context, dir string) error {
	agents, err := s.analytics.QueryAgentAggregate(ctx)
	if err != nil {
		return err
	}
	if len(agents) > 0 {
		records := [][]string{{"agent", "times_used", "avg_rating", "avg_acs", "avg_kills", "avg_deaths", "avg_assists", "avg_adr"}}
		for _, a := range agents {
			records = append(records, []string{
				a.Agent, strconv.Itoa(a.TimesUsed),
				strconv.FormatFloat(a.AvgRating, 'f', 2, 64),
				strconv.FormatFloat(a.AvgACS, 'f', 1, 64),
				strconv.FormatFloat(a.AvgKills, 'f', 1, 64),
				strconv.FormatFloat(a.AvgDeaths, 'f', 1, 64),
				strconv.FormatFloat(a.AvgAssists, 'f', 1, 64),
				strconv.FormatFloat(a.AvgADR, 'f', 1, 64),
			})
		}
		if err := writeCSV(filepath.Join(dir, "agent_aggregate.csv"), records); err != nil {
			return err
		}
	}

	maps, err := s.analytics.QueryMapAggregate(ctx)
	if err != nil {
		return err
	}
	if len(maps) > 0 {
		records := [][]string{{"map", "times_played", "avg_total_rounds", "avg_score_diff", "close_game_percent"}}
		for _, m := range maps {
			records = append(records, []string{
				m.MapName, strconv.Itoa(m.TimesPlayed),
				strconv.FormatFloat(m.AvgTotalRounds, 'f', 1, 64),
				strconv.FormatFloat(m.AvgScoreDiff, 'f', 1, 64),
				strconv.FormatFloat(m.CloseGamePercent, 'f', 1, 64),
			})
		}
		if err := writeCSV(filepath.Join(dir, "map_aggregate.csv"), records); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
