package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"vlr-scraper/internal/constants"
	"vlr-scraper/internal/normalize"
)

type AnalyticsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewAnalyticsRepository(sqlDB *sql.DB, logger zerolog.Logger) *AnalyticsRepository {
	return &AnalyticsRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// PlayerPerformanceRow is one (player, match, map) row joined to its
// owning match, with the agent aggregation recomputed from the per-map
// rows of the same player and match.
type PlayerPerformanceRow struct {
	MatchID      string
	EventName    string
	MapName      string
	TeamName     string
	PlayerName   string
	Agent        string
	AgentCount   int
	AgentDisplay string
	Rating       float64
	ACS          float64
	Kills        int
	Deaths       int
	Assists      int
	ADR          float64
	KAST         string
	HSPercent    string
	FirstKills   int
	FirstDeaths  int
}

// PlayerPerformanceFilter narrows the performance query; empty fields
// match everything.
type PlayerPerformanceFilter struct {
	Player  string
	Agent   string
	MapName string
}

// QueryPlayerPerformance returns per-map performance rows. The stored
// primary-agent field alone cannot reproduce a player's agent pool, so
// the distinct set is regrouped here from the per-map rows.
func (r *AnalyticsRepository) QueryPlayerPerformance(ctx context.Context, filter PlayerPerformanceFilter) ([]PlayerPerformanceRow, error) {
	query := `
		SELECT p.match_id, m.event_name, p.map_name, p.team_name, p.player_name, p.agent,
		       p.rating_all, p.acs_all, p.kills_all, p.deaths_all, p.assists_all,
		       p.adr_all, p.kast_all, p.hs_percent_all, p.first_kills_all, p.first_deaths_all,
		       (SELECT GROUP_CONCAT(DISTINCT q.agent)
		        FROM detailed_player_stats q
		        WHERE q.match_id = p.match_id
		          AND q.player_name = p.player_name
		          AND q.map_id != ?) AS agent_pool
		FROM detailed_player_stats p
		JOIN detailed_matches m ON m.match_id = p.match_id
		WHERE p.map_id != ?`
	args := []any{AggregateMapID, AggregateMapID}

	if filter.Player != "" {
		query += ` AND p.player_name = ?`
		args = append(args, filter.Player)
	}
	if filter.Agent != "" {
		query += ` AND p.agent = ?`
		args = append(args, filter.Agent)
	}
	if filter.MapName != "" {
		query += ` AND p.map_name = ?`
		args = append(args, filter.MapName)
	}
	query += ` ORDER BY p.match_id, p.map_name, p.team_name, p.player_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query player performance: %w", err)
	}
	defer rows.Close()

	var results []PlayerPerformanceRow
	for rows.Next() {
		var row PlayerPerformanceRow
		var agentPool sql.NullString
		if err := rows.Scan(
			&row.MatchID, &row.EventName, &row.MapName, &row.TeamName, &row.PlayerName, &row.Agent,
			&row.Rating, &row.ACS, &row.Kills, &row.Deaths, &row.Assists,
			&row.ADR, &row.KAST, &row.HSPercent, &row.FirstKills, &row.FirstDeaths,
			&agentPool,
		); err != nil {
			return nil, fmt.Errorf("failed to scan performance row: %w", err)
		}

		agents := splitAgentPool(agentPool.String)
		row.AgentCount = len(agents)
		row.AgentDisplay = normalize.Display(agents)
		results = append(results, row)
	}
	return results, rows.Err()
}

// splitAgentPool turns a GROUP_CONCAT result into the sorted distinct
// agent set the display rule expects.
func splitAgentPool(pool string) []string {
	if pool == "" {
		return nil
	}
	return normalize.DistinctAgents(strings.Split(pool, ","))
}

// AgentAggregateRow is one agent's mean performance across all per-map
// rows where it was played.
type AgentAggregateRow struct {
	Agent      string
	TimesUsed  int
	AvgRating  float64
	AvgACS     float64
	AvgKills   float64
	AvgDeaths  float64
	AvgAssists float64
	AvgADR     float64
}

// QueryAgentAggregate groups per-map player rows by agent. Aggregate
// "all maps" rows are excluded so the same game is not counted twice,
// and agents below the sample floor are dropped to keep one-off
// performances from skewing the averages.
func (r *AnalyticsRepository) QueryAgentAggregate(ctx context.Context) ([]AgentAggregateRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT agent, COUNT(*) AS times_used,
		       AVG(rating_all), AVG(acs_all), AVG(kills_all),
		       AVG(deaths_all), AVG(assists_all), AVG(adr_all)
		FROM detailed_player_stats
		WHERE map_id != ? AND agent != '' AND agent != 'Unknown'
		GROUP BY agent
		HAVING COUNT(*) >= ?
		ORDER BY AVG(rating_all) DESC`,
		AggregateMapID, constants.AgentSampleFloor)
	if err != nil {
		return nil, fmt.Errorf("failed to query agent aggregate: %w", err)
	}
	defer rows.Close()

	var results []AgentAggregateRow
	for rows.Next() {
		var row AgentAggregateRow
		if err := rows.Scan(&row.Agent, &row.TimesUsed, &row.AvgRating, &row.AvgACS,
			&row.AvgKills, &row.AvgDeaths, &row.AvgAssists, &row.AvgADR); err != nil {
			return nil, fmt.Errorf("failed to scan agent aggregate row: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// MapAggregateRow is one map's round statistics across all stored maps.
type MapAggregateRow struct {
	MapName          string
	TimesPlayed      int
	AvgTotalRounds   float64
	AvgScoreDiff     float64
	CloseGamePercent float64
}

// QueryMapAggregate groups map_details rows by map name. A close game
// is one decided by at most the configured round differential.
func (r *AnalyticsRepository) QueryMapAggregate(ctx context.Context) ([]MapAggregateRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT map_name, COUNT(*) AS times_played,
		       AVG(team1_score_map + team2_score_map),
		       AVG(ABS(team1_score_map - team2_score_map)),
		       AVG(CASE WHEN ABS(team1_score_map - team2_score_map) <= ? THEN 100.0 ELSE 0.0 END)
		FROM map_details
		WHERE map_name != ''
		GROUP BY map_name
		ORDER BY times_played DESC`,
		constants.CloseGameRoundDiff)
	if err != nil {
		return nil, fmt.Errorf("failed to query map aggregate: %w", err)
	}
	defer rows.Close()

	var results []MapAggregateRow
	for rows.Next() {
		var row MapAggregateRow
		if err := rows.Scan(&row.MapName, &row.TimesPlayed, &row.AvgTotalRounds,
			&row.AvgScoreDiff, &row.CloseGamePercent); err != nil {
			return nil, fmt.Errorf("failed to scan map aggregate row: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
