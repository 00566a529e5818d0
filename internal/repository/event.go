// Package repository maps normalized records onto the sqlite schema.
// Writes are replace-by-key: a record's dependent rows are deleted and
// reinserted wholesale, never partially updated.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"vlr-scraper/internal/constants"
	"vlr-scraper/internal/domain"
	"vlr-scraper/internal/normalize"
)

type EventRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewEventRepository(sqlDB *sql.DB, logger zerolog.Logger) *EventRepository {
	return &EventRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *EventRepository) SaveEvent(ctx context.Context, info *domain.EventInfo) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO events
		(event_id, title, subtitle, dates, location, prize_pool, url, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		info.EventID,
		normalize.String(info.Title),
		normalize.String(info.Subtitle),
		normalize.String(info.Dates),
		normalize.String(info.Location),
		normalize.String(info.PrizePool),
		info.URL,
		info.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save event %s: %w", info.EventID, err)
	}
	return nil
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]domain.EventInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT event_id, title, subtitle, dates, location, prize_pool, url
		FROM events ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []domain.EventInfo
	for rows.Next() {
		var e domain.EventInfo
		if err := rows.Scan(&e.EventID, &e.Title, &e.Subtitle, &e.Dates, &e.Location, &e.PrizePool, &e.URL); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteEvent removes an event and every row that references it,
// children before parents so the foreign keys hold throughout.
func (r *EventRepository) DeleteEvent(ctx context.Context, eventID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	matchIDs, err := eventMatchIDs(ctx, tx, eventID)
	if err != nil {
		return err
	}

	if len(matchIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(matchIDs)), ",")
		args := make([]any, len(matchIDs))
		for i, id := range matchIDs {
			args[i] = id
		}
		for _, table := range []string{"player_performance", "team_economy", "detailed_player_stats", "map_details"} {
			q := fmt.Sprintf("DELETE FROM %s WHERE match_id IN (%s)", table, placeholders)
			if _, err := tx.ExecContext(ctx, q, args...); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", table, err)
			}
		}
	}

	for _, table := range []string{"detailed_matches", "agent_usage", "player_stats", "matches", "events"} {
		q := fmt.Sprintf("DELETE FROM %s WHERE event_id = ?", table)
		if _, err := tx.ExecContext(ctx, q, eventID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event deletion: %w", err)
	}
	r.logger.Info().Str("event_id", eventID).Int("matches", len(matchIDs)).Msg("event deleted")
	return nil
}

func eventMatchIDs(ctx context.Context, tx *sql.Tx, eventID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT match_id FROM detailed_matches WHERE event_id = ?`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event matches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan match id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SavePlayerStats replaces the event's tournament-wide player rows.
func (r *EventRepository) SavePlayerStats(ctx context.Context, eventID string, players []domain.PlayerEventStats) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM player_stats WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("failed to clear player stats: %w", err)
	}

	for i := 0; i < len(players); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(players) {
			end = len(players)
		}

		for _, p := range players[i:end] {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO player_stats
				(event_id, player, team, rating, acs, kills, deaths, assists,
				 plus_minus, adr, hs_percent, first_kills, first_deaths, kd_ratio, scraped_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				eventID,
				normalize.String(p.Player),
				normalize.String(p.Team),
				normalize.Float(p.Rating),
				normalize.Float(p.ACS),
				normalize.Int(p.Kills),
				normalize.Int(p.Deaths),
				normalize.Int(p.Assists),
				normalize.Int(p.PlusMinus),
				normalize.Float(p.ADR),
				normalize.String(p.HSPercent),
				normalize.Int(p.FirstKills),
				normalize.Int(p.FirstDeaths),
				normalize.Float(p.KDRatio),
				p.ScrapedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert player stats for %s: %w", p.Player, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit player stats: %w", err)
	}
	r.logger.Info().Str("event_id", eventID).Int("players", len(players)).Msg("player stats saved")
	return nil
}

// SaveAgentUsage replaces the event's agent utilization rows. Per-map
// utilizations are stored as a JSON object alongside the total.
func (r *EventRepository) SaveAgentUsage(ctx context.Context, eventID string, agents []domain.AgentUsageRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM agent_usage WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("failed to clear agent usage: %w", err)
	}

	for _, a := range agents {
		utilJSON, err := json.Marshal(a.MapUtilizations)
		if err != nil {
			return fmt.Errorf("failed to encode map utilizations for %s: %w", a.AgentName, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO agent_usage
			(event_id, agent, usage_count, usage_percentage, map_utilizations, scraped_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			eventID,
			a.AgentName,
			len(a.MapUtilizations),
			normalize.FormatFloat(a.TotalUtilization)+"%",
			string(utilJSON),
			a.ScrapedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert agent usage for %s: %w", a.AgentName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit agent usage: %w", err)
	}
	r.logger.Info().Str("event_id", eventID).Int("agents", len(agents)).Msg("agent usage saved")
	return nil
}
