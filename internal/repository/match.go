package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"vlr-scraper/internal/constants"
	"vlr-scraper/internal/domain"
	"vlr-scraper/internal/normalize"
)

// AggregateMapID marks detailed player rows that belong to the
// "all maps" section rather than a single map.
const AggregateMapID = "all"

const aggregateMapName = "All Maps"

type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// SaveMatchList replaces the event's match summaries.
func (r *MatchRepository) SaveMatchList(ctx context.Context, eventID string, matches []domain.MatchSummary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("failed to clear matches: %w", err)
	}

	for i := 0; i < len(matches); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(matches) {
			end = len(matches)
		}

		for _, m := range matches[i:end] {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO matches
				(event_id, match_id, team1, team2, score, score1, score2, stage, week,
				 date, time, status, winner, match_url, scraped_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				eventID,
				m.MatchID,
				normalize.String(m.Team1),
				normalize.String(m.Team2),
				normalize.String(m.Score),
				normalize.String(m.Score1),
				normalize.String(m.Score2),
				normalize.String(m.Stage),
				normalize.String(m.Week),
				normalize.String(m.Date),
				normalize.String(m.Time),
				normalize.String(m.Status),
				normalize.String(m.Winner),
				m.MatchURL,
				m.ScrapedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert match %s: %w", m.MatchID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match list: %w", err)
	}
	r.logger.Info().Str("event_id", eventID).Int("matches", len(matches)).Msg("match list saved")
	return nil
}

// SaveDetailedMatch persists one assembled match, replacing any prior
// version wholesale: the match row is upserted and every dependent map,
// player, and economy row is deleted and reinserted.
func (r *MatchRepository) SaveDetailedMatch(ctx context.Context, eventID string, rec *domain.MatchRecord) error {
	if rec == nil || rec.MatchID == "" {
		return fmt.Errorf("missing match id")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO detailed_matches
		(event_id, match_id, match_url, event_name, event_stage, event_date_utc, patch,
		 team1_name, team2_name, team1_score_overall, team2_score_overall,
		 match_format, map_picks_bans_note, maps_played, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		eventID,
		rec.MatchID,
		rec.MatchURL,
		rec.Event.Name,
		rec.Event.Stage,
		rec.Event.DateUTC,
		rec.Event.Patch,
		rec.Team1.Name,
		rec.Team2.Name,
		rec.Team1.ScoreOverall,
		rec.Team2.ScoreOverall,
		rec.MatchFormat,
		rec.MapPicksBansNote,
		len(rec.Maps),
		rec.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert match %s: %w", rec.MatchID, err)
	}

	for _, table := range []string{"map_details", "detailed_player_stats", "team_economy", "player_performance"} {
		q := fmt.Sprintf("DELETE FROM %s WHERE match_id = ?", table)
		if _, err := tx.ExecContext(ctx, q, rec.MatchID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, m := range rec.Maps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO map_details
			(match_id, map_order, map_id, map_name, team1_score_map, team2_score_map,
			 winner_team_name, map_duration, picked_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.MatchID, m.MapOrder, m.MapID, m.MapName, m.Team1Score, m.Team2Score,
			m.WinnerTeamName, m.Duration, m.PickedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert map %s: %w", m.MapName, err)
		}

		for _, players := range m.PlayerStats {
			for _, p := range players {
				if err := insertDetailedPlayer(ctx, tx, rec.MatchID, m.MapID, m.MapName, p); err != nil {
					return err
				}
			}
		}
	}

	for _, players := range rec.OverallPlayerStats {
		for _, p := range players {
			if err := insertDetailedPlayer(ctx, tx, rec.MatchID, AggregateMapID, aggregateMapName, p); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match %s: %w", rec.MatchID, err)
	}
	return nil
}

// SaveBatch applies SaveDetailedMatch per record. One record's failure
// is logged and does not abort the batch; the summary reports how many
// units were attempted, stored, and skipped.
func (r *MatchRepository) SaveBatch(ctx context.Context, eventID string, records []*domain.MatchRecord) domain.ScrapeSummary {
	summary := domain.ScrapeSummary{Attempted: len(records)}
	for _, rec := range records {
		if rec == nil {
			summary.Failed++
			continue
		}
		if err := r.SaveDetailedMatch(ctx, eventID, rec); err != nil {
			summary.Failed++
			r.logger.Error().Str("match_id", rec.MatchID).Err(err).Msg("failed to save match, skipping")
			continue
		}
		summary.Succeeded++
	}
	return summary
}

// SaveEconomy replaces a match's economy rows.
func (r *MatchRepository) SaveEconomy(ctx context.Context, matchID string, rows []domain.TeamEconomyRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM team_economy WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("failed to clear team economy: %w", err)
	}

	for _, e := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO team_economy
			(match_id, map_name, team_name, pistol_won, eco_won, semi_eco_won, semi_buy_won, full_buy_won)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			matchID,
			normalize.String(e.MapName),
			normalize.String(e.TeamName),
			normalize.String(e.PistolWon),
			normalize.String(e.EcoWon),
			normalize.String(e.SemiEcoWon),
			normalize.String(e.SemiBuyWon),
			normalize.String(e.FullBuyWon),
		)
		if err != nil {
			return fmt.Errorf("failed to insert economy row for %s: %w", e.TeamName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit team economy: %w", err)
	}
	return nil
}

// SavePerformance replaces a match's performance rows.
func (r *MatchRepository) SavePerformance(ctx context.Context, matchID string, rows []domain.PlayerPerformanceRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM player_performance WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("failed to clear player performance: %w", err)
	}

	for _, p := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO player_performance
			(match_id, map_name, team_name, player_name, agent,
			 kills_2k, kills_3k, kills_4k, kills_5k,
			 clutch_1v1, clutch_1v2, clutch_1v3, clutch_1v4, clutch_1v5,
			 econ_rating, plants, defuses)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			matchID,
			normalize.String(p.MapName),
			normalize.String(p.TeamName),
			normalize.String(p.PlayerName),
			normalize.String(p.Agent),
			p.Kills2K, p.Kills3K, p.Kills4K, p.Kills5K,
			p.Clutch1v1, p.Clutch1v2, p.Clutch1v3, p.Clutch1v4, p.Clutch1v5,
			p.EconRating, p.Plants, p.Defuses,
		)
		if err != nil {
			return fmt.Errorf("failed to insert performance row for %s: %w", p.PlayerName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit player performance: %w", err)
	}
	return nil
}

func insertDetailedPlayer(ctx context.Context, tx *sql.Tx, matchID, mapID, mapName string, p domain.PlayerStatRecord) error {
	agentsList := strings.Join(p.Agents, ",")

	_, err := tx.ExecContext(ctx, `
		INSERT INTO detailed_player_stats (
			match_id, map_id, map_name, team_name, player_id, player_name, agent, agents_list,
			agents_count, agents_display,
			rating_all, acs_all, kills_all, deaths_all, assists_all, kd_diff_all, kast_all, adr_all,
			hs_percent_all, first_kills_all, first_deaths_all, fk_fd_diff_all,
			rating_attack, acs_attack, kills_attack, deaths_attack, assists_attack, kd_diff_attack,
			kast_attack, adr_attack, hs_percent_attack, first_kills_attack, first_deaths_attack, fk_fd_diff_attack,
			rating_defense, acs_defense, kills_defense, deaths_defense, assists_defense, kd_diff_defense,
			kast_defense, adr_defense, hs_percent_defense, first_kills_defense, first_deaths_defense, fk_fd_diff_defense
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		          ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		          ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		          ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{
			matchID, mapID, mapName, p.TeamName, p.PlayerID, p.PlayerName, p.Agent, agentsList,
			p.AgentCount, p.AgentDisplay,
		},
			append(bundleArgs(p.AllSides), append(bundleArgs(p.Attack), bundleArgs(p.Defense)...)...)...,
		)...,
	)
	if err != nil {
		return fmt.Errorf("failed to insert player stats for %s: %w", p.PlayerName, err)
	}
	return nil
}

// bundleArgs coerces one side's display strings to their declared
// column types, in column order.
func bundleArgs(b domain.StatBundle) []any {
	return []any{
		normalize.Float(b.Rating),
		normalize.Float(b.ACS),
		normalize.Int(b.Kills),
		normalize.Int(b.Deaths),
		normalize.Int(b.Assists),
		normalize.String(b.KDDiff),
		normalize.String(b.KAST),
		normalize.Float(b.ADR),
		normalize.String(b.HSPercent),
		normalize.Int(b.FirstKills),
		normalize.Int(b.FirstDeaths),
		normalize.String(b.FKFDDiff),
	}
}
