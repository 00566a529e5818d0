// Package service orchestrates the scrapers and repositories: one
// sequential pass per configured job, with randomized delays between
// page fetches and per-unit skip-and-continue error handling.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"vlr-scraper/internal/config"
	"vlr-scraper/internal/constants"
	"vlr-scraper/internal/domain"
	"vlr-scraper/internal/normalize"
	"vlr-scraper/internal/repository"
	"vlr-scraper/internal/scraper"
)

// JobResult carries everything one job produced, for logging and for
// the export pass.
type JobResult struct {
	EventInfo  *domain.EventInfo
	Matches    []domain.MatchSummary
	Players    []domain.PlayerEventStats
	MapUsage   []domain.MapUsageRecord
	AgentUsage []domain.AgentUsageRecord
	Detailed   []*domain.MatchRecord
	Summary    domain.ScrapeSummary
}

type Coordinator struct {
	events      *scraper.EventScraper
	matchList   *scraper.MatchListScraper
	playerStats *scraper.PlayerStatsScraper
	mapsAgents  *scraper.MapsAgentsScraper
	details     *scraper.MatchDetailsScraper
	economy     *scraper.EconomyScraper
	performance *scraper.PerformanceScraper
	eventRepo   *repository.EventRepository
	matchRepo   *repository.MatchRepository
	logger      zerolog.Logger
}

func NewCoordinator(
	events *scraper.EventScraper,
	matchList *scraper.MatchListScraper,
	playerStats *scraper.PlayerStatsScraper,
	mapsAgents *scraper.MapsAgentsScraper,
	details *scraper.MatchDetailsScraper,
	economy *scraper.EconomyScraper,
	performance *scraper.PerformanceScraper,
	eventRepo *repository.EventRepository,
	matchRepo *repository.MatchRepository,
	logger zerolog.Logger,
) *Coordinator {
	return &Coordinator{
		events:      events,
		matchList:   matchList,
		playerStats: playerStats,
		mapsAgents:  mapsAgents,
		details:     details,
		economy:     economy,
		performance: performance,
		eventRepo:   eventRepo,
		matchRepo:   matchRepo,
		logger:      logger,
	}
}

// RunJob scrapes one event per its job flags. Scraping is sequential;
// a failed section or unit is logged and skipped, and only a failure
// to reach the event page itself aborts the job.
func (c *Coordinator) RunJob(ctx context.Context, job config.Job) (*JobResult, error) {
	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}

	logger := c.logger.With().Str("run_id", runID).Str("event_url", job.EventURL).Logger()
	logger.Info().Msg("starting scrape job")

	result := &JobResult{Summary: domain.ScrapeSummary{RunID: runID}}

	info, err := c.events.Scrape(ctx, job.EventURL)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape event page: %w", err)
	}
	result.EventInfo = info
	if err := c.eventRepo.SaveEvent(ctx, info); err != nil {
		logger.Error().Err(err).Msg("failed to save event")
	}

	if job.Matches || job.DetailedMatches {
		c.pause(ctx)
		matches, err := c.matchList.Scrape(ctx, job.EventURL)
		if err != nil {
			logger.Error().Err(err).Msg("failed to scrape match list, skipping section")
		} else {
			result.Matches = matches
			if err := c.matchRepo.SaveMatchList(ctx, info.EventID, matches); err != nil {
				logger.Error().Err(err).Msg("failed to save match list")
			}
		}
	}

	if job.PlayerStats {
		c.pause(ctx)
		players, err := c.playerStats.Scrape(ctx, job.EventURL)
		if err != nil {
			logger.Error().Err(err).Msg("failed to scrape player stats, skipping section")
		} else {
			result.Players = players
			if err := c.eventRepo.SavePlayerStats(ctx, info.EventID, players); err != nil {
				logger.Error().Err(err).Msg("failed to save player stats")
			}
		}
	}

	if job.MapsAgents {
		c.pause(ctx)
		maps, agents, err := c.mapsAgents.Scrape(ctx, job.EventURL)
		if err != nil {
			logger.Error().Err(err).Msg("failed to scrape maps and agents, skipping section")
		} else {
			result.MapUsage = maps
			result.AgentUsage = agents
			if err := c.eventRepo.SaveAgentUsage(ctx, info.EventID, agents); err != nil {
				logger.Error().Err(err).Msg("failed to save agent usage")
			}
		}
	}

	if job.DetailedMatches {
		c.scrapeDetailedMatches(ctx, logger, job, info.EventID, result)
	}

	logger.Info().
		Int("attempted", result.Summary.Attempted).
		Int("succeeded", result.Summary.Succeeded).
		Int("partially_defaulted", result.Summary.PartiallyDefaulted).
		Int("failed", result.Summary.Failed).
		Msg("scrape job finished")
	return result, nil
}

func (c *Coordinator) scrapeDetailedMatches(ctx context.Context, logger zerolog.Logger, job config.Job, eventID string, result *JobResult) {
	limit := len(result.Matches)
	if job.MaxMatches > 0 && job.MaxMatches < limit {
		limit = job.MaxMatches
	}

	for _, summary := range result.Matches[:limit] {
		if summary.MatchID == "" || summary.MatchURL == "" {
			continue
		}
		result.Summary.Attempted++
		c.pause(ctx)

		rec, err := c.details.Scrape(ctx, summary.MatchURL)
		if err != nil {
			result.Summary.Failed++
			logger.Warn().Str("match_id", summary.MatchID).Err(err).Msg("match scrape failed, skipping")
			continue
		}

		if err := c.matchRepo.SaveDetailedMatch(ctx, eventID, rec); err != nil {
			result.Summary.Failed++
			logger.Error().Str("match_id", rec.MatchID).Err(err).Msg("match save failed, skipping")
			continue
		}

		result.Detailed = append(result.Detailed, rec)
		result.Summary.Succeeded++
		if partiallyDefaulted(rec) {
			result.Summary.PartiallyDefaulted++
		}

		if job.Economy {
			c.pause(ctx)
			rows := c.economy.ScrapeMatch(ctx, rec)
			if len(rows) > 0 {
				if err := c.matchRepo.SaveEconomy(ctx, rec.MatchID, rows); err != nil {
					logger.Error().Str("match_id", rec.MatchID).Err(err).Msg("economy save failed")
				}
			}
		}

		if job.Performance {
			c.pause(ctx)
			rows := c.performance.ScrapeMatch(ctx, rec)
			if len(rows) > 0 {
				if err := c.matchRepo.SavePerformance(ctx, rec.MatchID, rows); err != nil {
					logger.Error().Str("match_id", rec.MatchID).Err(err).Msg("performance save failed")
				}
			}
		}
	}
}

// partiallyDefaulted reports whether a stored record still carries
// placeholder values, the success signal the batch summary tracks.
func partiallyDefaulted(rec *domain.MatchRecord) bool {
	if rec.Event.Name == normalize.UnknownEvent ||
		rec.Team1.Name == "Team 1" || rec.Team2.Name == "Team 2" {
		return true
	}
	for _, m := range rec.Maps {
		if strings.HasPrefix(m.MapName, "Map ") {
			return true
		}
		for _, players := range m.PlayerStats {
			for _, p := range players {
				if strings.HasPrefix(p.PlayerName, "Player ") || p.Agent == normalize.Unknown {
					return true
				}
			}
		}
	}
	return false
}

// pause sleeps a random interval inside the configured delay bounds.
// Purely to keep the request rate down, not needed for correctness.
func (c *Coordinator) pause(ctx context.Context) {
	delay := constants.FetchDelayMin +
		time.Duration(rand.Int63n(int64(constants.FetchDelayMax-constants.FetchDelayMin)))
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}
