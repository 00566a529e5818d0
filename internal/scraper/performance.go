package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"vlr-scraper/internal/domain"
	"vlr-scraper/internal/extract"
	"vlr-scraper/internal/normalize"
)

// PerformanceScraper reads per-player rows off a match's performance
// tab: multikill rounds, clutches won, econ rating, spike plants and
// defuses. Like the economy scraper, each map is requested through its
// own game id; the tab has no usable all-maps table, so only per-map
// pages are fetched.
type PerformanceScraper struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

func NewPerformanceScraper(fetcher Fetcher, logger zerolog.Logger) *PerformanceScraper {
	return &PerformanceScraper{fetcher: fetcher, logger: logger}
}

// ScrapeMatch fetches the performance rows for every map of an
// assembled match. A map whose page cannot be read is skipped, not
// fatal.
func (s *PerformanceScraper) ScrapeMatch(ctx context.Context, rec *domain.MatchRecord) []domain.PlayerPerformanceRecord {
	var rows []domain.PlayerPerformanceRecord

	for _, m := range rec.Maps {
		if m.MapID == "" || m.MapID == "all" {
			continue
		}
		url := MatchPerformanceURL(rec.MatchURL, m.MapID)
		doc, err := s.fetcher.FetchDocument(ctx, url)
		if err != nil {
			s.logger.Warn().Str("url", url).Err(err).Msg("performance page fetch failed, skipping map")
			continue
		}
		rows = append(rows, s.Parse(doc, rec.MatchID, m.MapName)...)
	}

	s.logger.Info().Str("match_id", rec.MatchID).Int("rows", len(rows)).Msg("performance parsed")
	return rows
}

// performanceSchema maps the tab's row layout: player cell with a
// nested team tag, agent icon, 2K through 5K, 1v1 through 1v5, then
// ECON, PL and DE. Every count cell wraps its number in a stats-sq div
// followed by popover text, so the leading-integer rule applies.
var performanceSchema = []extract.ColumnRule{
	{Cell: 0, Field: "player", Kind: extract.RawText, Selector: "div.team"},
	{Cell: 0, Field: "team", Kind: extract.RawText, Selector: "div.team-tag"},
	{Cell: 1, Field: "agent", Kind: extract.ImageName},
	{Cell: 2, Field: "kills_2k", Kind: extract.Integer},
	{Cell: 3, Field: "kills_3k", Kind: extract.Integer},
	{Cell: 4, Field: "kills_4k", Kind: extract.Integer},
	{Cell: 5, Field: "kills_5k", Kind: extract.Integer},
	{Cell: 6, Field: "clutch_1v1", Kind: extract.Integer},
	{Cell: 7, Field: "clutch_1v2", Kind: extract.Integer},
	{Cell: 8, Field: "clutch_1v3", Kind: extract.Integer},
	{Cell: 9, Field: "clutch_1v4", Kind: extract.Integer},
	{Cell: 10, Field: "clutch_1v5", Kind: extract.Integer},
	{Cell: 11, Field: "econ", Kind: extract.Integer},
	{Cell: 12, Field: "plants", Kind: extract.Integer},
	{Cell: 13, Field: "defuses", Kind: extract.Integer},
}

// Parse extracts player rows from the first performance table on a
// page.
func (s *PerformanceScraper) Parse(doc *goquery.Document, matchID, mapName string) []domain.PlayerPerformanceRecord {
	table := findPerformanceTable(doc)
	if table == nil {
		s.logger.Warn().Str("map", mapName).Msg("no performance table found on page")
		return nil
	}

	var rows []domain.PlayerPerformanceRecord
	for _, rec := range extract.ParseTable(table, performanceSchema, 1) {
		rows = append(rows, performanceFromRecord(rec, matchID, mapName))
	}
	return rows
}

func performanceFromRecord(rec extract.Record, matchID, mapName string) domain.PlayerPerformanceRecord {
	player := rec["player"]
	team := normalize.String(rec["team"])
	if team != "" {
		// The team tag nests inside the player cell, so its text leaks
		// into the player name.
		player = strings.TrimSpace(strings.Replace(player, team, "", 1))
	}

	return domain.PlayerPerformanceRecord{
		MatchID:    matchID,
		MapName:    mapName,
		TeamName:   team,
		PlayerName: player,
		Agent:      rec["agent"],
		Kills2K:    normalize.Int(rec["kills_2k"]),
		Kills3K:    normalize.Int(rec["kills_3k"]),
		Kills4K:    normalize.Int(rec["kills_4k"]),
		Kills5K:    normalize.Int(rec["kills_5k"]),
		Clutch1v1:  normalize.Int(rec["clutch_1v1"]),
		Clutch1v2:  normalize.Int(rec["clutch_1v2"]),
		Clutch1v3:  normalize.Int(rec["clutch_1v3"]),
		Clutch1v4:  normalize.Int(rec["clutch_1v4"]),
		Clutch1v5:  normalize.Int(rec["clutch_1v5"]),
		EconRating: normalize.Int(rec["econ"]),
		Plants:     normalize.Int(rec["plants"]),
		Defuses:    normalize.Int(rec["defuses"]),
	}
}

// findPerformanceTable locates the first table whose headers carry the
// multikill columns, which only the performance grid has.
func findPerformanceTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		headers := tableHeaders(table)
		has := map[string]bool{}
		for _, h := range headers {
			has[h] = true
		}
		if has["2K"] && has["3K"] && has["ECON"] {
			found = table
			return false
		}
		return true
	})
	return found
}
