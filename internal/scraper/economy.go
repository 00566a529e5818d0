package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"vlr-scraper/internal/domain"
	"vlr-scraper/internal/extract"
)

// EconomyScraper reads per-team economy rows off a match's economy tab.
// Each map is requested through its own game id, so the mapping from
// economy table to map is explicit instead of inferred from table
// position on the combined page.
type EconomyScraper struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

func NewEconomyScraper(fetcher Fetcher, logger zerolog.Logger) *EconomyScraper {
	return &EconomyScraper{fetcher: fetcher, logger: logger}
}

// ScrapeMatch fetches the economy rows for every map of an assembled
// match, plus the all-maps summary. A map whose economy page cannot be
// read is skipped, not fatal.
func (s *EconomyScraper) ScrapeMatch(ctx context.Context, rec *domain.MatchRecord) []domain.TeamEconomyRecord {
	var rows []domain.TeamEconomyRecord

	games := []struct{ id, mapName string }{{"all", "All Maps"}}
	for _, m := range rec.Maps {
		if m.MapID != "" && m.MapID != "all" {
			games = append(games, struct{ id, mapName string }{m.MapID, m.MapName})
		}
	}

	for _, g := range games {
		url := MatchEconomyURL(rec.MatchURL, g.id)
		doc, err := s.fetcher.FetchDocument(ctx, url)
		if err != nil {
			s.logger.Warn().Str("url", url).Err(err).Msg("economy page fetch failed, skipping map")
			continue
		}
		parsed := s.Parse(doc, rec.MatchID, g.mapName)
		rows = append(rows, parsed...)
	}

	s.logger.Info().Str("match_id", rec.MatchID).Int("rows", len(rows)).Msg("economy parsed")
	return rows
}

// Parse extracts team rows from the first economy table on a page. A
// per-game page shows only that game's table first, so no positional
// disambiguation is needed.
func (s *EconomyScraper) Parse(doc *goquery.Document, matchID, mapName string) []domain.TeamEconomyRecord {
	table := findEconomyTable(doc)
	if table == nil {
		s.logger.Warn().Str("map", mapName).Msg("no economy table found on page")
		return nil
	}

	headers := tableHeaders(table)
	var rows []domain.TeamEconomyRecord

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		team := strings.TrimSpace(cells.Eq(0).Text())
		if team == "" {
			return
		}

		rec := domain.TeamEconomyRecord{
			MatchID:    matchID,
			MapName:    mapName,
			TeamName:   team,
			PistolWon:  extract.DefaultNA,
			EcoWon:     extract.DefaultNA,
			SemiEcoWon: extract.DefaultNA,
			SemiBuyWon: extract.DefaultNA,
			FullBuyWon: extract.DefaultNA,
		}
		for j, header := range headers {
			if j >= cells.Length() {
				break
			}
			value := extract.CleanPairedCount(cells.Eq(j).Text())
			switch header {
			case "Pistol Won":
				rec.PistolWon = value
			case "Eco (won)", "Eco":
				rec.EcoWon = value
			case "$ (won)", "$":
				rec.SemiEcoWon = value
			case "$$ (won)", "$$":
				rec.SemiBuyWon = value
			case "$$$ (won)", "$$$":
				rec.FullBuyWon = value
			}
		}
		rows = append(rows, rec)
	})
	return rows
}

// findEconomyTable locates the first table whose headers look like the
// economy grid.
func findEconomyTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		for _, h := range tableHeaders(table) {
			switch h {
			case "Pistol Won", "Eco", "$", "$$", "$$$":
				found = table
				return false
			}
		}
		return true
	})
	return found
}

func tableHeaders(table *goquery.Selection) []string {
	var headers []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(th.Text()))
	})
	return headers
}
