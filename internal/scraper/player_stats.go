package scraper

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"vlr-scraper/internal/domain"
	"vlr-scraper/internal/extract"
	"vlr-scraper/internal/normalize"
)

// PlayerStatsScraper reads the tournament-wide player stats tab.
type PlayerStatsScraper struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

func NewPlayerStatsScraper(fetcher Fetcher, logger zerolog.Logger) *PlayerStatsScraper {
	return &PlayerStatsScraper{fetcher: fetcher, logger: logger}
}

func (s *PlayerStatsScraper) Scrape(ctx context.Context, eventURL string) ([]domain.PlayerEventStats, error) {
	doc, err := s.fetcher.FetchDocument(ctx, EventStatsURL(eventURL))
	if err != nil {
		return nil, err
	}
	return s.Parse(doc), nil
}

func (s *PlayerStatsScraper) Parse(doc *goquery.Document) []domain.PlayerEventStats {
	table := statsTable(doc)
	if table == nil {
		s.logger.Warn().Msg("no player stats table found on page")
		return nil
	}

	var players []domain.PlayerEventStats
	for _, rec := range extract.ParseTable(table, eventStatsSchema, 1) {
		if rec["team"] == extract.DefaultNA {
			continue
		}
		players = append(players, eventPlayerFromRecord(rec))
	}

	s.logger.Info().Int("players", len(players)).Msg("player stats parsed")
	return players
}

// statsTable finds the stats table, trying the dedicated class before
// progressively looser fallbacks.
func statsTable(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{
		"table.wf-table.mod-stats.mod-scroll",
		"table.wf-table-inset",
		"table",
	} {
		if t := doc.Find(sel).First(); t.Length() > 0 {
			return t
		}
	}
	return nil
}

// eventStatsSchema maps the tab's column layout: player, agents, rounds,
// rating, ACS, K:D, KAST, ADR, KPR, APR, FKPR, FDPR, HS%, CL%, CL, KMax,
// K, D, A, FK, FD. Only the columns the exporter consumes are bound.
var eventStatsSchema = []extract.ColumnRule{
	{Cell: 0, Field: "player", Kind: extract.RawText, Selector: "a div.text-of"},
	{Cell: 0, Field: "team", Kind: extract.RawText, Selector: "a div.stats-player-country"},
	{Cell: 1, Field: "agents", Kind: extract.ImageList},
	{Cell: 3, Field: "rating", Kind: extract.GradedValue},
	{Cell: 4, Field: "acs", Kind: extract.GradedValue},
	{Cell: 5, Field: "kd_ratio", Kind: extract.GradedValue},
	{Cell: 6, Field: "kast", Kind: extract.GradedValue},
	{Cell: 7, Field: "adr", Kind: extract.GradedValue},
	{Cell: 12, Field: "hs_percent", Kind: extract.GradedValue},
	{Cell: 16, Field: "kills", Kind: extract.GradedValue},
	{Cell: 17, Field: "deaths", Kind: extract.GradedValue},
	{Cell: 18, Field: "assists", Kind: extract.GradedValue},
	{Cell: 19, Field: "first_kills", Kind: extract.GradedValue},
	{Cell: 20, Field: "first_deaths", Kind: extract.GradedValue},
}

func eventPlayerFromRecord(rec extract.Record) domain.PlayerEventStats {
	p := domain.PlayerEventStats{
		ScrapedAt:   time.Now(),
		Player:      rec["player"],
		Team:        rec["team"],
		Agents:      extract.SplitList(rec["agents"]),
		Rating:      rec["rating"],
		ACS:         rec["acs"],
		KDRatio:     rec["kd_ratio"],
		KAST:        rec["kast"],
		ADR:         rec["adr"],
		HSPercent:   rec["hs_percent"],
		Kills:       rec["kills"],
		Deaths:      rec["deaths"],
		Assists:     rec["assists"],
		FirstKills:  rec["first_kills"],
		FirstDeaths: rec["first_deaths"],
	}
	p.PlusMinus = normalize.FormatInt(normalize.Int(p.Kills) - normalize.Int(p.Deaths))
	return p
}
