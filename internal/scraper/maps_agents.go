package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"vlr-scraper/internal/domain"
	"vlr-scraper/internal/extract"
	"vlr-scraper/internal/normalize"
)

// MapsAgentsScraper reads the agent-utilization tab: one grid where
// rows are maps (plus an all-maps total row) and columns past the
// fourth are agents.
type MapsAgentsScraper struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

func NewMapsAgentsScraper(fetcher Fetcher, logger zerolog.Logger) *MapsAgentsScraper {
	return &MapsAgentsScraper{fetcher: fetcher, logger: logger}
}

func (s *MapsAgentsScraper) Scrape(ctx context.Context, eventURL string) ([]domain.MapUsageRecord, []domain.AgentUsageRecord, error) {
	doc, err := s.fetcher.FetchDocument(ctx, EventAgentsURL(eventURL))
	if err != nil {
		return nil, nil, err
	}
	maps, agents := s.Parse(doc)
	return maps, agents, nil
}

func (s *MapsAgentsScraper) Parse(doc *goquery.Document) ([]domain.MapUsageRecord, []domain.AgentUsageRecord) {
	table := doc.Find("table.wf-table.mod-pr-global").First()
	if table.Length() == 0 {
		s.logger.Warn().Msg("no agent utilization table found on page")
		return nil, nil
	}

	maps := s.parseMapRows(table)
	agents := s.parseAgentColumns(table)
	s.logger.Info().Int("maps", len(maps)).Int("agents", len(agents)).Msg("maps and agents parsed")
	return maps, agents
}

func (s *MapsAgentsScraper) parseMapRows(table *goquery.Selection) []domain.MapUsageRecord {
	var maps []domain.MapUsageRecord
	table.Find("tr.pr-global-row").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		name := cleanMapLabel(strings.TrimSpace(cells.Eq(0).Text()))
		if name == "" {
			return
		}
		maps = append(maps, domain.MapUsageRecord{
			MapName:           name,
			TimesPlayed:       strings.TrimSpace(cells.Eq(1).Text()),
			AttackWinPercent:  strings.TrimSpace(cells.Eq(2).Text()),
			DefenseWinPercent: strings.TrimSpace(cells.Eq(3).Text()),
			ScrapedAt:         time.Now(),
		})
	})
	return maps
}

func (s *MapsAgentsScraper) parseAgentColumns(table *goquery.Selection) []domain.AgentUsageRecord {
	headers := table.Find("tr").First().Find("th")
	if headers.Length() <= 4 {
		return nil
	}

	// The first four header cells are map/#/ATK/DEF; the rest carry one
	// agent icon each.
	var agents []domain.AgentUsageRecord
	headers.Each(func(i int, th *goquery.Selection) {
		if i < 4 {
			return
		}
		name := extract.ImageLabel(th.Find("img").First())
		agents = append(agents, domain.AgentUsageRecord{
			AgentName:       name,
			MapUtilizations: map[string]float64{},
			ScrapedAt:       time.Now(),
		})
	})

	table.Find("tr.pr-global-row").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		mapLabel := cleanMapLabel(strings.TrimSpace(cells.Eq(0).Text()))
		totalRow := mapLabel == "" || row.HasClass("mod-all")

		for i := range agents {
			cell := cells.Eq(4 + i)
			if cell.Length() == 0 {
				continue
			}
			text := strings.TrimSpace(cell.Find("div.color-sq span").First().Text())
			if text == "" {
				continue
			}
			util := normalize.Float(text)
			if totalRow {
				agents[i].TotalUtilization = util
			} else {
				agents[i].MapUtilizations[mapLabel] = util
			}
		}
	})
	return agents
}

// cleanMapLabel strips the leading rank digit the grid prefixes map
// names with, e.g. "3 Icebox" or "IIcebox" both become "Icebox".
func cleanMapLabel(text string) string {
	switch {
	case len(text) > 2 && text[1] == ' ':
		return text[2:]
	case len(text) > 1 && text[0] == text[1]:
		return text[1:]
	default:
		return text
	}
}
