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

// MatchListScraper walks an event's matches tab and yields one summary
// row per listed match. Match items sit under date labels, so the
// label in effect when an item appears becomes that match's date.
type MatchListScraper struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

func NewMatchListScraper(fetcher Fetcher, logger zerolog.Logger) *MatchListScraper {
	return &MatchListScraper{fetcher: fetcher, logger: logger}
}

func (s *MatchListScraper) Scrape(ctx context.Context, eventURL string) ([]domain.MatchSummary, error) {
	doc, err := s.fetcher.FetchDocument(ctx, EventMatchesURL(eventURL))
	if err != nil {
		return nil, err
	}
	return s.Parse(doc), nil
}

// Parse extracts match summaries from an already-fetched matches page.
func (s *MatchListScraper) Parse(doc *goquery.Document) []domain.MatchSummary {
	var matches []domain.MatchSummary

	currentDate := extract.DefaultNA
	doc.Find("div.wf-label.mod-large, a.wf-module-item.match-item").Each(func(_ int, sel *goquery.Selection) {
		if sel.Is("div.wf-label.mod-large") {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				currentDate = text
			}
			return
		}

		m, ok := parseMatchItem(sel, currentDate)
		if !ok {
			return
		}
		matches = append(matches, m)
	})

	s.logger.Info().Int("matches", len(matches)).Msg("match list parsed")
	return matches
}

// parseMatchItem reads one match-item anchor. Rows missing both team
// names are dropped, matching the best-effort row policy of the table
// parser.
func parseMatchItem(item *goquery.Selection, date string) (domain.MatchSummary, bool) {
	m := domain.MatchSummary{
		Date:      date,
		ScrapedAt: time.Now(),
	}

	if href, ok := item.Attr("href"); ok && href != "" {
		m.MatchURL = AbsoluteURL(href)
		m.MatchID = MatchIDFromURL(m.MatchURL)
	}

	m.Time = extract.Text(item, "div.match-item-time", extract.DefaultNA)

	vs := item.Find("div.match-item-vs").First()
	teams := vs.Find("div.match-item-vs-team")
	if teams.Length() >= 2 {
		m.Team1 = extract.Text(teams.Eq(0), "div.match-item-vs-team-name div.text-of", extract.DefaultNA)
		m.Team2 = extract.Text(teams.Eq(1), "div.match-item-vs-team-name div.text-of", extract.DefaultNA)
		m.Score1 = extract.Text(teams.Eq(0), "div.match-item-vs-team-score", extract.DefaultNA)
		m.Score2 = extract.Text(teams.Eq(1), "div.match-item-vs-team-score", extract.DefaultNA)
		if m.Score1 != extract.DefaultNA && m.Score2 != extract.DefaultNA {
			m.Score = m.Score1 + "-" + m.Score2
		} else {
			m.Score = extract.DefaultNA
		}
	}

	m.Winner = matchItemWinner(vs, m)
	m.Status = extract.Text(item, "div.match-item-eta div.ml-status", extract.DefaultNA)

	event := item.Find("div.match-item-event").First()
	if event.Length() > 0 {
		m.Week = extract.Text(event, "div.match-item-event-series", extract.DefaultNA)
		stage := strings.TrimSpace(event.Text())
		if m.Week != extract.DefaultNA {
			stage = strings.TrimSpace(strings.Replace(stage, m.Week, "", 1))
		}
		if stage == "" {
			stage = extract.DefaultNA
		}
		m.Stage = stage
	} else {
		m.Week = extract.DefaultNA
		m.Stage = extract.DefaultNA
	}

	if m.Team1 == extract.DefaultNA || m.Team2 == extract.DefaultNA {
		return m, false
	}
	return m, true
}

// matchItemWinner prefers the mod-winner marker, then recomputes from
// the scores, with "Draw" on a tie.
func matchItemWinner(vs *goquery.Selection, m domain.MatchSummary) string {
	winner := vs.Find("div.match-item-vs-team.mod-winner").First()
	if winner.Length() > 0 {
		if name := extract.Text(winner, "div.match-item-vs-team-name div.text-of", ""); name != "" {
			return name
		}
	}
	if m.Score1 == extract.DefaultNA || m.Score2 == extract.DefaultNA {
		return extract.DefaultNA
	}
	s1, s2 := normalize.Int(m.Score1), normalize.Int(m.Score2)
	return normalize.DeriveWinner(s1, s2, m.Team1, m.Team2)
}
