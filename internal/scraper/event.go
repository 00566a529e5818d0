package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vlr-scraper/internal/domain"
	"vlr-scraper/internal/extract"
)

// EventScraper reads the event overview page: title, dates, location,
// prize pool.
type EventScraper struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

func NewEventScraper(fetcher Fetcher, logger zerolog.Logger) *EventScraper {
	return &EventScraper{fetcher: fetcher, logger: logger}
}

func (s *EventScraper) Scrape(ctx context.Context, eventURL string) (*domain.EventInfo, error) {
	doc, err := s.fetcher.FetchDocument(ctx, eventURL)
	if err != nil {
		return nil, err
	}
	info := s.Parse(doc, eventURL)
	return info, nil
}

// Parse extracts event info from an already-fetched overview page. The
// event ID comes from the URL path; a random ID stands in when the URL
// carries no numeric segment.
func (s *EventScraper) Parse(doc *goquery.Document, eventURL string) *domain.EventInfo {
	info := &domain.EventInfo{
		EventID:   EventSeriesID(eventURL),
		URL:       eventURL,
		ScrapedAt: time.Now(),
	}
	if info.EventID == "" {
		info.EventID = uuid.NewString()
		s.logger.Warn().Str("url", eventURL).Str("event_id", info.EventID).
			Msg("no numeric event id in url, generated one")
	}

	info.Title = extract.Text(doc.Selection, "h1.wf-title", extract.DefaultNA)
	info.Subtitle = extract.Text(doc.Selection, "h2.event-desc-subtitle", "")

	doc.Find("div.event-desc-item").Each(func(_ int, block *goquery.Selection) {
		label := strings.ToLower(extract.Text(block, "div.event-desc-item-label", ""))
		value := extract.Text(block, "div.event-desc-item-value", "")
		if label == "" || value == "" {
			return
		}
		switch {
		case strings.Contains(label, "date"):
			info.Dates = value
		case strings.Contains(label, "location"):
			info.Location = value
		case strings.Contains(label, "prize"):
			info.PrizePool = value
		}
	})

	return info
}
