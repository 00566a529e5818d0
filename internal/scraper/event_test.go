package scraper

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventPageFixture = `<html><body>
<h1 class="wf-title">Valorant Champions 2024</h1>
<h2 class="event-desc-subtitle">The world championship</h2>
<div class="event-desc-item">
	<div class="event-desc-item-label">Dates</div>
	<div class="event-desc-item-value">Aug 1 - Aug 25</div>
</div>
<div class="event-desc-item">
	<div class="event-desc-item-label">Location</div>
	<div class="event-desc-item-value">Seoul, South Korea</div>
</div>
<div class="event-desc-item">
	<div class="event-desc-item-label">Prize pool</div>
	<div class="event-desc-item-value">$2,250,000 USD</div>
</div>
</body></html>`

func TestEventParse(t *testing.T) {
	s := NewEventScraper(nil, zerolog.Nop())
	info := s.Parse(parseDoc(t, eventPageFixture), "https://www.vlr.gg/event/2097/valorant-champions-2024")
	require.NotNil(t, info)

	assert.Equal(t, "2097", info.EventID)
	assert.Equal(t, "Valorant Champions 2024", info.Title)
	assert.Equal(t, "The world championship", info.Subtitle)
	assert.Equal(t, "Aug 1 - Aug 25", info.Dates)
	assert.Equal(t, "Seoul, South Korea", info.Location)
	assert.Equal(t, "$2,250,000 USD", info.PrizePool)
}

func TestEventParseGeneratesIDWithoutNumericSegment(t *testing.T) {
	s := NewEventScraper(nil, zerolog.Nop())
	info := s.Parse(parseDoc(t, eventPageFixture), "https://www.vlr.gg/event/showmatch")
	assert.NotEmpty(t, info.EventID)
}
