package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchIDFromURL(t *testing.T) {
	assert.Equal(t, "378662", MatchIDFromURL("https://www.vlr.gg/378662/sentinels-vs-fnatic"))
	assert.Equal(t, "378662", MatchIDFromURL("/378662/sentinels-vs-fnatic"))
	assert.Equal(t, "", MatchIDFromURL("https://www.vlr.gg/matches"))
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "https://www.vlr.gg/378662/x", AbsoluteURL("/378662/x"))
	assert.Equal(t, "https://www.vlr.gg/378662/x", AbsoluteURL("378662/x"))
	assert.Equal(t, "https://other.gg/p", AbsoluteURL("https://other.gg/p"))
	assert.Equal(t, "", AbsoluteURL(""))
}

func TestEventSeriesID(t *testing.T) {
	assert.Equal(t, "2097", EventSeriesID("https://www.vlr.gg/event/2097/valorant-champions-2024"))
	assert.Equal(t, "", EventSeriesID("https://www.vlr.gg/events"))
}

func TestEventTabURLs(t *testing.T) {
	event := "https://www.vlr.gg/event/2097/valorant-champions-2024"

	assert.Equal(t,
		"https://www.vlr.gg/event/matches/2097/valorant-champions-2024?series_id=all",
		EventMatchesURL(event))
	assert.Equal(t,
		"https://www.vlr.gg/event/stats/2097/valorant-champions-2024",
		EventStatsURL(event))
	assert.Equal(t,
		"https://www.vlr.gg/event/agents/2097/valorant-champions-2024",
		EventAgentsURL(event))

	// Already-rewritten URLs pass through untouched.
	stats := "https://www.vlr.gg/event/stats/2097/valorant-champions-2024"
	assert.Equal(t, stats, EventStatsURL(stats))
}

func TestMatchEconomyURL(t *testing.T) {
	assert.Equal(t,
		"https://www.vlr.gg/378662/sentinels-vs-fnatic?game=170001&tab=economy",
		MatchEconomyURL("https://www.vlr.gg/378662/sentinels-vs-fnatic", "170001"))
	assert.Equal(t,
		"https://www.vlr.gg/378662/sentinels-vs-fnatic?game=all&tab=economy",
		MatchEconomyURL("https://www.vlr.gg/378662/sentinels-vs-fnatic?game=170002&tab=economy", "all"),
		"an existing query string is replaced")
}

func TestMatchPerformanceURL(t *testing.T) {
	assert.Equal(t,
		"https://www.vlr.gg/378662/sentinels-vs-fnatic?game=170001&tab=performance",
		MatchPerformanceURL("https://www.vlr.gg/378662/sentinels-vs-fnatic", "170001"))
}
