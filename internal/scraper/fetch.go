// Package scraper turns vlr.gg pages into the typed records in
// internal/domain. Each scraper receives a Fetcher so callers decide
// whether pages come over plain HTTP or a rendering browser.
package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/valyala/fasthttp"

	"vlr-scraper/internal/constants"
)

// ErrNoMatchData reports total page-structure failure: nothing on the
// page could be recognized. It is the only condition a batch treats as
// a wholly failed unit.
var ErrNoMatchData = fmt.Errorf("no recognizable match data on page")

// Fetcher retrieves one page and returns its parsed node tree.
type Fetcher interface {
	FetchDocument(ctx context.Context, url string) (*goquery.Document, error)
}

// HTTPFetcher fetches pages over plain HTTP.
type HTTPFetcher struct {
	client *fasthttp.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.FetchTimeout,
			WriteTimeout:        constants.FetchTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (f *HTTPFetcher) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", constants.UserAgent)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.FetchTimeout)
	}
	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(resp.Body())))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

var matchIDRe = regexp.MustCompile(`/(\d+)/`)

// MatchIDFromURL extracts the first all-numeric path segment of a match
// URL, e.g. "/378662/team-a-vs-team-b" yields "378662".
func MatchIDFromURL(url string) string {
	if m := matchIDRe.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

// AbsoluteURL prefixes site-relative hrefs with the base URL.
func AbsoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return constants.BaseURL + href
}

// EventSeriesID extracts the numeric event ID from an event URL,
// e.g. "https://www.vlr.gg/event/2097/..." yields "2097".
func EventSeriesID(eventURL string) string {
	m := regexp.MustCompile(`/event/(\d+)`).FindStringSubmatch(eventURL)
	if m != nil {
		return m[1]
	}
	return ""
}

// EventMatchesURL rewrites an event overview URL into its match-list
// tab, preserving the event slug.
func EventMatchesURL(eventURL string) string {
	if strings.Contains(eventURL, "/event/matches/") {
		return eventURL
	}
	return strings.Replace(eventURL, "/event/", "/event/matches/", 1) + "?series_id=all"
}

// EventStatsURL rewrites an event overview URL into its player-stats tab.
func EventStatsURL(eventURL string) string {
	if strings.Contains(eventURL, "/event/stats/") {
		return eventURL
	}
	return strings.Replace(eventURL, "/event/", "/event/stats/", 1)
}

// EventAgentsURL rewrites an event overview URL into its agent-utilization
// tab.
func EventAgentsURL(eventURL string) string {
	if strings.Contains(eventURL, "/event/agents/") {
		return eventURL
	}
	return strings.Replace(eventURL, "/event/", "/event/agents/", 1)
}

// MatchEconomyURL builds the economy tab URL for one map of a match.
// The association between an economy table and a map is made explicit
// by requesting each map's own game id rather than inferring it from
// table position.
func MatchEconomyURL(matchURL, gameID string) string {
	return matchTabURL(matchURL, gameID, "economy")
}

// MatchPerformanceURL builds the performance tab URL for one map of a
// match, same game-id convention as the economy tab.
func MatchPerformanceURL(matchURL, gameID string) string {
	return matchTabURL(matchURL, gameID, "performance")
}

func matchTabURL(matchURL, gameID, tab string) string {
	base := matchURL
	if idx := strings.Index(base, "?"); idx >= 0 {
		base = base[:idx]
	}
	return fmt.Sprintf("%s?game=%s&tab=%s", base, gameID, tab)
}
