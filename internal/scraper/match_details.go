package scraper

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"vlr-scraper/internal/domain"
	"vlr-scraper/internal/extract"
	"vlr-scraper/internal/normalize"
)

// MatchDetailsScraper assembles one match page into a MatchRecord:
// header info, per-map sections, per-team player tables, and the
// "all maps" aggregate section.
type MatchDetailsScraper struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

func NewMatchDetailsScraper(fetcher Fetcher, logger zerolog.Logger) *MatchDetailsScraper {
	return &MatchDetailsScraper{fetcher: fetcher, logger: logger}
}

// Scrape fetches and assembles a match page. A partially extractable
// page still yields a structurally valid record; only total structure
// failure returns ErrNoMatchData.
func (s *MatchDetailsScraper) Scrape(ctx context.Context, matchURL string) (*domain.MatchRecord, error) {
	doc, err := s.fetcher.FetchDocument(ctx, matchURL)
	if err != nil {
		return nil, err
	}
	return s.Assemble(doc, matchURL)
}

// Assemble builds a MatchRecord from an already-parsed match page.
func (s *MatchDetailsScraper) Assemble(doc *goquery.Document, matchURL string) (*domain.MatchRecord, error) {
	if doc.Find("div.match-header-vs").Length() == 0 &&
		doc.Find("div.vm-stats-game").Length() == 0 {
		return nil, ErrNoMatchData
	}

	header := s.parseHeader(doc)
	team1, team2 := s.resolveTeamNames(doc, header)

	rec := &domain.MatchRecord{
		MatchID:   MatchIDFromURL(matchURL),
		MatchURL:  matchURL,
		ScrapedAt: time.Now(),
		Event: domain.EventMeta{
			Name:    header.eventName,
			Stage:   header.eventStage,
			DateUTC: header.dateUTC,
			Patch:   header.patch,
		},
		Team1:              domain.TeamRef{Name: team1, ScoreOverall: header.score1},
		Team2:              domain.TeamRef{Name: team2, ScoreOverall: header.score2},
		MatchFormat:        header.format,
		MapPicksBansNote:   header.picksBansNote,
		Maps:               s.parseMaps(doc, team1, team2),
		OverallPlayerStats: s.parseAggregateStats(doc, team1, team2),
	}

	normalize.Normalize(rec)
	return rec, nil
}

type matchHeader struct {
	eventName     string
	eventStage    string
	dateUTC       string
	patch         string
	team1Name     string
	team2Name     string
	score1        int
	score2        int
	format        string
	picksBansNote string
}

func (s *MatchDetailsScraper) parseHeader(doc *goquery.Document) matchHeader {
	h := matchHeader{}

	super := doc.Find("div.match-header-super").First()
	eventLink := super.Find("a.match-header-event").First()
	eventDivs := eventLink.Find("div").First().Find("div")
	h.eventName = extract.OwnText(eventDivs.Eq(0), "")
	h.eventStage = extract.OwnText(eventDivs.Eq(1), "")

	date := super.Find("div.match-header-date").First()
	h.dateUTC = extract.Attr(date, "div.moment-tz-convert", "data-utc-ts", "")
	date.Find("div").EachWithBreak(func(_ int, d *goquery.Selection) bool {
		if style, ok := d.Attr("style"); ok && strings.Contains(style, "italic") {
			h.patch = strings.TrimSpace(d.Text())
			return false
		}
		return true
	})

	vs := doc.Find("div.match-header-vs").First()
	h.team1Name = extract.Text(vs.Find("a.match-header-link.mod-1").First(), "div.wf-title-med", "")
	h.team2Name = extract.Text(vs.Find("a.match-header-link.mod-2").First(), "div.wf-title-med", "")

	spoiler := vs.Find("div.match-header-vs-score div.js-spoiler").First()
	scoreSpans := spoiler.Find("span")
	if scoreSpans.Length() == 3 {
		h.score1 = normalize.Int(scoreSpans.Eq(0).Text())
		h.score2 = normalize.Int(scoreSpans.Eq(2).Text())
	}

	notes := vs.Find("div.match-header-vs-score div.match-header-vs-note")
	if notes.Length() > 1 {
		h.format = strings.TrimSpace(notes.Eq(1).Text())
	} else if notes.Length() == 1 {
		if text := strings.TrimSpace(notes.Eq(0).Text()); !strings.Contains(strings.ToLower(text), "final") {
			h.format = text
		}
	}

	h.picksBansNote = extract.Text(doc.Selection, "div.match-header-note", "")
	return h
}

// resolveTeamNames applies the secondary selector when the header's
// primary team links resolve to nothing, then falls back to team-number
// placeholders.
func (s *MatchDetailsScraper) resolveTeamNames(doc *goquery.Document, h matchHeader) (string, string) {
	team1, team2 := h.team1Name, h.team2Name
	if team1 == "" || team2 == "" {
		names := doc.Find("div.match-header-link-name .wf-title-med")
		if team1 == "" && names.Length() > 0 {
			team1 = strings.TrimSpace(names.Eq(0).Text())
		}
		if team2 == "" && names.Length() > 1 {
			team2 = strings.TrimSpace(names.Eq(1).Text())
		}
	}
	if team1 == "" {
		team1 = "Team 1"
	}
	if team2 == "" {
		team2 = "Team 2"
	}
	return team1, team2
}

func (s *MatchDetailsScraper) parseMaps(doc *goquery.Document, team1, team2 string) []domain.MapRecord {
	var maps []domain.MapRecord

	sections := doc.Find(`div.vm-stats-container > div.vm-stats-game[data-game-id]`).
		FilterFunction(func(_ int, sel *goquery.Selection) bool {
			id, _ := sel.Attr("data-game-id")
			return id != "all"
		})

	sections.Each(func(i int, section *goquery.Selection) {
		m, ok := s.parseMapSection(section, i, team1, team2)
		if !ok {
			s.logger.Warn().Int("map_index", i).Msg("map section could not be assembled, skipping")
			return
		}
		maps = append(maps, m)
	})
	return maps
}

func (s *MatchDetailsScraper) parseMapSection(section *goquery.Selection, index int, team1, team2 string) (domain.MapRecord, bool) {
	gameID, _ := section.Attr("data-game-id")
	m := domain.MapRecord{
		MapOrder:    index + 1,
		MapID:       gameID,
		PlayerStats: map[string][]domain.PlayerStatRecord{team1: {}, team2: {}},
	}

	header := section.Find("div.vm-stats-game-header").First()
	if header.Length() == 0 {
		return m, false
	}
	mapInfo := header.Find("div.map").First()
	if mapInfo.Length() == 0 {
		return m, false
	}

	nameSpan := mapNameSpan(mapInfo)
	// The pick marker nests inside the name span, so its text leaks in.
	m.MapName = strings.TrimSpace(strings.ReplaceAll(nameSpan.Text(), "PICK", ""))
	m.Duration = extract.Text(mapInfo, "div.map-duration", "")
	m.PickedBy = pickedBy(nameSpan, team1, team2)

	scores := header.Find("div.score")
	if scores.Length() >= 2 {
		m.Team1Score = normalize.Int(scores.Eq(0).Text())
		m.Team2Score = normalize.Int(scores.Eq(1).Text())
	}
	m.WinnerTeamName = normalize.DeriveWinner(m.Team1Score, m.Team2Score, team1, team2)

	tables := section.Find("table.wf-table-inset.mod-overview")
	if tables.Length() >= 1 {
		m.PlayerStats[team1] = s.parsePlayerTable(tables.Eq(0), team1)
	}
	if tables.Length() >= 2 {
		m.PlayerStats[team2] = s.parsePlayerTable(tables.Eq(1), team2)
	}
	return m, true
}

// mapNameSpan locates the span holding the map name inside a map header,
// keyed off the bold style the site puts on it.
func mapNameSpan(mapInfo *goquery.Selection) *goquery.Selection {
	var found *goquery.Selection
	mapInfo.Find("div").EachWithBreak(func(_ int, d *goquery.Selection) bool {
		if style, ok := d.Attr("style"); ok && strings.Contains(style, "font-weight: 700") {
			found = d.Find("span").First()
			return false
		}
		return true
	})
	if found == nil {
		return mapInfo.Find("span").First()
	}
	return found
}

// pickedBy maps the "picked" marker class to a team name. A mod-1 marker
// is the first header team, mod-2 the second, anything else the decider.
func pickedBy(nameSpan *goquery.Selection, team1, team2 string) string {
	marker := nameSpan.Find("span.picked").First()
	if marker.Length() == 0 {
		return normalize.Decider
	}
	if marker.HasClass("mod-1") {
		return team1
	}
	if marker.HasClass("mod-2") {
		return team2
	}
	return normalize.Decider
}

func (s *MatchDetailsScraper) parseAggregateStats(doc *goquery.Document, team1, team2 string) map[string][]domain.PlayerStatRecord {
	overall := map[string][]domain.PlayerStatRecord{team1: {}, team2: {}}

	section := doc.Find(`div.vm-stats-game[data-game-id="all"]`).First()
	if section.Length() == 0 {
		return overall
	}
	tables := section.Find("table.wf-table-inset.mod-overview")
	if tables.Length() >= 1 {
		overall[team1] = s.parsePlayerTable(tables.Eq(0), team1)
	}
	if tables.Length() >= 2 {
		overall[team2] = s.parsePlayerTable(tables.Eq(1), team2)
	}
	return overall
}

func (s *MatchDetailsScraper) parsePlayerTable(table *goquery.Selection, teamName string) []domain.PlayerStatRecord {
	var players []domain.PlayerStatRecord
	for _, rec := range extract.ParseTable(table, overviewSchema, 0) {
		players = append(players, playerFromRecord(rec, teamName))
	}
	return players
}

var playerIDRe = regexp.MustCompile(`/player/(\d+)/`)

// statOrder is the stats-table column order, starting at the third cell.
var statOrder = []string{
	"rating", "acs", "k", "d", "a", "kd_diff",
	"kast", "adr", "hs_percent", "fk", "fd", "fk_fd_diff",
}

// overviewSchema describes one per-team overview table row: the player
// link, the agent icon cell, then the twelve stat columns, each carrying
// both-sides, attack and defense spans.
var overviewSchema = buildOverviewSchema()

func buildOverviewSchema() []extract.ColumnRule {
	schema := []extract.ColumnRule{
		{Cell: 0, Field: "player", Kind: extract.RawText, Selector: "a div.text-of"},
		{Cell: 0, Field: "player_href", Kind: extract.RawText, Selector: "a", Attr: "href"},
		{Cell: 1, Field: "agents", Kind: extract.ImageList},
	}
	for i, key := range statOrder {
		cell := 2 + i
		schema = append(schema,
			extract.ColumnRule{Cell: cell, Field: key + "_both", Kind: extract.SideBoth},
			extract.ColumnRule{Cell: cell, Field: key + "_attack", Kind: extract.SideAttack},
			extract.ColumnRule{Cell: cell, Field: key + "_defense", Kind: extract.SideDefense},
		)
	}
	return schema
}

func playerFromRecord(rec extract.Record, teamName string) domain.PlayerStatRecord {
	p := domain.PlayerStatRecord{TeamName: teamName, PlayerName: rec["player"]}
	if m := playerIDRe.FindStringSubmatch(rec["player_href"]); m != nil {
		p.PlayerID = m[1]
	}
	p.Agents = extract.SplitList(rec["agents"])
	if len(p.Agents) > 0 {
		p.Agent = p.Agents[0]
	}
	p.AllSides = bundleFromRecord(rec, "both")
	p.Attack = bundleFromRecord(rec, "attack")
	p.Defense = bundleFromRecord(rec, "defense")
	return p
}

func bundleFromRecord(rec extract.Record, side string) domain.StatBundle {
	var b domain.StatBundle
	for _, key := range statOrder {
		setStat(&b, key, rec[key+"_"+side])
	}
	return b
}

func setStat(b *domain.StatBundle, key, value string) {
	switch key {
	case "rating":
		b.Rating = value
	case "acs":
		b.ACS = value
	case "k":
		b.Kills = value
	case "d":
		b.Deaths = value
	case "a":
		b.Assists = value
	case "kd_diff":
		b.KDDiff = value
	case "kast":
		b.KAST = value
	case "adr":
		b.ADR = value
	case "hs_percent":
		b.HSPercent = value
	case "fk":
		b.FirstKills = value
	case "fd":
		b.FirstDeaths = value
	case "fk_fd_diff":
		b.FKFDDiff = value
	}
}
