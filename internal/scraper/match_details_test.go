package scraper

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func statCell(value string) string {
	return fmt.Sprintf(`<td class="mod-stat"><span class="stats-sq">`+
		`<span class="side mod-side mod-both">%s</span>`+
		`<span class="side mod-side mod-t">%s</span>`+
		`<span class="side mod-side mod-ct">%s</span>`+
		`</span></td>`, value, value, value)
}

func playerRow(id, name, agent string, stats [12]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<tr><td class="mod-player"><a href="/player/%s/%s">`+
		`<div class="text-of">%s</div></a></td>`, id, strings.ToLower(name), name)
	fmt.Fprintf(&b, `<td class="mod-agents"><span class="stats-sq mod-agent small">`+
		`<img src="/img/vlr/game/agents/%s.png" alt="%s"></span></td>`,
		strings.ToLower(agent), strings.ToLower(agent))
	for _, s := range stats {
		b.WriteString(statCell(s))
	}
	b.WriteString("</tr>")
	return b.String()
}

func overviewTable(rows ...string) string {
	return `<table class="wf-table-inset mod-overview"><tbody>` +
		strings.Join(rows, "") + `</tbody></table>`
}

func mapSection(gameID, nameSpan, duration string, score1, score2 int, tables string) string {
	return fmt.Sprintf(`<div class="vm-stats-game" data-game-id="%s">
		<div class="vm-stats-game-header">
			<div class="team"><div class="score">%d</div></div>
			<div class="map">
				<div style="font-weight: 700; text-align: center;"><span>%s</span></div>
				<div class="map-duration ge-text-light">%s</div>
			</div>
			<div class="team mod-right"><div class="score">%d</div></div>
		</div>%s</div>`, gameID, score1, nameSpan, duration, score2, tables)
}

var (
	tenzMap1 = [12]string{"1.25", "260", "20", "14", "5", "+6", "73%", "160", "25%", "3", "1", "+2"}
	tenzMap2 = [12]string{"1.10", "240", "18", "15", "4", "+3", "70%", "150", "22%", "2", "2", "0"}
	tenzMap3 = [12]string{"1.30", "275", "22", "12", "6", "+10", "78%", "168", "30%", "4", "1", "+3"}
	tenzAll  = [12]string{"1.22", "258", "60", "41", "15", "+19", "74%", "159", "26%", "9", "4", "+5"}
	derkeMap = [12]string{"1.05", "230", "17", "16", "3", "+1", "68%", "145", "20%", "2", "3", "-1"}
	derkeAll = [12]string{"1.02", "228", "50", "49", "10", "+1", "67%", "143", "21%", "6", "8", "-2"}
)

func matchPageFixture() string {
	header := `
	<div class="match-header-super">
		<a class="match-header-event" href="/event/2097/valorant-champions-2024">
			<div>
				<div>Valorant Champions 2024</div>
				<div class="match-header-event-series">Playoffs: Grand Final</div>
			</div>
		</a>
		<div class="match-header-date">
			<div class="moment-tz-convert" data-utc-ts="2024-08-25 12:00:00">Sunday, August 25th</div>
			<div style="font-style: italic;">Patch 9.01</div>
		</div>
	</div>
	<div class="match-header-vs">
		<a class="match-header-link wf-link-hover mod-1" href="/team/2/sentinels">
			<div class="match-header-link-name mod-1"><div class="wf-title-med">Sentinels</div></div>
		</a>
		<div class="match-header-vs-score">
			<div class="js-spoiler"><span class="match-header-vs-score-winner">2</span><span>:</span><span class="match-header-vs-score-loser">1</span></div>
			<div class="match-header-vs-note">Final</div>
			<div class="match-header-vs-note">Bo3</div>
		</div>
		<a class="match-header-link wf-link-hover mod-2" href="/team/3/fnatic">
			<div class="match-header-link-name mod-2"><div class="wf-title-med">Fnatic</div></div>
		</a>
	</div>
	<div class="match-header-note">SEN ban Bind; FNC ban Haven; SEN pick Ascent; FNC pick Lotus; Sunset remains</div>`

	all := `<div class="vm-stats-game mod-active" data-game-id="all">` +
		overviewTable(playerRow("729", "TenZ", "jett", tenzAll)) +
		overviewTable(playerRow("7378", "Derke", "chamber", derkeAll)) +
		`</div>`

	map1 := mapSection("170001", `Ascent <span class="picked mod-1">PICK</span>`, "44:30", 13, 11,
		overviewTable(playerRow("729", "TenZ", "jett", tenzMap1))+
			overviewTable(playerRow("7378", "Derke", "chamber", derkeMap)))
	map2 := mapSection("170002", `Lotus <span class="picked mod-2">PICK</span>`, "51:02", 10, 13,
		overviewTable(playerRow("729", "TenZ", "raze", tenzMap2))+
			overviewTable(playerRow("7378", "Derke", "chamber", derkeMap)))
	map3 := mapSection("170003", `Sunset`, "39:47", 13, 8,
		overviewTable(playerRow("729", "TenZ", "jett", tenzMap3))+
			overviewTable(playerRow("7378", "Derke", "chamber", derkeMap)))

	return `<html><body>` + header +
		`<div class="vm-stats-container">` + all + map1 + map2 + map3 + `</div>` +
		`</body></html>`
}

func TestAssembleHeader(t *testing.T) {
	s := NewMatchDetailsScraper(nil, zerolog.Nop())
	rec, err := s.Assemble(parseDoc(t, matchPageFixture()), "https://www.vlr.gg/378662/sentinels-vs-fnatic")
	require.NoError(t, err)

	assert.Equal(t, "378662", rec.MatchID)
	assert.Equal(t, "Valorant Champions 2024", rec.Event.Name)
	assert.Equal(t, "Playoffs: Grand Final", rec.Event.Stage)
	assert.Equal(t, "2024-08-25 12:00:00", rec.Event.DateUTC)
	assert.Equal(t, "Patch 9.01", rec.Event.Patch)
	assert.Equal(t, "Sentinels", rec.Team1.Name)
	assert.Equal(t, "Fnatic", rec.Team2.Name)
	assert.Equal(t, 2, rec.Team1.ScoreOverall)
	assert.Equal(t, 1, rec.Team2.ScoreOverall)
	assert.Equal(t, "Bo3", rec.MatchFormat)
	assert.Contains(t, rec.MapPicksBansNote, "SEN ban Bind")
}

func TestAssembleMaps(t *testing.T) {
	s := NewMatchDetailsScraper(nil, zerolog.Nop())
	rec, err := s.Assemble(parseDoc(t, matchPageFixture()), "https://www.vlr.gg/378662/sentinels-vs-fnatic")
	require.NoError(t, err)
	require.Len(t, rec.Maps, 3)

	ascent := rec.Maps[0]
	assert.Equal(t, 1, ascent.MapOrder)
	assert.Equal(t, "170001", ascent.MapID)
	assert.Equal(t, "Ascent", ascent.MapName, "pick marker text must be stripped")
	assert.Equal(t, "44:30", ascent.Duration)
	assert.Equal(t, "Sentinels", ascent.PickedBy)
	assert.Equal(t, 13, ascent.Team1Score)
	assert.Equal(t, 11, ascent.Team2Score)
	assert.Equal(t, "Sentinels", ascent.WinnerTeamName)

	lotus := rec.Maps[1]
	assert.Equal(t, "Lotus", lotus.MapName)
	assert.Equal(t, "Fnatic", lotus.PickedBy)
	assert.Equal(t, "Fnatic", lotus.WinnerTeamName)

	sunset := rec.Maps[2]
	assert.Equal(t, "Sunset", sunset.MapName)
	assert.Equal(t, "Decider", sunset.PickedBy, "no pick marker means the decider")
	assert.Equal(t, "Sentinels", sunset.WinnerTeamName)
}

func TestAssemblePlayerStats(t *testing.T) {
	s := NewMatchDetailsScraper(nil, zerolog.Nop())
	rec, err := s.Assemble(parseDoc(t, matchPageFixture()), "https://www.vlr.gg/378662/sentinels-vs-fnatic")
	require.NoError(t, err)

	sen := rec.Maps[0].PlayerStats["Sentinels"]
	require.Len(t, sen, 1)
	tenz := sen[0]

	assert.Equal(t, "729", tenz.PlayerID)
	assert.Equal(t, "TenZ", tenz.PlayerName)
	assert.Equal(t, "Jett", tenz.Agent)
	assert.Equal(t, "1.25", tenz.AllSides.Rating)
	assert.Equal(t, "260", tenz.AllSides.ACS)
	assert.Equal(t, "20", tenz.AllSides.Kills)
	assert.Equal(t, "14", tenz.AllSides.Deaths)
	assert.Equal(t, "5", tenz.AllSides.Assists)
	assert.Equal(t, "+6", tenz.AllSides.KDDiff)
	assert.Equal(t, "73%", tenz.AllSides.KAST)
	assert.Equal(t, "160", tenz.AllSides.ADR)
	assert.Equal(t, "25%", tenz.AllSides.HSPercent)
	assert.Equal(t, "3", tenz.AllSides.FirstKills)
	assert.Equal(t, "1", tenz.AllSides.FirstDeaths)
	assert.Equal(t, "+2", tenz.AllSides.FKFDDiff)
	assert.Equal(t, "1.25", tenz.Attack.Rating)
	assert.Equal(t, "1.25", tenz.Defense.Rating)

	fnc := rec.Maps[1].PlayerStats["Fnatic"]
	require.Len(t, fnc, 1)
	assert.Equal(t, "Chamber", fnc[0].Agent)
}

func TestAssembleAggregateAgents(t *testing.T) {
	s := NewMatchDetailsScraper(nil, zerolog.Nop())
	rec, err := s.Assemble(parseDoc(t, matchPageFixture()), "https://www.vlr.gg/378662/sentinels-vs-fnatic")
	require.NoError(t, err)

	sen := rec.OverallPlayerStats["Sentinels"]
	require.Len(t, sen, 1)
	tenz := sen[0]
	assert.Equal(t, []string{"Jett", "Raze"}, tenz.Agents,
		"aggregate agents come from the per-map rows")
	assert.Equal(t, 2, tenz.AgentCount)
	assert.Equal(t, "Jett, Raze", tenz.AgentDisplay)
	assert.Equal(t, "1.22", tenz.AllSides.Rating)

	fnc := rec.OverallPlayerStats["Fnatic"]
	require.Len(t, fnc, 1)
	assert.Equal(t, "Chamber", fnc[0].AgentDisplay)
	assert.Equal(t, 1, fnc[0].AgentCount)
}

func TestAssembleNoRecognizableData(t *testing.T) {
	s := NewMatchDetailsScraper(nil, zerolog.Nop())
	_, err := s.Assemble(parseDoc(t, `<html><body><div class="wf-card">nothing here</div></body></html>`), "https://www.vlr.gg/1/x")
	assert.ErrorIs(t, err, ErrNoMatchData)
}

func TestAssembleMissingHeaderFallsBackToPlaceholders(t *testing.T) {
	html := `<html><body><div class="vm-stats-container">` +
		mapSection("9", "Bind", "40:00", 13, 5,
			overviewTable(playerRow("1", "Alpha", "sova", tenzMap1))+
				overviewTable(playerRow("2", "Beta", "omen", derkeMap))) +
		`</div></body></html>`

	s := NewMatchDetailsScraper(nil, zerolog.Nop())
	rec, err := s.Assemble(parseDoc(t, html), "https://www.vlr.gg/42/a-vs-b")
	require.NoError(t, err)

	assert.Equal(t, "Team 1", rec.Team1.Name)
	assert.Equal(t, "Team 2", rec.Team2.Name)
	assert.Equal(t, "Unknown Event", rec.Event.Name)
	assert.Equal(t, "Unknown Stage", rec.Event.Stage)
	require.Len(t, rec.Maps, 1)
	assert.Equal(t, "Team 1", rec.Maps[0].WinnerTeamName)
}

func TestAssembleDropsNamelessPlayerRows(t *testing.T) {
	nameless := `<tr><td class="mod-player"><a href="/player/9/x"><div class="text-of"> </div></a></td></tr>`
	html := `<html><body><div class="vm-stats-container">` +
		mapSection("5", "Haven", "42:00", 13, 7,
			overviewTable(playerRow("1", "Alpha", "sova", tenzMap1), nameless)+
				overviewTable(playerRow("2", "Beta", "omen", derkeMap))) +
		`</div></body></html>`

	s := NewMatchDetailsScraper(nil, zerolog.Nop())
	rec, err := s.Assemble(parseDoc(t, html), "https://www.vlr.gg/42/a-vs-b")
	require.NoError(t, err)
	require.Len(t, rec.Maps, 1)
	assert.Len(t, rec.Maps[0].PlayerStats["Team 1"], 1)
}
