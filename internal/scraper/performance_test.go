package scraper

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// performanceRow renders one player row of the performance grid. Count
// cells wrap the number in a stats-sq div trailed by popover markup,
// the way the live tab does.
func performanceRow(player, team, agent string, counts [12]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<tr><td><div class="team"><div>%s <div class="team-tag">%s</div></div></div></td>`, player, team)
	fmt.Fprintf(&b, `<td><img src="/img/vlr/game/agents/%s.png" alt="%s"></td>`, strings.ToLower(agent), strings.ToLower(agent))
	for _, c := range counts {
		fmt.Fprintf(&b, `<td><div class="stats-sq">%s<div class="tooltip">round details</div></div></td>`, c)
	}
	b.WriteString("</tr>")
	return b.String()
}

func performanceTable(rows ...string) string {
	return `<table class="wf-table-inset">
		<tr><th></th><th></th><th>2K</th><th>3K</th><th>4K</th><th>5K</th>
		<th>1v1</th><th>1v2</th><th>1v3</th><th>1v4</th><th>1v5</th>
		<th>ECON</th><th>PL</th><th>DE</th></tr>` +
		strings.Join(rows, "") + `</table>`
}

func TestPerformanceParse(t *testing.T) {
	html := `<html><body>` + performanceTable(
		performanceRow("TenZ", "SEN", "jett", [12]string{"3", "1", "1", "0", "2", "1", "0", "0", "0", "72", "2", "1"}),
		performanceRow("Derke", "FNC", "chamber", [12]string{"2", "0", "0", "0", "1", "0", "1", "0", "0", "65", "0", "3"}),
	) + `</body></html>`

	s := NewPerformanceScraper(nil, zerolog.Nop())
	rows := s.Parse(parseDoc(t, html), "378662", "Ascent")
	require.Len(t, rows, 2)

	tenz := rows[0]
	assert.Equal(t, "378662", tenz.MatchID)
	assert.Equal(t, "Ascent", tenz.MapName)
	assert.Equal(t, "TenZ", tenz.PlayerName, "team tag text must not leak into the player name")
	assert.Equal(t, "SEN", tenz.TeamName)
	assert.Equal(t, "Jett", tenz.Agent)
	assert.Equal(t, 3, tenz.Kills2K)
	assert.Equal(t, 1, tenz.Kills3K)
	assert.Equal(t, 1, tenz.Kills4K)
	assert.Equal(t, 0, tenz.Kills5K)
	assert.Equal(t, 2, tenz.Clutch1v1)
	assert.Equal(t, 1, tenz.Clutch1v2)
	assert.Equal(t, 0, tenz.Clutch1v5)
	assert.Equal(t, 72, tenz.EconRating)
	assert.Equal(t, 2, tenz.Plants)
	assert.Equal(t, 1, tenz.Defuses)

	derke := rows[1]
	assert.Equal(t, "Derke", derke.PlayerName)
	assert.Equal(t, "FNC", derke.TeamName)
	assert.Equal(t, 65, derke.EconRating)
}

func TestPerformanceParseDashCountsAsZero(t *testing.T) {
	html := `<html><body>` + performanceTable(
		performanceRow("Zyppan", "NAVI", "raze", [12]string{"-", "-", "-", "-", "-", "-", "-", "-", "-", "58", "1", "-"}),
	) + `</body></html>`

	s := NewPerformanceScraper(nil, zerolog.Nop())
	rows := s.Parse(parseDoc(t, html), "1", "Bind")
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].Kills2K)
	assert.Equal(t, 0, rows[0].Clutch1v1)
	assert.Equal(t, 0, rows[0].Defuses)
	assert.Equal(t, 58, rows[0].EconRating)
}

func TestPerformanceParseNoTable(t *testing.T) {
	s := NewPerformanceScraper(nil, zerolog.Nop())
	assert.Empty(t, s.Parse(parseDoc(t, `<html><body><table><tr><th>Player</th></tr></table></body></html>`), "1", "Bind"))
}

func TestPerformanceSkipsOtherTables(t *testing.T) {
	html := `<html><body>
	<table><tr><th>Pistol Won</th><th>Eco</th></tr><tr><td>SEN</td><td>2</td></tr></table>
	` + performanceTable(
		performanceRow("TenZ", "SEN", "jett", [12]string{"1", "0", "0", "0", "0", "0", "0", "0", "0", "70", "1", "0"}),
	) + `</body></html>`

	s := NewPerformanceScraper(nil, zerolog.Nop())
	rows := s.Parse(parseDoc(t, html), "378662", "Ascent")
	require.Len(t, rows, 1)
	assert.Equal(t, "TenZ", rows[0].PlayerName)
}

func TestPerformanceDropsRowsWithoutPlayerCell(t *testing.T) {
	html := `<html><body>` + performanceTable(
		`<tr><td>totals</td><td></td><td>9</td></tr>`,
		performanceRow("TenZ", "SEN", "jett", [12]string{"1", "0", "0", "0", "0", "0", "0", "0", "0", "70", "1", "0"}),
	) + `</body></html>`

	s := NewPerformanceScraper(nil, zerolog.Nop())
	rows := s.Parse(parseDoc(t, html), "378662", "Ascent")
	require.Len(t, rows, 1)
	assert.Equal(t, "TenZ", rows[0].PlayerName)
}
