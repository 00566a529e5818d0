package scraper

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventStatsRow renders one row of the event stats tab. The tab carries
// 21 columns; the ones this scraper does not read are filled with "-".
func eventStatsRow(player, team string, agents []string, stats map[int]string) string {
	var b strings.Builder
	b.WriteString(`<tr><td class="mod-player"><a href="/player/729/x">`)
	fmt.Fprintf(&b, `<div class="text-of">%s</div><div class="stats-player-country">%s</div></a></td>`, player, team)

	b.WriteString(`<td class="mod-agents">`)
	for _, a := range agents {
		fmt.Fprintf(&b, `<img src="/img/vlr/game/agents/%s.png" alt="%s">`, strings.ToLower(a), strings.ToLower(a))
	}
	b.WriteString(`</td>`)

	for i := 2; i < 21; i++ {
		v, ok := stats[i]
		if !ok {
			v = "-"
		}
		fmt.Fprintf(&b, `<td class="mod-color-sq"><div class="color-sq"><span>%s</span></div></td>`, v)
	}
	b.WriteString("</tr>")
	return b.String()
}

func TestPlayerStatsParse(t *testing.T) {
	row := eventStatsRow("TenZ", "SEN", []string{"jett", "raze"}, map[int]string{
		3: "1.18", 4: "245", 5: "1.29", 6: "74%", 7: "155",
		12: "26%", 16: "58", 17: "45", 18: "12", 19: "9", 20: "4",
	})
	html := `<html><body><table class="wf-table mod-stats mod-scroll">
		<tr><th>Player</th><th>Agents</th></tr>` + row + `</table></body></html>`

	s := NewPlayerStatsScraper(nil, zerolog.Nop())
	players := s.Parse(parseDoc(t, html))
	require.Len(t, players, 1)

	p := players[0]
	assert.Equal(t, "TenZ", p.Player)
	assert.Equal(t, "SEN", p.Team)
	assert.Equal(t, []string{"Jett", "Raze"}, p.Agents)
	assert.Equal(t, "1.18", p.Rating)
	assert.Equal(t, "245", p.ACS)
	assert.Equal(t, "1.29", p.KDRatio)
	assert.Equal(t, "74%", p.KAST)
	assert.Equal(t, "155", p.ADR)
	assert.Equal(t, "26%", p.HSPercent)
	assert.Equal(t, "58", p.Kills)
	assert.Equal(t, "45", p.Deaths)
	assert.Equal(t, "12", p.Assists)
	assert.Equal(t, "9", p.FirstKills)
	assert.Equal(t, "4", p.FirstDeaths)
	assert.Equal(t, "13", p.PlusMinus)
}

func TestPlayerStatsDropsIncompleteRows(t *testing.T) {
	html := `<html><body><table class="wf-table mod-stats mod-scroll">
		<tr><th>Player</th></tr>
		<tr><td>short row</td><td>x</td></tr>` +
		eventStatsRow("", "SEN", nil, nil) +
		`</table></body></html>`

	s := NewPlayerStatsScraper(nil, zerolog.Nop())
	assert.Empty(t, s.Parse(parseDoc(t, html)))
}

func TestPlayerStatsTableFallback(t *testing.T) {
	row := eventStatsRow("Derke", "FNC", []string{"chamber"}, map[int]string{3: "1.02", 16: "50", 17: "49"})
	html := `<html><body><table>
		<tr><th>Player</th></tr>` + row + `</table></body></html>`

	s := NewPlayerStatsScraper(nil, zerolog.Nop())
	players := s.Parse(parseDoc(t, html))
	require.Len(t, players, 1)
	assert.Equal(t, "Derke", players[0].Player)
	assert.Equal(t, "1", players[0].PlusMinus)
}

func TestPlayerStatsMissingTable(t *testing.T) {
	s := NewPlayerStatsScraper(nil, zerolog.Nop())
	assert.Empty(t, s.Parse(parseDoc(t, `<html><body><div>no table</div></body></html>`)))
}
