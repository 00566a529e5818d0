// Package normalize enforces the data-quality rules every downstream
// consumer relies on: typed defaults for missing fields, one canonical
// numeric coercion, recomputed winners, and the agent aggregation that
// must match between stored rows and query results.
package normalize

import (
	"fmt"
	"sort"
	"strings"

	"vlr-scraper/internal/constants"
	"vlr-scraper/internal/domain"
)

const (
	UnknownEvent = "Unknown Event"
	UnknownStage = "Unknown Stage"
	Unknown      = "Unknown"
	Draw         = "Draw"
	Decider      = "Decider"
)

// Normalize applies the consistency rules to a match record in place.
// It is idempotent: a second pass over already-normalized data changes
// nothing.
func Normalize(rec *domain.MatchRecord) {
	if rec == nil {
		return
	}

	rec.MatchID = String(rec.MatchID)
	rec.MatchURL = String(rec.MatchURL)
	normalizeEventMeta(&rec.Event)
	normalizeTeam(&rec.Team1, 1)
	normalizeTeam(&rec.Team2, 2)
	rec.MatchFormat = String(rec.MatchFormat)
	rec.MapPicksBansNote = String(rec.MapPicksBansNote)

	if rec.Maps == nil {
		rec.Maps = []domain.MapRecord{}
	}
	for i := range rec.Maps {
		normalizeMap(&rec.Maps[i], i, rec.Team1.Name, rec.Team2.Name)
	}

	if rec.OverallPlayerStats == nil {
		rec.OverallPlayerStats = map[string][]domain.PlayerStatRecord{}
	}
	for team, players := range rec.OverallPlayerStats {
		for i := range players {
			normalizePlayer(&players[i], team, i)
		}
		rec.OverallPlayerStats[team] = players
	}

	aggregateAgents(rec)
}

func normalizeEventMeta(m *domain.EventMeta) {
	if m.Name = String(m.Name); m.Name == "" {
		m.Name = UnknownEvent
	}
	if m.Stage = String(m.Stage); m.Stage == "" {
		m.Stage = UnknownStage
	}
	m.DateUTC = String(m.DateUTC)
	if m.Patch = String(m.Patch); m.Patch == "" {
		m.Patch = Unknown
	}
}

func normalizeTeam(t *domain.TeamRef, position int) {
	if t.Name = String(t.Name); t.Name == "" {
		t.Name = fmt.Sprintf("Team %d", position)
	}
	if t.ScoreOverall < 0 {
		t.ScoreOverall = 0
	}
}

func normalizeMap(m *domain.MapRecord, index int, team1, team2 string) {
	if m.MapOrder <= 0 {
		m.MapOrder = index + 1
	}
	m.MapID = String(m.MapID)
	if m.MapName = String(m.MapName); m.MapName == "" {
		m.MapName = fmt.Sprintf("Map %d", index+1)
	}
	if m.Team1Score < 0 {
		m.Team1Score = 0
	}
	if m.Team2Score < 0 {
		m.Team2Score = 0
	}
	// The winner is always recomputed from the scores, never taken
	// from page text.
	m.WinnerTeamName = DeriveWinner(m.Team1Score, m.Team2Score, team1, team2)
	m.Duration = String(m.Duration)
	if m.PickedBy = String(m.PickedBy); m.PickedBy == "" {
		m.PickedBy = Decider
	}
	if m.PlayerStats == nil {
		m.PlayerStats = map[string][]domain.PlayerStatRecord{}
	}
	for team, players := range m.PlayerStats {
		for i := range players {
			normalizePlayer(&players[i], team, i)
		}
		m.PlayerStats[team] = players
	}
}

// DeriveWinner compares two map scores and returns the winning team's
// name, or "Draw" on a tie.
func DeriveWinner(score1, score2 int, team1, team2 string) string {
	switch {
	case score1 > score2:
		return team1
	case score2 > score1:
		return team2
	default:
		return Draw
	}
}

func normalizePlayer(p *domain.PlayerStatRecord, team string, index int) {
	if p.TeamName = String(p.TeamName); p.TeamName == "" {
		p.TeamName = team
	}
	p.PlayerID = String(p.PlayerID)
	if p.PlayerName = String(p.PlayerName); p.PlayerName == "" {
		p.PlayerName = fmt.Sprintf("Player %d", index+1)
	}
	if p.Agent = String(p.Agent); p.Agent == "" {
		p.Agent = Unknown
	}
	p.Agents = DistinctAgents(append(p.Agents, p.Agent))
	normalizeBundle(&p.AllSides)
	normalizeBundle(&p.Attack)
	normalizeBundle(&p.Defense)
}

// normalizeBundle coerces every stat to its declared kind and writes it
// back in a canonical form, so repeated passes are stable.
func normalizeBundle(b *domain.StatBundle) {
	b.Rating = FormatFloat(Float(b.Rating))
	b.ACS = FormatFloat(Float(b.ACS))
	b.ADR = FormatFloat(Float(b.ADR))
	b.Kills = FormatInt(Int(b.Kills))
	b.Deaths = FormatInt(Int(b.Deaths))
	b.Assists = FormatInt(Int(b.Assists))
	b.FirstKills = FormatInt(Int(b.FirstKills))
	b.FirstDeaths = FormatInt(Int(b.FirstDeaths))
	b.KDDiff = String(b.KDDiff)
	b.KAST = String(b.KAST)
	b.HSPercent = String(b.HSPercent)
	b.FKFDDiff = String(b.FKFDDiff)
}

// aggregateAgents rebuilds every aggregate row's agent set from the
// per-map tables alone. A pre-existing agents field on the aggregate row
// is never trusted, but the row's own primary agent survives as long as
// it is a member of the rebuilt set.
func aggregateAgents(rec *domain.MatchRecord) {
	seen := map[string]map[string]struct{}{}
	for _, m := range rec.Maps {
		for team, players := range m.PlayerStats {
			for _, p := range players {
				key := playerKey(team, p.PlayerName)
				if seen[key] == nil {
					seen[key] = map[string]struct{}{}
				}
				for _, a := range p.Agents {
					if a != "" && a != Unknown {
						seen[key][a] = struct{}{}
					}
				}
			}
		}
	}

	for team, players := range rec.OverallPlayerStats {
		for i := range players {
			p := &players[i]
			agents := agentSet(seen[playerKey(team, p.PlayerName)])
			if len(agents) == 0 {
				agents = []string{p.Agent}
			}
			p.Agents = agents
			if !containsAgent(agents, p.Agent) {
				p.Agent = agents[0]
			}
			p.AgentCount = len(agents)
			p.AgentDisplay = Display(agents)
		}
		rec.OverallPlayerStats[team] = players
	}
}

// Display renders a sorted agent set for tabular output. Up to three
// names are shown in full; larger sets get a "(+K)" overflow suffix.
func Display(agents []string) string {
	if len(agents) <= constants.AgentDisplayCap {
		return strings.Join(agents, ", ")
	}
	shown := strings.Join(agents[:constants.AgentDisplayCap], ", ")
	return fmt.Sprintf("%s, (+%d)", shown, len(agents)-constants.AgentDisplayCap)
}

// DisplayCount inverts Display: it recovers the agent count from the
// rendered form.
func DisplayCount(display string) int {
	if display == "" {
		return 0
	}
	if head, tail, found := strings.Cut(display, ", (+"); found {
		extra := Int(strings.TrimSuffix(tail, ")"))
		return len(strings.Split(head, ", ")) + extra
	}
	return len(strings.Split(display, ", "))
}

func agentSet(set map[string]struct{}) []string {
	agents := make([]string, 0, len(set))
	for a := range set {
		agents = append(agents, a)
	}
	sort.Strings(agents)
	return agents
}

// DistinctAgents trims, dedupes, and sorts a list of agent names.
func DistinctAgents(agents []string) []string {
	set := map[string]struct{}{}
	for _, a := range agents {
		if a = String(a); a != "" {
			set[a] = struct{}{}
		}
	}
	return agentSet(set)
}

func containsAgent(agents []string, agent string) bool {
	for _, a := range agents {
		if a == agent {
			return true
		}
	}
	return false
}

func playerKey(team, player string) string {
	return team + "\x00" + player
}
