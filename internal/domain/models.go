package domain

import (
	"time"
)

type EventInfo struct {
	EventID   string
	Title     string
	Subtitle  string
	Dates     string
	Location  string
	PrizePool string
	URL       string
	ScrapedAt time.Time
}

type EventMeta struct {
	Name    string
	Stage   string
	DateUTC string
	Patch   string
}

type TeamRef struct {
	Name         string
	ScoreOverall int
}

type MatchRecord struct {
	MatchID          string
	MatchURL         string
	ScrapedAt        time.Time
	Event            EventMeta
	Team1            TeamRef
	Team2            TeamRef
	MatchFormat      string
	MapPicksBansNote string
	Maps             []MapRecord
	// OverallPlayerStats holds the "all maps" aggregate rows keyed by team name.
	OverallPlayerStats map[string][]PlayerStatRecord
}

type MapRecord struct {
	MapOrder       int
	MapID          string
	MapName        string
	Team1Score     int
	Team2Score     int
	WinnerTeamName string // team name or "Draw"
	Duration       string
	PickedBy       string // team name or "Decider"
	PlayerStats    map[string][]PlayerStatRecord
}

type PlayerStatRecord struct {
	TeamName   string
	PlayerID   string
	PlayerName string
	Agent      string   // primary agent
	Agents     []string // every agent seen for this row
	// Derived during normalization for aggregate rows: the distinct agents
	// a player used across the match's maps, and their display form.
	AgentCount   int
	AgentDisplay string

	AllSides StatBundle
	Attack   StatBundle
	Defense  StatBundle
}

// StatBundle carries the twelve stat columns as displayed on the page.
// Values stay strings until the store adapter coerces them to their
// declared numeric kinds.
type StatBundle struct {
	Rating      string
	ACS         string
	Kills       string
	Deaths      string
	Assists     string
	KDDiff      string
	KAST        string
	ADR         string
	HSPercent   string
	FirstKills  string
	FirstDeaths string
	FKFDDiff    string
}

// MatchSummary is one row of an event's match-list page.
type MatchSummary struct {
	MatchID   string
	MatchURL  string
	Team1     string
	Team2     string
	Score     string
	Score1    string
	Score2    string
	Stage     string
	Week      string
	Date      string
	Time      string
	Status    string
	Winner    string
	ScrapedAt time.Time
}

// PlayerEventStats is one row of the tournament-wide player stats table.
type PlayerEventStats struct {
	Player      string
	Team        string
	Agents      []string
	Rating      string
	ACS         string
	Kills       string
	Deaths      string
	Assists     string
	PlusMinus   string
	KAST        string
	ADR         string
	HSPercent   string
	FirstKills  string
	FirstDeaths string
	KDRatio     string
	ScrapedAt   time.Time
}

// AgentUsageRecord is a tournament-level aggregate, not tied to any match.
type AgentUsageRecord struct {
	AgentName        string
	TotalUtilization float64
	MapUtilizations  map[string]float64
	ScrapedAt        time.Time
}

type MapUsageRecord struct {
	MapName           string
	TimesPlayed       string
	AttackWinPercent  string
	DefenseWinPercent string
	ScrapedAt         time.Time
}

// TeamEconomyRecord holds one team's economy row for one map. The won
// counts keep the page's "N (M)" total/won shape.
type TeamEconomyRecord struct {
	MatchID    string
	MapName    string
	TeamName   string
	PistolWon  string
	EcoWon     string
	SemiEcoWon string
	SemiBuyWon string
	FullBuyWon string
}

// PlayerPerformanceRecord is one player's performance-tab row for one
// map: multikill rounds, clutches won, econ rating, plants and defuses.
type PlayerPerformanceRecord struct {
	MatchID    string
	MapName    string
	TeamName   string
	PlayerName string
	Agent      string
	Kills2K    int
	Kills3K    int
	Kills4K    int
	Kills5K    int
	Clutch1v1  int
	Clutch1v2  int
	Clutch1v3  int
	Clutch1v4  int
	Clutch1v5  int
	EconRating int
	Plants     int
	Defuses    int
}

// ScrapeSummary counts the outcome of one batch run.
type ScrapeSummary struct {
	RunID              string
	Attempted          int
	Succeeded          int
	PartiallyDefaulted int
	Failed             int
}
