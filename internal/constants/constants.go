package constants

import "time"

const (
	FetchTimeout    = 15 * time.Second
	RenderTimeout   = 30 * time.Second
	DatabaseTimeout = 5 * time.Second
)

// Delay bounds between successive page fetches. Purely to keep the request
// rate against the source site low, not needed for correctness.
const (
	FetchDelayMin = 1 * time.Second
	FetchDelayMax = 3 * time.Second
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	// AgentSampleFloor is the minimum number of per-map rows an agent needs
	// before it shows up in agent aggregates.
	AgentSampleFloor = 5

	// CloseGameRoundDiff is the score differential at or under which a map
	// counts as a close game.
	CloseGameRoundDiff = 3

	// AgentDisplayCap is how many agent names are spelled out before the
	// display string collapses the rest into a "(+K)" suffix.
	AgentDisplayCap = 3
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	BaseURL   = "https://www.vlr.gg"
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)
