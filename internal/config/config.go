package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath    string
	JobsFile  string
	ExportDir string
	LogLevel  string
	Jobs      []Job
}

// Job describes one scrape run against a single tournament event page.
type Job struct {
	EventURL        string `yaml:"event_url"`
	Matches         bool   `yaml:"matches"`
	PlayerStats     bool   `yaml:"player_stats"`
	MapsAgents      bool   `yaml:"maps_agents"`
	DetailedMatches bool   `yaml:"detailed_matches"`
	Economy         bool   `yaml:"economy"`
	Performance     bool   `yaml:"performance"`
	MaxMatches      int    `yaml:"max_matches"`
	Export          bool   `yaml:"export"`
}

type jobsFile struct {
	Jobs []Job `yaml:"jobs"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:    getEnv("DB_PATH", "vlr_data.db"),
		JobsFile:  getEnv("JOBS_FILE", "jobs.yaml"),
		ExportDir: getEnv("EXPORT_DIR", "exports"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, falling back to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	jobs, err := loadJobs(cfg.JobsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs file: %w", err)
	}
	cfg.Jobs = jobs

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("jobs_file", cfg.JobsFile).
		Str("export_dir", cfg.ExportDir).
		Str("log_level", level.String()).
		Int("jobs", len(cfg.Jobs)).
		Msg("configuration loaded")

	return cfg, nil
}

func loadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f jobsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	for i := range f.Jobs {
		if f.Jobs[i].EventURL == "" {
			return nil, fmt.Errorf("job %d is missing event_url", i)
		}
	}
	return f.Jobs, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
