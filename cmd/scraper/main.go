package main

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"vlr-scraper/internal/config"
	fxmodules "vlr-scraper/internal/fx"
	"vlr-scraper/internal/service"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runJobs),
	).Run()
}

func runJobs(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	coordinator *service.Coordinator,
	export *service.ExportService,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer shutdowner.Shutdown()

				for i, job := range cfg.Jobs {
					result, err := coordinator.RunJob(ctx, job)
					if err != nil {
						logger.Error().Int("job", i).Err(err).Msg("job failed, continuing with next")
						continue
					}
					if job.Export {
						if err := export.Export(ctx, result); err != nil {
							logger.Error().Int("job", i).Err(err).Msg("export failed")
						}
					}
				}
				logger.Info().Int("jobs", len(cfg.Jobs)).Msg("all jobs processed")
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("scraper stopped")
			return nil
		},
	})
}
