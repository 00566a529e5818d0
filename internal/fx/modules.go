package fx

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"vlr-scraper/internal/config"
	"vlr-scraper/internal/database"
	"vlr-scraper/internal/logger"
	"vlr-scraper/internal/repository"
	"vlr-scraper/internal/scraper"
	"vlr-scraper/internal/service"
)

// Event-tab pages are static HTML, so the plain HTTP fetcher serves
// them. Match pages load their stats tables with JavaScript and go
// through the rendering fetcher instead.

func provideEventScraper(f *scraper.HTTPFetcher, log zerolog.Logger) *scraper.EventScraper {
	return scraper.NewEventScraper(f, log)
}

func provideMatchListScraper(f *scraper.HTTPFetcher, log zerolog.Logger) *scraper.MatchListScraper {
	return scraper.NewMatchListScraper(f, log)
}

func providePlayerStatsScraper(f *scraper.HTTPFetcher, log zerolog.Logger) *scraper.PlayerStatsScraper {
	return scraper.NewPlayerStatsScraper(f, log)
}

func provideMapsAgentsScraper(f *scraper.HTTPFetcher, log zerolog.Logger) *scraper.MapsAgentsScraper {
	return scraper.NewMapsAgentsScraper(f, log)
}

func provideMatchDetailsScraper(f *scraper.BrowserFetcher, log zerolog.Logger) *scraper.MatchDetailsScraper {
	return scraper.NewMatchDetailsScraper(f, log)
}

func provideEconomyScraper(f *scraper.HTTPFetcher, log zerolog.Logger) *scraper.EconomyScraper {
	return scraper.NewEconomyScraper(f, log)
}

func providePerformanceScraper(f *scraper.HTTPFetcher, log zerolog.Logger) *scraper.PerformanceScraper {
	return scraper.NewPerformanceScraper(f, log)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewEventRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewAnalyticsRepository),
	// fetchers
	fx.Provide(scraper.NewHTTPFetcher),
	fx.Provide(scraper.NewBrowserFetcher),
	// scrapers
	fx.Provide(provideEventScraper),
	fx.Provide(provideMatchListScraper),
	fx.Provide(providePlayerStatsScraper),
	fx.Provide(provideMapsAgentsScraper),
	fx.Provide(provideMatchDetailsScraper),
	fx.Provide(provideEconomyScraper),
	fx.Provide(providePerformanceScraper),
	// svc
	fx.Provide(service.NewCoordinator),
	fx.Provide(service.NewExportService),
)
