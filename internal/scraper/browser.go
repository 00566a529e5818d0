package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"vlr-scraper/internal/constants"
)

// BrowserFetcher renders pages in a headless browser before parsing.
// Match pages load their stats tables with JavaScript, so the plain
// HTTP fetcher sees empty tables there.
type BrowserFetcher struct {
	logger zerolog.Logger
}

func NewBrowserFetcher(logger zerolog.Logger) *BrowserFetcher {
	return &BrowserFetcher{logger: logger}
}

func (f *BrowserFetcher) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RenderTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(constants.UserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`table.wf-table-inset.mod-overview`, chromedp.ByQuery),
		// Grace time for any final rendering after the tables appear.
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		// The wait fails on pages without stats tables; fall back to
		// whatever rendered before giving up entirely.
		f.logger.Warn().Str("url", url).Err(err).Msg("render wait failed, retrying without table wait")
		err = chromedp.Run(browserCtx,
			chromedp.Navigate(url),
			chromedp.Sleep(2*time.Second),
			chromedp.OuterHTML("html", &html),
		)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", url, err)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}
