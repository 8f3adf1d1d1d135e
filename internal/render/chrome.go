package render

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/huddlestats/gridiron/pkg/errors"
)

const renderTimeout = 30 * time.Second

// ChromeFetcher renders pages in a headless browser before extracting their
// HTML, for sources whose content only exists after client-side scripts run.
// One browser process is shared across fetches; Close releases it.
type ChromeFetcher struct {
	source      string
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromeFetcher starts a headless browser allocator whose errors carry the
// given source tag.
func NewChromeFetcher(source string) *ChromeFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromeFetcher{
		source:      source,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

// FetchText implements Fetcher by navigating to the URL and returning the
// rendered document HTML.
func (f *ChromeFetcher) FetchText(ctx context.Context, url string) (string, error) {
	runCtx, cancel := chromedp.NewContext(f.allocCtx)
	defer cancel()

	runCtx, cancelTimeout := context.WithTimeout(runCtx, renderTimeout)
	defer cancelTimeout()

	// stop the render early if the caller's context ends first
	go func() {
		select {
		case <-ctx.Done():
			cancelTimeout()
		case <-runCtx.Done():
		}
	}()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", errors.NewAdapterError(f.source, 0, "rendering "+url, err)
	}
	return html, nil
}

// Close shuts down the browser process.
func (f *ChromeFetcher) Close() {
	f.allocCancel()
}
