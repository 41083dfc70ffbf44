package portal

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// BrowserConfig configures one isolated Chrome instance. A fresh instance
// is created per account so that no login or mode state leaks between
// accounts.
type BrowserConfig struct {
	Headless    bool
	DownloadDir string
	UserAgent   string
}

// NewBrowser starts a Chrome instance and returns a chromedp context
// rooted in it. The returned cancel tears down the whole browser and must
// be deferred by the caller.
func NewBrowser(parent context.Context, cfg BrowserConfig) (context.Context, context.CancelFunc, error) {
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(ua),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}

	// Route downloads into the watcher's directory.
	err := chromedp.Run(ctx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(cfg.DownloadDir).
			WithEventsEnabled(true),
	)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("starting browser: %w", err)
	}

	return ctx, cancel, nil
}
