package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/kapwire/kapwire/internal/feed"
)

const tabClickTimeout = 5 * time.Second

// ChromedpRenderer snapshots the feed with headless Chrome. The page builds
// its rows client-side, so a plain GET sees none of them.
type ChromedpRenderer struct {
	cfg           Config
	logger        *zap.Logger
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromedp launches the browser and verifies it is usable.
func NewChromedp(cfg Config, logger *zap.Logger) (*ChromedpRenderer, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &ChromedpRenderer{
		cfg:           cfg,
		logger:        logger,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close tears down the browser and allocator contexts.
func (r *ChromedpRenderer) Close() {
	r.browserCancel()
	r.allocCancel()
}

// Render navigates to the feed, clicks the configured filter tab when
// present, and splits the settled DOM into blocks.
func (r *ChromedpRenderer) Render(ctx context.Context) ([]feed.RawBlock, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, r.cfg.NavTimeout)
	defer cancelTask()

	stopForward := context.AfterFunc(ctx, cancelTask)
	defer stopForward()

	navigate := chromedp.Tasks{
		network.Enable(),
		emulation.SetUserAgentOverride(r.cfg.UserAgent),
		chromedp.Navigate(r.cfg.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.cfg.Settle),
	}
	if err := chromedp.Run(taskCtx, navigate); err != nil {
		return nil, fmt.Errorf("navigate feed: %w", err)
	}

	r.clickFilterTab(taskCtx)

	var html string
	snapshot := chromedp.Tasks{
		chromedp.Evaluate("window.scrollTo(0, 400)", nil),
		chromedp.Sleep(r.cfg.Settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, snapshot); err != nil {
		return nil, fmt.Errorf("snapshot dom: %w", err)
	}

	dumpDebug(r.cfg.DebugFile, html, r.logger)
	return BlocksFromHTML(html, r.cfg.RowSelector, r.cfg.MarkerHint)
}

// clickFilterTab is best-effort: the tab moved around between page redesigns
// and the unfiltered feed still contains the disclosure rows.
func (r *ChromedpRenderer) clickFilterTab(ctx context.Context) {
	if r.cfg.FilterTab == "" {
		return
	}
	clickCtx, cancel := context.WithTimeout(ctx, tabClickTimeout)
	defer cancel()

	xpath := fmt.Sprintf(`//*[self::button or self::a][contains(., %q)]`, r.cfg.FilterTab)
	err := chromedp.Run(clickCtx,
		chromedp.Click(xpath, chromedp.BySearch),
		chromedp.Sleep(r.cfg.Settle),
	)
	if err != nil {
		r.logger.Debug("filter tab not clicked",
			zap.String("tab", r.cfg.FilterTab),
			zap.Error(err),
		)
	}
}
