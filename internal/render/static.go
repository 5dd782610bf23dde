package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/kapwire/kapwire/internal/feed"
)

// StaticRenderer fetches the feed with a plain HTTP GET via colly. It only
// works while the source serves its rows server-side; the chromedp provider
// is the default for the JS-built page.
type StaticRenderer struct {
	cfg    Config
	logger *zap.Logger
}

// NewStatic creates a StaticRenderer.
func NewStatic(cfg Config, logger *zap.Logger) *StaticRenderer {
	return &StaticRenderer{cfg: cfg, logger: logger}
}

// Render fetches the page body and splits it into blocks.
func (r *StaticRenderer) Render(ctx context.Context) ([]feed.RawBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render canceled: %w", err)
	}

	collector := colly.NewCollector(colly.UserAgent(r.cfg.UserAgent))
	collector.SetRequestTimeout(r.cfg.NavTimeout)

	var (
		html     string
		fetchErr error
	)
	collector.OnResponse(func(resp *colly.Response) {
		html = string(resp.Body)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(r.cfg.URL); err != nil {
		return nil, fmt.Errorf("visit feed: %w", err)
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("fetch feed: %w", fetchErr)
	}
	if html == "" {
		return nil, errors.New("empty feed response")
	}

	dumpDebug(r.cfg.DebugFile, html, r.logger)
	return BlocksFromHTML(html, r.cfg.RowSelector, r.cfg.MarkerHint)
}
