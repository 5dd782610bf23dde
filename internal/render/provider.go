package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kapwire/kapwire/internal/feed"
)

// New builds the configured renderer. The returned close function releases
// browser resources; it is a no-op for providers that hold none.
func New(cfg Config, provider string, logger *zap.Logger) (feed.Renderer, func(), error) {
	switch provider {
	case "chromedp":
		renderer, err := NewChromedp(cfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init chromedp renderer: %w", err)
		}
		return renderer, renderer.Close, nil
	case "static":
		return NewStatic(cfg, logger), func() {}, nil
	case "file":
		return NewFile(cfg, logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown render provider: %s", provider)
	}
}
