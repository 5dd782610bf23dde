// Package sim contains the no-network simulation poster.
package sim

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Poster logs and records would-be posts. It substitutes the real poster
// when credentials are missing or a dry run was requested, so extraction,
// composition, and state advancement still exercise the full pipeline.
type Poster struct {
	logger *zap.Logger

	mu    sync.Mutex
	posts []string
}

// New returns a simulation Poster.
func New(logger *zap.Logger) *Poster {
	return &Poster{logger: logger}
}

// Post records the text and succeeds.
func (p *Poster) Post(_ context.Context, text string) error {
	p.mu.Lock()
	p.posts = append(p.posts, text)
	p.mu.Unlock()
	p.logger.Info("SIMULATION post", zap.String("text", text))
	return nil
}

// Posts returns the recorded texts.
func (p *Poster) Posts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.posts))
	copy(out, p.posts)
	return out
}
