// Package bot composes the full syndication pipeline for one run.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kapwire/kapwire/internal/compose"
	"github.com/kapwire/kapwire/internal/cooldown"
	"github.com/kapwire/kapwire/internal/extract"
	"github.com/kapwire/kapwire/internal/feed"
	"github.com/kapwire/kapwire/internal/state"
)

// maxPostJitter is added on top of the paced inter-post delay so runs do not
// post on a metronome.
const maxPostJitter = 500 * time.Millisecond

// Config controls Bot behavior.
type Config struct {
	MaxPerRun     int
	RenderRetries int
	PostDelay     time.Duration
}

// Bot runs the per-invocation pipeline: cooldown gate, snapshot, extract,
// delta, compose, post, state updates.
type Bot struct {
	renderer  feed.Renderer
	poster    feed.Poster
	extractor *extract.Extractor
	composer  compose.Composer
	store     *state.Store
	cooldown  *cooldown.Manager
	clock     feed.Clock
	cfg       Config
	retry     retryPolicy
	pace      *rate.Limiter
	logger    *zap.Logger
}

// New constructs a Bot.
func New(
	renderer feed.Renderer,
	poster feed.Poster,
	extractor *extract.Extractor,
	composer compose.Composer,
	store *state.Store,
	cd *cooldown.Manager,
	clock feed.Clock,
	cfg Config,
	logger *zap.Logger,
) *Bot {
	every := rate.Inf
	if cfg.PostDelay > 0 {
		every = rate.Every(cfg.PostDelay)
	}
	return &Bot{
		renderer:  renderer,
		poster:    poster,
		extractor: extractor,
		composer:  composer,
		store:     store,
		cooldown:  cd,
		clock:     clock,
		cfg:       cfg,
		retry:     newRetryPolicy(cfg.RenderRetries),
		pace:      rate.NewLimiter(every, 1),
		logger:    logger,
	}
}

// Run executes one syndication pass. It returns an error only for faults
// worth a non-zero exit; "nothing new", "in cooldown", and renderer failure
// after retries all end the run cleanly.
func (b *Bot) Run(ctx context.Context) error {
	if b.cooldown.Active() {
		b.logger.Info("in cooldown, skipping run",
			zap.Duration("remaining", b.cooldown.Remaining()),
		)
		return nil
	}

	blocks, err := b.renderSnapshot(ctx)
	if err != nil {
		b.logger.Warn("snapshot failed, ending run without posts", zap.Error(err))
		return nil
	}

	items := b.extractor.Extract(blocks)
	if len(items) == 0 {
		b.logger.Info("no items extracted", zap.Int("blocks", len(blocks)))
		return nil
	}

	candidates := b.store.Delta(items)
	if len(candidates) > b.cfg.MaxPerRun {
		b.logger.Info("capping candidates",
			zap.Int("candidates", len(candidates)),
			zap.Int("max_per_run", b.cfg.MaxPerRun),
		)
		candidates = candidates[:b.cfg.MaxPerRun]
	}

	posted := b.postCandidates(ctx, candidates)

	// The cursor moves to the newest observed item no matter what happened
	// while posting; the posted set alone guards against repeats.
	b.store.SetLastID(items[0].ID)
	total := b.store.BumpDaily(b.clock.Now().Format("2006-01-02"), posted)
	if err := b.store.Save(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	b.logger.Info("run finished",
		zap.Int("extracted", len(items)),
		zap.Int("candidates", len(candidates)),
		zap.Int("posted", posted),
		zap.Int("posted_today", total),
	)
	return nil
}

// postCandidates walks the oldest-first candidates, posting each and saving
// state after every success so a crash loses at most the in-flight item.
func (b *Bot) postCandidates(ctx context.Context, candidates []feed.NewsItem) int {
	posted := 0
	for _, item := range candidates {
		text, ok := b.composer.Compose(item.Codes, item.Content)
		if !ok {
			b.logger.Warn("empty composed post, skipping item",
				zap.String("id", item.ID),
				zap.String("raw", item.Raw),
			)
			continue
		}
		if b.cooldown.Active() {
			break
		}
		if err := b.pace.Wait(ctx); err != nil {
			b.logger.Warn("post pacing interrupted", zap.Error(err))
			break
		}
		if posted > 0 {
			time.Sleep(randomJitter(maxPostJitter))
		}

		err := b.poster.Post(ctx, text)
		switch {
		case errors.Is(err, feed.ErrRateLimited):
			b.cooldown.Trip()
			if saveErr := b.store.Save(); saveErr != nil {
				b.logger.Error("save state after cooldown", zap.Error(saveErr))
			}
			return posted
		case err != nil:
			b.logger.Error("post failed, skipping item",
				zap.String("id", item.ID),
				zap.String("raw", item.Raw),
				zap.Error(err),
			)
			continue
		}

		b.store.MarkPosted(item.ID)
		if saveErr := b.store.Save(); saveErr != nil {
			b.logger.Error("save state after post", zap.Error(saveErr))
		}
		posted++
		b.logger.Info("posted",
			zap.String("id", item.ID),
			zap.Strings("codes", item.Codes),
			zap.Int("chars", utf8.RuneCountInString(text)),
		)
	}
	return posted
}

func (b *Bot) renderSnapshot(ctx context.Context) ([]feed.RawBlock, error) {
	var lastErr error
	for attempt := 0; attempt < b.retry.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := b.retry.backoff(attempt - 1)
			b.logger.Warn("snapshot retry",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", delay),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("render wait canceled: %w", ctx.Err())
			}
		}

		blocks, err := b.renderer.Render(ctx)
		if err == nil {
			return blocks, nil
		}
		lastErr = err
		if !b.retry.shouldRetry(err, attempt+1) {
			break
		}
	}
	return nil, lastErr
}
