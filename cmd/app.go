package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kapwire/kapwire/internal/bot"
	"github.com/kapwire/kapwire/internal/clock/system"
	"github.com/kapwire/kapwire/internal/compose"
	"github.com/kapwire/kapwire/internal/config"
	"github.com/kapwire/kapwire/internal/cooldown"
	"github.com/kapwire/kapwire/internal/extract"
	"github.com/kapwire/kapwire/internal/feed"
	"github.com/kapwire/kapwire/internal/hash/sha256"
	"github.com/kapwire/kapwire/internal/logging"
	"github.com/kapwire/kapwire/internal/poster/sim"
	"github.com/kapwire/kapwire/internal/poster/x"
	"github.com/kapwire/kapwire/internal/render"
	"github.com/kapwire/kapwire/internal/state"
)

// app holds the long-lived pieces shared by the run and watch commands.
// Per-pass components are assembled in runOnce so their logs carry the run id.
type app struct {
	cfg           config.Config
	logger        *zap.Logger
	renderer      feed.Renderer
	policy        extract.Policy
	hasher        feed.Hasher
	composer      compose.Composer
	store         *state.Store
	clock         feed.Clock
	dryRun        bool
	closeRenderer func()

	runMu sync.Mutex
}

// buildApp loads .env plus configuration and prepares the long-lived
// components: browser, state store, compiled extraction policy.
func buildApp(dryRun bool) (*app, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, err
	}

	policy, err := extract.NewPolicy(cfg.Feed)
	if err != nil {
		return nil, fmt.Errorf("build extraction policy: %w", err)
	}

	store := state.NewStore(cfg.State.Path, cfg.State.MaxPosted, logger.Named("state"))
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	renderer, closeRenderer, err := render.New(render.Config{
		URL:          cfg.Feed.URL,
		FilterTab:    cfg.Feed.FilterTab,
		RowSelector:  cfg.Render.RowSelector,
		MarkerHint:   cfg.Feed.Marker,
		UserAgent:    cfg.Render.UserAgent,
		Headless:     cfg.Render.Headless,
		NavTimeout:   cfg.Render.NavTimeout(),
		Settle:       cfg.Render.Settle(),
		DebugFile:    cfg.Render.DebugFile,
		SnapshotFile: cfg.Render.SnapshotFile,
	}, cfg.Render.Provider, logger.Named("render"))
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:           cfg,
		logger:        logger,
		renderer:      renderer,
		policy:        policy,
		hasher:        sha256.New(),
		composer:      compose.New(cfg.Post.PlatformLimit),
		store:         store,
		clock:         system.New(),
		dryRun:        dryRun,
		closeRenderer: closeRenderer,
	}, nil
}

// buildPoster selects the real X poster or the simulation stub. Missing
// credentials degrade to simulation rather than failing the run: extraction,
// dedup, and the cursor still advance.
func buildPoster(cfg config.PosterConfig, dryRun bool, logger *zap.Logger) (feed.Poster, error) {
	if dryRun {
		logger.Info("dry run requested, using simulation poster")
		return sim.New(logger.Named("sim")), nil
	}
	if !cfg.Complete() {
		logger.Warn("poster credentials missing, degrading to simulation")
		return sim.New(logger.Named("sim")), nil
	}
	poster, err := x.New(x.Config{
		APIKey:            cfg.APIKey,
		APIKeySecret:      cfg.APIKeySecret,
		AccessToken:       cfg.AccessToken,
		AccessTokenSecret: cfg.AccessTokenSecret,
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.Timeout(),
	}, logger.Named("poster"))
	if err != nil {
		return nil, fmt.Errorf("init poster: %w", err)
	}
	return poster, nil
}

// runOnce executes a single syndication pass under a fresh run id. Passes
// never overlap: one that starts while another is still in flight is skipped,
// so the state file always has exactly one writer.
func (a *app) runOnce(ctx context.Context) error {
	if !a.runMu.TryLock() {
		a.logger.Warn("previous pass still running, skipping")
		return nil
	}
	defer a.runMu.Unlock()

	logger := a.logger.With(zap.String("run_id", uuid.NewString()))

	poster, err := buildPoster(a.cfg.Poster, a.dryRun, logger)
	if err != nil {
		return err
	}

	b := bot.New(
		a.renderer,
		poster,
		extract.New(a.policy, a.hasher, logger.Named("extract")),
		a.composer,
		a.store,
		cooldown.New(a.store, a.clock, a.cfg.Post.Cooldown(), logger.Named("cooldown")),
		a.clock,
		bot.Config{
			MaxPerRun:     a.cfg.Post.MaxPerRun,
			RenderRetries: a.cfg.Post.RenderRetries,
			PostDelay:     a.cfg.Post.Delay(),
		},
		logger.Named("bot"),
	)

	logger.Info("run starting")
	if err := b.Run(ctx); err != nil {
		logger.Error("run failed", zap.Error(err))
		return err
	}
	return nil
}

// Close releases browser resources and flushes buffered log output.
func (a *app) Close() {
	a.closeRenderer()
	_ = a.logger.Sync()
}
