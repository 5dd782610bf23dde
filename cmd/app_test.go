package cmd

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kapwire/kapwire/internal/clock/system"
	"github.com/kapwire/kapwire/internal/compose"
	"github.com/kapwire/kapwire/internal/config"
	"github.com/kapwire/kapwire/internal/extract"
	"github.com/kapwire/kapwire/internal/feed"
	"github.com/kapwire/kapwire/internal/hash/sha256"
	"github.com/kapwire/kapwire/internal/state"
)

type stubRenderer struct {
	blocks []feed.RawBlock
}

func (r *stubRenderer) Render(_ context.Context) ([]feed.RawBlock, error) {
	return r.blocks, nil
}

// blockingRenderer parks inside Render until released, so a test can hold one
// pass open while starting another.
type blockingRenderer struct {
	started chan struct{}
	release chan struct{}
	calls   int32
}

func (r *blockingRenderer) Render(_ context.Context) ([]feed.RawBlock, error) {
	atomic.AddInt32(&r.calls, 1)
	r.started <- struct{}{}
	<-r.release
	return nil, nil
}

func newTestApp(t *testing.T, logger *zap.Logger, renderer feed.Renderer) *app {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.State.Path = filepath.Join(t.TempDir(), "state.json")
	cfg.Post.RenderRetries = 1
	cfg.Post.DelaySeconds = 0

	policy, err := extract.NewPolicy(cfg.Feed)
	require.NoError(t, err)

	store := state.NewStore(cfg.State.Path, cfg.State.MaxPosted, logger)
	require.NoError(t, store.Load())

	return &app{
		cfg:           cfg,
		logger:        logger,
		renderer:      renderer,
		policy:        policy,
		hasher:        sha256.New(),
		composer:      compose.New(cfg.Post.PlatformLimit),
		store:         store,
		clock:         system.New(),
		closeRenderer: func() {},
	}
}

func TestRunOnce_SkipsOverlappingPass(t *testing.T) {
	t.Parallel()

	renderer := &blockingRenderer{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	a := newTestApp(t, zap.NewNop(), renderer)

	done := make(chan error, 1)
	go func() { done <- a.runOnce(context.Background()) }()
	<-renderer.started

	// The second pass must return immediately without rendering.
	require.NoError(t, a.runOnce(context.Background()))
	require.Equal(t, int32(1), atomic.LoadInt32(&renderer.calls))

	close(renderer.release)
	require.NoError(t, <-done)
}

func TestRunOnce_TagsEveryLogWithRunID(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	a := newTestApp(t, zap.New(core), &stubRenderer{blocks: []feed.RawBlock{{
		Index: 0,
		Text:  "KAP • TERA Şirket ortaklığı için yeni bir anlaşma imzaladı.",
	}}})

	require.NoError(t, a.runOnce(context.Background()))

	entries := logs.All()
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		require.Contains(t, entry.ContextMap(), "run_id", entry.Message)
	}
}

func TestRunOnce_SequentialPassesBothRun(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{}
	a := newTestApp(t, zap.NewNop(), renderer)

	require.NoError(t, a.runOnce(context.Background()))
	require.NoError(t, a.runOnce(context.Background()))
}
