package cooldown

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kapwire/kapwire/internal/state"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newTestManager(t *testing.T, backoff time.Duration) (*Manager, *state.Store, *fixedClock) {
	t.Helper()
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"), 100, zap.NewNop())
	require.NoError(t, store.Load())
	clock := &fixedClock{now: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
	return New(store, clock, backoff, zap.NewNop()), store, clock
}

func TestManager_InactiveByDefault(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t, 15*time.Minute)
	require.False(t, m.Active())
	require.Zero(t, m.Remaining())
}

func TestManager_TripOpensWindow(t *testing.T) {
	t.Parallel()

	m, store, clock := newTestManager(t, 15*time.Minute)
	m.Trip()

	require.True(t, m.Active())
	require.Equal(t, 15*time.Minute, m.Remaining())
	require.NotEmpty(t, store.CooldownUntil())

	clock.now = clock.now.Add(14 * time.Minute)
	require.True(t, m.Active())

	clock.now = clock.now.Add(2 * time.Minute)
	require.False(t, m.Active())
	require.Zero(t, m.Remaining())
}

func TestManager_UnparseableTimestampClears(t *testing.T) {
	t.Parallel()

	m, store, _ := newTestManager(t, 15*time.Minute)
	store.SetCooldownUntil("not-a-timestamp")

	require.False(t, m.Active())
	require.Empty(t, store.CooldownUntil())
}

func TestManager_TripWhileActiveExtendsWindow(t *testing.T) {
	t.Parallel()

	m, _, clock := newTestManager(t, 15*time.Minute)
	m.Trip()

	clock.now = clock.now.Add(10 * time.Minute)
	m.Trip()

	require.Equal(t, 15*time.Minute, m.Remaining())
}
