// Package cooldown tracks the global posting throttle window.
package cooldown

import (
	"time"

	"go.uber.org/zap"

	"github.com/kapwire/kapwire/internal/feed"
	"github.com/kapwire/kapwire/internal/state"
)

// Manager is a two-state machine over the persisted cooldown timestamp:
// READY, and COOLDOWN after a rate-limit signal. The transition back to
// READY is lazy, observed on the next Active check rather than by a timer.
type Manager struct {
	store   *state.Store
	clock   feed.Clock
	backoff time.Duration
	logger  *zap.Logger
}

// New constructs a Manager. backoff is the window opened by Trip.
func New(store *state.Store, clock feed.Clock, backoff time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		store:   store,
		clock:   clock,
		backoff: backoff,
		logger:  logger,
	}
}

// Active reports whether posting is currently suppressed. An unparseable
// persisted timestamp clears the window rather than wedging the bot.
func (m *Manager) Active() bool {
	raw := m.store.CooldownUntil()
	if raw == "" {
		return false
	}
	until, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		m.logger.Warn("clearing unparseable cooldown timestamp", zap.String("value", raw))
		m.store.SetCooldownUntil("")
		return false
	}
	return m.clock.Now().Before(until)
}

// Remaining returns how much of the window is left, zero when READY.
func (m *Manager) Remaining() time.Duration {
	raw := m.store.CooldownUntil()
	if raw == "" {
		return 0
	}
	until, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return 0
	}
	left := until.Sub(m.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Trip opens a new cooldown window from now.
func (m *Manager) Trip() {
	until := m.clock.Now().Add(m.backoff)
	m.store.SetCooldownUntil(until.Format(time.RFC3339))
	m.logger.Warn("cooldown activated", zap.Time("until", until))
}
