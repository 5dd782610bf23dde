// Package state persists the bot's cursor, posted-id history, and cooldown
// window in a single JSON file.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// State is the on-disk shape. Writes are synchronous and last-write-wins;
// the file is never shared with a concurrently running instance.
type State struct {
	LastID        string   `json:"last_id"`
	Posted        []string `json:"posted"`
	CooldownUntil string   `json:"cooldown_until,omitempty"`
	CountToday    int      `json:"count_today"`
	Day           string   `json:"day,omitempty"`
}

// Store owns the in-memory State for the duration of one process and writes
// it back to disk after every mutation worth surviving a crash.
type Store struct {
	path      string
	maxPosted int
	logger    *zap.Logger

	state     State
	postedSet map[string]struct{}
}

// NewStore creates a Store bound to the given file path. Call Load before use.
func NewStore(path string, maxPosted int, logger *zap.Logger) *Store {
	return &Store{
		path:      path,
		maxPosted: maxPosted,
		logger:    logger,
		postedSet: make(map[string]struct{}),
	}
}

// Load reads the state file, upgrading the legacy bare-array shape and
// falling back to a clean default when the file is missing or corrupt.
// A corrupt file is not fatal: the bot re-learns its cursor on the next run.
func (s *Store) Load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.reset()
			return nil
		}
		return fmt.Errorf("read state file: %w", err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		// Early deployments persisted a bare JSON array of posted ids.
		var legacy []string
		if legacyErr := json.Unmarshal(raw, &legacy); legacyErr == nil {
			s.logger.Info("upgraded legacy state shape",
				zap.String("path", s.path),
				zap.Int("posted", len(legacy)),
			)
			s.install(State{Posted: legacy})
			return nil
		}
		s.logger.Warn("state file corrupt, starting from defaults",
			zap.String("path", s.path),
			zap.Error(err),
		)
		s.reset()
		return nil
	}

	s.install(st)
	return nil
}

// Save writes the current state synchronously.
func (s *Store) Save() error {
	raw, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// LastID returns the cursor, "" when unset.
func (s *Store) LastID() string {
	return s.state.LastID
}

// SetLastID advances the cursor. The cursor always moves to the newest item
// observed in a run, regardless of how many candidates were posted, so a
// permanently unpostable item can never stall the pipeline.
func (s *Store) SetLastID(id string) {
	s.state.LastID = id
}

// IsPosted reports whether the item id has been posted before.
func (s *Store) IsPosted(id string) bool {
	_, ok := s.postedSet[id]
	return ok
}

// MarkPosted appends the id to the posted history, trimming the oldest
// entries beyond the configured bound.
func (s *Store) MarkPosted(id string) {
	if s.IsPosted(id) {
		return
	}
	s.state.Posted = append(s.state.Posted, id)
	s.postedSet[id] = struct{}{}
	if over := len(s.state.Posted) - s.maxPosted; over > 0 {
		for _, old := range s.state.Posted[:over] {
			delete(s.postedSet, old)
		}
		s.state.Posted = append([]string(nil), s.state.Posted[over:]...)
	}
}

// CooldownUntil returns the raw persisted cooldown timestamp, "" when unset.
func (s *Store) CooldownUntil() string {
	return s.state.CooldownUntil
}

// SetCooldownUntil persists the cooldown timestamp ("" clears it).
func (s *Store) SetCooldownUntil(value string) {
	s.state.CooldownUntil = value
}

// BumpDaily adds posted to the daily counter, resetting it when the day
// changed since the last run, and returns the new total.
func (s *Store) BumpDaily(day string, posted int) int {
	if s.state.Day != day {
		s.state.Day = day
		s.state.CountToday = 0
	}
	s.state.CountToday += posted
	return s.state.CountToday
}

// Snapshot returns a copy of the current state, mainly for logging and tests.
func (s *Store) Snapshot() State {
	st := s.state
	st.Posted = append([]string(nil), s.state.Posted...)
	return st
}

func (s *Store) reset() {
	s.install(State{})
}

func (s *Store) install(st State) {
	if st.Posted == nil {
		st.Posted = []string{}
	}
	if over := len(st.Posted) - s.maxPosted; over > 0 {
		st.Posted = append([]string(nil), st.Posted[over:]...)
	}
	s.state = st
	s.postedSet = make(map[string]struct{}, len(st.Posted))
	for _, id := range st.Posted {
		s.postedSet[id] = struct{}{}
	}
}
