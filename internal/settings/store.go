// Package settings holds the operator-editable triage configuration for the
// running service.
package settings

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jonesrussell/north-cloud/triage/internal/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/triage"
)

// State is everything an operator can change at runtime.
type State struct {
	triage.Settings
	IncludeThreats bool `json:"include_threats"`
}

// Clone deep-copies s.
func (s State) Clone() State {
	return State{Settings: s.Settings.Clone(), IncludeThreats: s.IncludeThreats}
}

// Store guards the current State and its compiled snapshot. Readers get a
// snapshot that later updates never touch.
//
// Lock order: writeMu serializes writers across their whole
// read-modify-write; mu guards the swap and reads.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   State
	snap    *triage.Snapshot
	logger  logger.Logger
}

// NewStore validates initial and returns a store holding it.
func NewStore(initial State, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Store{logger: log}
	if err := s.Replace(initial); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the compiled snapshot for the current settings.
func (s *Store) Snapshot() *triage.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// View returns the compiled snapshot together with the include-threats flag
// that was current alongside it.
func (s *Store) View() (*triage.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.state.IncludeThreats
}

// Current returns a copy of the current state, with defaults filled in.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// IncludeThreats reports whether threat-flagged results stay in the session log.
func (s *Store) IncludeThreats() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IncludeThreats
}

// Replace validates next and swaps it in. On error the current state is kept.
func (s *Store) Replace(next State) error {
	return s.update(func(st *State) error {
		*st = next.Clone()
		return nil
	})
}

// SetIncludeThreats toggles whether threat-flagged results are logged.
func (s *Store) SetIncludeThreats(include bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.state.IncludeThreats = include
	s.mu.Unlock()
}

// SetKeywords replaces the keyword list of one category from comma-separated
// text.
func (s *Store) SetKeywords(category, raw string) error {
	return s.update(func(st *State) error {
		for i := range st.Categories {
			if st.Categories[i].Name == category {
				st.Categories[i].Keywords = ParseKeywordList(raw)
				return nil
			}
		}
		return &triage.ConfigError{Field: "category", Message: fmt.Sprintf("unknown category %q", category)}
	})
}

// SetNeighborhoodWeight changes the weight of a known neighborhood.
func (s *Store) SetNeighborhoodWeight(name string, weight int) error {
	return s.update(func(st *State) error {
		for i := range st.Neighborhoods {
			if st.Neighborhoods[i].Name == name {
				st.Neighborhoods[i].Weight = weight
				return nil
			}
		}
		return &triage.ConfigError{Field: "neighborhood", Message: fmt.Sprintf("unknown neighborhood %q", name)}
	})
}

// update applies fn to a copy of the current state and swaps the result in.
// The whole read-modify-write runs under writeMu so concurrent writers never
// revert each other. If fn or validation fails the current state is kept.
func (s *Store) update(fn func(*State) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// 1. Copy. Only writers touch s.state and they all hold writeMu.
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}

	// 2. Compile outside mu so readers are not blocked by validation.
	snap, err := triage.NewSnapshot(next.Settings, s.logger)
	if err != nil {
		return err
	}

	// 3. Swap.
	s.mu.Lock()
	s.state = State{Settings: snap.Settings(), IncludeThreats: next.IncludeThreats}
	s.snap = snap
	s.mu.Unlock()

	if ignored := snap.IgnoredHighPriority(); len(ignored) > 0 {
		s.logger.Info("High-priority entries ignored", logger.Strings("categories", ignored))
	}
	s.logger.Info("Triage settings updated",
		logger.Int("categories", len(next.Categories)),
		logger.Int("neighborhoods", len(next.Neighborhoods)),
		logger.Float64("threshold", snap.Threshold()),
		logger.Bool("include_threats", next.IncludeThreats),
	)
	return nil
}

// ParseKeywordList splits comma-separated keywords, trimming each entry and
// dropping empty ones.
func ParseKeywordList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
