// Package settings holds the session's settings snapshot: display names and
// the access PIN.
package settings

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"financas/internal/core"
	"financas/internal/gateway"
	"financas/internal/log"
)

// Option is a select option for the transaction user field.
type Option struct {
	Value core.Role `json:"value"`
	Label string    `json:"label"`
}

// Store is the single owner of the settings snapshot. Reads never block on
// a refresh; before the first successful fetch every lookup sees defaults.
type Store struct {
	src    gateway.SettingsReader
	logger *log.Logger

	mu       sync.RWMutex
	snap     core.Settings
	loaded   bool
	watchers []func(core.Settings)
	// version counts patches; patched holds the version that last wrote
	// each key, so a fetch that started earlier does not undo it.
	version uint64
	patched map[string]uint64

	group singleflight.Group
}

var _ core.NameResolver = (*Store)(nil)

func NewStore(src gateway.SettingsReader, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{
		src:    src,
		logger: logger.WithComponent(log.ComponentSettings),
		snap:    core.Settings{},
		patched: map[string]uint64{},
	}
}

// Refresh fetches the settings and replaces the snapshot. Overlapping calls
// share one fetch. Keys patched while the fetch was in flight keep their
// patched value. On failure the previous snapshot is kept.
func (s *Store) Refresh(ctx context.Context) (core.Settings, error) {
	v, err, _ := s.group.Do("refresh", func() (any, error) {
		s.mu.RLock()
		start := s.version
		s.mu.RUnlock()

		fresh, err := s.src.GetSettings(ctx)
		if err != nil {
			return nil, err
		}
		return s.replaceSince(fresh, start), nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Settings refresh failed", log.FieldError, err)
		return nil, fmt.Errorf("refresh settings: %w", err)
	}
	return v.(core.Settings).Clone(), nil
}

// Replace swaps the whole snapshot.
func (s *Store) Replace(fresh core.Settings) {
	next := fresh.Clone()
	s.mu.Lock()
	s.snap = next
	s.loaded = true
	watchers := append([]func(core.Settings){}, s.watchers...)
	s.mu.Unlock()

	s.logger.Debug("Settings replaced", log.FieldKeys, len(next))
	notify(watchers, next)
}

// replaceSince is Replace for a fetch that started at patch version start.
func (s *Store) replaceSince(fresh core.Settings, start uint64) core.Settings {
	next := fresh.Clone()
	s.mu.Lock()
	kept := 0
	for k, v := range s.patched {
		if v <= start {
			continue
		}
		kept++
		if cur, ok := s.snap[k]; ok {
			next[k] = cur
		} else {
			delete(next, k)
		}
	}
	s.snap = next
	s.loaded = true
	watchers := append([]func(core.Settings){}, s.watchers...)
	s.mu.Unlock()

	if kept > 0 {
		s.logger.Debug("Settings refreshed over newer patches", log.FieldKeys, kept)
	}
	notify(watchers, next)
	return next.Clone()
}

// Patch writes only the given keys, leaving the rest of the snapshot as is.
func (s *Store) Patch(partial core.Settings) {
	s.mu.Lock()
	s.version++
	next := s.snap.Clone()
	for k, v := range partial {
		next[k] = v
		s.patched[k] = s.version
	}
	s.snap = next
	watchers := append([]func(core.Settings){}, s.watchers...)
	s.mu.Unlock()

	notify(watchers, next)
}

func notify(watchers []func(core.Settings), snap core.Settings) {
	for _, w := range watchers {
		w(snap.Clone())
	}
}

// OnChange registers fn to run after every Replace or Patch.
func (s *Store) OnChange(fn func(core.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// Get returns the value of key and whether it is set.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.snap[key]
	return v, ok
}

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() core.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Loaded reports whether a fetch has ever succeeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// PIN returns the stored access PIN, if any.
func (s *Store) PIN() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.PIN()
}

func (s *Store) ResolveName(r core.Role) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.ResolveName(r)
}

// UserOptions returns the two per-person options labelled with the current
// names. The shared option keeps its fixed label.
func (s *Store) UserOptions() []Option {
	return []Option{
		{Value: core.RoleUser1, Label: s.ResolveName(core.RoleUser1)},
		{Value: core.RoleUser2, Label: s.ResolveName(core.RoleUser2)},
		{Value: core.RoleShared, Label: s.ResolveName(core.RoleShared)},
	}
}
