// Package settings reads and writes feature-level preferences through a
// key/value store.
package settings

import (
	"context"
	"strconv"
	"sync"

	"github.com/lysyi3m/libria-client/app/state"
)

const (
	KeyFavoritesSort     = "favorites.sort"
	KeyFavoritesGroup    = "favorites.group"
	KeyFavoritesShowSeen = "favorites.show_seen"
)

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// LoadFavorites reads the favorites settings. Missing or malformed values
// keep their defaults.
func LoadFavorites(ctx context.Context, store Store) (state.FavoritesSettings, error) {
	settings := state.DefaultFavoritesSettings()

	sort, ok, err := store.Get(ctx, KeyFavoritesSort)
	if err != nil {
		return settings, err
	}
	if ok && sort != "" {
		settings.Sort = sort
	}

	group, ok, err := store.Get(ctx, KeyFavoritesGroup)
	if err != nil {
		return settings, err
	}
	if ok && group != "" {
		settings.Group = group
	}

	showSeen, ok, err := store.Get(ctx, KeyFavoritesShowSeen)
	if err != nil {
		return settings, err
	}
	if ok {
		if parsed, err := strconv.ParseBool(showSeen); err == nil {
			settings.ShowSeen = parsed
		}
	}

	return settings, nil
}

// Memory is an in-process Store used when no database is configured.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	return value, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}
