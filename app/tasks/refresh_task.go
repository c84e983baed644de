package tasks

import (
	"context"
	"log/slog"
)

type ReleasesRefresher interface {
	GetReleases(ctx context.Context) error
}

type FavoritesRefresher interface {
	GetFavorites(ctx context.Context) error
}

type SettingsLoader interface {
	LoadSettings(ctx context.Context) error
}

type RefreshReleasesTask struct {
	Task
	releases ReleasesRefresher
}

func NewRefreshReleasesTask(releases ReleasesRefresher) *RefreshReleasesTask {
	return &RefreshReleasesTask{
		Task:     NewTask(TaskTypeRefreshReleases, "releases"),
		releases: releases,
	}
}

func (t *RefreshReleasesTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := t.releases.GetReleases(ctx); err != nil {
		return err
	}

	slog.Debug("Task completed", "type", string(t.Type), "target", t.Target, "duration", t.GetDuration().String())
	return nil
}

type RefreshFavoritesTask struct {
	Task
	favorites FavoritesRefresher
}

func NewRefreshFavoritesTask(favorites FavoritesRefresher) *RefreshFavoritesTask {
	return &RefreshFavoritesTask{
		Task:      NewTask(TaskTypeRefreshFavorites, "favorites"),
		favorites: favorites,
	}
}

func (t *RefreshFavoritesTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := t.favorites.GetFavorites(ctx); err != nil {
		return err
	}

	slog.Debug("Task completed", "type", string(t.Type), "target", t.Target, "duration", t.GetDuration().String())
	return nil
}

// LoadSettingsTask restores persisted view settings at startup.
type LoadSettingsTask struct {
	Task
	loader SettingsLoader
}

func NewLoadSettingsTask(loader SettingsLoader) *LoadSettingsTask {
	return &LoadSettingsTask{
		Task:   NewTask(TaskTypeLoadSettings, "favorites"),
		loader: loader,
	}
}

func (t *LoadSettingsTask) Execute(ctx context.Context) error {
	return t.loader.LoadSettings(ctx)
}
