package api

import (
	"context"

	"github.com/lysyi3m/libria-client/app/fetch"
	"github.com/lysyi3m/libria-client/app/notify"
	"github.com/lysyi3m/libria-client/app/state"
)

type ReleasesService interface {
	GetReleases(ctx context.Context) error
	GetRelease(ctx context.Context, id int64) error
}

type FavoritesService interface {
	GetFavorites(ctx context.Context) error
	AddToFavorites(ctx context.Context, id int64) fetch.Outcome
	RemoveFromFavorites(ctx context.Context, id int64) fetch.Outcome
	IsInFavorite(id int64) bool
	SetSort(ctx context.Context, sort string) error
	SetGroup(ctx context.Context, group string) error
	SetShowSeen(ctx context.Context, showSeen bool) error
}

type Authorizer interface {
	IsAuthorized() bool
}

type NotificationFeed interface {
	Recent() []notify.Notification
}

// HealthReporter contributes a named section to the health response.
type HealthReporter interface {
	Health(ctx context.Context) map[string]any
}

type Handler struct {
	releases      ReleasesService
	favorites     FavoritesService
	authorizer    Authorizer
	stores        *state.Stores
	notifications NotificationFeed
	reporters     map[string]HealthReporter
}

type settingsRequest struct {
	Sort     *string `json:"sort"`
	Group    *string `json:"group"`
	ShowSeen *bool   `json:"show_seen"`
}
