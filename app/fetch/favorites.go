package fetch

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/lysyi3m/libria-client/app/anilibria"
	"github.com/lysyi3m/libria-client/app/settings"
	"github.com/lysyi3m/libria-client/app/slots"
	"github.com/lysyi3m/libria-client/app/state"
)

const (
	msgLoadFavorites  = "Failed to load favorite releases"
	msgAddFavorite    = "Failed to add release to favorites"
	msgRemoveFavorite = "Failed to remove release from favorites"
	msgLoadSettings   = "Failed to load favorites settings"
	msgSaveSettings   = "Failed to save favorites settings"
)

var ErrInvalidSetting = errors.New("setting value must not be empty")

type FavoritesAPI interface {
	IsAuthorized() bool
	GetFavorites(ctx context.Context, page int) (*anilibria.Page, error)
	AddToFavorites(ctx context.Context, id int64) error
	RemoveFromFavorites(ctx context.Context, id int64) error
}

// Favorites drives the user's favorites collection and its view settings.
// Every operation is a silent no-op without an authorized session.
type Favorites struct {
	api      FavoritesAPI
	settings settings.Store
	deps     Deps
}

// NewFavorites builds the favorites orchestrator. A nil settings store keeps
// settings in memory.
func NewFavorites(api FavoritesAPI, store settings.Store, deps Deps) *Favorites {
	if store == nil {
		store = settings.NewMemory()
	}
	return &Favorites{api: api, settings: store, deps: deps.withDefaults()}
}

func (f *Favorites) Stores() *state.Stores {
	return f.deps.Stores
}

func (f *Favorites) GetFavorites(ctx context.Context) error {
	if !f.api.IsAuthorized() {
		Outcome{Kind: Skipped}.log("get favorites")
		return nil
	}

	favorites := f.deps.Stores.Favorites
	token := f.deps.Slots.Begin(ctx, SlotFavorites)

	f.deps.Slots.Commit(token, func() {
		favorites.Update(func(s *state.FavoritesState) { s.Loading = true })
	})

	outcome := f.loadFavorites(token)

	f.deps.Slots.Complete(token, func() {
		favorites.Update(func(s *state.FavoritesState) { s.Loading = false })
	})

	outcome.log("get favorites")
	return readResult(outcome)
}

func (f *Favorites) loadFavorites(token *slots.Token) Outcome {
	ctx := token.Context()

	page, err := f.api.GetFavorites(ctx, 1)
	if err != nil {
		return settle(f.deps.Sink, token, msgLoadFavorites, err)
	}

	releases := f.deps.Transformer.TransformAll(ctx, page.Items)
	enrichPosters(ctx, f.deps.Assets, releases, f.deps.PosterConcurrency)
	if err := ctx.Err(); err != nil {
		return settle(f.deps.Sink, token, msgLoadFavorites, err)
	}

	committed := f.deps.Slots.Commit(token, func() {
		f.deps.Stores.Favorites.Update(func(s *state.FavoritesState) { s.Items = releases })
	})
	if !committed {
		return Outcome{Kind: Cancelled}
	}
	return Outcome{Kind: Committed}
}

// AddToFavorites adds a release and refreshes the collection on success.
// Failures are reported, never returned as errors.
func (f *Favorites) AddToFavorites(ctx context.Context, id int64) Outcome {
	return f.write(ctx, "add to favorites", id, msgAddFavorite, f.api.AddToFavorites)
}

func (f *Favorites) RemoveFromFavorites(ctx context.Context, id int64) Outcome {
	return f.write(ctx, "remove from favorites", id, msgRemoveFavorite, f.api.RemoveFromFavorites)
}

func (f *Favorites) write(ctx context.Context, operation string, id int64, message string, call func(context.Context, int64) error) Outcome {
	if id == 0 || !f.api.IsAuthorized() {
		outcome := Outcome{Kind: Skipped}
		outcome.log(operation)
		return outcome
	}

	favorites := f.deps.Stores.Favorites
	// A running collection fetch owns the flag and clears it when it completes.
	favorites.Update(func(s *state.FavoritesState) { s.Loading = true })
	defer f.deps.Slots.WhenIdle(SlotFavorites, func() {
		favorites.Update(func(s *state.FavoritesState) { s.Loading = false })
	})

	if err := call(ctx, id); err != nil {
		outcome := settleWrite(ctx, f.deps.Sink, message, err)
		outcome.log(operation)
		return outcome
	}

	// The refresh reports its own failures.
	if err := f.GetFavorites(ctx); err != nil {
		slog.Debug("Favorites refresh after write failed", "release", id, "error", err)
	}

	outcome := Outcome{Kind: Committed}
	outcome.log(operation)
	return outcome
}

// IsInFavorite reports whether the committed favorites contain id.
func (f *Favorites) IsInFavorite(id int64) bool {
	for _, item := range f.deps.Stores.Favorites.Get().Items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// LoadSettings reads the persisted view settings into state.
func (f *Favorites) LoadSettings(ctx context.Context) error {
	loaded, err := settings.LoadFavorites(ctx, f.settings)
	if err != nil {
		return readResult(report(f.deps.Sink, msgLoadSettings, err))
	}

	f.deps.Stores.Favorites.Update(func(s *state.FavoritesState) { s.Settings = loaded })
	return nil
}

func (f *Favorites) SetSort(ctx context.Context, sort string) error {
	if sort == "" {
		return ErrInvalidSetting
	}
	return f.saveSetting(ctx, settings.KeyFavoritesSort, sort, func(s *state.FavoritesSettings) { s.Sort = sort })
}

func (f *Favorites) SetGroup(ctx context.Context, group string) error {
	if group == "" {
		return ErrInvalidSetting
	}
	return f.saveSetting(ctx, settings.KeyFavoritesGroup, group, func(s *state.FavoritesSettings) { s.Group = group })
}

func (f *Favorites) SetShowSeen(ctx context.Context, showSeen bool) error {
	return f.saveSetting(ctx, settings.KeyFavoritesShowSeen, strconv.FormatBool(showSeen), func(s *state.FavoritesSettings) { s.ShowSeen = showSeen })
}

// saveSetting persists first so state never shows a value that was not saved.
func (f *Favorites) saveSetting(ctx context.Context, key, value string, apply func(*state.FavoritesSettings)) error {
	if err := f.settings.Set(ctx, key, value); err != nil {
		return readResult(report(f.deps.Sink, msgSaveSettings, err))
	}

	f.deps.Stores.Favorites.Update(func(s *state.FavoritesState) { apply(&s.Settings) })
	return nil
}
