package state

import "github.com/lysyi3m/libria-client/app/release"

type ReleasesState struct {
	Items   []release.Release
	Loading bool
}

type ReleaseState struct {
	Data    *release.Release
	Loading bool
}

type FavoritesState struct {
	Items    []release.Release
	Loading  bool
	Settings FavoritesSettings
}

type FavoritesSettings struct {
	Sort     string
	Group    string
	ShowSeen bool
}

const (
	DefaultFavoritesSort  = "original"
	DefaultFavoritesGroup = "years"
)

func DefaultFavoritesSettings() FavoritesSettings {
	return FavoritesSettings{
		Sort:     DefaultFavoritesSort,
		Group:    DefaultFavoritesGroup,
		ShowSeen: true,
	}
}

// Stores bundles the state of every feature.
type Stores struct {
	Releases  *Store[ReleasesState]
	Release   *Store[ReleaseState]
	Favorites *Store[FavoritesState]
}

func NewStores() *Stores {
	return &Stores{
		Releases:  NewStore(ReleasesState{Items: []release.Release{}}),
		Release:   NewStore(ReleaseState{}),
		Favorites: NewStore(FavoritesState{Items: []release.Release{}, Settings: DefaultFavoritesSettings()}),
	}
}
