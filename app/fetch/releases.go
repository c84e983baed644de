package fetch

import (
	"context"

	"github.com/lysyi3m/libria-client/app/anilibria"
	"github.com/lysyi3m/libria-client/app/normalize"
	"github.com/lysyi3m/libria-client/app/release"
	"github.com/lysyi3m/libria-client/app/slots"
	"github.com/lysyi3m/libria-client/app/state"
)

const (
	msgLoadReleases = "Failed to load releases"
	msgLoadRelease  = "Failed to load release"
)

type ReleasesAPI interface {
	GetReleases(ctx context.Context, page int) (*anilibria.Page, error)
	GetRelease(ctx context.Context, id int64) (normalize.Record, error)
	PosterURL(path string) string
}

// Releases drives the catalogue list and the release detail.
type Releases struct {
	api  ReleasesAPI
	deps Deps
}

func NewReleases(api ReleasesAPI, deps Deps) *Releases {
	return &Releases{api: api, deps: deps.withDefaults()}
}

func (r *Releases) Stores() *state.Stores {
	return r.deps.Stores
}

// GetReleases loads the first catalogue page into the releases state.
func (r *Releases) GetReleases(ctx context.Context) error {
	list := r.deps.Stores.Releases
	token := r.deps.Slots.Begin(ctx, SlotReleases)

	r.deps.Slots.Commit(token, func() {
		list.Update(func(s *state.ReleasesState) { s.Loading = true })
	})

	outcome := r.loadReleases(token)

	r.deps.Slots.Complete(token, func() {
		list.Update(func(s *state.ReleasesState) { s.Loading = false })
	})

	outcome.log("get releases")
	return readResult(outcome)
}

func (r *Releases) loadReleases(token *slots.Token) Outcome {
	ctx := token.Context()

	page, err := r.api.GetReleases(ctx, 1)
	if err != nil {
		return settle(r.deps.Sink, token, msgLoadReleases, err)
	}

	releases := r.deps.Transformer.TransformAll(ctx, page.Items)
	enrichPosters(ctx, r.deps.Assets, releases, r.deps.PosterConcurrency)
	if err := ctx.Err(); err != nil {
		return settle(r.deps.Sink, token, msgLoadReleases, err)
	}

	committed := r.deps.Slots.Commit(token, func() {
		r.deps.Stores.Releases.Update(func(s *state.ReleasesState) { s.Items = releases })
	})
	if !committed {
		return Outcome{Kind: Cancelled}
	}
	return Outcome{Kind: Committed}
}

// GetRelease loads one release into the detail state. The previous detail is
// cleared before the request is issued.
func (r *Releases) GetRelease(ctx context.Context, id int64) error {
	detail := r.deps.Stores.Release
	token := r.deps.Slots.Begin(ctx, SlotRelease)

	r.deps.Slots.Commit(token, func() {
		detail.Update(func(s *state.ReleaseState) {
			s.Data = nil
			s.Loading = true
		})
	})

	outcome := r.loadRelease(token, id)

	r.deps.Slots.Complete(token, func() {
		detail.Update(func(s *state.ReleaseState) { s.Loading = false })
	})

	outcome.log("get release")
	return readResult(outcome)
}

func (r *Releases) loadRelease(token *slots.Token, id int64) Outcome {
	ctx := token.Context()

	raw, err := r.api.GetRelease(ctx, id)
	if err != nil {
		return settle(r.deps.Sink, token, msgLoadRelease, err)
	}

	item, err := r.deps.Transformer.Transform(ctx, raw)
	if err != nil {
		return settle(r.deps.Sink, token, msgLoadRelease, err)
	}

	if item.Poster.Path != nil {
		poster := r.api.PosterURL(*item.Poster.Path)
		item.Poster.Path = &poster
	}

	items := []release.Release{item}
	enrichPosters(ctx, r.deps.Assets, items, r.deps.PosterConcurrency)
	item = items[0]
	if err := ctx.Err(); err != nil {
		return settle(r.deps.Sink, token, msgLoadRelease, err)
	}

	committed := r.deps.Slots.Commit(token, func() {
		r.deps.Stores.Release.Update(func(s *state.ReleaseState) { s.Data = &item })
	})
	if !committed {
		return Outcome{Kind: Cancelled}
	}
	return Outcome{Kind: Committed}
}
