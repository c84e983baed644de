package fetch

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/libria-client/app/release"
	"golang.org/x/sync/errgroup"
)

const DefaultPosterConcurrency = 6

// AssetFetcher downloads binary assets such as poster images.
type AssetFetcher interface {
	GetImage(ctx context.Context, src string) ([]byte, error)
}

// enrichPosters fetches the poster of every release that has a path. A failed
// fetch leaves that release's image nil and never aborts the batch.
func enrichPosters(ctx context.Context, assets AssetFetcher, releases []release.Release, limit int) {
	if assets == nil || len(releases) == 0 {
		return
	}
	if limit <= 0 {
		limit = -1
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i := range releases {
		path := releases[i].Poster.Path
		if path == nil {
			continue
		}

		g.Go(func() error {
			image, err := assets.GetImage(ctx, *path)
			if err != nil {
				slog.Debug("Poster enrichment failed", "release", releases[i].ID, "poster", *path, "error", err)
				return nil
			}
			releases[i].Poster.Image = image
			return nil
		})
	}

	_ = g.Wait()
}
