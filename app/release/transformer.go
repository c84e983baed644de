package release

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/libria-client/app/normalize"
	"golang.org/x/sync/errgroup"
)

type Transformer struct {
	episodes EpisodeTransformer
	dates    *DateFormatter
}

// NewTransformer builds a release transformer. Nil arguments fall back to the
// playlist episode transformer and the process locale.
func NewTransformer(episodes EpisodeTransformer, dates *DateFormatter) *Transformer {
	if episodes == nil {
		episodes = NewPlaylistTransformer()
	}
	if dates == nil {
		dates = DefaultDateFormatter()
	}

	return &Transformer{
		episodes: episodes,
		dates:    dates,
	}
}

// Transform builds one Release from raw. Shape problems in raw never fail;
// an error means the nested episode transform failed.
func (t *Transformer) Transform(ctx context.Context, raw normalize.Record) (Release, error) {
	id, _ := normalize.Int64(raw, "id")

	release := Release{
		ID:   id,
		Code: normalize.String(raw, "code"),
		Year: normalize.String(raw, "year"),
		Type: normalize.String(raw, "type"),
		Names: Names{
			RU:       normalize.StripHTML(normalize.String(raw, "names", 0)),
			Original: normalize.StripHTML(normalize.String(raw, "names", 1)),
		},
		Poster: Poster{
			Path: optionalString(normalize.String(raw, "poster")),
		},
		Datetime:    t.datetime(raw),
		Voices:      normalize.Strings(raw, "voices"),
		Genres:      normalize.Strings(raw, "genres"),
		Description: normalize.StripHTML(normalize.String(raw, "description")),
	}

	episodes, err := t.episodes.Transform(ctx, raw)
	if err != nil {
		return Release{}, &TransformError{ID: id, Err: err}
	}
	if episodes == nil {
		episodes = []Episode{}
	}
	release.Episodes = episodes

	return release, nil
}

// TransformAll transforms every record concurrently and returns the releases
// that succeeded, in input order. Failed records are dropped.
func (t *Transformer) TransformAll(ctx context.Context, raws []normalize.Record) []Release {
	if len(raws) == 0 {
		return []Release{}
	}

	transformed := make([]Release, len(raws))
	succeeded := make([]bool, len(raws))

	var g errgroup.Group
	for i, raw := range raws {
		g.Go(func() error {
			release, err := t.Transform(ctx, raw)
			if err != nil {
				slog.Debug("Release dropped from collection", "index", i, "error", err)
				return nil
			}
			transformed[i] = release
			succeeded[i] = true
			return nil
		})
	}
	_ = g.Wait()

	releases := make([]Release, 0, len(raws))
	for i, ok := range succeeded {
		if ok {
			releases = append(releases, transformed[i])
		}
	}

	return releases
}

func (t *Transformer) datetime(raw normalize.Record) Datetime {
	timestamp, ok := normalize.Int64(raw, "last")
	if !ok || timestamp == 0 {
		return Datetime{}
	}

	system := time.Unix(timestamp, 0).In(time.Local)
	human := t.dates.Format(system)

	return Datetime{
		Timestamp: &timestamp,
		System:    &system,
		Human:     &human,
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
