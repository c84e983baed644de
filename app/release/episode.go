package release

import (
	"context"

	"github.com/lysyi3m/libria-client/app/normalize"
)

// EpisodeTransformer builds the episode list of a release from its raw record.
type EpisodeTransformer interface {
	Transform(ctx context.Context, raw normalize.Record) ([]Episode, error)
}

var _ EpisodeTransformer = (*PlaylistTransformer)(nil)

// qualities lists the playlist stream keys from lowest to highest quality.
var qualities = []string{"sd", "hd", "fullhd"}

// PlaylistTransformer reads episodes from the "playlist" sequence.
type PlaylistTransformer struct{}

func NewPlaylistTransformer() *PlaylistTransformer {
	return &PlaylistTransformer{}
}

func (p *PlaylistTransformer) Transform(ctx context.Context, raw normalize.Record) ([]Episode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := normalize.Records(raw, "playlist")
	episodes := make([]Episode, 0, len(entries))

	for _, entry := range entries {
		id, _ := normalize.Int64(entry, "id")

		episode := Episode{
			ID:      id,
			Title:   normalize.StripHTML(normalize.String(entry, "title")),
			Sources: []Source{},
		}

		for _, quality := range qualities {
			if url := normalize.String(entry, quality); url != "" {
				episode.Sources = append(episode.Sources, Source{Quality: quality, URL: url})
			}
		}

		episodes = append(episodes, episode)
	}

	return episodes, nil
}
