package release

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/libria-client/app/normalize"
	"golang.org/x/text/language"
)

const releaseJSON = `{
  "id": 8700,
  "code": "shingeki-no-kyojin",
  "year": "2013",
  "type": "ТВ (25 эп.), 24 мин.",
  "names": ["Атака <b>титанов</b>", "Shingeki no Kyojin"],
  "poster": "/upload/release/350x500/8700.jpg",
  "last": "1609459200",
  "voices": ["Itashi", "Amikiri"],
  "genres": ["Драма", "Экшен"],
  "description": "<p>Сотни лет назад &laquo;титаны&raquo;...</p>",
  "playlist": [
    {"id": 2, "title": "Серия 2", "sd": "https://cdn/2-480.m3u8", "hd": "https://cdn/2-720.m3u8"},
    {"id": 1, "title": "Серия 1", "fullhd": "https://cdn/1-1080.m3u8"}
  ]
}`

func decodeRecord(t *testing.T, data string) normalize.Record {
	t.Helper()

	decoder := json.NewDecoder(strings.NewReader(data))
	decoder.UseNumber()

	var record normalize.Record
	if err := decoder.Decode(&record); err != nil {
		t.Fatal(err)
	}
	return record
}

func newTestTransformer(episodes EpisodeTransformer) *Transformer {
	return NewTransformer(episodes, NewDateFormatter(language.Russian))
}

type failingEpisodes struct {
	failOn int64
}

func (f failingEpisodes) Transform(ctx context.Context, raw normalize.Record) ([]Episode, error) {
	if id, _ := normalize.Int64(raw, "id"); id == f.failOn {
		return nil, errors.New("playlist unavailable")
	}
	return NewPlaylistTransformer().Transform(ctx, raw)
}

func TestTransformFullRecord(t *testing.T) {
	transformer := newTestTransformer(nil)

	release, err := transformer.Transform(context.Background(), decodeRecord(t, releaseJSON))
	if err != nil {
		t.Fatal(err)
	}

	if release.ID != 8700 {
		t.Errorf("Expected ID 8700, got %d", release.ID)
	}
	if release.Code != "shingeki-no-kyojin" {
		t.Errorf("Expected code 'shingeki-no-kyojin', got '%s'", release.Code)
	}
	if release.Names.RU == nil || *release.Names.RU != "Атака титанов" {
		t.Errorf("Expected stripped localized name, got %v", release.Names.RU)
	}
	if release.Names.Original == nil || *release.Names.Original != "Shingeki no Kyojin" {
		t.Errorf("Expected original name, got %v", release.Names.Original)
	}
	if release.Poster.Path == nil || *release.Poster.Path != "/upload/release/350x500/8700.jpg" {
		t.Errorf("Expected poster path, got %v", release.Poster.Path)
	}
	if release.Poster.Image != nil {
		t.Error("Expected poster image to be empty before enrichment")
	}
	if release.Description == nil || *release.Description != "Сотни лет назад «титаны»..." {
		t.Errorf("Expected stripped description, got %v", release.Description)
	}
	if len(release.Voices) != 2 || len(release.Genres) != 2 {
		t.Errorf("Expected 2 voices and 2 genres, got %v and %v", release.Voices, release.Genres)
	}

	if len(release.Episodes) != 2 {
		t.Fatalf("Expected 2 episodes, got %d", len(release.Episodes))
	}
	if release.Episodes[0].ID != 2 || len(release.Episodes[0].Sources) != 2 {
		t.Errorf("Expected episode 2 with 2 sources first, got %+v", release.Episodes[0])
	}
	if release.Episodes[1].Sources[0].Quality != "fullhd" {
		t.Errorf("Expected fullhd source, got %+v", release.Episodes[1].Sources)
	}
}

func TestTransformDatetime(t *testing.T) {
	transformer := newTestTransformer(nil)

	release, err := transformer.Transform(context.Background(), decodeRecord(t, releaseJSON))
	if err != nil {
		t.Fatal(err)
	}

	dt := release.Datetime
	if dt.Timestamp == nil || dt.System == nil || dt.Human == nil {
		t.Fatalf("Expected complete datetime, got %+v", dt)
	}
	if *dt.Timestamp != 1609459200 {
		t.Errorf("Expected timestamp 1609459200, got %d", *dt.Timestamp)
	}
	if !dt.System.Equal(time.Unix(1609459200, 0)) {
		t.Errorf("Expected system time for the same instant, got %v", dt.System)
	}
	if *dt.Human != dt.System.Format("02.01.2006") {
		t.Errorf("Expected human date derived from system time, got '%s'", *dt.Human)
	}
}

func TestTransformFalsyTimestamp(t *testing.T) {
	transformer := newTestTransformer(nil)

	for _, data := range []string{`{}`, `{"last": 0}`, `{"last": "0"}`, `{"last": null}`, `{"last": "never"}`, `{"last": {"a": 1}}`} {
		release, err := transformer.Transform(context.Background(), decodeRecord(t, data))
		if err != nil {
			t.Fatalf("Expected no error for %s, got %v", data, err)
		}

		dt := release.Datetime
		if dt.Timestamp != nil || dt.System != nil || dt.Human != nil {
			t.Errorf("Expected empty datetime for %s, got %+v", data, dt)
		}
	}
}

func TestTransformIsShapeComplete(t *testing.T) {
	transformer := newTestTransformer(nil)

	inputs := []string{
		`{}`,
		`{"names": null, "voices": null, "genres": null, "playlist": null}`,
		`{"names": "one", "voices": "two", "genres": 3, "playlist": "four", "poster": {"path": 1}}`,
		`{"names": [null, 7], "playlist": [null, 1, "x", {"id": "abc"}], "description": ""}`,
		`{"id": {"deep": [1, 2]}, "code": [], "year": {}, "type": null}`,
	}

	for _, data := range inputs {
		release, err := transformer.Transform(context.Background(), decodeRecord(t, data))
		if err != nil {
			t.Fatalf("Expected no error for %s, got %v", data, err)
		}

		if release.Voices == nil || release.Genres == nil || release.Episodes == nil {
			t.Errorf("Expected non-nil sequences for %s, got %+v", data, release)
		}
		if release.Description != nil {
			t.Errorf("Expected nil description for %s, got '%s'", data, *release.Description)
		}
	}

	var nilRecord normalize.Record
	if _, err := transformer.Transform(context.Background(), nilRecord); err != nil {
		t.Errorf("Expected nil record to transform, got %v", err)
	}
}

func TestTransformPropagatesEpisodeFailure(t *testing.T) {
	transformer := newTestTransformer(failingEpisodes{failOn: 8700})

	_, err := transformer.Transform(context.Background(), decodeRecord(t, releaseJSON))
	if err == nil {
		t.Fatal("Expected nested transform failure to propagate")
	}

	var transformErr *TransformError
	if !errors.As(err, &transformErr) {
		t.Fatalf("Expected TransformError, got %T", err)
	}
	if transformErr.ID != 8700 {
		t.Errorf("Expected failing ID 8700, got %d", transformErr.ID)
	}
}

func TestTransformAllDropsFailuresPreservingOrder(t *testing.T) {
	transformer := newTestTransformer(failingEpisodes{failOn: 2})

	raws := []normalize.Record{
		decodeRecord(t, `{"id": 1}`),
		decodeRecord(t, `{"id": 2}`),
		decodeRecord(t, `{"id": 3}`),
	}

	releases := transformer.TransformAll(context.Background(), raws)
	if len(releases) != 2 {
		t.Fatalf("Expected 2 releases, got %d", len(releases))
	}
	if releases[0].ID != 1 || releases[1].ID != 3 {
		t.Errorf("Expected releases 1 and 3 in order, got %d and %d", releases[0].ID, releases[1].ID)
	}
}

func TestTransformAllEmptyInput(t *testing.T) {
	transformer := newTestTransformer(nil)

	for _, raws := range [][]normalize.Record{nil, {}} {
		releases := transformer.TransformAll(context.Background(), raws)
		if releases == nil || len(releases) != 0 {
			t.Errorf("Expected empty non-nil result, got %#v", releases)
		}
	}
}

func TestTransformAllCancelledContext(t *testing.T) {
	transformer := newTestTransformer(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	releases := transformer.TransformAll(ctx, []normalize.Record{{"id": 1}})
	if len(releases) != 0 {
		t.Errorf("Expected cancelled transforms to be dropped, got %d", len(releases))
	}
}
