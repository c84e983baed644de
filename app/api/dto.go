package api

import (
	"fmt"
	"time"

	"github.com/lysyi3m/libria-client/app/release"
	"github.com/lysyi3m/libria-client/app/state"
)

type releaseResponse struct {
	ID          int64             `json:"id"`
	Code        string            `json:"code"`
	Year        string            `json:"year"`
	Type        string            `json:"type"`
	Names       namesResponse     `json:"names"`
	Poster      posterResponse    `json:"poster"`
	Datetime    datetimeResponse  `json:"datetime"`
	Episodes    []episodeResponse `json:"episodes"`
	Voices      []string          `json:"voices"`
	Genres      []string          `json:"genres"`
	Description *string           `json:"description"`
}

type namesResponse struct {
	RU       *string `json:"ru"`
	Original *string `json:"original"`
}

type posterResponse struct {
	Path  *string `json:"path"`
	Image *string `json:"image"` // local URL of the cached image
}

type datetimeResponse struct {
	Timestamp *int64     `json:"timestamp"`
	System    *time.Time `json:"system"`
	Human     *string    `json:"human"`
}

type episodeResponse struct {
	ID      int64            `json:"id"`
	Title   *string          `json:"title"`
	Sources []sourceResponse `json:"sources"`
}

type sourceResponse struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
}

func newReleaseResponse(r release.Release) releaseResponse {
	response := releaseResponse{
		ID:   r.ID,
		Code: r.Code,
		Year: r.Year,
		Type: r.Type,
		Names: namesResponse{
			RU:       r.Names.RU,
			Original: r.Names.Original,
		},
		Poster: posterResponse{Path: r.Poster.Path},
		Datetime: datetimeResponse{
			Timestamp: r.Datetime.Timestamp,
			System:    r.Datetime.System,
			Human:     r.Datetime.Human,
		},
		Episodes:    make([]episodeResponse, 0, len(r.Episodes)),
		Voices:      r.Voices,
		Genres:      r.Genres,
		Description: r.Description,
	}

	if r.Poster.Image != nil {
		image := fmt.Sprintf("/posters/%d", r.ID)
		response.Poster.Image = &image
	}

	for _, episode := range r.Episodes {
		sources := make([]sourceResponse, 0, len(episode.Sources))
		for _, source := range episode.Sources {
			sources = append(sources, sourceResponse{Quality: source.Quality, URL: source.URL})
		}
		response.Episodes = append(response.Episodes, episodeResponse{
			ID:      episode.ID,
			Title:   episode.Title,
			Sources: sources,
		})
	}

	return response
}

func newReleaseList(releases []release.Release) []releaseResponse {
	list := make([]releaseResponse, 0, len(releases))
	for _, r := range releases {
		list = append(list, newReleaseResponse(r))
	}
	return list
}

type settingsResponse struct {
	Sort     string `json:"sort"`
	Group    string `json:"group"`
	ShowSeen bool   `json:"show_seen"`
}

func newSettingsResponse(s state.FavoritesSettings) settingsResponse {
	return settingsResponse{Sort: s.Sort, Group: s.Group, ShowSeen: s.ShowSeen}
}
