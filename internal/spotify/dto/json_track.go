package dto

import (
	"github.com/handiism/tunetracer/internal/model"
)

// JSONTrack represents a track object from the Spotify Web API.
type JSONTrack struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	PreviewURL *string      `json:"preview_url"`
	Popularity int          `json:"popularity"`
	Artists    []JSONArtist `json:"artists"`
	Album      JSONAlbum    `json:"album"`
}

// JSONArtist is a simplified artist object.
type JSONArtist struct {
	Name string `json:"name"`
}

// JSONAlbum is a simplified album object.
type JSONAlbum struct {
	Name   string      `json:"name"`
	Images []JSONImage `json:"images"`
}

// JSONImage is an album image. The API lists the largest first.
type JSONImage struct {
	URL string `json:"url"`
}

// Preview returns the preview URL or an empty string.
func (jt *JSONTrack) Preview() string {
	if jt.PreviewURL == nil {
		return ""
	}
	return *jt.PreviewURL
}

// ArtistNames returns the names of all credited artists.
func (jt *JSONTrack) ArtistNames() []string {
	names := make([]string, 0, len(jt.Artists))
	for _, a := range jt.Artists {
		names = append(names, a.Name)
	}
	return names
}

// Playable reports whether the track has the fields a quiz round needs.
func (jt *JSONTrack) Playable() bool {
	return jt.ID != "" && jt.Name != "" && len(jt.Artists) > 0
}

// ToTrack converts JSONTrack to a model.Track.
func (jt *JSONTrack) ToTrack() model.Track {
	var artwork string
	if len(jt.Album.Images) > 0 {
		artwork = jt.Album.Images[0].URL
	}

	var artist string
	if len(jt.Artists) > 0 {
		artist = jt.Artists[0].Name
	}

	return model.Track{
		ID:             jt.ID,
		Title:          jt.Name,
		Artist:         artist,
		ArtworkURL:     artwork,
		DirectAudioURL: jt.Preview(),
	}
}
