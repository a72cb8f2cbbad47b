package dto

import (
	"strconv"
	"strings"

	"github.com/handiism/tunetracer/internal/model"
)

// JSONSearch is the response of the iTunes Search API.
type JSONSearch struct {
	ResultCount int          `json:"resultCount"`
	Results     []JSONResult `json:"results"`
}

// JSONResult is a single song result.
type JSONResult struct {
	TrackID        int64  `json:"trackId"`
	TrackName      string `json:"trackName"`
	ArtistName     string `json:"artistName"`
	CollectionName string `json:"collectionName"`
	ArtworkURL100  string `json:"artworkUrl100"`
	PreviewURL     string `json:"previewUrl"`
}

// ToTrack converts JSONResult to a model.Track.
//
// IDs are prefixed with "itunes-" so they never collide with other catalogs.
// Artwork is requested at 600x600 instead of the 100x100 thumbnail.
func (r *JSONResult) ToTrack() model.Track {
	return model.Track{
		ID:             "itunes-" + strconv.FormatInt(r.TrackID, 10),
		Title:          r.TrackName,
		Artist:         r.ArtistName,
		ArtworkURL:     strings.Replace(r.ArtworkURL100, "100x100", "600x600", 1),
		DirectAudioURL: r.PreviewURL,
	}
}
