package model

import "strings"

// Track represents a single song that can be the target or a decoy of a round.
//
// Track is an immutable value. Two Track values with the same ID are the same
// track for deduplication and decoy exclusion, regardless of their other fields.
//
// DirectAudioURL is optional. When present it is played as-is; when empty the
// preview resolver searches the configured catalogs for a short excerpt.
//
// Example:
//
//	track := model.Track{
//	    ID:     "4uLU6hMCjMI75M1A2tKUQC",
//	    Title:  "Never Gonna Give You Up",
//	    Artist: "Rick Astley",
//	}
//	if !track.HasDirectAudio() {
//	    url, ok := resolver.Resolve(ctx, track.Title, track.Artist, "")
//	}
type Track struct {
	// ID uniquely identifies the track within a candidate pool.
	ID string `json:"id" yaml:"id" toml:"id"`

	// Title is the track title shown as an answer option.
	Title string `json:"title" yaml:"title" toml:"title"`

	// Artist is the primary artist name.
	Artist string `json:"artist" yaml:"artist" toml:"artist"`

	// ArtworkURL points to the album cover, revealed after the round.
	// Empty string means no artwork is available.
	ArtworkURL string `json:"artwork_url,omitempty" yaml:"artwork_url,omitempty" toml:"artwork_url,omitempty"`

	// DirectAudioURL is a playable short-audio URL, if the catalog provided one.
	// It may be absent or expired.
	DirectAudioURL string `json:"direct_audio_url,omitempty" yaml:"direct_audio_url,omitempty" toml:"direct_audio_url,omitempty"`
}

// HasDirectAudio returns true if the track carries its own playable URL.
func (t Track) HasDirectAudio() bool {
	return strings.TrimSpace(t.DirectAudioURL) != ""
}

// HasArtwork returns true if the track has cover art available.
func (t Track) HasArtwork() bool {
	return t.ArtworkURL != ""
}

// String returns "Artist - Title", the form used in logs and playlists.
func (t Track) String() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}
