package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/tunetracer/internal/progress"
)

// ErrInvalidSource is returned for source strings that cannot be parsed.
var ErrInvalidSource = errors.New("invalid source")

// SourceKind identifies a Provider implementation.
type SourceKind int

const (
	SourceDemo SourceKind = iota
	SourceSpotify
	SourceFile
	SourceDir
)

// Source is a parsed source string.
type Source struct {
	Kind  SourceKind
	Value string
}

func (s Source) String() string {
	switch s.Kind {
	case SourceSpotify:
		return "spotify:" + s.Value
	case SourceFile:
		return "file:" + s.Value
	case SourceDir:
		return "dir:" + s.Value
	default:
		return "demo"
	}
}

// ParseSource parses "demo", "spotify:<playlist id or URL>", "file:<path>"
// or "dir:<path>".
func ParseSource(s string) (Source, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "demo") {
		return Source{Kind: SourceDemo}, nil
	}

	kind, value, found := strings.Cut(s, ":")
	if !found || strings.TrimSpace(value) == "" {
		return Source{}, fmt.Errorf("%w: %q", ErrInvalidSource, s)
	}
	value = strings.TrimSpace(value)

	switch strings.ToLower(kind) {
	case "spotify":
		id := PlaylistID(value)
		if id == "" {
			return Source{}, fmt.Errorf("%w: no playlist id in %q", ErrInvalidSource, s)
		}
		return Source{Kind: SourceSpotify, Value: id}, nil
	case "file":
		return Source{Kind: SourceFile, Value: value}, nil
	case "dir":
		return Source{Kind: SourceDir, Value: value}, nil
	case "https", "http":
		if id := PlaylistID(s); id != "" {
			return Source{Kind: SourceSpotify, Value: id}, nil
		}
	}

	return Source{}, fmt.Errorf("%w: %q", ErrInvalidSource, s)
}

// PlaylistID extracts the playlist ID from a bare ID, a
// "playlist:<id>" URI fragment or an open.spotify.com URL.
func PlaylistID(s string) string {
	if i := strings.Index(s, "playlist/"); i >= 0 {
		s = s[i+len("playlist/"):]
	} else if i := strings.Index(s, "playlist:"); i >= 0 {
		s = s[i+len("playlist:"):]
	} else if strings.Contains(s, "/") {
		return ""
	}
	if i := strings.IndexAny(s, "?#/"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Backends are the catalog clients providers may need.
type Backends struct {
	Spotify    PlaylistFetcher
	ITunes     TopHitsFetcher
	OnProgress progress.Func
}

// NewProvider builds the provider for source.
func NewProvider(source Source, backends Backends) (Provider, error) {
	switch source.Kind {
	case SourceDemo:
		if backends.ITunes == nil {
			return nil, fmt.Errorf("%w: itunes", ErrBackendUnavailable)
		}
		return &ITunesTopHits{Client: backends.ITunes, OnProgress: backends.OnProgress}, nil
	case SourceSpotify:
		if backends.Spotify == nil {
			return nil, fmt.Errorf("%w: spotify (set client id and secret)", ErrBackendUnavailable)
		}
		return &SpotifyPlaylist{Client: backends.Spotify, PlaylistID: source.Value, OnProgress: backends.OnProgress}, nil
	case SourceFile:
		return &File{Path: source.Value}, nil
	case SourceDir:
		return &LocalDir{Root: source.Value, OnProgress: backends.OnProgress}, nil
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrInvalidSource, source.Kind)
	}
}
