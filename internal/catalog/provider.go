package catalog

import (
	"context"
	"errors"

	"github.com/handiism/tunetracer/internal/model"
	"github.com/handiism/tunetracer/internal/progress"
)

// ErrBackendUnavailable is returned when a source needs a catalog client
// that was not configured (e.g. Spotify without credentials).
var ErrBackendUnavailable = errors.New("catalog backend not configured")

// Provider fetches the tracks a session is played from.
type Provider interface {
	// Name describes the source for logs.
	Name() string

	// FetchCandidates returns the candidate tracks. Deduplication and the
	// minimum pool size are enforced later by model.NewCandidatePool.
	FetchCandidates(ctx context.Context) ([]model.Track, error)
}

// PlaylistFetcher reads playlist tracks. Implemented by *spotify.Client.
type PlaylistFetcher interface {
	PlaylistTracks(ctx context.Context, playlistID string, onProgress progress.Func) ([]model.Track, error)
}

// TopHitsFetcher reads the demo track set. Implemented by *itunes.Client.
type TopHitsFetcher interface {
	TopHits(ctx context.Context) ([]model.Track, error)
}

// SpotifyPlaylist fetches the tracks of a Spotify playlist.
type SpotifyPlaylist struct {
	Client     PlaylistFetcher
	PlaylistID string
	OnProgress progress.Func
}

func (p *SpotifyPlaylist) Name() string {
	return "spotify playlist " + p.PlaylistID
}

func (p *SpotifyPlaylist) FetchCandidates(ctx context.Context) ([]model.Track, error) {
	if p.Client == nil {
		return nil, ErrBackendUnavailable
	}
	p.OnProgress.Emit(progress.LevelInfo, "Fetching playlist %s", p.PlaylistID)

	tracks, err := p.Client.PlaylistTracks(ctx, p.PlaylistID, p.OnProgress)
	if err != nil {
		return nil, err
	}

	p.OnProgress.Emit(progress.LevelVerbose, "Playlist %s has %d playable tracks", p.PlaylistID, len(tracks))
	return tracks, nil
}

// ITunesTopHits fetches the demo set.
type ITunesTopHits struct {
	Client     TopHitsFetcher
	OnProgress progress.Func
}

func (p *ITunesTopHits) Name() string {
	return "itunes top hits"
}

func (p *ITunesTopHits) FetchCandidates(ctx context.Context) ([]model.Track, error) {
	if p.Client == nil {
		return nil, ErrBackendUnavailable
	}
	p.OnProgress.Emit(progress.LevelInfo, "Fetching demo tracks")

	tracks, err := p.Client.TopHits(ctx)
	if err != nil {
		return nil, err
	}

	p.OnProgress.Emit(progress.LevelVerbose, "Demo set has %d tracks", len(tracks))
	return tracks, nil
}
