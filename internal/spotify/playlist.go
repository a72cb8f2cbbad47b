package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/handiism/tunetracer/internal/model"
	"github.com/handiism/tunetracer/internal/progress"
	"github.com/handiism/tunetracer/internal/spotify/dto"
	"golang.org/x/sync/errgroup"
)

const (
	// PageSize is the number of playlist items requested per page.
	PageSize = 50

	// MaxPages caps a playlist fetch at 150 tracks.
	MaxPages = 3
)

// PlaylistTracks fetches up to MaxPages pages of a playlist.
//
// The first page is fetched alone to learn the playlist size; the remaining
// pages are fetched concurrently. Items without an id, a name or an artist
// are dropped and the result is deduplicated by track ID, keeping playlist
// order.
//
// A failing first page is returned as an error. A failing later page is
// reported as a warning and the tracks fetched so far are returned.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, onProgress progress.Func) ([]model.Track, error) {
	first, err := c.playlistPage(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}

	pages := make([]*dto.JSONPlaylistPage, MaxPages)
	pages[0] = first

	g, gctx := errgroup.WithContext(ctx)
	for i := 1; i < MaxPages && first.Total > i*PageSize; i++ {
		g.Go(func() error {
			page, err := c.playlistPage(gctx, playlistID, i*PageSize)
			if err != nil {
				onProgress.Emit(progress.LevelWarning, "Playlist page %d failed: %v", i+1, err)
				return nil
			}
			pages[i] = page
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	var tracks []model.Track
	for _, page := range pages {
		if page == nil {
			continue
		}
		for _, item := range page.Items {
			if item.Track == nil || !item.Track.Playable() {
				continue
			}
			if _, dup := seen[item.Track.ID]; dup {
				continue
			}
			seen[item.Track.ID] = struct{}{}
			tracks = append(tracks, item.Track.ToTrack())
		}
	}

	onProgress.Emit(progress.LevelVerbose, "Fetched %d tracks from playlist %s", len(tracks), playlistID)
	return tracks, nil
}

func (c *Client) playlistPage(ctx context.Context, playlistID string, offset int) (*dto.JSONPlaylistPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(PageSize))
	params.Set("offset", strconv.Itoa(offset))

	endpoint := fmt.Sprintf("%s/playlists/%s/tracks?%s", c.apiURL, url.PathEscape(playlistID), params.Encode())

	var page dto.JSONPlaylistPage
	if err := c.getJSON(ctx, endpoint, &page, true); err != nil {
		return nil, fmt.Errorf("fetch playlist %s at offset %d: %w", playlistID, offset, err)
	}
	return &page, nil
}
