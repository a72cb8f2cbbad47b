// Package itunes queries the public iTunes Search API. It needs no
// credentials and serves two purposes: the last preview-resolution stage and
// the demo catalog of current top hits.
package itunes

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	ihttp "github.com/handiism/tunetracer/internal/http"
	"github.com/handiism/tunetracer/internal/itunes/dto"
	"github.com/handiism/tunetracer/internal/model"
)

// DefaultSearchURL is the iTunes Search API endpoint.
const DefaultSearchURL = "https://itunes.apple.com/search"

// TopHitsLimit is the size of the demo catalog.
const TopHitsLimit = 50

// Client searches the iTunes catalog.
type Client struct {
	searchURL string
	http      *ihttp.Client
}

// NewClient creates a Client. An empty searchURL uses DefaultSearchURL.
func NewClient(client *ihttp.Client, searchURL string) *Client {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	return &Client{searchURL: searchURL, http: client}
}

// Search runs a free-text song search.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]dto.JSONResult, error) {
	params := url.Values{}
	params.Set("term", strings.TrimSpace(term))
	params.Set("media", "music")
	params.Set("limit", strconv.Itoa(limit))

	var payload dto.JSONSearch
	if err := c.http.GetJSON(ctx, c.searchURL+"?"+params.Encode(), nil, &payload); err != nil {
		return nil, fmt.Errorf("itunes search %q: %w", term, err)
	}
	return payload.Results, nil
}

// PreviewURL returns the preview of the first result for title and artist,
// or an empty string if the first result has none.
func (c *Client) PreviewURL(ctx context.Context, title, artist string) (string, error) {
	results, err := c.Search(ctx, title+" "+artist, 1)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].PreviewURL, nil
}

// TopHits returns the demo catalog of popular songs.
func (c *Client) TopHits(ctx context.Context) ([]model.Track, error) {
	params := url.Values{}
	params.Set("term", "top hits")
	params.Set("media", "music")
	params.Set("limit", strconv.Itoa(TopHitsLimit))

	var payload dto.JSONSearch
	if err := c.http.GetJSONWithRetry(ctx, c.searchURL+"?"+params.Encode(), nil, &payload); err != nil {
		return nil, fmt.Errorf("itunes top hits: %w", err)
	}

	tracks := make([]model.Track, 0, len(payload.Results))
	for _, r := range payload.Results {
		if r.TrackID == 0 || r.TrackName == "" {
			continue
		}
		tracks = append(tracks, r.ToTrack())
	}
	return tracks, nil
}
