package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	ihttp "github.com/handiism/tunetracer/internal/http"
	"github.com/handiism/tunetracer/internal/spotify/dto"
)

// DefaultAPIURL is the Spotify Web API base URL.
const DefaultAPIURL = "https://api.spotify.com/v1"

// Client queries the Spotify Web API with an app token.
//
// Example usage:
//
//	tokens := spotify.NewTokenSource(httpClient, clientID, secret, "")
//	client := spotify.NewClient(httpClient, tokens, "")
//
//	results, err := client.SearchTracks(ctx, spotify.StrictQuery("Song", "Artist"), 10)
type Client struct {
	apiURL string
	http   *ihttp.Client
	tokens *TokenSource
}

// NewClient creates a Client. An empty apiURL uses DefaultAPIURL.
func NewClient(client *ihttp.Client, tokens *TokenSource, apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		http:   client,
		tokens: tokens,
	}
}

// Token returns the cached app token, fetching it on first use.
func (c *Client) Token(ctx context.Context) (string, error) {
	return c.tokens.Token(ctx)
}

// SearchTracks runs a track search and returns the raw result items.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]dto.JSONTrack, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))

	var payload dto.JSONSearch
	if err := c.getJSON(ctx, c.apiURL+"/search?"+params.Encode(), &payload, false); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return payload.Tracks.Items, nil
}

// getJSON performs an authorized GET. A 401 drops the cached token so the
// next call fetches a fresh one.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any, retry bool) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	if retry {
		err = c.http.GetJSONWithRetry(ctx, rawURL, header, out)
	} else {
		err = c.http.GetJSON(ctx, rawURL, header, out)
	}
	if ihttp.IsStatus(err, http.StatusUnauthorized) {
		c.tokens.Invalidate()
	}
	return err
}

// StrictQuery builds a field-filtered search matching title and artist exactly.
func StrictQuery(title, artist string) string {
	return fmt.Sprintf(`track:"%s" artist:"%s"`, stripQuotes(title), stripQuotes(artist))
}

// LooseQuery builds an unquoted free-text search of title and artist.
func LooseQuery(title, artist string) string {
	return strings.TrimSpace(stripQuotes(title) + " " + stripQuotes(artist))
}

func stripQuotes(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}
