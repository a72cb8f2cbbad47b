package spotify

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	ihttp "github.com/handiism/tunetracer/internal/http"
	"github.com/handiism/tunetracer/internal/spotify/dto"
)

// DefaultTokenURL is the Spotify accounts token endpoint.
const DefaultTokenURL = "https://accounts.spotify.com/api/token"

// expiryMargin renews tokens slightly before they expire. Short-lived tokens
// renew at half their lifetime instead.
const expiryMargin = 30 * time.Second

// ErrNoCredentials is returned when no client id or secret is configured.
var ErrNoCredentials = errors.New("spotify client credentials not configured")

// TokenSource fetches and caches an app token with the client-credentials grant.
//
// The first call to Token performs the exchange; later calls reuse the cached
// token until it is about to expire. Failures are not cached, so the next call
// tries again. TokenSource is safe for concurrent use.
type TokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	http         *ihttp.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
	now    func() time.Time
}

// NewTokenSource creates a TokenSource. An empty tokenURL uses DefaultTokenURL.
func NewTokenSource(client *ihttp.Client, clientID, clientSecret, tokenURL string) *TokenSource {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &TokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		http:         client,
		now:          time.Now,
	}
}

// Token returns a valid bearer token, fetching a new one if needed.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	if ts.clientID == "" || ts.clientSecret == "" {
		return "", ErrNoCredentials
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && ts.now().Before(ts.expiry) {
		return ts.token, nil
	}

	values := url.Values{}
	values.Set("grant_type", "client_credentials")

	header := http.Header{}
	creds := base64.StdEncoding.EncodeToString([]byte(ts.clientID + ":" + ts.clientSecret))
	header.Set("Authorization", "Basic "+creds)

	var payload dto.JSONToken
	if err := ts.http.PostForm(ctx, ts.tokenURL, values, header, &payload); err != nil {
		return "", fmt.Errorf("fetch spotify token: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("fetch spotify token: response missing access_token")
	}

	ts.token = payload.AccessToken
	lifetime := time.Duration(payload.ExpiresIn) * time.Second
	ts.expiry = ts.now().Add(lifetime - min(expiryMargin, lifetime/2))
	return ts.token, nil
}

// Invalidate drops the cached token, e.g. after a 401 response.
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	ts.token = ""
	ts.mu.Unlock()
}
