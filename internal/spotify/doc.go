// Package spotify provides the Spotify Web API calls used by the quiz: app
// authentication with the client-credentials grant, track search for the
// preview resolver and playlist listing for the catalog.
//
// # Authentication
//
// TokenSource exchanges the client id and secret for an app token on first use
// and caches it until shortly before it expires:
//
//	tokens := spotify.NewTokenSource(httpClient, id, secret, "")
//	token, err := tokens.Token(ctx)
//
// # Search
//
//	items, err := client.SearchTracks(ctx, spotify.StrictQuery(title, artist), 10)
//	items, err = client.SearchTracks(ctx, spotify.LooseQuery(title, artist), 10)
//
// # Playlists
//
//	tracks, err := client.PlaylistTracks(ctx, "37i9dQZF1DXcBWIGoYBM5M", onProgress)
//
// Playlists are read in pages of 50, at most 150 tracks, deduplicated by ID.
package spotify
