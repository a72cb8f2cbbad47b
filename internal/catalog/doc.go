// Package catalog provides the sources a game's candidate pool is fetched from.
//
// Every source implements Provider:
//
//   - SpotifyPlaylist: up to 150 tracks of a Spotify playlist
//   - ITunesTopHits: the demo set, 50 iTunes "top hits" with preview URLs
//   - File: a curated YAML track list
//   - LocalDir: tagged MP3 files below a directory, played from disk
//
// Sources are usually picked from a source string:
//
//	source, err := catalog.ParseSource("spotify:37i9dQZF1DXcBWIGoYBM5M")
//	provider, err := catalog.NewProvider(source, catalog.Backends{
//	    Spotify: spotifyClient,
//	    ITunes:  itunesClient,
//	})
//	session, err := game.StartSession(ctx, provider, opts)
package catalog
