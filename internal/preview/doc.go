// Package preview resolves a playable short-audio URL for a track that has
// none of its own.
//
// Resolution is best effort. The Resolver tries a direct URL, then an
// authenticated primary catalog (strict search, then relaxed search), then an
// unauthenticated secondary catalog. Every network stage runs under its own
// timeout so a stalled request can never hold a round forever:
//
//	resolver := preview.NewResolver(
//	    preview.SpotifyPrimary(spotifyClient),
//	    preview.ITunesSecondary(itunesClient),
//	    preview.DefaultConfig(),
//	    onProgress,
//	)
//
//	url, ok := resolver.Resolve(ctx, track.Title, track.Artist, track.DirectAudioURL)
//	if !ok {
//	    // skip the round
//	}
package preview
