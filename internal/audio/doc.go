// Package audio exports the tracks a player missed as a playlist.
//
// # Playlist Generation
//
// Generate playlists in various formats:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	path, err := creator.WriteFile("missed", result.Missed)
//	// writes missed.m3u
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
package audio
