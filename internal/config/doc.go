// Package config provides configuration management for tunetracer.
//
// This package handles:
//   - Loading settings from JSON, YAML or TOML files
//   - TUNETRACER_* environment overrides
//   - Default configuration values
//   - Conversion to game, preview and HTTP configs for other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// 10 rounds on Easy (20s) from the iTunes demo set
//	// 100ms countdown ticks, 2s reveal pause
//	// ffplay for playback
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // A missing file is not an error; a malformed one is
//	}
//
// Every key can be overridden from the environment by upper-casing it,
// replacing dots with underscores and prefixing TUNETRACER_:
//
//	TUNETRACER_GAME_DIFFICULTY=legend
//	TUNETRACER_SPOTIFY_CLIENT_ID=...
//	TUNETRACER_SPOTIFY_CLIENT_SECRET=...
//
// # Saving Settings
//
//	settings.Game.Rounds = 5
//	err := settings.Save(config.DefaultPath())
package config
