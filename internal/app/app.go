// Package app wires settings into the clients, resolver and player a game
// session needs. The CLI and the TUI both build their sessions through it.
package app

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/handiism/tunetracer/internal/artwork"
	"github.com/handiism/tunetracer/internal/catalog"
	"github.com/handiism/tunetracer/internal/config"
	"github.com/handiism/tunetracer/internal/game"
	ihttp "github.com/handiism/tunetracer/internal/http"
	"github.com/handiism/tunetracer/internal/itunes"
	"github.com/handiism/tunetracer/internal/player"
	"github.com/handiism/tunetracer/internal/preview"
	"github.com/handiism/tunetracer/internal/progress"
	"github.com/handiism/tunetracer/internal/spotify"
)

// App holds the long-lived collaborators of a run.
type App struct {
	Settings *config.Settings
	HTTP     *ihttp.Client
	Spotify  *spotify.Client // nil without credentials
	ITunes   *itunes.Client
	Resolver *preview.Resolver
	Player   game.Player
	Artwork  *artwork.Renderer

	onProgress progress.Func
}

// New validates settings and builds an App. Progress of every component
// is reported to onProgress.
func New(settings *config.Settings, onProgress progress.Func) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	httpClient := ihttp.NewClient(settings.ToHTTPConfig())
	itunesClient := itunes.NewClient(httpClient, settings.ITunes.SearchURL)

	a := &App{
		Settings:   settings,
		HTTP:       httpClient,
		ITunes:     itunesClient,
		Artwork:    artwork.NewRenderer(httpClient),
		onProgress: onProgress,
	}

	var primary preview.Primary
	if settings.HasSpotifyCredentials() {
		tokens := spotify.NewTokenSource(httpClient, settings.Spotify.ClientID, settings.Spotify.ClientSecret, settings.Spotify.TokenURL)
		a.Spotify = spotify.NewClient(httpClient, tokens, settings.Spotify.APIURL)
		primary = preview.SpotifyPrimary(a.Spotify)
	} else {
		onProgress.Emit(progress.LevelVerbose, "No Spotify credentials, previews come from iTunes only")
	}

	a.Resolver = preview.NewResolver(primary, preview.ITunesSecondary(itunesClient), settings.ToResolverConfig(), onProgress)
	a.Player = newPlayer(settings.PlayerArgs(), onProgress)

	return a, nil
}

// newPlayer returns an Exec player for args, falling back to mpv and then to
// silence when the binary is not installed.
func newPlayer(args []string, onProgress progress.Func) game.Player {
	if args == nil {
		return player.NewSilent()
	}

	for _, candidate := range [][]string{args, player.MPVCommand()} {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			return player.NewExec(candidate)
		}
	}

	onProgress.Emit(progress.LevelWarning, "%s not found, playing silently", args[0])
	return player.NewSilent()
}

// Provider builds the catalog provider for a source string.
func (a *App) Provider(source string) (catalog.Provider, error) {
	parsed, err := catalog.ParseSource(source)
	if err != nil {
		return nil, err
	}

	backends := catalog.Backends{ITunes: a.ITunes, OnProgress: a.onProgress}
	if a.Spotify != nil {
		backends.Spotify = a.Spotify
	}
	return catalog.NewProvider(parsed, backends)
}

// StartSession fetches the pool of source and creates a session with the
// configured difficulty and round count.
func (a *App) StartSession(ctx context.Context, source string) (*game.Session, error) {
	opts, err := a.Settings.ToEngineOptions()
	if err != nil {
		return nil, err
	}

	provider, err := a.Provider(source)
	if err != nil {
		return nil, err
	}

	session, err := game.StartSession(ctx, provider, opts)
	if err != nil {
		return nil, err
	}

	a.onProgress.Emit(progress.LevelInfo, "Session %s: %d tracks from %s", session.ID[:8], session.Pool.Len(), provider.Name())
	return session, nil
}

// Deps returns engine dependencies reporting to onEvent.
func (a *App) Deps(onEvent func(game.Event)) game.Deps {
	return game.Deps{
		Resolver: a.Resolver,
		Player:   a.Player,
		OnEvent:  onEvent,
	}
}

// WithGame returns a copy of a with different game settings, sharing the
// clients. Used when the player changes difficulty or rounds in the menu.
func (a *App) WithGame(g config.GameSettings) (*App, error) {
	settings := *a.Settings
	settings.Game = g
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("game settings: %w", err)
	}
	clone := *a
	clone.Settings = &settings
	return &clone, nil
}
