package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/handiism/tunetracer/internal/game"
	ihttp "github.com/handiism/tunetracer/internal/http"
	"github.com/handiism/tunetracer/internal/itunes"
	"github.com/handiism/tunetracer/internal/model"
	"github.com/handiism/tunetracer/internal/preview"
	"github.com/handiism/tunetracer/internal/spotify"
)

// EnvPrefix prefixes every environment override, e.g. TUNETRACER_GAME_ROUNDS.
const EnvPrefix = "TUNETRACER"

// ErrInvalidSettings is returned by Validate.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds all configuration options.
type Settings struct {
	Game    GameSettings    `mapstructure:"game"`
	Spotify SpotifySettings `mapstructure:"spotify"`
	ITunes  ITunesSettings  `mapstructure:"itunes"`
	Resolve ResolveSettings `mapstructure:"resolve"`
	HTTP    HTTPSettings    `mapstructure:"http"`
	Player  PlayerSettings  `mapstructure:"player"`
	Display DisplaySettings `mapstructure:"display"`
}

// GameSettings configures sessions.
type GameSettings struct {
	Difficulty   string        `mapstructure:"difficulty"` // easy, pro, legend
	Rounds       int           `mapstructure:"rounds"`
	Source       string        `mapstructure:"source"` // demo, spotify:<id>, file:<path>, dir:<path>
	TickInterval time.Duration `mapstructure:"tick_interval"`
	RevealPause  time.Duration `mapstructure:"reveal_pause"`
}

// SpotifySettings configures the primary catalog.
type SpotifySettings struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	TokenURL     string `mapstructure:"token_url"`
	APIURL       string `mapstructure:"api_url"`
}

// ITunesSettings configures the secondary catalog.
type ITunesSettings struct {
	SearchURL string `mapstructure:"search_url"`
}

// ResolveSettings configures preview resolution.
type ResolveSettings struct {
	SearchLimit  int           `mapstructure:"search_limit"`
	StageTimeout time.Duration `mapstructure:"stage_timeout"`
}

// HTTPSettings configures the shared HTTP client.
type HTTPSettings struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	UserAgent     string        `mapstructure:"user_agent"`
	MaxRetries    int           `mapstructure:"max_retries"`
	RetryCooldown float64       `mapstructure:"retry_cooldown"`
	RetryExponent float64       `mapstructure:"retry_exponent"`
}

// PlayerSettings configures audio playback.
type PlayerSettings struct {
	// Command is the player invocation; the URL is appended as last argument.
	// "none" plays nothing.
	Command string `mapstructure:"command"`
}

// DisplaySettings configures the terminal UI.
type DisplaySettings struct {
	ShowArtwork  bool   `mapstructure:"show_artwork"`
	ArtworkWidth int    `mapstructure:"artwork_width"`
	ExportFormat string `mapstructure:"export_format"` // m3u, pls
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	httpCfg := ihttp.DefaultConfig()
	resolveCfg := preview.DefaultConfig()

	return &Settings{
		Game: GameSettings{
			Difficulty:   model.DifficultyEasy.String(),
			Rounds:       10,
			Source:       "demo",
			TickInterval: game.DefaultTickInterval,
			RevealPause:  game.DefaultRevealPause,
		},
		Spotify: SpotifySettings{
			TokenURL: spotify.DefaultTokenURL,
			APIURL:   spotify.DefaultAPIURL,
		},
		ITunes: ITunesSettings{
			SearchURL: itunes.DefaultSearchURL,
		},
		Resolve: ResolveSettings{
			SearchLimit:  resolveCfg.SearchLimit,
			StageTimeout: resolveCfg.StageTimeout,
		},
		HTTP: HTTPSettings{
			Timeout:       httpCfg.Timeout,
			UserAgent:     httpCfg.UserAgent,
			MaxRetries:    httpCfg.MaxRetries,
			RetryCooldown: httpCfg.RetryCooldown,
			RetryExponent: httpCfg.RetryExponent,
		},
		Player: PlayerSettings{
			Command: "ffplay -nodisp -autoexit -loglevel quiet",
		},
		Display: DisplaySettings{
			ShowArtwork:  true,
			ArtworkWidth: 24,
			ExportFormat: "m3u",
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, _ = os.UserHomeDir()
	}
	return filepath.Join(dir, "tunetracer", "config.yaml")
}

// values flattens settings into viper keys.
func (s *Settings) values() map[string]any {
	return map[string]any{
		"game.difficulty":       s.Game.Difficulty,
		"game.rounds":           s.Game.Rounds,
		"game.source":           s.Game.Source,
		"game.tick_interval":    s.Game.TickInterval.String(),
		"game.reveal_pause":     s.Game.RevealPause.String(),
		"spotify.client_id":     s.Spotify.ClientID,
		"spotify.client_secret": s.Spotify.ClientSecret,
		"spotify.token_url":     s.Spotify.TokenURL,
		"spotify.api_url":       s.Spotify.APIURL,
		"itunes.search_url":     s.ITunes.SearchURL,
		"resolve.search_limit":  s.Resolve.SearchLimit,
		"resolve.stage_timeout": s.Resolve.StageTimeout.String(),
		"http.timeout":          s.HTTP.Timeout.String(),
		"http.user_agent":       s.HTTP.UserAgent,
		"http.max_retries":      s.HTTP.MaxRetries,
		"http.retry_cooldown":   s.HTTP.RetryCooldown,
		"http.retry_exponent":   s.HTTP.RetryExponent,
		"player.command":        s.Player.Command,
		"display.show_artwork":  s.Display.ShowArtwork,
		"display.artwork_width": s.Display.ArtworkWidth,
		"display.export_format": s.Display.ExportFormat,
	}
}

// Tree returns settings as nested sections keyed like the config file.
func (s *Settings) Tree() map[string]map[string]any {
	tree := map[string]map[string]any{}
	for key, value := range s.values() {
		section, name, _ := strings.Cut(key, ".")
		if tree[section] == nil {
			tree[section] = map[string]any{}
		}
		tree[section][name] = value
	}
	return tree
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range DefaultSettings().values() {
		v.SetDefault(key, value)
	}
	return v
}

// Load reads settings from a JSON, YAML or TOML file and applies
// TUNETRACER_* environment overrides.
//
// A missing file is not an error: defaults plus environment are returned.
// An empty path skips the file entirely.
func Load(path string) (*Settings, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return settings, nil
}

// Save writes settings to path. The format follows the file extension.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	v := viper.New()
	for key, value := range s.values() {
		v.Set(key, value)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	var errs []error

	if _, err := model.ParseDifficulty(s.Game.Difficulty); err != nil {
		errs = append(errs, err)
	}
	if s.Game.Rounds <= 0 {
		errs = append(errs, fmt.Errorf("game.rounds must be positive, got %d", s.Game.Rounds))
	}
	if s.Game.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("game.tick_interval must be positive, got %s", s.Game.TickInterval))
	}
	if s.Game.RevealPause < 0 {
		errs = append(errs, fmt.Errorf("game.reveal_pause must not be negative, got %s", s.Game.RevealPause))
	}
	if s.Resolve.SearchLimit < 1 || s.Resolve.SearchLimit > 50 {
		errs = append(errs, fmt.Errorf("resolve.search_limit must be within 1..50, got %d", s.Resolve.SearchLimit))
	}
	if s.Resolve.StageTimeout <= 0 {
		errs = append(errs, fmt.Errorf("resolve.stage_timeout must be positive, got %s", s.Resolve.StageTimeout))
	}
	switch s.Display.ExportFormat {
	case "m3u", "pls":
	default:
		errs = append(errs, fmt.Errorf("display.export_format must be m3u or pls, got %q", s.Display.ExportFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

// HasSpotifyCredentials reports whether the primary catalog can be used.
func (s *Settings) HasSpotifyCredentials() bool {
	return s.Spotify.ClientID != "" && s.Spotify.ClientSecret != ""
}

// PlayerArgs splits the player command into program and arguments.
// Returns nil when playback is disabled.
func (s *Settings) PlayerArgs() []string {
	fields := strings.Fields(s.Player.Command)
	if len(fields) == 0 || fields[0] == "none" {
		return nil
	}
	return fields
}

// ToEngineOptions converts settings to game options.
func (s *Settings) ToEngineOptions() (game.Options, error) {
	difficulty, err := model.ParseDifficulty(s.Game.Difficulty)
	if err != nil {
		return game.Options{}, err
	}

	return game.Options{
		Difficulty:   difficulty,
		TotalRounds:  s.Game.Rounds,
		TickInterval: s.Game.TickInterval,
		RevealPause:  s.Game.RevealPause,
	}, nil
}

// ToResolverConfig converts settings to a preview resolver config.
func (s *Settings) ToResolverConfig() preview.Config {
	return preview.Config{
		SearchLimit:  s.Resolve.SearchLimit,
		StageTimeout: s.Resolve.StageTimeout,
	}
}

// ToHTTPConfig converts settings to an HTTP client config.
func (s *Settings) ToHTTPConfig() ihttp.Config {
	return ihttp.Config{
		Timeout:       s.HTTP.Timeout,
		UserAgent:     s.HTTP.UserAgent,
		MaxRetries:    s.HTTP.MaxRetries,
		RetryCooldown: s.HTTP.RetryCooldown,
		RetryExponent: s.HTTP.RetryExponent,
	}
}
