package preview

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/handiism/tunetracer/internal/progress"
)

// Stage identifies which fallback step produced a preview URL.
type Stage int

const (
	// StageNone means no stage found a usable URL.
	StageNone Stage = iota
	StageDirect
	StagePrimaryStrict
	StagePrimaryRelaxed
	StageSecondary
)

func (s Stage) String() string {
	switch s {
	case StageDirect:
		return "direct"
	case StagePrimaryStrict:
		return "primary-strict"
	case StagePrimaryRelaxed:
		return "primary-relaxed"
	case StageSecondary:
		return "secondary"
	default:
		return "none"
	}
}

// Candidate is a search result from the primary catalog, reduced to the
// fields the resolver inspects.
type Candidate struct {
	ID         string
	Title      string
	Artists    []string
	Popularity int
	PreviewURL string
}

// Primary is the authenticated catalog searched in the strict and relaxed stages.
type Primary interface {
	// Token returns a bearer credential, cached by the implementation.
	Token(ctx context.Context) (string, error)

	// Search runs a track search. Strict requests exact title+artist matching.
	Search(ctx context.Context, title, artist string, strict bool, limit int) ([]Candidate, error)
}

// Secondary is the unauthenticated free-text catalog searched last.
type Secondary interface {
	PreviewURL(ctx context.Context, title, artist string) (string, error)
}

// Config holds resolver settings.
type Config struct {
	// SearchLimit is the number of primary results inspected per stage.
	SearchLimit int

	// StageTimeout bounds every network stage, including the token fetch.
	StageTimeout time.Duration
}

// DefaultConfig returns the default resolver settings.
func DefaultConfig() Config {
	return Config{
		SearchLimit:  10,
		StageTimeout: 4 * time.Second,
	}
}

// Resolver locates a playable short-audio URL for a track through an ordered
// chain of stages:
//
//  1. Direct: the track's own URL, with no network call
//  2. Primary strict: exact title+artist search
//  3. Primary relaxed: free-text title+artist search
//  4. Secondary: first result of the secondary catalog
//
// Each stage is independently fallible. A failing stage counts as "no result"
// and the chain moves on. If the primary token cannot be obtained, stages 2
// and 3 are skipped. Exhausting every stage is a normal outcome, not an error.
//
// Either backend may be nil, in which case its stages are skipped.
type Resolver struct {
	primary    Primary
	secondary  Secondary
	cfg        Config
	onProgress progress.Func
}

// NewResolver creates a Resolver.
func NewResolver(primary Primary, secondary Secondary, cfg Config, onProgress progress.Func) *Resolver {
	def := DefaultConfig()
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = def.SearchLimit
	}
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = def.StageTimeout
	}
	return &Resolver{
		primary:    primary,
		secondary:  secondary,
		cfg:        cfg,
		onProgress: onProgress,
	}
}

// Resolve returns a playable URL for the track, or false if none was found.
func (r *Resolver) Resolve(ctx context.Context, title, artist, directURL string) (string, bool) {
	url, stage := r.ResolveStage(ctx, title, artist, directURL)
	return url, stage != StageNone
}

// ResolveStage is Resolve that also reports which stage succeeded.
func (r *Resolver) ResolveStage(ctx context.Context, title, artist, directURL string) (string, Stage) {
	if u := strings.TrimSpace(directURL); u != "" {
		return u, StageDirect
	}

	if r.primary != nil {
		if url, stage := r.resolvePrimary(ctx, title, artist); stage != StageNone {
			return url, stage
		}
	}

	if ctx.Err() != nil {
		return "", StageNone
	}

	if r.secondary != nil {
		url, err := withTimeout(ctx, r.cfg.StageTimeout, func(ctx context.Context) (string, error) {
			return r.secondary.PreviewURL(ctx, title, artist)
		})
		switch {
		case err != nil:
			r.onProgress.Emit(progress.LevelVerbose, "Secondary search failed for %q: %v", title, err)
		case url != "":
			r.onProgress.Emit(progress.LevelVerbose, "Resolved %q from secondary catalog", title)
			return url, StageSecondary
		}
	}

	r.onProgress.Emit(progress.LevelVerbose, "No preview found for %q by %s", title, artist)
	return "", StageNone
}

func (r *Resolver) resolvePrimary(ctx context.Context, title, artist string) (string, Stage) {
	_, err := withTimeout(ctx, r.cfg.StageTimeout, r.primary.Token)
	if err != nil {
		r.onProgress.Emit(progress.LevelVerbose, "Primary catalog unavailable, skipping: %v", err)
		return "", StageNone
	}

	stages := []struct {
		stage  Stage
		strict bool
	}{
		{StagePrimaryStrict, true},
		{StagePrimaryRelaxed, false},
	}

	for _, s := range stages {
		if ctx.Err() != nil {
			return "", StageNone
		}

		candidates, err := withTimeout(ctx, r.cfg.StageTimeout, func(ctx context.Context) ([]Candidate, error) {
			return r.primary.Search(ctx, title, artist, s.strict, r.cfg.SearchLimit)
		})
		if err != nil {
			r.onProgress.Emit(progress.LevelVerbose, "Stage %s failed for %q: %v", s.stage, title, err)
			continue
		}

		if best, ok := Best(title, candidates); ok {
			r.onProgress.Emit(progress.LevelVerbose, "Resolved %q at stage %s (%s)", title, s.stage, best.ID)
			return best.PreviewURL, s.stage
		}
	}

	return "", StageNone
}

var variantPattern = regexp.MustCompile(`(?i)\b(remix|live)\b`)

// Disqualified reports whether candidateTitle is a remix or live variant that
// the requested title does not ask for.
func Disqualified(requestedTitle, candidateTitle string) bool {
	if variantPattern.MatchString(requestedTitle) {
		return false
	}
	return variantPattern.MatchString(candidateTitle)
}

// Best picks the most popular usable candidate. Usable means it has a preview
// URL and is not a disqualified variant. Ties keep the earlier result.
func Best(requestedTitle string, candidates []Candidate) (Candidate, bool) {
	var best Candidate
	found := false
	for _, c := range candidates {
		if strings.TrimSpace(c.PreviewURL) == "" || Disqualified(requestedTitle, c.Title) {
			continue
		}
		if !found || c.Popularity > best.Popularity {
			best = c
			found = true
		}
	}
	return best, found
}

// withTimeout runs fn under a per-stage deadline. A deadline hit by the stage
// itself is reported as errStageTimeout; cancellation of the parent is passed
// through unchanged.
func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := fn(stageCtx)
	if err != nil && ctx.Err() == nil && errors.Is(stageCtx.Err(), context.DeadlineExceeded) {
		var zero T
		return zero, errStageTimeout
	}
	return v, err
}

var errStageTimeout = errors.New("stage timed out")
