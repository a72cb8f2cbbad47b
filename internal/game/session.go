package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/handiism/tunetracer/internal/model"
)

// CandidateSource supplies the tracks a session is played from.
type CandidateSource interface {
	Name() string
	FetchCandidates(ctx context.Context) ([]model.Track, error)
}

// Session is one game: a fixed pool, difficulty and round count.
type Session struct {
	ID   string
	Pool *model.CandidatePool
	Opts Options

	result *model.GameResult
}

// NewSession validates opts and builds the candidate pool from tracks.
//
// Returns ErrInvalidRounds if opts.TotalRounds is not positive and an error
// wrapping model.ErrPoolTooSmall if tracks hold fewer than four distinct IDs.
func NewSession(opts Options, tracks []model.Track) (*Session, error) {
	if opts.TotalRounds <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRounds, opts.TotalRounds)
	}

	pool, err := model.NewCandidatePool(tracks)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:   uuid.NewString(),
		Pool: pool,
		Opts: opts,
	}, nil
}

// StartSession fetches the pool from source and creates a session.
//
// A source failure is returned wrapped in ErrPoolFetch, so callers can tell
// it apart from model.ErrPoolTooSmall.
func StartSession(ctx context.Context, source CandidateSource, opts Options) (*Session, error) {
	tracks, err := source.FetchCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrPoolFetch, source.Name(), err)
	}
	return NewSession(opts, tracks)
}

// NewEngine creates a fresh engine for this session.
func (s *Session) NewEngine(deps Deps) *Engine {
	return NewEngine(s.ID, s.Pool, s.Opts, deps)
}

// Run runs eng to completion and records the result.
func (s *Session) Run(ctx context.Context, eng *Engine) (model.GameResult, error) {
	result, err := eng.Run(ctx)
	if err != nil {
		return model.GameResult{}, err
	}
	s.result = &result
	return result, nil
}

// Play creates an engine with deps and runs it.
func (s *Session) Play(ctx context.Context, deps Deps) (model.GameResult, error) {
	return s.Run(ctx, s.NewEngine(deps))
}

// Result returns the terminal result, if the session completed.
func (s *Session) Result() (model.GameResult, bool) {
	if s.result == nil {
		return model.GameResult{}, false
	}
	return *s.result, true
}
