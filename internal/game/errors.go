package game

import "errors"

var (
	// ErrSessionCancelled is returned by Run when the session ends early.
	// No GameResult is produced for a cancelled session.
	ErrSessionCancelled = errors.New("session cancelled")

	// ErrEngineUsed is returned when Run is called more than once.
	ErrEngineUsed = errors.New("engine already started")

	// ErrInvalidRounds is returned when a session asks for no rounds.
	ErrInvalidRounds = errors.New("total rounds must be positive")

	// ErrPoolFetch wraps the error of a catalog that could not deliver tracks.
	ErrPoolFetch = errors.New("failed to fetch candidate pool")
)
