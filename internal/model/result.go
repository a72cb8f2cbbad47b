package model

import "time"

// Outcome is the scored result of one answered or timed-out round.
type Outcome struct {
	// Round is the 1-based round number.
	Round int

	// Target is the track the player had to identify.
	Target Track

	// SubmittedID is the chosen option ID, empty on timeout.
	SubmittedID string

	Correct  bool
	TimedOut bool

	// Remaining is the countdown time left when the round ended.
	Remaining time.Duration

	// Points awarded for this round (0 unless correct).
	Points int

	// Multiplier applied to a correct answer.
	Multiplier int

	// Score and Streak after this round.
	Score  int
	Streak int
}

// GameResult is the terminal summary of a session.
//
// A GameResult is produced exactly once per session and is not modified
// afterwards. Missed holds the targets the player failed to identify, in the
// order they were played. Rounds skipped because no audio could be played are
// counted in Skipped and never appear in Missed.
type GameResult struct {
	SessionID      string
	Score          int
	Streak         int
	CorrectAnswers int
	Missed         []Track

	// Rounds is the number of rounds consumed, scored or skipped.
	Rounds  int
	Skipped int
}

// Answered returns the number of rounds that were scored.
func (r GameResult) Answered() int {
	return r.Rounds - r.Skipped
}
