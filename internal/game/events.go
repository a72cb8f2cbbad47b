package game

import (
	"time"

	"github.com/handiism/tunetracer/internal/model"
	"github.com/handiism/tunetracer/internal/progress"
)

// EventKind identifies what happened in the engine.
type EventKind int

const (
	// EventLog carries only a message.
	EventLog EventKind = iota

	// EventRoundStarted: a target and options were chosen; audio is being resolved.
	EventRoundStarted

	// EventCountdownStarted: playback began and the countdown is running.
	EventCountdownStarted

	// EventTick: the countdown advanced; Remaining is set.
	EventTick

	// EventRoundResolved: the round was answered or timed out; Outcome is set.
	EventRoundResolved

	// EventRoundSkipped: no audio could be played; the round is not scored.
	EventRoundSkipped

	// EventSessionComplete: the session ended; Result is set.
	EventSessionComplete

	// EventSessionCancelled: the session was ended early; no result.
	EventSessionCancelled
)

// Event is reported by the engine through Deps.OnEvent.
//
// Events are delivered synchronously from the engine goroutine in the order
// they happen. Handlers must not block for long and must not call Run.
type Event struct {
	Kind    EventKind
	Level   progress.Level
	Message string

	Round       int
	TotalRounds int
	Score       int
	Streak      int

	// Options of the current round, set on EventRoundStarted and later round events.
	Options []model.Track

	// Deadline is the full countdown length, set on EventCountdownStarted.
	Deadline time.Duration

	// Remaining is the countdown time left, set on EventTick and EventRoundResolved.
	Remaining time.Duration

	Outcome *model.Outcome
	Result  *model.GameResult
}

// Progress converts the event to a plain progress event.
func (e Event) Progress() progress.Event {
	return progress.Event{Message: e.Message, Level: e.Level}
}
