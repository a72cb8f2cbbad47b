package game

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handiism/tunetracer/internal/model"
	"github.com/handiism/tunetracer/internal/progress"
)

// State is the phase the engine is in.
type State int32

const (
	StateIdle State = iota
	StateRoundStarting
	StateAwaitingAudio
	StateCountdown
	StateResolved
	StateSessionComplete
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRoundStarting:
		return "round-starting"
	case StateAwaitingAudio:
		return "awaiting-audio"
	case StateCountdown:
		return "countdown"
	case StateResolved:
		return "resolved"
	case StateSessionComplete:
		return "session-complete"
	case StateCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateSessionComplete || s == StateCancelled
}

const (
	// DefaultTickInterval is the countdown granularity.
	DefaultTickInterval = 100 * time.Millisecond

	// DefaultRevealPause is how long the answer stays on screen before the next round.
	DefaultRevealPause = 2 * time.Second

	answerBuffer = 8
)

// Resolver finds a playable preview URL for a track.
type Resolver interface {
	Resolve(ctx context.Context, title, artist, directURL string) (string, bool)
}

// Player plays preview audio.
type Player interface {
	// Play returns once playback has started, or with an error if it could not.
	Play(ctx context.Context, url string) error

	// Stop halts playback. Calling Stop when nothing plays is a no-op.
	Stop()
}

// Options configures one session run.
type Options struct {
	Difficulty  model.Difficulty
	TotalRounds int

	// TickInterval is the countdown granularity; 0 uses DefaultTickInterval.
	TickInterval time.Duration

	// RevealPause is the delay after a resolved round. 0 disables the pause.
	RevealPause time.Duration
}

// DefaultOptions returns the options of a standard 10-round Easy session.
func DefaultOptions() Options {
	return Options{
		Difficulty:   model.DifficultyEasy,
		TotalRounds:  10,
		TickInterval: DefaultTickInterval,
		RevealPause:  DefaultRevealPause,
	}
}

// Deps are the collaborators of an engine. Nil fields get defaults: the
// track's direct audio URL, a player that plays nothing, DefaultRandom and
// RealClock.
type Deps struct {
	Resolver Resolver
	Player   Player
	Random   RandomSource
	Clock    Clock
	OnEvent  func(Event)
}

type answer struct {
	round   int
	trackID string
}

type resolution struct {
	round int
	url   string
	ok    bool
}

// Engine runs the rounds of one session.
//
// A single goroutine (the one calling Run) owns all session state. Answers
// and cancellation reach it through channels, and audio resolution runs in a
// helper goroutine whose result is tagged with its round so stale results
// are dropped. An Engine is single-use.
//
// Example:
//
//	eng := game.NewEngine(session.ID, session.Pool, opts, game.Deps{
//	    Resolver: resolver,
//	    Player:   player.NewExec(player.DefaultCommand()),
//	    OnEvent:  func(e game.Event) { events <- e },
//	})
//	go func() { result, err = eng.Run(ctx) }()
//	// from the UI goroutine:
//	eng.Submit(round, option.ID)
type Engine struct {
	sessionID string
	pool      *model.CandidatePool
	opts      Options

	seq      *Sequencer
	resolver Resolver
	player   Player
	clock    Clock
	onEvent  func(Event)

	answers    chan answer
	cancelCh   chan struct{}
	cancelOnce sync.Once
	done       chan struct{}
	started    atomic.Bool
	state      atomic.Int32

	// Owned by the Run goroutine.
	score   int
	streak  int
	correct int
	skipped int
	missed  []model.Track
	used    UsedSet
	options []model.Track
}

// NewEngine creates an engine for pool.
func NewEngine(sessionID string, pool *model.CandidatePool, opts Options, deps Deps) *Engine {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.RevealPause < 0 {
		opts.RevealPause = 0
	}
	if deps.Player == nil {
		deps.Player = nopPlayer{}
	}
	if deps.Clock == nil {
		deps.Clock = RealClock{}
	}

	return &Engine{
		sessionID: sessionID,
		pool:      pool,
		opts:      opts,
		seq:       NewSequencer(deps.Random),
		resolver:  deps.Resolver,
		player:    deps.Player,
		clock:     deps.Clock,
		onEvent:   deps.OnEvent,
		answers:   make(chan answer, answerBuffer),
		cancelCh:  make(chan struct{}),
		done:      make(chan struct{}),
		used:      UsedSet{},
	}
}

// State returns the current phase. Safe from any goroutine.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Done is closed when Run returns.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Submit delivers the player's answer for round. Answers for another round,
// or arriving outside the countdown, are ignored by the engine. Returns false
// if the answer could not be queued (unknown track, engine finished or queue
// full).
func (e *Engine) Submit(round int, trackID string) bool {
	if !e.pool.Contains(trackID) {
		return false
	}

	select {
	case <-e.done:
		return false
	default:
	}

	select {
	case e.answers <- answer{round: round, trackID: trackID}:
		return true
	case <-e.done:
		return false
	default:
		return false
	}
}

// Cancel ends the session early. Run returns ErrSessionCancelled.
func (e *Engine) Cancel() {
	e.cancelOnce.Do(func() { close(e.cancelCh) })
}

// Run plays every round and returns the final result.
//
// Returns ErrSessionCancelled if ctx is cancelled or Cancel is called before
// the last round resolves, and ErrEngineUsed on any call after the first.
func (e *Engine) Run(ctx context.Context) (model.GameResult, error) {
	if !e.started.CompareAndSwap(false, true) {
		return model.GameResult{}, ErrEngineUsed
	}
	defer close(e.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-e.cancelCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	for round := 1; round <= e.opts.TotalRounds; round++ {
		if err := e.playRound(ctx, round); err != nil {
			return model.GameResult{}, e.cancelled(round)
		}
	}

	result := model.GameResult{
		SessionID:      e.sessionID,
		Score:          e.score,
		Streak:         e.streak,
		CorrectAnswers: e.correct,
		Missed:         append([]model.Track(nil), e.missed...),
		Rounds:         e.opts.TotalRounds,
		Skipped:        e.skipped,
	}

	e.setState(StateSessionComplete)
	e.emit(Event{
		Kind:    EventSessionComplete,
		Level:   progress.LevelSuccess,
		Message: "Game over",
		Round:   e.opts.TotalRounds,
		Result:  &result,
	})

	return result, nil
}

func (e *Engine) cancelled(round int) error {
	e.player.Stop()
	e.setState(StateCancelled)
	e.emit(Event{
		Kind:    EventSessionCancelled,
		Level:   progress.LevelWarning,
		Message: "Session cancelled",
		Round:   round,
	})
	return ErrSessionCancelled
}

func (e *Engine) playRound(ctx context.Context, round int) error {
	e.setState(StateRoundStarting)

	target, options, used := e.seq.SelectRound(e.pool, e.used)
	e.used = used
	e.options = options[:]

	e.emit(Event{
		Kind:    EventRoundStarted,
		Level:   progress.LevelInfo,
		Message: "Round started",
		Round:   round,
		Options: e.options,
	})

	e.setState(StateAwaitingAudio)
	url, ok, err := e.awaitAudio(ctx, round, target)
	if err != nil {
		return err
	}
	if !ok {
		e.skip(round, target, "no preview found for "+target.String())
		return nil
	}

	if err := e.player.Play(ctx, url); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.skip(round, target, "playback failed for "+target.String()+": "+err.Error())
		return nil
	}

	e.setState(StateCountdown)
	e.emit(Event{
		Kind:      EventCountdownStarted,
		Level:     progress.LevelVerbose,
		Message:   "Playing " + url,
		Round:     round,
		Options:   e.options,
		Deadline:  e.opts.Difficulty.Duration(),
		Remaining: e.opts.Difficulty.Duration(),
	})

	outcome, err := e.countdown(ctx, round, target)
	e.player.Stop()
	if err != nil {
		return err
	}

	e.applyScore(&outcome, url)
	e.setState(StateResolved)

	level, message := progress.LevelError, "Missed: "+target.String()
	if outcome.Correct {
		level, message = progress.LevelSuccess, "Correct: "+target.String()
	}
	e.emit(Event{
		Kind:      EventRoundResolved,
		Level:     level,
		Message:   message,
		Round:     round,
		Options:   e.options,
		Remaining: outcome.Remaining,
		Outcome:   &outcome,
	})

	return e.reveal(ctx)
}

// awaitAudio resolves the round's preview off-loop. Answers arriving in the
// meantime are drained and ignored.
func (e *Engine) awaitAudio(ctx context.Context, round int, target model.Track) (string, bool, error) {
	if e.resolver == nil {
		return target.DirectAudioURL, target.HasDirectAudio(), nil
	}

	results := make(chan resolution, 1)
	go func() {
		url, ok := e.resolver.Resolve(ctx, target.Title, target.Artist, target.DirectAudioURL)
		results <- resolution{round: round, url: url, ok: ok}
	}()

	for {
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case r := <-results:
			if r.round != round {
				continue
			}
			return r.url, r.ok && r.url != "", nil
		case a := <-e.answers:
			e.ignored(a, "audio not ready")
		}
	}
}

// countdown runs the timer until an answer or expiry. The first terminating
// event wins.
func (e *Engine) countdown(ctx context.Context, round int, target model.Track) (model.Outcome, error) {
	interval := e.opts.TickInterval
	remaining := e.opts.Difficulty.Duration()

	ticker := e.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return model.Outcome{}, ctx.Err()

		case a := <-e.answers:
			if a.round != round {
				e.ignored(a, "stale round")
				continue
			}
			if !e.isOption(a.trackID) {
				e.ignored(a, "not an option")
				continue
			}
			return model.Outcome{
				Round:       round,
				Target:      target,
				SubmittedID: a.trackID,
				Correct:     a.trackID == target.ID,
				Remaining:   remaining,
			}, nil

		case <-ticker.C():
			if remaining <= interval {
				return model.Outcome{
					Round:    round,
					Target:   target,
					TimedOut: true,
				}, nil
			}
			remaining -= interval
			e.emit(Event{
				Kind:      EventTick,
				Level:     progress.LevelVerbose,
				Round:     round,
				Remaining: remaining,
			})
		}
	}
}

// applyScore applies the scoring policy to outcome and updates the session totals.
func (e *Engine) applyScore(outcome *model.Outcome, playedURL string) {
	outcome.Multiplier = Multiplier(e.streak)
	if outcome.Correct {
		outcome.Points = Points(outcome.Remaining, e.streak)
		e.score += outcome.Points
		e.streak++
		e.correct++
	} else {
		e.streak = 0
		missed := outcome.Target
		missed.DirectAudioURL = playedURL
		e.missed = append(e.missed, missed)
	}
	outcome.Score = e.score
	outcome.Streak = e.streak
}

func (e *Engine) skip(round int, target model.Track, reason string) {
	e.skipped++
	e.emit(Event{
		Kind:    EventRoundSkipped,
		Level:   progress.LevelWarning,
		Message: "Skipping round: " + reason,
		Round:   round,
		Options: e.options,
		Outcome: &model.Outcome{Round: round, Target: target, Score: e.score, Streak: e.streak},
	})
}

func (e *Engine) reveal(ctx context.Context) error {
	if e.opts.RevealPause <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(e.opts.RevealPause)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case a := <-e.answers:
			e.ignored(a, "round already resolved")
		}
	}
}

func (e *Engine) isOption(id string) bool {
	for _, option := range e.options {
		if option.ID == id {
			return true
		}
	}
	return false
}

func (e *Engine) ignored(a answer, reason string) {
	e.emit(Event{
		Kind:    EventLog,
		Level:   progress.LevelVerbose,
		Message: fmt.Sprintf("Ignored answer for round %d: %s", a.round, reason),
		Round:   a.round,
	})
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

func (e *Engine) emit(ev Event) {
	if e.onEvent == nil {
		return
	}
	ev.TotalRounds = e.opts.TotalRounds
	ev.Score = e.score
	ev.Streak = e.streak
	e.onEvent(ev)
}

type nopPlayer struct{}

func (nopPlayer) Play(context.Context, string) error { return nil }
func (nopPlayer) Stop()                              {}
