package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/tunetracer/internal/model"
)

const waitTimeout = 2 * time.Second

type manualClock struct {
	ticks chan time.Time
}

func newManualClock() *manualClock {
	return &manualClock{ticks: make(chan time.Time)}
}

func (c *manualClock) NewTicker(time.Duration) Ticker {
	return manualTicker{c: c.ticks}
}

// tick delivers n ticks, each one only once the engine has received it.
func (c *manualClock) tick(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case c.ticks <- time.Time{}:
		case <-time.After(waitTimeout):
			t.Fatalf("engine did not take tick %d of %d", i+1, n)
		}
	}
}

type manualTicker struct {
	c chan time.Time
}

func (t manualTicker) C() <-chan time.Time { return t.c }
func (manualTicker) Stop()                 {}

type fakePlayer struct {
	played chan string
	fail   func(call int) error
	calls  atomic.Int32
	stops  atomic.Int32
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{played: make(chan string, 16)}
}

func (p *fakePlayer) Play(ctx context.Context, url string) error {
	call := int(p.calls.Add(1))
	if p.fail != nil {
		if err := p.fail(call); err != nil {
			return err
		}
	}
	p.played <- url
	return nil
}

func (p *fakePlayer) Stop() {
	p.stops.Add(1)
}

// next waits for the next started playback and returns its track ID.
func (p *fakePlayer) next(t *testing.T) string {
	t.Helper()
	select {
	case url := <-p.played:
		return strings.TrimSuffix(url[strings.LastIndex(url, "/")+1:], ".m4a")
	case <-time.After(waitTimeout):
		t.Fatal("no playback started")
		return ""
	}
}

type fakeResolver struct {
	calls atomic.Int32
	miss  func(call int) bool
	block bool
}

func (r *fakeResolver) Resolve(ctx context.Context, title, artist, directURL string) (string, bool) {
	call := int(r.calls.Add(1))
	if r.block {
		<-ctx.Done()
		return "", false
	}
	if r.miss != nil && r.miss(call) {
		return "", false
	}
	id := strings.TrimPrefix(title, "Title ")
	return "https://resolved.test/" + id + ".m4a", true
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) add(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) ofKind(kind EventKind) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, e := range l.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (l *eventLog) lastOptions(t *testing.T) []model.Track {
	t.Helper()
	started := l.ofKind(EventRoundStarted)
	require.NotEmpty(t, started)
	return started[len(started)-1].Options
}

type runResult struct {
	result model.GameResult
	err    error
}

type harness struct {
	engine *Engine
	clock  *manualClock
	player *fakePlayer
	events *eventLog
	done   chan runResult
}

func newHarness(t *testing.T, ctx context.Context, rounds int, resolver Resolver, player *fakePlayer) *harness {
	t.Helper()
	if player == nil {
		player = newFakePlayer()
	}
	h := &harness{
		clock:  newManualClock(),
		player: player,
		events: &eventLog{},
		done:   make(chan runResult, 1),
	}

	opts := Options{Difficulty: model.DifficultyPro, TotalRounds: rounds, TickInterval: 100 * time.Millisecond}
	h.engine = NewEngine("session-1", testPool(t, 10), opts, Deps{
		Resolver: resolver,
		Player:   player,
		Random:   NewSeededRandom(7),
		Clock:    h.clock,
		OnEvent:  h.events.add,
	})

	go func() {
		result, err := h.engine.Run(ctx)
		h.done <- runResult{result: result, err: err}
	}()
	return h
}

func (h *harness) wait(t *testing.T) runResult {
	t.Helper()
	select {
	case r := <-h.done:
		return r
	case <-time.After(waitTimeout):
		t.Fatal("engine did not finish")
		return runResult{}
	}
}

func wrongOption(t *testing.T, options []model.Track, target string) string {
	t.Helper()
	for _, option := range options {
		if option.ID != target {
			return option.ID
		}
	}
	t.Fatal("no wrong option")
	return ""
}

func TestEngineThreeRoundScenario(t *testing.T) {
	h := newHarness(t, context.Background(), 3, nil, nil)

	first := h.player.next(t)
	h.clock.tick(t, 27)
	require.True(t, h.engine.Submit(1, first))

	second := h.player.next(t)
	h.clock.tick(t, 100)

	third := h.player.next(t)
	h.clock.tick(t, 79)
	require.True(t, h.engine.Submit(3, third))

	r := h.wait(t)
	require.NoError(t, r.err)
	assert.Equal(t, 940, r.result.Score)
	assert.Equal(t, 1, r.result.Streak)
	assert.Equal(t, 2, r.result.CorrectAnswers)
	assert.Equal(t, 3, r.result.Rounds)
	assert.Zero(t, r.result.Skipped)
	assert.Equal(t, "session-1", r.result.SessionID)
	require.Len(t, r.result.Missed, 1)
	assert.Equal(t, second, r.result.Missed[0].ID)

	resolved := h.events.ofKind(EventRoundResolved)
	require.Len(t, resolved, 3)
	assert.Equal(t, 730, resolved[0].Outcome.Points)
	assert.True(t, resolved[1].Outcome.TimedOut)
	assert.Zero(t, resolved[1].Outcome.Remaining)
	assert.Equal(t, 210, resolved[2].Outcome.Points)
	assert.Equal(t, 2100*time.Millisecond, resolved[2].Remaining)

	assert.Len(t, h.events.ofKind(EventSessionComplete), 1)
	assert.Equal(t, StateSessionComplete, h.engine.State())
	assert.EqualValues(t, 3, h.player.stops.Load())
}

func TestEngineFirstAnswerWins(t *testing.T) {
	h := newHarness(t, context.Background(), 1, nil, nil)

	target := h.player.next(t)
	h.clock.tick(t, 10)
	wrong := wrongOption(t, h.events.lastOptions(t), target)
	require.True(t, h.engine.Submit(1, wrong))
	h.engine.Submit(1, target)

	r := h.wait(t)
	require.NoError(t, r.err)
	assert.Zero(t, r.result.Score)
	assert.Zero(t, r.result.Streak)
	assert.Zero(t, r.result.CorrectAnswers)
	require.Len(t, r.result.Missed, 1)
	assert.Equal(t, target, r.result.Missed[0].ID)

	resolved := h.events.ofKind(EventRoundResolved)
	require.Len(t, resolved, 1)
	assert.Equal(t, wrong, resolved[0].Outcome.SubmittedID)
}

func TestEngineStreakResetsAfterWrongAnswer(t *testing.T) {
	h := newHarness(t, context.Background(), 2, nil, nil)

	first := h.player.next(t)
	require.True(t, h.engine.Submit(1, wrongOption(t, h.events.lastOptions(t), first)))

	second := h.player.next(t)
	h.clock.tick(t, 50)
	require.True(t, h.engine.Submit(2, second))

	r := h.wait(t)
	require.NoError(t, r.err)

	resolved := h.events.ofKind(EventRoundResolved)
	require.Len(t, resolved, 2)
	assert.Equal(t, 1, resolved[1].Outcome.Multiplier)
	assert.Equal(t, 500, resolved[1].Outcome.Points)
	assert.Equal(t, 500, r.result.Score)
	assert.Equal(t, 1, r.result.Streak)
}

func TestEngineIgnoresStaleAndUnknownAnswers(t *testing.T) {
	h := newHarness(t, context.Background(), 2, nil, nil)

	first := h.player.next(t)
	require.True(t, h.engine.Submit(1, first))

	second := h.player.next(t)
	h.engine.Submit(1, second)
	assert.False(t, h.engine.Submit(2, "not-in-pool"))
	h.clock.tick(t, 10)
	require.True(t, h.engine.Submit(2, second))

	r := h.wait(t)
	require.NoError(t, r.err)
	assert.Equal(t, 2, r.result.CorrectAnswers)
	assert.Empty(t, r.result.Missed)

	resolved := h.events.ofKind(EventRoundResolved)
	require.Len(t, resolved, 2)
	assert.Equal(t, 9*time.Second, resolved[1].Remaining)
}

func TestEngineSkipsRoundWithoutPreview(t *testing.T) {
	resolver := &fakeResolver{miss: func(call int) bool { return call == 2 }}
	h := newHarness(t, context.Background(), 3, resolver, nil)

	first := h.player.next(t)
	require.True(t, h.engine.Submit(1, first))

	third := h.player.next(t)
	require.True(t, h.engine.Submit(3, third))

	r := h.wait(t)
	require.NoError(t, r.err)
	assert.Equal(t, 3, r.result.Rounds)
	assert.Equal(t, 1, r.result.Skipped)
	assert.Equal(t, 2, r.result.Answered())
	assert.Equal(t, 2, r.result.CorrectAnswers)
	assert.Empty(t, r.result.Missed)
	assert.Len(t, h.events.ofKind(EventRoundSkipped), 1)
	assert.Len(t, h.events.ofKind(EventSessionComplete), 1)
}

func TestEngineSkipsRoundWhenPlaybackFails(t *testing.T) {
	player := newFakePlayer()
	player.fail = func(call int) error {
		if call == 1 {
			return errors.New("ffplay: not found")
		}
		return nil
	}
	h := newHarness(t, context.Background(), 2, nil, player)

	id := h.player.next(t)
	h.clock.tick(t, 100)

	r := h.wait(t)
	require.NoError(t, r.err)
	assert.Equal(t, 1, r.result.Skipped)
	require.Len(t, r.result.Missed, 1)
	assert.Equal(t, id, r.result.Missed[0].ID)

	skipped := h.events.ofKind(EventRoundSkipped)
	require.Len(t, skipped, 1)
	assert.Equal(t, 1, skipped[0].Round)
	assert.Contains(t, skipped[0].Message, "ffplay: not found")
}

func TestEngineMissedKeepsPlayedURL(t *testing.T) {
	h := newHarness(t, context.Background(), 1, &fakeResolver{}, nil)

	id := h.player.next(t)
	h.clock.tick(t, 100)

	r := h.wait(t)
	require.NoError(t, r.err)
	require.Len(t, r.result.Missed, 1)
	assert.Equal(t, "https://resolved.test/"+id+".m4a", r.result.Missed[0].DirectAudioURL)
}

func TestEngineCancelDuringResolution(t *testing.T) {
	resolver := &fakeResolver{block: true}
	h := newHarness(t, context.Background(), 3, resolver, nil)

	require.Eventually(t, func() bool { return h.engine.State() == StateAwaitingAudio }, waitTimeout, time.Millisecond)
	h.engine.Cancel()

	r := h.wait(t)
	assert.ErrorIs(t, r.err, ErrSessionCancelled)
	assert.Equal(t, model.GameResult{}, r.result)
	assert.Equal(t, StateCancelled, h.engine.State())
	assert.Empty(t, h.events.ofKind(EventSessionComplete))
	assert.Len(t, h.events.ofKind(EventSessionCancelled), 1)
	assert.Zero(t, h.player.calls.Load())
}

func TestEngineContextCancelDuringCountdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := newHarness(t, ctx, 3, nil, nil)

	h.player.next(t)
	h.clock.tick(t, 5)
	cancel()

	r := h.wait(t)
	assert.ErrorIs(t, r.err, ErrSessionCancelled)
	assert.Empty(t, h.events.ofKind(EventRoundResolved))
	assert.False(t, h.engine.Submit(1, "t00"))
}

func TestEngineRunTwice(t *testing.T) {
	h := newHarness(t, context.Background(), 1, nil, nil)
	id := h.player.next(t)
	require.True(t, h.engine.Submit(1, id))
	require.NoError(t, h.wait(t).err)

	_, err := h.engine.Run(context.Background())
	assert.ErrorIs(t, err, ErrEngineUsed)
	assert.False(t, h.engine.Submit(1, id))
	assert.Len(t, h.events.ofKind(EventSessionComplete), 1)
}

func TestEngineTickEvents(t *testing.T) {
	h := newHarness(t, context.Background(), 1, nil, nil)

	h.player.next(t)
	h.clock.tick(t, 100)
	require.NoError(t, h.wait(t).err)

	ticks := h.events.ofKind(EventTick)
	require.Len(t, ticks, 99)
	assert.Equal(t, 9900*time.Millisecond, ticks[0].Remaining)
	assert.Equal(t, 100*time.Millisecond, ticks[98].Remaining)

	started := h.events.ofKind(EventCountdownStarted)
	require.Len(t, started, 1)
	assert.Equal(t, 10*time.Second, started[0].Deadline)
}

func TestEngineRevealPauseUsesWallClock(t *testing.T) {
	player := newFakePlayer()
	opts := Options{Difficulty: model.DifficultyLegend, TotalRounds: 2, RevealPause: 20 * time.Millisecond}
	eng := NewEngine("s", testPool(t, 4), opts, Deps{Player: player, Random: NewSeededRandom(1), Clock: newManualClock()})

	done := make(chan error, 1)
	go func() {
		_, err := eng.Run(context.Background())
		done <- err
	}()

	first := player.next(t)
	require.True(t, eng.Submit(1, first))

	second := player.next(t)
	require.True(t, eng.Submit(2, second))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("engine did not finish")
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "countdown", StateCountdown.String())
	assert.True(t, StateCancelled.Terminal())
	assert.False(t, StateResolved.Terminal())
}
