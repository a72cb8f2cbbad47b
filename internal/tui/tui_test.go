package tui

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/tunetracer/internal/config"
	"github.com/handiism/tunetracer/internal/game"
	"github.com/handiism/tunetracer/internal/model"
	tprogress "github.com/handiism/tunetracer/internal/progress"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	settings := config.DefaultSettings()
	settings.Player.Command = "none"
	settings.Display.ShowArtwork = false
	m, err := NewModel(settings, "demo")
	require.NoError(t, err)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testOptions() []model.Track {
	return []model.Track{
		{ID: "a", Title: "Alpha", Artist: "One"},
		{ID: "b", Title: "Beta", Artist: "Two"},
		{ID: "c", Title: "Gamma", Artist: "Three"},
		{ID: "d", Title: "Delta", Artist: "Four"},
	}
}

func TestMenuChoices(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, StateMenu, m.state)
	assert.Equal(t, 10, m.rounds)

	m = update(t, m, key("tab"))
	assert.Equal(t, int(model.DifficultyPro), m.difficulty)
	m = update(t, m, key("tab"))
	m = update(t, m, key("tab"))
	assert.Equal(t, int(model.DifficultyEasy), m.difficulty)

	m = update(t, m, key("up"))
	assert.Equal(t, 11, m.rounds)
	for i := 0; i < 20; i++ {
		m = update(t, m, key("down"))
	}
	assert.Equal(t, 1, m.rounds)

	m = update(t, m, key("ctrl+l"))
	assert.True(t, m.verbose)

	view := m.View()
	assert.Contains(t, view, "TuneTracer")
	assert.Contains(t, view, "Easy (20s)")
	assert.Contains(t, view, "Rounds: 1")
}

func TestRoundEventsDriveStates(t *testing.T) {
	m := newTestModel(t)
	m.state = StatePlaying

	m = update(t, m, EngineEventMsg{Event: game.Event{
		Kind: game.EventRoundStarted, Round: 2, TotalRounds: 5, Score: 730, Streak: 1, Options: testOptions(),
	}})
	assert.True(t, m.waitingAudio)
	assert.Contains(t, m.View(), "Finding a preview")
	assert.Contains(t, m.View(), "Round 2/5")

	m = update(t, m, EngineEventMsg{Event: game.Event{
		Kind: game.EventCountdownStarted, Round: 2, TotalRounds: 5, Deadline: 10 * time.Second, Remaining: 10 * time.Second,
	}})
	assert.False(t, m.waitingAudio)

	m = update(t, m, EngineEventMsg{Event: game.Event{Kind: game.EventTick, Round: 2, TotalRounds: 5, Remaining: 7300 * time.Millisecond}})
	assert.Contains(t, m.View(), "7.3s")
	assert.Contains(t, m.View(), "[3] Three - Gamma")

	outcome := &model.Outcome{Round: 2, Target: testOptions()[2], Correct: true, Points: 730, Multiplier: 1}
	m = update(t, m, EngineEventMsg{Event: game.Event{
		Kind: game.EventRoundResolved, Level: tprogress.LevelSuccess, Message: "Correct: Three - Gamma", Round: 2, TotalRounds: 5, Score: 1460, Streak: 2, Outcome: outcome,
	}})
	assert.Equal(t, StateReveal, m.state)
	assert.Contains(t, m.View(), "Correct! +730 points")
	assert.Equal(t, 1460, m.score)
}

func TestAnswerKeySubmitsOnce(t *testing.T) {
	m := newTestModel(t)
	pool, err := model.NewCandidatePool(testOptions())
	require.NoError(t, err)
	m.engine = game.NewEngine("s", pool, game.Options{Difficulty: model.DifficultyEasy, TotalRounds: 1}, game.Deps{})
	m.state = StatePlaying
	m.round = 1
	m.options = testOptions()
	m.selected = -1

	// Ignored while the preview is loading.
	m.waitingAudio = true
	m = update(t, m, key("2"))
	assert.Equal(t, -1, m.selected)

	m.waitingAudio = false
	m = update(t, m, key("2"))
	assert.Equal(t, 1, m.selected)

	m = update(t, m, key("4"))
	assert.Equal(t, 1, m.selected)
}

func TestGameDoneTransitions(t *testing.T) {
	m := newTestModel(t)
	m.state = StatePlaying

	cancelled := update(t, m, GameDoneMsg{Err: game.ErrSessionCancelled})
	assert.Equal(t, StateMenu, cancelled.state)

	result := model.GameResult{SessionID: "0123456789", Score: 940, Streak: 1, CorrectAnswers: 2, Rounds: 3,
		Missed: []model.Track{{ID: "x", Title: "Lost", Artist: "Band", DirectAudioURL: "https://audio.test/x.m4a"}}}
	over := update(t, m, GameDoneMsg{Result: result})
	assert.Equal(t, StateGameOver, over.state)
	view := over.View()
	assert.Contains(t, view, "Score: 940")
	assert.Contains(t, view, "Correct: 2/3")
	assert.Contains(t, view, "Band - Lost")

	failed := update(t, m, GameDoneMsg{Err: assert.AnError})
	assert.Equal(t, StateError, failed.state)

	back := update(t, failed, key("r"))
	assert.Equal(t, StateMenu, back.state)
}

func TestExportMissed(t *testing.T) {
	m := newTestModel(t)
	m.exportDir = t.TempDir()
	m.state = StateGameOver
	m.result = &model.GameResult{SessionID: "abcdef0123", Missed: []model.Track{
		{ID: "x", Title: "Lost", Artist: "Band", DirectAudioURL: "https://audio.test/x.m4a"},
	}}

	_, cmd := m.Update(key("e"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(ExportDoneMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.True(t, strings.HasSuffix(msg.Path, "tunetracer-missed-abcdef01.m3u"))

	data, err := os.ReadFile(msg.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "#EXTINF:-1,Band - Lost")

	m = update(t, m, msg)
	assert.Contains(t, m.View(), "Saved playlist")
}

func TestLogsFilterVerbose(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, ProgressMsg{Event: tprogress.Event{Message: "debug detail", Level: tprogress.LevelVerbose}})
	m = update(t, m, ProgressMsg{Event: tprogress.Event{Message: "fetching", Level: tprogress.LevelInfo}})
	require.Len(t, m.logs, 1)
	assert.Equal(t, "fetching", m.logs[0].Message)

	for i := 0; i < 20; i++ {
		m = update(t, m, ProgressMsg{Event: tprogress.Event{Message: "line", Level: tprogress.LevelInfo}})
	}
	assert.Len(t, m.logs, maxLogs)
}

func TestForwardEventsStopsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	msgs := make(chan tea.Msg)
	forward := forwardEvents(ctx, msgs)

	cancel()
	done := make(chan struct{})
	go func() {
		forward(game.Event{Kind: game.EventTick})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forward blocked after cancel")
	}
}

func TestLateEventsAfterGameOverIgnored(t *testing.T) {
	m := newTestModel(t)
	m.state = StatePlaying

	m = update(t, m, GameDoneMsg{Result: model.GameResult{Score: 100, Rounds: 1, CorrectAnswers: 1}})
	require.Equal(t, StateGameOver, m.state)

	m = update(t, m, EngineEventMsg{Event: game.Event{
		Kind: game.EventRoundResolved, Round: 1, TotalRounds: 1, Outcome: &model.Outcome{Round: 1, Correct: true},
	}})
	assert.Equal(t, StateGameOver, m.state)
}

func TestArtworkErrorDoesNotReadMessages(t *testing.T) {
	m := newTestModel(t)
	m.state = StateReveal
	m.round = 1
	m.verbose = true

	queued := EngineEventMsg{Event: game.Event{Kind: game.EventRoundStarted, Round: 2}}
	m.msgs <- queued

	next, cmd := m.Update(ArtworkMsg{Round: 1, Err: assert.AnError})
	out := next.(Model)
	if cmd != nil {
		done := make(chan struct{})
		go func() {
			cmd()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	}

	require.Len(t, out.msgs, 1)
	assert.Equal(t, queued, <-out.msgs)
	require.NotEmpty(t, out.logs)
	assert.Contains(t, out.logs[len(out.logs)-1].Message, "Artwork: ")
	assert.Empty(t, out.artwork)
}

func TestArtworkForCurrentRound(t *testing.T) {
	m := newTestModel(t)
	m.state = StateReveal
	m.round = 2

	m = update(t, m, ArtworkMsg{Round: 1, Art: "old"})
	assert.Empty(t, m.artwork)
	m = update(t, m, ArtworkMsg{Round: 2, Art: "cover"})
	assert.Equal(t, "cover", m.artwork)
}

func TestAnswerKeySelectsOnlyQueuedAnswers(t *testing.T) {
	m := newTestModel(t)
	pool, err := model.NewCandidatePool(testOptions())
	require.NoError(t, err)
	m.engine = game.NewEngine("s", pool, game.Options{Difficulty: model.DifficultyEasy, TotalRounds: 1}, game.Deps{})
	m.state = StatePlaying
	m.round = 1
	m.options = append([]model.Track{{ID: "elsewhere", Title: "Outside", Artist: "Pool"}}, testOptions()[1:]...)
	m.selected = -1

	m = update(t, m, key("1"))
	assert.Equal(t, -1, m.selected)

	m = update(t, m, key("2"))
	assert.Equal(t, 1, m.selected)
}

func TestAnswerKeyIgnoredAfterEngineFinished(t *testing.T) {
	m := newTestModel(t)
	pool, err := model.NewCandidatePool(testOptions())
	require.NoError(t, err)
	eng := game.NewEngine("s", pool, game.Options{Difficulty: model.DifficultyEasy, TotalRounds: 1}, game.Deps{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = eng.Run(ctx)
	require.True(t, eng.State().Terminal())

	m.engine = eng
	m.state = StatePlaying
	m.round = 1
	m.options = testOptions()
	m.selected = -1

	m = update(t, m, key("1"))
	assert.Equal(t, -1, m.selected)
}
