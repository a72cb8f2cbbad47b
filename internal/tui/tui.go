// Package tui provides the Bubble Tea terminal user interface of tunetracer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/tunetracer/internal/app"
	"github.com/handiism/tunetracer/internal/audio"
	"github.com/handiism/tunetracer/internal/config"
	"github.com/handiism/tunetracer/internal/game"
	"github.com/handiism/tunetracer/internal/model"
	tprogress "github.com/handiism/tunetracer/internal/progress"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4ECDC4"))
)

// State represents the current UI state.
type State int

const (
	StateMenu State = iota
	StateLoading
	StatePlaying
	StateReveal
	StateGameOver
	StateError
)

const (
	maxLogs    = 8
	maxRounds  = 50
	msgBuffer  = 256
	optionKeys = "1234"
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   tprogress.Level
}

// Message types
type (
	// ProgressMsg carries a log event from the clients. It is only ever read
	// from the message channel, so handling it re-arms the channel reader.
	ProgressMsg struct {
		Event tprogress.Event
	}

	// SessionReadyMsg is sent when the candidate pool has been fetched.
	SessionReadyMsg struct {
		Session *game.Session
		Err     error
	}

	// EngineEventMsg carries an engine event.
	EngineEventMsg struct {
		Event game.Event
	}

	// GameDoneMsg is sent when the engine returns.
	GameDoneMsg struct {
		Result model.GameResult
		Err    error
	}

	// ArtworkMsg carries the rendered cover of a resolved round, or the
	// error that prevented rendering it.
	ArtworkMsg struct {
		Round int
		Art   string
		Err   error
	}

	// ExportDoneMsg is sent when the missed-tracks playlist was written.
	ExportDoneMsg struct {
		Path string
		Err  error
	}
)

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state       State
	app         *app.App
	msgs        chan tea.Msg
	sourceInput textinput.Model
	spinner     spinner.Model
	countdown   progress.Model
	logs        []LogEntry
	err         error

	// Menu choices
	difficulty int
	rounds     int
	verbose    bool

	// Session context
	ctx     context.Context
	cancel  context.CancelFunc
	session *game.Session
	engine  *game.Engine

	// Round state mirrored from engine events
	round        int
	totalRounds  int
	score        int
	streak       int
	options      []model.Track
	selected     int
	waitingAudio bool
	deadline     time.Duration
	remaining    time.Duration
	outcome      *model.Outcome
	artwork      string
	result       *model.GameResult

	exportDir string
	exported  string

	width  int
	height int
}

// NewModel creates a new TUI model from settings. source preselects the
// catalog source ("demo", "spotify:<id>", "file:<path>", "dir:<path>").
func NewModel(settings *config.Settings, source string) (Model, error) {
	msgs := make(chan tea.Msg, msgBuffer)

	a, err := app.New(settings, func(e tprogress.Event) {
		select {
		case msgs <- ProgressMsg{Event: e}:
		default:
		}
	})
	if err != nil {
		return Model{}, err
	}

	ti := textinput.New()
	ti.Placeholder = "demo, spotify:<playlist>, file:<tracks.yaml>, dir:<music folder>"
	ti.SetValue(source)
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 50

	difficulty := 0
	if d, err := model.ParseDifficulty(settings.Game.Difficulty); err == nil {
		difficulty = int(d)
	}

	return Model{
		state:       StateMenu,
		app:         a,
		msgs:        msgs,
		sourceInput: ti,
		spinner:     sp,
		countdown:   bar,
		logs:        make([]LogEntry, 0),
		difficulty:  difficulty,
		rounds:      settings.Game.Rounds,
		selected:    -1,
		exportDir:   ".",
	}, nil
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForMsg())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.countdown.Width = msg.Width - 20
		if m.countdown.Width > 80 {
			m.countdown.Width = 80
		}
		if m.countdown.Width < 20 {
			m.countdown.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		m.addLog(msg.Event)
		cmds = append(cmds, m.waitForMsg())

	case SessionReadyMsg:
		if msg.Err != nil {
			if m.ctx != nil && m.ctx.Err() != nil {
				m.state = StateMenu
				return m, nil
			}
			m.state = StateError
			m.err = msg.Err
			return m, nil
		}
		m.session = msg.Session
		m.engine = msg.Session.NewEngine(m.app.Deps(forwardEvents(m.ctx, m.msgs)))
		m.state = StatePlaying
		m.waitingAudio = true
		cmds = append(cmds, m.runEngine())

	case EngineEventMsg:
		cmds = append(cmds, m.handleEvent(msg.Event), m.waitForMsg())

	case GameDoneMsg:
		switch {
		case errors.Is(msg.Err, game.ErrSessionCancelled):
			m.state = StateMenu
			m.addLog(tprogress.Event{Message: "Game cancelled", Level: tprogress.LevelWarning})
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			result := msg.Result
			m.result = &result
			m.state = StateGameOver
		}
		m.engine = nil
		m.sourceInput.Focus()

	case ArtworkMsg:
		if msg.Err != nil {
			m.addLog(tprogress.Event{Message: "Artwork: " + msg.Err.Error(), Level: tprogress.LevelVerbose})
		} else if msg.Round == m.round {
			m.artwork = msg.Art
		}

	case ExportDoneMsg:
		if msg.Err != nil {
			m.addLog(tprogress.Event{Message: "Export failed: " + msg.Err.Error(), Level: tprogress.LevelError})
		} else {
			m.exported = msg.Path
		}
	}

	// Update text input
	if m.state == StateMenu {
		var cmd tea.Cmd
		m.sourceInput, cmd = m.sourceInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.stop()
		return m, tea.Quit

	case "esc":
		switch m.state {
		case StateMenu:
			return m, tea.Quit
		case StateLoading:
			m.stop()
			m.state = StateMenu
		case StatePlaying, StateReveal:
			m.stop()
		case StateGameOver, StateError:
			m.reset()
		}
		return m, nil

	case "ctrl+l":
		m.verbose = !m.verbose
		return m, nil
	}

	switch m.state {
	case StateMenu:
		switch msg.String() {
		case "tab":
			m.difficulty = (m.difficulty + 1) % len(model.Difficulties)
			return m, nil
		case "shift+tab":
			m.difficulty = (m.difficulty + len(model.Difficulties) - 1) % len(model.Difficulties)
			return m, nil
		case "up":
			m.rounds = min(m.rounds+1, maxRounds)
			return m, nil
		case "down":
			m.rounds = max(m.rounds-1, 1)
			return m, nil
		case "enter":
			return m.startGame()
		}

	case StatePlaying:
		if i := strings.Index(optionKeys, msg.String()); i >= 0 && len(msg.String()) == 1 {
			if m.engine == nil || m.engine.State().Terminal() {
				return m, nil
			}
			if !m.waitingAudio && i < len(m.options) && m.selected < 0 {
				if m.engine.Submit(m.round, m.options[i].ID) {
					m.selected = i
				}
			}
			return m, nil
		}

	case StateGameOver:
		switch msg.String() {
		case "e":
			return m, m.exportMissed()
		case "r":
			m.reset()
			return m, nil
		case "q":
			return m, tea.Quit
		}

	case StateError:
		switch msg.String() {
		case "r":
			m.reset()
			return m, nil
		case "q":
			return m, tea.Quit
		}
	}

	if m.state == StateMenu {
		var cmd tea.Cmd
		m.sourceInput, cmd = m.sourceInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleEvent(e game.Event) tea.Cmd {
	// Events can trail GameDoneMsg.
	if m.state != StatePlaying && m.state != StateReveal {
		return nil
	}

	m.totalRounds = e.TotalRounds
	m.score = e.Score
	m.streak = e.Streak

	switch e.Kind {
	case game.EventRoundStarted:
		m.state = StatePlaying
		m.round = e.Round
		m.options = e.Options
		m.selected = -1
		m.waitingAudio = true
		m.outcome = nil
		m.artwork = ""

	case game.EventCountdownStarted:
		m.waitingAudio = false
		m.deadline = e.Deadline
		m.remaining = e.Remaining

	case game.EventTick:
		m.remaining = e.Remaining

	case game.EventRoundResolved:
		m.state = StateReveal
		m.outcome = e.Outcome
		m.remaining = e.Remaining
		m.addLog(e.Progress())
		if e.Outcome != nil {
			return m.fetchArtwork(e.Round, e.Outcome.Target)
		}

	case game.EventRoundSkipped, game.EventLog, game.EventSessionCancelled:
		m.addLog(e.Progress())

	case game.EventSessionComplete:
		if e.Result != nil {
			result := *e.Result
			m.result = &result
		}
	}
	return nil
}

func (m *Model) addLog(e tprogress.Event) {
	if e.Message == "" {
		return
	}
	// Filter verbose messages if not in verbose mode
	if e.Level == tprogress.LevelVerbose && !m.verbose {
		return
	}
	m.logs = append(m.logs, LogEntry{Message: e.Message, Level: e.Level})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *Model) stop() {
	if m.engine != nil {
		m.engine.Cancel()
	}
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Model) reset() {
	m.state = StateMenu
	m.err = nil
	m.result = nil
	m.outcome = nil
	m.options = nil
	m.round = 0
	m.score = 0
	m.streak = 0
	m.artwork = ""
	m.exported = ""
	m.session = nil
	m.engine = nil
	m.sourceInput.Focus()
}

func (m Model) startGame() (tea.Model, tea.Cmd) {
	g := m.app.Settings.Game
	g.Difficulty = model.Difficulties[m.difficulty].String()
	g.Rounds = m.rounds
	g.Source = strings.TrimSpace(m.sourceInput.Value())

	a, err := m.app.WithGame(g)
	if err != nil {
		m.state = StateError
		m.err = err
		return m, nil
	}

	m.app = a
	m.logs = m.logs[:0]
	m.result = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.state = StateLoading
	m.sourceInput.Blur()

	a, ctx, source := m.app, m.ctx, g.Source
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		session, err := a.StartSession(ctx, source)
		return SessionReadyMsg{Session: session, Err: err}
	})
}

// forwardEvents delivers engine events to the UI until ctx is done.
func forwardEvents(ctx context.Context, msgs chan<- tea.Msg) func(game.Event) {
	return func(e game.Event) {
		select {
		case msgs <- EngineEventMsg{Event: e}:
		case <-ctx.Done():
		}
	}
}

// waitForMsg returns a command that delivers the next queued message.
func (m Model) waitForMsg() tea.Cmd {
	msgs := m.msgs
	return func() tea.Msg {
		return <-msgs
	}
}

// runEngine plays the session in the background.
func (m Model) runEngine() tea.Cmd {
	session, engine, ctx := m.session, m.engine, m.ctx
	return func() tea.Msg {
		result, err := session.Run(ctx, engine)
		return GameDoneMsg{Result: result, Err: err}
	}
}

func (m Model) fetchArtwork(round int, target model.Track) tea.Cmd {
	display := m.app.Settings.Display
	if !display.ShowArtwork || !target.HasArtwork() {
		return nil
	}
	renderer, ctx := m.app.Artwork, m.ctx
	return func() tea.Msg {
		art, err := renderer.Fetch(ctx, target.ArtworkURL, display.ArtworkWidth)
		return ArtworkMsg{Round: round, Art: art, Err: err}
	}
}

func (m Model) exportMissed() tea.Cmd {
	if m.result == nil || len(m.result.Missed) == 0 {
		return nil
	}
	format, err := audio.ParsePlaylistFormat(m.app.Settings.Display.ExportFormat)
	if err != nil {
		return func() tea.Msg { return ExportDoneMsg{Err: err} }
	}

	missed := m.result.Missed
	id := m.result.SessionID
	if len(id) > 8 {
		id = id[:8]
	}
	path := filepath.Join(m.exportDir, audio.SafeFileName("tunetracer-missed-"+id))

	return func() tea.Msg {
		written, err := audio.NewPlaylistCreator(format, true).WriteFile(path, missed)
		return ExportDoneMsg{Path: written, Err: err}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎵 TuneTracer"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Name that tune before the clock runs out"))
	b.WriteString("\n\n")

	switch m.state {
	case StateMenu:
		b.WriteString(m.viewMenu())
	case StateLoading:
		b.WriteString(m.viewLoading())
	case StatePlaying:
		b.WriteString(m.viewPlaying())
	case StateReveal:
		b.WriteString(m.viewReveal())
	case StateGameOver:
		b.WriteString(m.viewGameOver())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewMenu() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Track source:"))
	b.WriteString("\n\n")
	b.WriteString(m.sourceInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Difficulty:"))
	b.WriteString(" ")
	for i, d := range model.Difficulties {
		label := " " + d.Label() + " "
		if i == m.difficulty {
			b.WriteString(selectedStyle.Render(label))
		} else {
			b.WriteString(dimStyle.Render(label))
		}
	}
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Rounds: %d", m.rounds)))
	b.WriteString("\n")

	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}
	b.WriteString(fmt.Sprintf("%s Verbose/debug output (ctrl+l)\n\n", verboseCheck))

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewLoading() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Fetching tracks..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewStatus() string {
	return infoStyle.Render(fmt.Sprintf(
		"Round %d/%d | Score: %d | Streak: %d (x%d)",
		m.round, m.totalRounds, m.score, m.streak, game.Multiplier(m.streak),
	))
}

func (m Model) viewPlaying() string {
	var b strings.Builder

	b.WriteString(m.viewStatus())
	b.WriteString("\n\n")

	if m.waitingAudio {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Finding a preview..."))
		b.WriteString("\n\n")
	} else {
		var percent float64
		if m.deadline > 0 {
			percent = float64(m.remaining) / float64(m.deadline)
		}
		b.WriteString(m.countdown.ViewAs(percent))
		b.WriteString(fmt.Sprintf(" %.1fs", m.remaining.Seconds()))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderOptions())
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewReveal() string {
	var b strings.Builder

	b.WriteString(m.viewStatus())
	b.WriteString("\n\n")

	if o := m.outcome; o != nil {
		switch {
		case o.Correct:
			b.WriteString(successStyle.Render(fmt.Sprintf("✓ Correct! +%d points (x%d)", o.Points, o.Multiplier)))
		case o.TimedOut:
			b.WriteString(warningStyle.Render("⏱ Time's up!"))
		default:
			b.WriteString(errorStyle.Render("✗ Wrong!"))
		}
		b.WriteString("\n")
		b.WriteString(optionStyle.Render("♪ " + o.Target.String()))
		b.WriteString("\n\n")
	}

	if m.artwork != "" {
		b.WriteString(m.artwork)
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewGameOver() string {
	var b strings.Builder

	if m.result == nil {
		return ""
	}
	r := m.result

	box := boxStyle.Render(fmt.Sprintf(
		"🏁 Game Over!\n\n"+
			"Score: %d\n"+
			"Correct: %d/%d\n"+
			"Final streak: %d\n"+
			"Skipped: %d",
		r.Score,
		r.CorrectAnswers,
		r.Answered(),
		r.Streak,
		r.Skipped,
	))
	b.WriteString(box)
	b.WriteString("\n\n")

	if len(r.Missed) > 0 {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("Missed %d track(s):", len(r.Missed))))
		b.WriteString("\n")
		for _, track := range r.Missed {
			b.WriteString(optionStyle.Render("  ♪ " + track.String()))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(successStyle.Render("Perfect game, nothing missed!"))
		b.WriteString("\n")
	}

	if m.exported != "" {
		b.WriteString("\n")
		b.WriteString(successStyle.Render("Saved playlist: " + m.exported))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	if errors.Is(m.err, model.ErrPoolTooSmall) {
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("  Pick a source with at least 4 different songs."))
	}

	return b.String()
}

func (m Model) renderOptions() string {
	var b strings.Builder

	for i, option := range m.options {
		line := fmt.Sprintf("[%d] %s", i+1, option.String())
		if i == m.selected {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(optionStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		switch log.Level {
		case tprogress.LevelError:
			style = errorStyle
		case tprogress.LevelWarning:
			style = warningStyle
		case tprogress.LevelSuccess:
			style = successStyle
		case tprogress.LevelInfo:
			style = infoStyle
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(log.Level.Prefix() + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateMenu:
		return "enter: start • tab: difficulty • ↑/↓: rounds • ctrl+l: verbose • esc: quit"
	case StateLoading:
		return "esc: cancel"
	case StatePlaying:
		return "1-4: answer • esc: quit game"
	case StateReveal:
		return "esc: quit game"
	case StateGameOver:
		return "e: export missed • r: new game • q: quit"
	case StateError:
		return "r: back to menu • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings, source string) error {
	m, err := NewModel(settings, source)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.stop()
	}
	return err
}
