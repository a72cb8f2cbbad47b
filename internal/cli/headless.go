package cli

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/handiism/tunetracer/internal/app"
	"github.com/handiism/tunetracer/internal/audio"
	"github.com/handiism/tunetracer/internal/game"
	"github.com/handiism/tunetracer/internal/model"
	"github.com/handiism/tunetracer/internal/player"
	"github.com/handiism/tunetracer/internal/progress"
)

// Answer strategies of the headless player.
const (
	StrategyFirst  = "first"
	StrategyRandom = "random"
	StrategyNone   = "none"
)

type headlessOptions struct {
	strategy string
	silent   bool
	seed     uint64
	export   string
}

func newHeadlessCmd(opts *globalOptions) *cobra.Command {
	h := &headlessOptions{}

	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Play a session automatically and print the result",
		Long:  "headless plays every round with a scripted answer strategy. It exercises the whole pipeline (catalog, preview search, playback, scoring) without a terminal UI.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHeadless(cmd, opts, h)
		},
	}

	cmd.Flags().StringVar(&h.strategy, "strategy", StrategyRandom, "answer strategy: first, random or none (let every round time out)")
	cmd.Flags().BoolVar(&h.silent, "silent", false, "do not play audio")
	cmd.Flags().Uint64Var(&h.seed, "seed", 0, "seed for round selection (0: random)")
	cmd.Flags().StringVar(&h.export, "export", "", "write missed tracks to this playlist file")

	return cmd
}

func runHeadless(cmd *cobra.Command, opts *globalOptions, h *headlessOptions) error {
	out := cmd.OutOrStdout()
	onProgress := opts.printer(out)

	switch h.strategy {
	case StrategyFirst, StrategyRandom, StrategyNone:
	default:
		return fmt.Errorf("unknown strategy %q", h.strategy)
	}

	a, err := app.New(opts.settings, onProgress)
	if err != nil {
		return err
	}
	if h.silent {
		a.Player = player.NewSilent()
	}

	session, err := a.StartSession(cmd.Context(), opts.settings.Game.Source)
	if err != nil {
		if errors.Is(err, model.ErrPoolTooSmall) {
			return fmt.Errorf("%w: pick a source with at least %d different songs", err, model.MinPoolSize)
		}
		return err
	}

	deps := a.Deps(nil)
	if h.seed != 0 {
		deps.Random = game.NewSeededRandom(h.seed)
	}

	var eng *game.Engine
	deps.OnEvent = func(e game.Event) {
		if e.Kind == game.EventCountdownStarted {
			if id, ok := pickAnswer(h.strategy, e.Options); ok {
				eng.Submit(e.Round, id)
			}
		}
		reportEvent(onProgress, e)
	}
	eng = session.NewEngine(deps)

	result, err := session.Run(cmd.Context(), eng)
	if err != nil {
		return err
	}

	printResult(out, result)

	if h.export != "" && len(result.Missed) > 0 {
		format, err := audio.ParsePlaylistFormat(strings.TrimPrefix(filepath.Ext(h.export), "."))
		if err != nil {
			format, _ = audio.ParsePlaylistFormat(opts.settings.Display.ExportFormat)
		}
		path, err := audio.NewPlaylistCreator(format, true).WriteFile(h.export, result.Missed)
		if err != nil {
			return fmt.Errorf("export missed tracks: %w", err)
		}
		onProgress.Emit(progress.LevelSuccess, "Missed tracks saved to %s", path)
	}

	return nil
}

func pickAnswer(strategy string, options []model.Track) (string, bool) {
	if len(options) == 0 {
		return "", false
	}
	switch strategy {
	case StrategyFirst:
		return options[0].ID, true
	case StrategyRandom:
		return options[rand.IntN(len(options))].ID, true
	default:
		return "", false
	}
}

// reportEvent prints the engine events worth a line. Ticks are dropped.
func reportEvent(onProgress progress.Func, e game.Event) {
	switch e.Kind {
	case game.EventRoundStarted:
		onProgress.Emit(progress.LevelInfo, "Round %d/%d", e.Round, e.TotalRounds)
		for i, option := range e.Options {
			onProgress.Emit(progress.LevelVerbose, "  [%d] %s", i+1, option)
		}
	case game.EventRoundResolved:
		if o := e.Outcome; o != nil && o.Correct {
			onProgress.Emit(e.Level, "%s (+%d, x%d) score %d", e.Message, o.Points, o.Multiplier, e.Score)
		} else if o != nil && o.TimedOut {
			onProgress.Emit(e.Level, "Time's up: %s", o.Target)
		} else {
			onProgress.Emit(e.Level, "%s", e.Message)
		}
	case game.EventTick:
	default:
		if onProgress != nil && e.Message != "" {
			onProgress(e.Progress())
		}
	}
}

func printResult(w io.Writer, r model.GameResult) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Score: %d\n", r.Score)
	_, _ = fmt.Fprintf(w, "Correct: %d/%d\n", r.CorrectAnswers, r.Answered())
	_, _ = fmt.Fprintf(w, "Final streak: %d\n", r.Streak)
	if r.Skipped > 0 {
		_, _ = fmt.Fprintf(w, "Skipped: %d\n", r.Skipped)
	}
	if len(r.Missed) > 0 {
		_, _ = fmt.Fprintln(w, "Missed:")
		for _, track := range r.Missed {
			_, _ = fmt.Fprintf(w, "  ♪ %s\n", track)
		}
	}
}
