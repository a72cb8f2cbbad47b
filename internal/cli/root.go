// Package cli implements the tunetracer command line.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/handiism/tunetracer/internal/config"
	"github.com/handiism/tunetracer/internal/progress"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
	difficulty string
	rounds     int
	source     string

	settings *config.Settings
}

// NewRootCmd builds the tunetracer command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "tunetracer",
		Short:         "TuneTracer: name that tune in your terminal",
		Long:          "tunetracer plays short previews of songs from a playlist, a curated list or your music folder and asks you to pick the right title among four before the countdown runs out.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath(), "config file (json, yaml or toml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "show verbose output")
	flags.StringVarP(&opts.difficulty, "difficulty", "d", "", "easy, pro or legend (overrides config)")
	flags.IntVarP(&opts.rounds, "rounds", "n", 0, "number of rounds (overrides config)")
	flags.StringVarP(&opts.source, "source", "s", "", "demo, spotify:<playlist>, file:<tracks.yaml> or dir:<folder> (overrides config)")

	rootCmd.AddCommand(
		newPlayCmd(opts),
		newHeadlessCmd(opts),
		newResolveCmd(opts),
		newPoolCmd(opts),
		newConfigCmd(opts),
	)

	return rootCmd
}

func (o *globalOptions) load(cmd *cobra.Command) error {
	settings, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("difficulty") {
		settings.Game.Difficulty = o.difficulty
	}
	if cmd.Flags().Changed("rounds") {
		settings.Game.Rounds = o.rounds
	}
	if cmd.Flags().Changed("source") {
		settings.Game.Source = o.source
	}

	o.settings = settings
	return nil
}

// printer returns a progress.Func writing leveled lines to w.
func (o *globalOptions) printer(w io.Writer) progress.Func {
	return func(e progress.Event) {
		// Filter verbose messages if not in verbose mode
		if e.Level == progress.LevelVerbose && !o.verbose {
			return
		}
		_, _ = fmt.Fprintln(w, e.Level.Prefix()+e.Message)
	}
}
