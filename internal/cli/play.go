package cli

import (
	"github.com/spf13/cobra"

	"github.com/handiism/tunetracer/internal/tui"
)

func newPlayCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play interactively in the terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return tui.Run(opts.settings, opts.settings.Game.Source)
		},
	}
}
