package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/tunetracer/internal/app"
	"github.com/handiism/tunetracer/internal/preview"
)

func newResolveCmd(opts *globalOptions) *cobra.Command {
	var direct string

	cmd := &cobra.Command{
		Use:   "resolve <title> <artist>",
		Short: "Find a preview URL for a song",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(opts.settings, opts.printer(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			url, stage := a.Resolver.ResolveStage(cmd.Context(), args[0], args[1], direct)
			if stage == preview.StageNone {
				return fmt.Errorf("no preview found for %q by %q", args[0], args[1])
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", stage, url)
			return nil
		},
	}

	cmd.Flags().StringVar(&direct, "direct", "", "direct audio URL to try first")
	return cmd
}
