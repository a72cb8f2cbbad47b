package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/handiism/tunetracer/internal/app"
	"github.com/handiism/tunetracer/internal/catalog"
	"github.com/handiism/tunetracer/internal/model"
)

func newPoolCmd(opts *globalOptions) *cobra.Command {
	var save string

	cmd := &cobra.Command{
		Use:   "pool",
		Short: "List the candidate tracks of the configured source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(opts.settings, opts.printer(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			provider, err := a.Provider(opts.settings.Game.Source)
			if err != nil {
				return err
			}

			tracks, err := provider.FetchCandidates(cmd.Context())
			if err != nil {
				return err
			}

			pool, err := model.NewCandidatePool(tracks)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tARTIST\tTITLE\tAUDIO")
			for _, track := range pool.Tracks() {
				audio := "search"
				if track.HasDirectAudio() {
					audio = "direct"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", track.ID, track.Artist, track.Title, audio)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%d tracks from %s\n", pool.Len(), provider.Name())

			if save != "" {
				if err := catalog.WriteTrackList(save, provider.Name(), pool.Tracks()); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved track list to %s\n", save)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&save, "save", "", "write the pool as a YAML track list (usable as file:<path>)")
	return cmd
}
