package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings (file, environment and flags merged)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				tree := opts.settings.Tree()
				if opts.settings.Spotify.ClientSecret != "" {
					tree["spotify"]["client_secret"] = "********"
				}

				data, err := yaml.Marshal(tree)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", opts.configPath, data)
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the effective settings to the config file",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := opts.settings.Validate(); err != nil {
					return err
				}
				if err := opts.settings.Save(opts.configPath); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.configPath)
				return nil
			},
		},
	)

	return cmd
}
