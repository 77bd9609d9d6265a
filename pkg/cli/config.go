package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stefanpenner/goalist/pkg/config"
)

func newConfigCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or change configuration",
		Long: `View or modify goalist configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/goalist/config.yaml and can be
overridden with GOALIST_* environment variables, e.g. GOALIST_BOARD_COLUMNS.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 2 {
				if _, err := config.Set(opts.configFile(), args[0], args[1]); err != nil {
					return err
				}
				printDone(w, "Set %s = %s", args[0], args[1])
				return nil
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				v, err := cfg.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(w, v)
				return nil
			}
			for _, key := range config.Keys {
				v, _ := cfg.Get(key)
				fmt.Fprintf(w, "%s: %s\n", key, v)
			}
			fmt.Fprintln(w, dimColor.Sprintf("# %s", opts.configFile()))
			return nil
		},
	}
}
