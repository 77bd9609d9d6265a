// Package cli provides the command-line interface for goalist.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/stefanpenner/goalist/pkg/config"
)

// Command group IDs.
const (
	groupBoard  = "board"
	groupManage = "manage"
	groupSetup  = "setup"
)

// launchTUIFunc is a function variable for launching the dashboard, allowing
// it to be mocked in tests.
var launchTUIFunc = launchTUI

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dataDir    string
	backend    string
	verbose    bool
}

// loadConfig reads the config file and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromPath(o.configFile())
	if err != nil {
		return nil, err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.backend != "" {
		cfg.Backend = o.backend
	}
	return cfg, nil
}

func (o *rootOptions) configFile() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.UserConfigPath()
}

// open loads the config and the tracker for cmd. Callers close the App.
func (o *rootOptions) open(cmd *cobra.Command) (*App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	var stderr io.Writer
	if o.verbose {
		stderr = cmd.ErrOrStderr()
	}
	return OpenApp(commandContext(cmd), cfg, stderr)
}

// withApp runs fn with an opened App and closes it afterwards.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(*App) error) error {
	app, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// NewRootCommand creates the root command for goalist.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "goalist",
		Short: "Goal lists on a column dashboard",
		Long: `goalist keeps goals in ordered lists arranged across dashboard columns,
with a focus list for the goals that matter right now.

Run without arguments to open the dashboard.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(app *App) error {
				return launchTUIFunc(commandContext(cmd), app)
			})
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/goalist/config.yaml)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "data directory (overrides data_dir)")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "record store backend: file or sqlite")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "also log to stderr")

	root.AddGroup(
		&cobra.Group{ID: groupBoard, Title: "Board Commands:"},
		&cobra.Group{ID: groupManage, Title: "Lists and Goals:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	for _, c := range []*cobra.Command{
		newTUICommand(opts),
		newBoardCommand(opts),
		newFocusCommand(opts),
		newArchiveCommand(opts),
		newExportCommand(opts),
	} {
		c.GroupID = groupBoard
		root.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		newListCommand(opts),
		newGoalCommand(opts),
	} {
		c.GroupID = groupManage
		root.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		newConfigCommand(opts),
		newSyncCommand(opts),
	} {
		c.GroupID = groupSetup
		root.AddCommand(c)
	}

	return root
}
