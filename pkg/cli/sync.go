package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stefanpenner/goalist/pkg/config"
	"github.com/stefanpenner/goalist/pkg/store"
	gitsync "github.com/stefanpenner/goalist/pkg/sync"
)

func newSyncCommand(opts *rootOptions) *cobra.Command {
	var (
		initRepo bool
		remote   string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the file backend's data directory through git",
		Long: `Commit local changes in the data directory, fast-forward from the remote
and push. Use --init (with --remote) once to set up the repository.

Only the file backend can be synced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Backend != config.BackendFile {
				return store.Invalid("backend", "sync needs the %q backend, not %q", config.BackendFile, cfg.Backend)
			}
			if initRepo {
				if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
					return err
				}
				return gitsync.InitRepo(cfg.DataDir, remote, cmd.OutOrStdout())
			}
			if remote != "" {
				return store.Invalid("remote", "--remote is only used with --init")
			}
			return gitsync.SyncRepo(commandContext(cmd), cfg.DataDir, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&initRepo, "init", false, "create the repository and configure the remote")
	cmd.Flags().StringVar(&remote, "remote", "", "remote URL for --init")
	return cmd
}
