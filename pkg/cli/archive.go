package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/stefanpenner/goalist/pkg/board"
)

func newArchiveCommand(opts *rootOptions) *cobra.Command {
	var (
		search  string
		page    int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse archived goals grouped by list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(app *App) error {
				goals, lists := app.Tracker.Snapshot()
				groups := board.Archived(goals, lists, search)
				shown, pages := board.Page(groups, page, board.ArchivePageSize)
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), shown)
				}
				printArchive(cmd.OutOrStdout(), shown, page, pages)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only titles containing this text")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Archive goals completed more than board.archive_after_days ago",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(app *App) error {
				n, err := app.Tracker.ArchiveStale(commandContext(cmd))
				if err != nil {
					return err
				}
				printDone(cmd.OutOrStdout(), "Archived %d goal(s) completed more than %d day(s) ago", n, app.Tracker.ArchiveAfterDays())
				return nil
			})
		},
	})
	return cmd
}

func printArchive(w io.Writer, groups []board.ArchiveGroup, page, pages int) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No archived goals.")
		return
	}
	for _, grp := range groups {
		fmt.Fprintf(w, "%s %s\n", listColor.Sprint(grp.ListTitle), dimColor.Sprintf("(%d)", len(grp.Goals)))
		for _, g := range grp.Goals {
			printGoalLine(w, "  ", g)
			if g.ArchivedAt != nil {
				fmt.Fprintf(w, "    %s\n", dimColor.Sprintf("archived %s", g.ArchivedAt.Local().Format(time.DateOnly)))
			}
		}
	}
	if pages > 1 {
		fmt.Fprintln(w, dimColor.Sprintf("page %d of %d", min(max(page, 1), pages), pages))
	}
}
