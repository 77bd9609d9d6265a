package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/stefanpenner/goalist/pkg/placement"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage goal lists",
	}
	cmd.AddCommand(
		newListAddCommand(opts),
		newListRenameCommand(opts),
		newListDeleteCommand(opts),
		newListMoveCommand(opts),
	)
	return cmd
}

func newListAddCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Create a list in the column with the fewest lists",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				l, err := app.Tracker.AddList(commandContext(cmd), strings.Join(args, " "))
				if err != nil {
					return err
				}
				printDone(cmd.OutOrStdout(), "Created list %s (%s) in column %d", l.Title, shortID(l.ID), l.ColumnNumber)
				return nil
			})
		},
	}
}

func newListRenameCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <list> <title>",
		Short: "Rename a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				l, err := app.Tracker.ResolveList(args[0])
				if err != nil {
					return err
				}
				title := strings.Join(args[1:], " ")
				if err := app.Tracker.RenameList(commandContext(cmd), l.ID, title); err != nil {
					return err
				}
				printDone(cmd.OutOrStdout(), "Renamed %s to %s", l.Title, strings.TrimSpace(title))
				return nil
			})
		},
	}
}

func newListDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <list>",
		Short: "Delete a list and its goals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				l, err := app.Tracker.ResolveList(args[0])
				if err != nil {
					return err
				}
				if err := app.Tracker.DeleteList(commandContext(cmd), l.ID); err != nil {
					return err
				}
				printDone(cmd.OutOrStdout(), "Deleted list %s", l.Title)
				return nil
			})
		},
	}
}

func newListMoveCommand(opts *rootOptions) *cobra.Command {
	var column, position int
	cmd := &cobra.Command{
		Use:   "move <list>",
		Short: "Move a list within its column or to another column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				l, err := app.Tracker.ResolveList(args[0])
				if err != nil {
					return err
				}
				to := column
				if !cmd.Flags().Changed("column") {
					to = placement.EffectiveColumn(l.ColumnNumber, app.Tracker.Columns())
				}
				m := placement.Move{Kind: placement.KindMoveList, ItemID: l.ID, ToColumn: to, Index: position - 1}
				return applyMove(cmd, app, m, l.Title)
			})
		},
	}
	cmd.Flags().IntVar(&column, "column", 0, "destination column (default: current column)")
	cmd.Flags().IntVar(&position, "position", 1, "1-based position in the destination column")
	return cmd
}
