package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/stefanpenner/goalist/pkg/board"
	"github.com/stefanpenner/goalist/pkg/placement"
	"github.com/stefanpenner/goalist/pkg/store"
	"github.com/stefanpenner/goalist/pkg/tui"
)

func newTUICommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(app *App) error {
				return launchTUIFunc(commandContext(cmd), app)
			})
		},
	}
}

func launchTUI(ctx context.Context, app *App) error {
	m := tui.NewModel(ctx, app.Tracker, tui.Options{Log: app.Log, Files: app.Files})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	app.Tracker.OnChange(func() { p.Send(tui.BoardChangedMsg{}) })
	defer app.Tracker.OnChange(nil)

	if app.Files != nil {
		cleanup, err := tui.StartWatcher(app.Files, p)
		if err != nil {
			app.Log.Warn("file watcher failed", "err", err)
		} else {
			defer cleanup()
		}
	}

	_, err := p.Run()
	return err
}

func newBoardCommand(opts *rootOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the dashboard columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(app *App) error {
				cm := app.Tracker.Board()
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), cm)
				}
				printBoard(cmd.OutOrStdout(), cm)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func printBoard(w io.Writer, cm board.ColumnMap) {
	for i, col := range cm {
		if i > 0 {
			fmt.Fprintln(w)
		}
		headerColor.Fprintf(w, "COLUMN %d\n", col.Number)
		if len(col.Lists) == 0 {
			fmt.Fprintln(w, dimColor.Sprint("  (no lists)"))
			continue
		}
		for _, lv := range col.Lists {
			pct := board.ListProgress(lv.Goals, lv.List.ID)
			fmt.Fprintf(w, "  %s %s %s\n",
				listColor.Sprint(lv.List.Title),
				dimColor.Sprintf("(%s)", shortID(lv.List.ID)),
				dimColor.Sprintf("%.0f%%", pct))
			for _, g := range lv.Goals {
				printGoalLine(w, "    ", g)
			}
		}
	}
}

func newFocusCommand(opts *rootOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Print the focus list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(app *App) error {
				items := app.Tracker.Focus()
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), items)
				}
				printFocus(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.AddCommand(&cobra.Command{
		Use:   "move <goal> <position>",
		Short: "Move a focused goal to a 1-based position in the focus list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(app *App) error {
				g, err := app.Tracker.ResolveGoal(args[0])
				if err != nil {
					return err
				}
				m := placement.Move{Kind: placement.KindReorderFocus, ItemID: g.ID, Index: pos - 1}
				return applyMove(cmd, app, m, g.Title)
			})
		},
	})
	return cmd
}

func printFocus(w io.Writer, items []board.FocusItem) {
	goals := make([]*store.Goal, 0, len(items))
	for _, it := range items {
		goals = append(goals, it.Goal)
	}
	done, total := board.FocusProgress(goals)
	headerColor.Fprintf(w, "FOCUS %d/%d\n", done, total)
	if len(items) == 0 {
		fmt.Fprintln(w, dimColor.Sprint("  (nothing focused)"))
		return
	}
	for i, it := range items {
		printGoalLine(w, fmt.Sprintf("  %d. ", i+1), it.Goal)
		if it.ListTitle != "" {
			fmt.Fprintf(w, "       %s\n", dimColor.Sprint(it.ListTitle))
		}
	}
}

// applyMove runs m through the tracker and reports the outcome.
func applyMove(cmd *cobra.Command, app *App, m placement.Move, title string) error {
	res := app.Tracker.Apply(commandContext(cmd), m)
	if err := res.Err(); err != nil {
		return fmt.Errorf("move %q: %w", title, err)
	}
	if res.Plan.Empty() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already there\n", title)
		return nil
	}
	printDone(cmd.OutOrStdout(), "Moved %s (%d updated)", title, res.Plan.Len())
	return nil
}

// parsePosition parses a 1-based position argument.
func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("position must be a number from 1, got %q", s)
	}
	return n, nil
}
