package cli

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stefanpenner/goalist/pkg/placement"
	"github.com/stefanpenner/goalist/pkg/store"
	"github.com/stefanpenner/goalist/pkg/tracker"
)

func newGoalCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage goals",
	}
	cmd.AddCommand(
		newGoalAddCommand(opts),
		newGoalShowCommand(opts),
		newGoalEditCommand(opts),
		newGoalMoveCommand(opts),
		goalAction(opts, "done <goal>", "Mark a goal complete", "Completed", func(cmd *cobra.Command, t *tracker.Tracker, id string) error {
			return t.SetComplete(commandContext(cmd), id, true)
		}),
		goalAction(opts, "undo <goal>", "Mark a goal incomplete", "Reopened", func(cmd *cobra.Command, t *tracker.Tracker, id string) error {
			return t.SetComplete(commandContext(cmd), id, false)
		}),
		goalAction(opts, "focus <goal>", "Add a goal to the focus list", "Focused", func(cmd *cobra.Command, t *tracker.Tracker, id string) error {
			return t.SetFocused(commandContext(cmd), id, true)
		}),
		goalAction(opts, "unfocus <goal>", "Remove a goal from the focus list", "Unfocused", func(cmd *cobra.Command, t *tracker.Tracker, id string) error {
			return t.SetFocused(commandContext(cmd), id, false)
		}),
		goalAction(opts, "archive <goal>", "Hide a goal from the board", "Archived", func(cmd *cobra.Command, t *tracker.Tracker, id string) error {
			return t.Archive(commandContext(cmd), id)
		}),
		goalAction(opts, "unarchive <goal>", "Return an archived goal to its list", "Unarchived", func(cmd *cobra.Command, t *tracker.Tracker, id string) error {
			return t.Unarchive(commandContext(cmd), id)
		}),
		goalAction(opts, "delete <goal>", "Delete a goal", "Deleted", func(cmd *cobra.Command, t *tracker.Tracker, id string) error {
			return t.DeleteGoal(commandContext(cmd), id)
		}),
	)
	return cmd
}

// goalAction builds a single-argument goal command around fn.
func goalAction(opts *rootOptions, use, short, verb string, fn func(*cobra.Command, *tracker.Tracker, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				g, err := app.Tracker.ResolveGoal(args[0])
				if err != nil {
					return err
				}
				if err := fn(cmd, app.Tracker, g.ID); err != nil {
					return err
				}
				printDone(cmd.OutOrStdout(), "%s %s", verb, g.Title)
				return nil
			})
		},
	}
}

func newGoalAddCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <list> <title>",
		Short: "Add a goal to the end of a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				l, err := app.Tracker.ResolveList(args[0])
				if err != nil {
					return err
				}
				g, err := app.Tracker.AddGoal(commandContext(cmd), l.ID, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				printDone(cmd.OutOrStdout(), "Added %s (%s) to %s", g.Title, shortID(g.ID), l.Title)
				return nil
			})
		},
	}
}

func newGoalShowCommand(opts *rootOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <goal>",
		Short: "Print a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				g, err := app.Tracker.ResolveGoal(args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), g)
				}
				w := cmd.OutOrStdout()
				printGoalLine(w, "", g)
				if l, err := app.Tracker.List(g.GoalListID); err == nil {
					fmt.Fprintf(w, "List: %s\n", l.Title)
				}
				if g.IsArchived() {
					fmt.Fprintf(w, "Archived: %s\n", g.ArchivedAt.Local().Format(time.DateTime))
				}
				if g.Description != "" {
					fmt.Fprintln(w)
					fmt.Fprintln(w, g.Description)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func newGoalEditCommand(opts *rootOptions) *cobra.Command {
	var (
		title, description, due, repeat string
		carryOver                       bool
	)
	cmd := &cobra.Command{
		Use:   "edit <goal>",
		Short: "Change a goal's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var patch store.GoalPatch
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("due") {
				nt, err := parseDue(due)
				if err != nil {
					return err
				}
				patch.DueDate = nt
			}
			if flags.Changed("repeat") {
				f := store.RepeatFrequency(strings.ToLower(repeat))
				patch.RepeatFrequency = &f
			}
			if flags.Changed("carry-over") {
				patch.CarryOver = &carryOver
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to change: pass --title, --description, --due, --repeat or --carry-over")
			}

			return opts.withApp(cmd, func(app *App) error {
				g, err := app.Tracker.ResolveGoal(args[0])
				if err != nil {
					return err
				}
				if err := app.Tracker.UpdateGoal(commandContext(cmd), g.ID, patch); err != nil {
					return err
				}
				printDone(cmd.OutOrStdout(), "Updated %s", g.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "markdown description")
	cmd.Flags().StringVar(&due, "due", "", "due date YYYY-MM-DD, or none")
	cmd.Flags().StringVar(&repeat, "repeat", "", "none, daily, weekly, monthly or yearly")
	cmd.Flags().BoolVar(&carryOver, "carry-over", true, "carry the goal over when it recurs")
	return cmd
}

// parseDue parses a due date flag; "none" clears it.
func parseDue(s string) (*sql.NullTime, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return store.ClearTime(), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return nil, store.Invalid("due", "expected YYYY-MM-DD or none, got %q", s)
	}
	return store.NullTime(t.UTC()), nil
}

func newGoalMoveCommand(opts *rootOptions) *cobra.Command {
	var toList string
	var position int
	cmd := &cobra.Command{
		Use:   "move <goal>",
		Short: "Move a goal within its list or to another list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				g, err := app.Tracker.ResolveGoal(args[0])
				if err != nil {
					return err
				}
				listID := g.GoalListID
				if toList != "" {
					l, err := app.Tracker.ResolveList(toList)
					if err != nil {
						return err
					}
					listID = l.ID
				}
				m := placement.Move{Kind: placement.KindMoveGoal, ItemID: g.ID, ToListID: listID, Index: position - 1}
				return applyMove(cmd, app, m, g.Title)
			})
		},
	}
	cmd.Flags().StringVar(&toList, "list", "", "destination list (default: current list)")
	cmd.Flags().IntVar(&position, "position", 1, "1-based position in the destination list")
	return cmd
}
