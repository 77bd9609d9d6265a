package tracker

import (
	"context"
	"slices"
	"strings"

	"github.com/stefanpenner/goalist/pkg/board"
	"github.com/stefanpenner/goalist/pkg/placement"
	"github.com/stefanpenner/goalist/pkg/store"
)

func cleanTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", store.Invalid("title", "must not be empty")
	}
	return title, nil
}

// AddList creates a goal list after every existing list, in the column
// with the fewest lists.
func (t *Tracker) AddList(ctx context.Context, title string) (*store.GoalList, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	l := &store.GoalList{
		Title:        title,
		UserID:       t.userID,
		Order:        placement.NextListOrder(t.lists),
		ColumnNumber: board.PickColumn(t.lists, t.columns),
	}
	t.mu.Unlock()

	rec := store.ListRecord(l)
	delete(rec, store.ColID)
	row, err := t.remote.Insert(ctx, store.TableGoalLists, rec)
	if err != nil {
		return nil, &store.PersistenceError{Op: "insert", Table: store.TableGoalLists, Err: err}
	}
	created, err := store.ListFromRecord(row)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.lists = append(t.lists, created)
	t.mu.Unlock()
	t.log.Info("added list", "id", created.ID, "column", created.ColumnNumber)
	t.saveCache()
	t.notify()

	c := *created
	return &c, nil
}

// RenameList changes a list's title.
func (t *Tracker) RenameList(ctx context.Context, id, title string) error {
	title, err := cleanTitle(title)
	if err != nil {
		return err
	}
	t.mu.Lock()
	_, err = t.listLocked(id)
	t.mu.Unlock()
	if err != nil {
		return err
	}

	patch := store.GoalListPatch{Title: &title}
	return t.commit(ctx, "rename-list", func() error {
		l, err := t.listLocked(id)
		if err != nil {
			return err
		}
		patch.Apply(l)
		return nil
	}, []write{{table: store.TableGoalLists, id: id, fields: patch.Record()}})
}

// DeleteList removes a list and drops its goals from memory. The record
// store removes the goals rows itself.
func (t *Tracker) DeleteList(ctx context.Context, id string) error {
	t.mu.Lock()
	_, err := t.listLocked(id)
	t.mu.Unlock()
	if err != nil {
		return err
	}

	return t.commit(ctx, "delete-list", func() error {
		t.lists = slices.DeleteFunc(t.lists, func(l *store.GoalList) bool { return l.ID == id })
		t.goals = slices.DeleteFunc(t.goals, func(g *store.Goal) bool { return g.GoalListID == id })
		return nil
	}, []write{{table: store.TableGoalLists, id: id, remove: true}})
}

// AddGoal appends a goal to the end of a list. New goals carry over and
// are not focused.
func (t *Tracker) AddGoal(ctx context.Context, listID, title string) (*store.Goal, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if _, err := t.listLocked(listID); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	g := &store.Goal{
		Title:           title,
		GoalListID:      listID,
		RepeatFrequency: store.RepeatNone,
		CarryOver:       true,
		UserID:          t.userID,
		Order:           placement.NextGoalOrder(t.goals, listID),
	}
	t.mu.Unlock()

	rec := store.GoalRecord(g)
	delete(rec, store.ColID)
	row, err := t.remote.Insert(ctx, store.TableGoals, rec)
	if err != nil {
		return nil, &store.PersistenceError{Op: "insert", Table: store.TableGoals, Err: err}
	}
	created, err := store.GoalFromRecord(row)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.goals = append(t.goals, created)
	t.mu.Unlock()
	t.log.Info("added goal", "id", created.ID, "list", listID)
	t.saveCache()
	t.notify()

	c := *created
	return &c, nil
}

// UpdateGoal applies a partial edit to a goal. Position fields are
// rejected: order and list changes go through Apply so scopes stay
// strictly ordered.
func (t *Tracker) UpdateGoal(ctx context.Context, id string, patch store.GoalPatch) error {
	if patch.Order != nil || patch.GoalListID != nil {
		return store.Invalid("patch", "order and list are changed by moving the goal")
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}
	t.mu.Lock()
	_, err := t.goalLocked(id)
	t.mu.Unlock()
	if err != nil {
		return err
	}

	return t.commit(ctx, "update-goal", func() error {
		g, err := t.goalLocked(id)
		if err != nil {
			return err
		}
		patch.Apply(g)
		return nil
	}, []write{{table: store.TableGoals, id: id, fields: patch.Record()}})
}

// DeleteGoal removes a goal.
func (t *Tracker) DeleteGoal(ctx context.Context, id string) error {
	t.mu.Lock()
	_, err := t.goalLocked(id)
	t.mu.Unlock()
	if err != nil {
		return err
	}

	return t.commit(ctx, "delete-goal", func() error {
		t.goals = slices.DeleteFunc(t.goals, func(g *store.Goal) bool { return g.ID == id })
		return nil
	}, []write{{table: store.TableGoals, id: id, remove: true}})
}

// SetComplete marks a goal complete now, or clears its completion.
func (t *Tracker) SetComplete(ctx context.Context, id string, done bool) error {
	g, err := t.Goal(id)
	if err != nil {
		return err
	}
	if g.IsComplete() == done {
		return nil
	}
	patch := store.GoalPatch{CompletedAt: store.ClearTime()}
	if done {
		patch.CompletedAt = store.NullTime(t.clock.Now().UTC())
	}
	return t.UpdateGoal(ctx, id, patch)
}

// ToggleComplete flips a goal's completion and returns the new state.
func (t *Tracker) ToggleComplete(ctx context.Context, id string) (bool, error) {
	g, err := t.Goal(id)
	if err != nil {
		return false, err
	}
	done := !g.IsComplete()
	return done, t.SetComplete(ctx, id, done)
}

// SetFocused adds a goal to or removes it from the focus list.
func (t *Tracker) SetFocused(ctx context.Context, id string, focused bool) error {
	g, err := t.Goal(id)
	if err != nil {
		return err
	}
	if g.IsFocused == focused {
		return nil
	}
	return t.UpdateGoal(ctx, id, store.GoalPatch{IsFocused: &focused})
}

// Archive hides a goal from the board.
func (t *Tracker) Archive(ctx context.Context, id string) error {
	g, err := t.Goal(id)
	if err != nil {
		return err
	}
	if g.IsArchived() {
		return nil
	}
	return t.UpdateGoal(ctx, id, store.GoalPatch{ArchivedAt: store.NullTime(t.clock.Now().UTC())})
}

// Unarchive returns a goal to its list. If its old order collides with an
// active goal it goes to the end of the list.
func (t *Tracker) Unarchive(ctx context.Context, id string) error {
	t.mu.Lock()
	g, err := t.goalLocked(id)
	if err != nil || !g.IsArchived() {
		t.mu.Unlock()
		return err
	}
	patch := store.GoalPatch{ArchivedAt: store.ClearTime()}
	if scope := placement.GoalScope(t.goals, g.GoalListID); len(scope) > 0 {
		if last := scope[len(scope)-1].Order; g.Order <= last {
			order := last + 1
			patch.Order = &order
		}
	}
	t.mu.Unlock()

	return t.commit(ctx, "unarchive-goal", func() error {
		g, err := t.goalLocked(id)
		if err != nil {
			return err
		}
		patch.Apply(g)
		return nil
	}, []write{{table: store.TableGoals, id: id, fields: patch.Record()}})
}

// ArchiveStale archives every completed goal finished more than the
// configured number of days ago, all with the same timestamp. It returns
// how many goals were archived. Either all are archived or none are.
func (t *Tracker) ArchiveStale(ctx context.Context) (int, error) {
	t.mu.Lock()
	days := t.archiveAfterDays
	now := t.clock.Now().UTC()
	var ids []string
	for _, g := range board.ArchiveEligible(t.goals, now, days) {
		ids = append(ids, g.ID)
	}
	t.mu.Unlock()

	if days == 0 {
		return 0, store.Invalid("archive_after_days", "automatic archiving is disabled")
	}
	if len(ids) == 0 {
		return 0, nil
	}

	patch := store.GoalPatch{ArchivedAt: store.NullTime(now)}
	writes := make([]write, 0, len(ids))
	for _, id := range ids {
		writes = append(writes, write{table: store.TableGoals, id: id, fields: patch.Record()})
	}
	err := t.commit(ctx, "archive-stale", func() error {
		for _, id := range ids {
			if g, err := t.goalLocked(id); err == nil {
				patch.Apply(g)
			}
		}
		return nil
	}, writes)
	if err != nil {
		return 0, err
	}
	t.log.Info("archived stale goals", "count", len(ids), "days", days)
	return len(ids), nil
}
