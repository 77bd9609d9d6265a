package tracker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/goalist/pkg/placement"
	"github.com/stefanpenner/goalist/pkg/store"
	"github.com/stefanpenner/goalist/pkg/testutil"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func goal(id, list string, order float64) *store.Goal {
	return &store.Goal{ID: id, Title: id, GoalListID: list, Order: order, RepeatFrequency: store.RepeatNone}
}

func list(id string, order, column int) *store.GoalList {
	return &store.GoalList{ID: id, Title: "List " + id, Order: order, ColumnNumber: column}
}

func setupTracker(t *testing.T, goals []*store.Goal, lists []*store.GoalList) (*Tracker, *testutil.MemoryStore, *store.Cache) {
	t.Helper()
	remote := testutil.NewMemoryStore()
	remote.SeedLists(lists...)
	remote.SeedGoals(goals...)
	cache := store.NewCache(t.TempDir())

	tr, err := New(remote, Options{
		Cache:            cache,
		Clock:            &testutil.MockClock{NowTime: testNow},
		Columns:          2,
		ArchiveAfterDays: 7,
	})
	require.NoError(t, err)
	require.NoError(t, tr.Load(context.Background()))
	return tr, remote, cache
}

func findGoal(t *testing.T, goals []*store.Goal, id string) *store.Goal {
	t.Helper()
	for _, g := range goals {
		if g.ID == id {
			return g
		}
	}
	t.Fatalf("goal %s not found", id)
	return nil
}

func TestApplyPersistsEveryUpdate(t *testing.T) {
	tr, remote, _ := setupTracker(t,
		[]*store.Goal{goal("X", "A", 0), goal("Y", "A", 1), goal("Z", "A", 2)},
		[]*store.GoalList{list("A", 1, 1)})

	res := tr.Apply(context.Background(), placement.Move{Kind: placement.KindReorderGoal, ItemID: "Z", Index: 0})
	require.NoError(t, res.Err())
	assert.Equal(t, Applied, res.Status)
	assert.Equal(t, 3, remote.UpdateCount())

	assert.Equal(t, 0.0, remote.Row(store.TableGoals, "Z")[store.ColGoalOrder])
	assert.Equal(t, 1.0, remote.Row(store.TableGoals, "X")[store.ColGoalOrder])
	assert.Equal(t, 2.0, remote.Row(store.TableGoals, "Y")[store.ColGoalOrder])

	cm := tr.Board()
	var titles []string
	for _, g := range cm[0].Lists[0].Goals {
		titles = append(titles, g.Title)
	}
	assert.Equal(t, []string{"Z", "X", "Y"}, titles)
}

func TestApplyNoopMakesNoCalls(t *testing.T) {
	tr, remote, _ := setupTracker(t,
		[]*store.Goal{goal("X", "A", 0), goal("Y", "A", 1)},
		[]*store.GoalList{list("A", 1, 1)})

	var notified atomic.Int32
	tr.OnChange(func() { notified.Add(1) })

	res := tr.Apply(context.Background(), placement.Move{Kind: placement.KindReorderGoal, ItemID: "Y", Index: 1})
	assert.Equal(t, Applied, res.Status)
	assert.True(t, res.Plan.Empty())
	assert.Zero(t, remote.UpdateCount())
	assert.Zero(t, notified.Load())
}

func TestApplyRollsBackWhenAnyWriteFails(t *testing.T) {
	tr, remote, cache := setupTracker(t,
		[]*store.Goal{goal("a0", "A", 0), goal("G", "A", 1), goal("a2", "A", 2), goal("b0", "B", 0), goal("b1", "B", 1)},
		[]*store.GoalList{list("A", 1, 1), list("B", 2, 1)})

	goalsBefore, listsBefore := tr.Snapshot()
	cachedBefore, _, _, err := cache.Load()
	require.NoError(t, err)

	var notified atomic.Int32
	tr.OnChange(func() { notified.Add(1) })
	remote.UpdateErrFor["b1"] = errors.New("connection reset")

	res := tr.Apply(context.Background(), placement.Move{Kind: placement.KindMoveGoal, ItemID: "G", ToListID: "B", Index: 1})
	assert.Equal(t, Failed, res.Status)
	assert.ErrorIs(t, res.Err(), store.ErrPersistence)
	assert.Contains(t, res.Err().Error(), "connection reset")
	assert.Equal(t, 3, res.Plan.Len())
	assert.Equal(t, 3, remote.UpdateCount(), "all writes issued")

	goalsAfter, listsAfter := tr.Snapshot()
	assert.Equal(t, goalsBefore, goalsAfter)
	assert.Equal(t, listsBefore, listsAfter)
	g := findGoal(t, goalsAfter, "G")
	assert.Equal(t, "A", g.GoalListID)
	assert.Equal(t, 1.0, g.Order)

	cachedAfter, _, _, err := cache.Load()
	require.NoError(t, err)
	assert.Equal(t, cachedBefore, cachedAfter, "cache untouched by failed move")
	assert.Equal(t, int32(2), notified.Load(), "optimistic apply and rollback")
}

func TestApplyPlanningErrors(t *testing.T) {
	tr, remote, _ := setupTracker(t, []*store.Goal{goal("X", "A", 0)}, []*store.GoalList{list("A", 1, 1)})

	res := tr.Apply(context.Background(), placement.Move{Kind: placement.KindReorderGoal, ItemID: "nope"})
	assert.Equal(t, Failed, res.Status)
	assert.ErrorIs(t, res.Reason, store.ErrNotFound)

	res = tr.Apply(context.Background(), placement.Move{Kind: placement.KindMoveList, ItemID: "A", ToColumn: 5})
	assert.ErrorIs(t, res.Reason, store.ErrValidation)

	assert.Zero(t, remote.UpdateCount())
}

func TestApplyMoveListAcrossColumns(t *testing.T) {
	tr, remote, _ := setupTracker(t, nil,
		[]*store.GoalList{list("L1", 0, 1), list("L2", 1, 1), list("R1", 0, 2)})

	res := tr.Apply(context.Background(), placement.Move{Kind: placement.KindMoveList, ItemID: "L2", ToColumn: 2, Index: 0})
	require.NoError(t, res.Err())

	row := remote.Row(store.TableGoalLists, "L2")
	assert.Equal(t, 2, row[store.ColColumnNumber])
	assert.Equal(t, 0, row[store.ColListOrder])

	cm := tr.Board()
	assert.Len(t, cm[0].Lists, 1)
	require.Len(t, cm[1].Lists, 2)
	assert.Equal(t, "L2", cm[1].Lists[0].List.ID)
}

func TestApplyFocusMidpoint(t *testing.T) {
	a, b, c := goal("a", "A", 5), goal("b", "B", 7), goal("c", "B", 9)
	a.IsFocused, b.IsFocused, c.IsFocused = true, true, true
	tr, remote, _ := setupTracker(t, []*store.Goal{a, b, c}, []*store.GoalList{list("A", 1, 1), list("B", 2, 2)})

	res := tr.Apply(context.Background(), placement.Move{Kind: placement.KindReorderFocus, ItemID: "c", Index: 1})
	require.NoError(t, res.Err())
	assert.Equal(t, 1, remote.UpdateCount())
	assert.Equal(t, 6.0, remote.Row(store.TableGoals, "c")[store.ColGoalOrder])

	focus := tr.Focus()
	require.Len(t, focus, 3)
	assert.Equal(t, "c", focus[1].Goal.ID)
	assert.Equal(t, "List B", focus[1].ListTitle)
}

func TestRandomMovesKeepScopesOrdered(t *testing.T) {
	var goals []*store.Goal
	lists := []*store.GoalList{list("A", 0, 1), list("B", 1, 1), list("C", 0, 2), list("D", 1, 2)}
	for _, l := range lists {
		for j := 0; j < 4; j++ {
			goals = append(goals, goal(fmt.Sprintf("%s%d", l.ID, j), l.ID, float64(j)))
		}
	}
	tr, _, _ := setupTracker(t, goals, lists)
	rng := rand.New(rand.NewSource(7))
	listIDs := []string{"A", "B", "C", "D"}

	for step := 0; step < 200; step++ {
		snapGoals, snapLists := tr.Snapshot()
		var m placement.Move
		switch rng.Intn(3) {
		case 0:
			m = placement.Move{Kind: placement.KindReorderGoal, ItemID: snapGoals[rng.Intn(len(snapGoals))].ID, Index: rng.Intn(6) - 1}
		case 1:
			m = placement.Move{Kind: placement.KindMoveGoal, ItemID: snapGoals[rng.Intn(len(snapGoals))].ID,
				ToListID: listIDs[rng.Intn(len(listIDs))], Index: rng.Intn(8)}
		case 2:
			m = placement.Move{Kind: placement.KindMoveList, ItemID: snapLists[rng.Intn(len(snapLists))].ID,
				ToColumn: 1 + rng.Intn(2), Index: rng.Intn(4)}
		}
		res := tr.Apply(context.Background(), m)
		require.NoError(t, res.Err(), "step %d: %s", step, m)

		after, afterLists := tr.Snapshot()
		require.Len(t, after, 16, "step %d", step)
		for _, id := range listIDs {
			assert.True(t, placement.GoalsStrictlyOrdered(placement.GoalScope(after, id)), "step %d list %s", step, id)
		}
		for col := 1; col <= 2; col++ {
			assert.True(t, placement.ListsStrictlyOrdered(placement.ColumnScope(afterLists, col, 2)), "step %d column %d", step, col)
		}
	}
}
