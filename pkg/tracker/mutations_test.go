package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/goalist/pkg/placement"
	"github.com/stefanpenner/goalist/pkg/store"
	"github.com/stefanpenner/goalist/pkg/testutil"
)

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(testutil.NewMemoryStore(), Options{Columns: 5})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = New(testutil.NewMemoryStore(), Options{ArchiveAfterDays: -1})
	assert.ErrorIs(t, err, store.ErrValidation)

	tr, err := New(testutil.NewMemoryStore(), Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultColumns, tr.Columns())
}

func TestLoadPrefersCacheUntilRemoteAnswers(t *testing.T) {
	remote := testutil.NewMemoryStore()
	remote.SeedLists(list("remote", 1, 1))
	cache := store.NewCache(t.TempDir())
	require.NoError(t, cache.Save(nil, []*store.GoalList{list("cached", 1, 1)}))

	tr, err := New(remote, Options{Cache: cache})
	require.NoError(t, err)

	remote.SelectErr = errors.New("offline")
	err = tr.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrPersistence)
	_, lists := tr.Snapshot()
	require.Len(t, lists, 1)
	assert.Equal(t, "cached", lists[0].ID)

	remote.SelectErr = nil
	require.NoError(t, tr.Refresh(context.Background()))
	_, lists = tr.Snapshot()
	require.Len(t, lists, 1)
	assert.Equal(t, "remote", lists[0].ID)

	_, cachedLists, ok, err := cache.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, cachedLists, 1)
	assert.Equal(t, "remote", cachedLists[0].ID)
}

func TestLoadFiltersByUser(t *testing.T) {
	remote := testutil.NewMemoryStore()
	mine := list("mine", 1, 1)
	mine.UserID = "u1"
	theirs := list("theirs", 1, 1)
	theirs.UserID = "u2"
	remote.SeedLists(mine, theirs)

	tr, err := New(remote, Options{UserID: "u1"})
	require.NoError(t, err)
	require.NoError(t, tr.Load(context.Background()))

	_, lists := tr.Snapshot()
	require.Len(t, lists, 1)
	assert.Equal(t, "mine", lists[0].ID)
}

func TestAddListPicksOrderAndColumn(t *testing.T) {
	tr, remote, _ := setupTracker(t, nil, []*store.GoalList{list("a", 4, 1), list("b", 2, 1), list("c", 1, 2)})

	l, err := tr.AddList(context.Background(), "  Health  ")
	require.NoError(t, err)
	assert.Equal(t, "Health", l.Title)
	assert.Equal(t, 5, l.Order)
	assert.Equal(t, 2, l.ColumnNumber)
	assert.NotEmpty(t, l.ID)
	assert.NotNil(t, remote.Row(store.TableGoalLists, l.ID))

	_, lists := tr.Snapshot()
	assert.Len(t, lists, 4)
}

func TestAddListFirstList(t *testing.T) {
	tr, _, _ := setupTracker(t, nil, nil)

	l, err := tr.AddList(context.Background(), "Inbox")
	require.NoError(t, err)
	assert.Equal(t, 1, l.Order)
	assert.Equal(t, 1, l.ColumnNumber)
}

func TestAddListRejectsEmptyTitle(t *testing.T) {
	tr, remote, _ := setupTracker(t, nil, nil)

	_, err := tr.AddList(context.Background(), "   ")
	assert.ErrorIs(t, err, store.ErrValidation)
	assert.Zero(t, remote.InsertCalls)
}

func TestAddGoalAppends(t *testing.T) {
	tr, _, cache := setupTracker(t,
		[]*store.Goal{goal("x", "A", 0), goal("y", "A", 3.5), goal("z", "B", 9)},
		[]*store.GoalList{list("A", 1, 1), list("B", 2, 1)})

	g, err := tr.AddGoal(context.Background(), "A", "Stretch")
	require.NoError(t, err)
	assert.Equal(t, 4.5, g.Order)
	assert.True(t, g.CarryOver)
	assert.False(t, g.IsFocused)
	assert.Equal(t, store.RepeatNone, g.RepeatFrequency)

	cached, _, _, err := cache.Load()
	require.NoError(t, err)
	assert.Len(t, cached, 4)
}

func TestAddGoalFailures(t *testing.T) {
	tr, remote, _ := setupTracker(t, nil, []*store.GoalList{list("A", 1, 1)})

	_, err := tr.AddGoal(context.Background(), "missing", "x")
	assert.ErrorIs(t, err, store.ErrNotFound)

	remote.InsertErr = errors.New("quota")
	_, err = tr.AddGoal(context.Background(), "A", "x")
	assert.ErrorIs(t, err, store.ErrPersistence)

	goals, _ := tr.Snapshot()
	assert.Empty(t, goals)
}

func TestRenameList(t *testing.T) {
	tr, remote, _ := setupTracker(t, nil, []*store.GoalList{list("A", 1, 1)})

	require.NoError(t, tr.RenameList(context.Background(), "A", "Errands"))
	l, err := tr.List("A")
	require.NoError(t, err)
	assert.Equal(t, "Errands", l.Title)
	assert.Equal(t, "Errands", remote.Row(store.TableGoalLists, "A")[store.ColTitle])

	assert.ErrorIs(t, tr.RenameList(context.Background(), "A", ""), store.ErrValidation)
	assert.ErrorIs(t, tr.RenameList(context.Background(), "nope", "x"), store.ErrNotFound)
}

func TestDeleteListDropsGoals(t *testing.T) {
	tr, remote, _ := setupTracker(t,
		[]*store.Goal{goal("a1", "A", 0), goal("b1", "B", 0)},
		[]*store.GoalList{list("A", 1, 1), list("B", 2, 1)})

	require.NoError(t, tr.DeleteList(context.Background(), "A"))

	goals, lists := tr.Snapshot()
	require.Len(t, lists, 1)
	require.Len(t, goals, 1)
	assert.Equal(t, "b1", goals[0].ID)
	assert.Nil(t, remote.Row(store.TableGoals, "a1"))
}

func TestDeleteListRollsBack(t *testing.T) {
	tr, remote, _ := setupTracker(t,
		[]*store.Goal{goal("a1", "A", 0)},
		[]*store.GoalList{list("A", 1, 1)})
	goalsBefore, listsBefore := tr.Snapshot()

	remote.DeleteErr = errors.New("denied")
	err := tr.DeleteList(context.Background(), "A")
	assert.ErrorIs(t, err, store.ErrPersistence)

	goals, lists := tr.Snapshot()
	assert.Equal(t, goalsBefore, goals)
	assert.Equal(t, listsBefore, lists)
}

func TestDeleteGoal(t *testing.T) {
	tr, remote, _ := setupTracker(t, []*store.Goal{goal("a1", "A", 0)}, []*store.GoalList{list("A", 1, 1)})

	require.NoError(t, tr.DeleteGoal(context.Background(), "a1"))
	goals, _ := tr.Snapshot()
	assert.Empty(t, goals)
	assert.Equal(t, 1, remote.DeleteCalls)

	assert.ErrorIs(t, tr.DeleteGoal(context.Background(), "a1"), store.ErrNotFound)
}

func TestToggleComplete(t *testing.T) {
	tr, remote, _ := setupTracker(t, []*store.Goal{goal("g", "A", 0)}, []*store.GoalList{list("A", 1, 1)})
	ctx := context.Background()

	done, err := tr.ToggleComplete(ctx, "g")
	require.NoError(t, err)
	assert.True(t, done)
	g, _ := tr.Goal("g")
	require.NotNil(t, g.CompletedAt)
	assert.Equal(t, testNow, *g.CompletedAt)
	assert.Equal(t, testNow, remote.Row(store.TableGoals, "g")[store.ColCompletedAt])

	done, err = tr.ToggleComplete(ctx, "g")
	require.NoError(t, err)
	assert.False(t, done)
	g, _ = tr.Goal("g")
	assert.Nil(t, g.CompletedAt)
	assert.Nil(t, remote.Row(store.TableGoals, "g")[store.ColCompletedAt])

	calls := remote.UpdateCount()
	require.NoError(t, tr.SetComplete(ctx, "g", false))
	assert.Equal(t, calls, remote.UpdateCount(), "already in requested state")
}

func TestSetFocusedRollsBack(t *testing.T) {
	tr, remote, _ := setupTracker(t, []*store.Goal{goal("g", "A", 0)}, []*store.GoalList{list("A", 1, 1)})
	remote.UpdateErr = errors.New("timeout")

	err := tr.SetFocused(context.Background(), "g", true)
	assert.ErrorIs(t, err, store.ErrPersistence)
	g, _ := tr.Goal("g")
	assert.False(t, g.IsFocused)
	assert.Empty(t, tr.Focus())
}

func TestUpdateGoal(t *testing.T) {
	due := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	g0 := goal("g", "A", 0)
	g0.DueDate = &due
	tr, remote, _ := setupTracker(t, []*store.Goal{g0}, []*store.GoalList{list("A", 1, 1)})
	ctx := context.Background()

	title := "Renamed"
	desc := "# plan\n- step"
	require.NoError(t, tr.UpdateGoal(ctx, "g", store.GoalPatch{Title: &title, Description: &desc}))

	g, _ := tr.Goal("g")
	assert.Equal(t, "Renamed", g.Title)
	assert.Equal(t, desc, g.Description)
	require.NotNil(t, g.DueDate)

	last := remote.Updates[len(remote.Updates)-1]
	assert.Equal(t, store.Record{"title": "Renamed", "description": desc}, last.Fields)
	assert.Equal(t, due, remote.Row(store.TableGoals, "g")[store.ColDueDate])

	order := 3.0
	assert.ErrorIs(t, tr.UpdateGoal(ctx, "g", store.GoalPatch{Order: &order}), store.ErrValidation)
	empty := ""
	assert.ErrorIs(t, tr.UpdateGoal(ctx, "g", store.GoalPatch{Title: &empty}), store.ErrValidation)
	assert.ErrorIs(t, tr.UpdateGoal(ctx, "nope", store.GoalPatch{Title: &title}), store.ErrNotFound)
}

func TestArchiveAndUnarchive(t *testing.T) {
	tr, _, _ := setupTracker(t, []*store.Goal{goal("g", "A", 0)}, []*store.GoalList{list("A", 1, 1)})
	ctx := context.Background()

	require.NoError(t, tr.Archive(ctx, "g"))
	assert.Empty(t, tr.Board()[0].Lists[0].Goals)

	require.NoError(t, tr.Unarchive(ctx, "g"))
	assert.Len(t, tr.Board()[0].Lists[0].Goals, 1)
}

func TestUnarchiveKeepsListStrictlyOrdered(t *testing.T) {
	tr, remote, _ := setupTracker(t,
		[]*store.Goal{goal("x", "A", 0), goal("y", "A", 1), goal("z", "A", 2)},
		[]*store.GoalList{list("A", 1, 1)})
	ctx := context.Background()

	require.NoError(t, tr.Archive(ctx, "x"))
	res := tr.Apply(ctx, placement.Move{Kind: placement.KindReorderGoal, ItemID: "z", Index: 0})
	require.NoError(t, res.Reason)

	require.NoError(t, tr.Unarchive(ctx, "x"))
	goals, _ := tr.Snapshot()
	scope := placement.GoalScope(goals, "A")
	var ids []string
	for _, g := range scope {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []string{"z", "y", "x"}, ids, "x comes back last")
	assert.True(t, placement.GoalsStrictlyOrdered(scope))
	assert.Equal(t, 2.0, remote.Row(store.TableGoals, "x")[store.ColGoalOrder])
}

func TestUnarchiveKeepsFreeOrder(t *testing.T) {
	tr, remote, _ := setupTracker(t,
		[]*store.Goal{goal("x", "A", 5), goal("y", "A", 1)},
		[]*store.GoalList{list("A", 1, 1)})
	ctx := context.Background()

	require.NoError(t, tr.Archive(ctx, "x"))
	require.NoError(t, tr.Unarchive(ctx, "x"))
	g, err := tr.Goal("x")
	require.NoError(t, err)
	assert.Equal(t, 5.0, g.Order)
	assert.Equal(t, 5.0, remote.Row(store.TableGoals, "x")[store.ColGoalOrder])
}

func TestArchiveStale(t *testing.T) {
	old := goal("old", "A", 0)
	old.CompletedAt = ptrTime(testNow.AddDate(0, 0, -10))
	older := goal("older", "A", 1)
	older.CompletedAt = ptrTime(testNow.AddDate(0, 0, -20))
	fresh := goal("fresh", "A", 2)
	fresh.CompletedAt = ptrTime(testNow.AddDate(0, 0, -1))
	tr, remote, _ := setupTracker(t, []*store.Goal{old, older, fresh, goal("open", "A", 3)}, []*store.GoalList{list("A", 1, 1)})

	n, err := tr.ArchiveStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	goals, _ := tr.Snapshot()
	for _, g := range goals {
		switch g.ID {
		case "old", "older":
			require.NotNil(t, g.ArchivedAt, g.ID)
			assert.Equal(t, testNow, *g.ArchivedAt)
		default:
			assert.Nil(t, g.ArchivedAt, g.ID)
		}
	}
	assert.Equal(t, testNow, remote.Row(store.TableGoals, "older")[store.ColArchivedAt])

	n, err = tr.ArchiveStale(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestArchiveStaleDisabled(t *testing.T) {
	tr, _, _ := setupTracker(t, nil, nil)
	require.NoError(t, tr.SetArchiveAfterDays(0))

	_, err := tr.ArchiveStale(context.Background())
	assert.ErrorIs(t, err, store.ErrValidation)
	assert.ErrorIs(t, tr.SetArchiveAfterDays(-3), store.ErrValidation)
}

func TestArchiveStaleIsAllOrNothing(t *testing.T) {
	a := goal("a", "A", 0)
	a.CompletedAt = ptrTime(testNow.AddDate(0, 0, -30))
	b := goal("b", "A", 1)
	b.CompletedAt = ptrTime(testNow.AddDate(0, 0, -30))
	tr, remote, _ := setupTracker(t, []*store.Goal{a, b}, []*store.GoalList{list("A", 1, 1)})
	remote.UpdateErrFor["b"] = errors.New("boom")

	_, err := tr.ArchiveStale(context.Background())
	assert.ErrorIs(t, err, store.ErrPersistence)

	goals, _ := tr.Snapshot()
	for _, g := range goals {
		assert.Nil(t, g.ArchivedAt, g.ID)
	}
}

func TestSetColumns(t *testing.T) {
	tr, _, _ := setupTracker(t, nil, []*store.GoalList{list("x", 0, 3)})

	assert.Len(t, tr.Board(), 2)
	require.NoError(t, tr.SetColumns(3))
	cm := tr.Board()
	require.Len(t, cm, 3)
	assert.Len(t, cm[2].Lists, 1)

	assert.ErrorIs(t, tr.SetColumns(0), store.ErrValidation)
	assert.ErrorIs(t, tr.SetColumns(5), store.ErrValidation)
}

func TestResolve(t *testing.T) {
	tr, _, _ := setupTracker(t,
		[]*store.Goal{goal("abc123", "L1", 0), goal("abd456", "L1", 1)},
		[]*store.GoalList{list("L1", 0, 1), list("L2", 1, 1)})

	g, err := tr.ResolveGoal("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", g.ID)

	_, err = tr.ResolveGoal("ab")
	assert.ErrorIs(t, err, store.ErrValidation)
	_, err = tr.ResolveGoal("zzz")
	assert.ErrorIs(t, err, store.ErrNotFound)

	l, err := tr.ResolveList("list l2")
	require.NoError(t, err)
	assert.Equal(t, "L2", l.ID)

	_, err = tr.ResolveList("L")
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestClearRemovesCache(t *testing.T) {
	tr, _, cache := setupTracker(t, []*store.Goal{goal("g", "A", 0)}, []*store.GoalList{list("A", 1, 1)})

	require.NoError(t, tr.Clear())
	goals, lists := tr.Snapshot()
	assert.Empty(t, goals)
	assert.Empty(t, lists)

	_, _, ok, err := cache.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func ptrTime(t time.Time) *time.Time { return &t }
