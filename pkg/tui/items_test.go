package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/goalist/pkg/board"
	"github.com/stefanpenner/goalist/pkg/store"
)

func testBoard() ([]*store.GoalList, []*store.Goal) {
	lists := []*store.GoalList{
		{ID: "A", Title: "Alpha", Order: 0, ColumnNumber: 1},
		{ID: "B", Title: "Beta", Order: 1, ColumnNumber: 1},
		{ID: "C", Title: "Gamma", Order: 0, ColumnNumber: 2},
	}
	goals := []*store.Goal{
		{ID: "a0", Title: "write", GoalListID: "A", Order: 0, RepeatFrequency: store.RepeatNone},
		{ID: "a1", Title: "read", GoalListID: "A", Order: 1, RepeatFrequency: store.RepeatNone},
		{ID: "b0", Title: "run", GoalListID: "B", Order: 0, RepeatFrequency: store.RepeatNone},
	}
	return lists, goals
}

func rowIDs(items []TreeItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestFlattenBoard(t *testing.T) {
	lists, goals := testBoard()
	cm := board.Build(lists, goals, 2)

	items := FlattenBoard(nil, cm, nil)
	assert.Equal(t, []string{"__column_1", "A", "a0", "a1", "B", "b0", "__column_2", "C"}, rowIDs(items))

	a1 := items[3]
	assert.Equal(t, KindGoal, a1.Kind)
	assert.Equal(t, "A", a1.ParentID)
	assert.Equal(t, 1, a1.Index)
	assert.Equal(t, 2, a1.ScopeLen)
	assert.Equal(t, 1, a1.Column)
	assert.Equal(t, "Alpha", a1.ListTitle)
	assert.False(t, a1.InFocus())

	c := items[7]
	assert.Equal(t, KindList, c.Kind)
	assert.False(t, c.HasChildren)
	assert.Equal(t, 2, c.Column)
	assert.Equal(t, 1, c.ScopeLen)
}

func TestFlattenBoardCollapsed(t *testing.T) {
	lists, goals := testBoard()
	cm := board.Build(lists, goals, 2)

	items := FlattenBoard(nil, cm, map[string]bool{"A": true})
	assert.Equal(t, []string{"__column_1", "A", "B", "b0", "__column_2", "C"}, rowIDs(items))
	assert.False(t, items[1].IsExpanded)
	assert.True(t, items[1].HasChildren)
}

func TestFlattenBoardFocusSection(t *testing.T) {
	lists, goals := testBoard()
	goals[1].IsFocused = true
	goals[2].IsFocused = true
	cm := board.Build(lists, goals, 2)

	items := FlattenBoard(board.Focus(goals, lists), cm, nil)
	require.Len(t, items, 11)
	assert.Equal(t, []string{FocusSectionID, "focus/b0", "focus/a1"}, rowIDs(items[:3]), "sorted by order, then id")

	row := items[2]
	assert.True(t, row.InFocus())
	assert.Equal(t, "a1", row.Goal.ID)
	assert.Equal(t, "Alpha", row.ListTitle)
	assert.Equal(t, 1, row.Index)
	assert.Equal(t, 2, row.ScopeLen)
	assert.True(t, items[0].IsSectionHeader())
}

func TestFilterVisibleItems(t *testing.T) {
	lists, goals := testBoard()
	items := FlattenBoard(nil, board.Build(lists, goals, 2), nil)

	got := FilterVisibleItems(items, map[string]bool{"b0": true}, map[string]bool{"B": true, "__column_1": true})
	assert.Equal(t, []string{"__column_1", "B", "b0"}, rowIDs(got))
}

func TestListOrderIsColumnMajor(t *testing.T) {
	lists, goals := testBoard()
	var ids []string
	for _, lv := range listOrder(board.Build(lists, goals, 2)) {
		ids = append(ids, lv.List.ID)
	}
	assert.Equal(t, []string{"A", "B", "C"}, ids)
}
