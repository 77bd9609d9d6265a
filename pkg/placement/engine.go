package placement

import (
	"github.com/stefanpenner/goalist/pkg/store"
)

// ReorderGoal moves a goal to index within its own list and renumbers the
// list 0, 1, 2, ... The index is clamped to the list bounds.
func ReorderGoal(goals []*store.Goal, goalID string, index int) (Plan, error) {
	g, err := findGoal(goals, goalID)
	if err != nil {
		return Plan{}, err
	}
	if g.IsArchived() {
		return Plan{}, store.Invalid("goal", "%s is archived", goalID)
	}

	scope := GoalScope(goals, g.GoalListID)
	from := indexOfGoal(scope, goalID)
	to := clamp(index, 0, len(scope)-1)
	if from == to {
		return Plan{}, nil
	}

	var plan Plan
	plan.Goals = renumberGoals(moveItem(scope, from, to), "", "")
	return plan, nil
}

// MoveGoal moves a goal into another list at index. The source list is
// renumbered without it and the destination list is renumbered with it.
// A destination equal to the goal's own list is a reorder.
func MoveGoal(goals []*store.Goal, lists []*store.GoalList, goalID, toListID string, index int) (Plan, error) {
	g, err := findGoal(goals, goalID)
	if err != nil {
		return Plan{}, err
	}
	if _, err := findList(lists, toListID); err != nil {
		return Plan{}, err
	}
	if g.GoalListID == toListID {
		return ReorderGoal(goals, goalID, index)
	}
	if g.IsArchived() {
		return Plan{}, store.Invalid("goal", "%s is archived", goalID)
	}

	source := GoalScope(goals, g.GoalListID)
	i := indexOfGoal(source, goalID)
	source = append(source[:i:i], source[i+1:]...)

	dest := GoalScope(goals, toListID)
	to := clamp(index, 0, len(dest))
	dest = append(dest[:to:to], append([]*store.Goal{g}, dest[to:]...)...)

	var plan Plan
	plan.Goals = append(plan.Goals, renumberGoals(source, "", "")...)
	plan.Goals = append(plan.Goals, renumberGoals(dest, goalID, toListID)...)
	return plan, nil
}

// renumberGoals assigns 0..n-1 to scope, returning updates for goals whose
// order changes. The goal named moved also gets its list set to listID and
// is always included.
func renumberGoals(scope []*store.Goal, moved, listID string) []GoalUpdate {
	var updates []GoalUpdate
	for i, g := range scope {
		order := float64(i)
		if g.ID == moved {
			updates = append(updates, GoalUpdate{ID: g.ID, Order: order, GoalListID: listID})
			continue
		}
		if g.Order != order {
			updates = append(updates, GoalUpdate{ID: g.ID, Order: order})
		}
	}
	return updates
}

// MoveList moves a goal list to index within toColumn. Moving across
// columns writes the new column number for the moved list only and
// renumbers both columns.
func MoveList(lists []*store.GoalList, listID string, toColumn, index, columnCount int) (Plan, error) {
	if columnCount < 1 {
		return Plan{}, store.Invalid("columns", "must be at least 1, got %d", columnCount)
	}
	if toColumn < 1 || toColumn > columnCount {
		return Plan{}, store.Invalid("column", "must be between 1 and %d, got %d", columnCount, toColumn)
	}
	l, err := findList(lists, listID)
	if err != nil {
		return Plan{}, err
	}

	fromColumn := EffectiveColumn(l.ColumnNumber, columnCount)
	if fromColumn == toColumn {
		scope := ColumnScope(lists, toColumn, columnCount)
		from := indexOfList(scope, listID)
		to := clamp(index, 0, len(scope)-1)
		if from == to {
			return Plan{}, nil
		}
		return Plan{Lists: renumberLists(moveItem(scope, from, to), "", 0)}, nil
	}

	source := ColumnScope(lists, fromColumn, columnCount)
	i := indexOfList(source, listID)
	source = append(source[:i:i], source[i+1:]...)

	dest := ColumnScope(lists, toColumn, columnCount)
	to := clamp(index, 0, len(dest))
	dest = append(dest[:to:to], append([]*store.GoalList{l}, dest[to:]...)...)

	var plan Plan
	plan.Lists = append(plan.Lists, renumberLists(source, "", 0)...)
	plan.Lists = append(plan.Lists, renumberLists(dest, listID, toColumn)...)
	return plan, nil
}

func renumberLists(scope []*store.GoalList, moved string, column int) []ListUpdate {
	var updates []ListUpdate
	for i, l := range scope {
		if l.ID == moved {
			updates = append(updates, ListUpdate{ID: l.ID, Order: i, ColumnNumber: column})
			continue
		}
		if l.Order != i {
			updates = append(updates, ListUpdate{ID: l.ID, Order: i})
		}
	}
	return updates
}

// ReorderFocus moves a focused goal to index within the Focus List using
// midpoint insertion, so no other goal is written. At the start the new
// order is first-1, at the end last+1, otherwise the midpoint of its new
// neighbours. Neighbours with no representable value between them are
// rejected.
func ReorderFocus(goals []*store.Goal, goalID string, index int) (Plan, error) {
	g, err := findGoal(goals, goalID)
	if err != nil {
		return Plan{}, err
	}
	if !g.IsFocused || g.IsArchived() {
		return Plan{}, store.Invalid("goal", "%s is not in the focus list", goalID)
	}

	scope := FocusScope(goals)
	from := indexOfGoal(scope, goalID)
	to := clamp(index, 0, len(scope)-1)
	if from == to {
		return Plan{}, nil
	}

	rest := append(scope[:from:from], scope[from+1:]...)
	var order float64
	switch {
	case to == 0:
		order = rest[0].Order - 1
	case to == len(rest):
		order = rest[len(rest)-1].Order + 1
	default:
		prev, next := rest[to-1].Order, rest[to].Order
		order = (prev + next) / 2
		if !(prev < order && order < next) {
			return Plan{}, store.Invalid("order", "no room between %v and %v in the focus list, move it to the top or bottom instead", prev, next)
		}
	}
	if order == g.Order {
		return Plan{}, nil
	}
	return Plan{Goals: []GoalUpdate{{ID: goalID, Order: order}}}, nil
}
