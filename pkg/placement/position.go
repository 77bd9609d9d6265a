// Package placement computes where goals and goal lists go when they are
// reordered or moved. Every function here is pure: it reads the flat
// collections and returns a Plan describing the writes, never performing
// them.
package placement

import (
	"cmp"
	"slices"

	"github.com/stefanpenner/goalist/pkg/store"
)

// CompareGoals orders goals by Order, breaking ties by ID so rendering is
// stable.
func CompareGoals(a, b *store.Goal) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// CompareLists orders goal lists by Order, then ID.
func CompareLists(a, b *store.GoalList) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortGoals sorts goals in place.
func SortGoals(goals []*store.Goal) {
	slices.SortFunc(goals, CompareGoals)
}

// SortLists sorts goal lists in place.
func SortLists(lists []*store.GoalList) {
	slices.SortFunc(lists, CompareLists)
}

// GoalScope returns the active goals of a list in display order.
func GoalScope(goals []*store.Goal, listID string) []*store.Goal {
	var scope []*store.Goal
	for _, g := range goals {
		if g.GoalListID == listID && !g.IsArchived() {
			scope = append(scope, g)
		}
	}
	SortGoals(scope)
	return scope
}

// FocusScope returns the focused active goals in display order.
func FocusScope(goals []*store.Goal) []*store.Goal {
	var scope []*store.Goal
	for _, g := range goals {
		if g.IsFocused && !g.IsArchived() {
			scope = append(scope, g)
		}
	}
	SortGoals(scope)
	return scope
}

// EffectiveColumn clamps a stored column number into [1, columnCount].
// The stored value is left alone; this is only where the list renders.
func EffectiveColumn(column, columnCount int) int {
	if columnCount < 1 {
		columnCount = 1
	}
	return min(max(column, 1), columnCount)
}

// ColumnScope returns the lists rendered in column, in display order.
func ColumnScope(lists []*store.GoalList, column, columnCount int) []*store.GoalList {
	var scope []*store.GoalList
	for _, l := range lists {
		if EffectiveColumn(l.ColumnNumber, columnCount) == column {
			scope = append(scope, l)
		}
	}
	SortLists(scope)
	return scope
}

// GoalsStrictlyOrdered reports whether no two goals in a sorted scope share
// an order value.
func GoalsStrictlyOrdered(scope []*store.Goal) bool {
	for i := 1; i < len(scope); i++ {
		if !(scope[i-1].Order < scope[i].Order) {
			return false
		}
	}
	return true
}

// ListsStrictlyOrdered is GoalsStrictlyOrdered for goal lists.
func ListsStrictlyOrdered(scope []*store.GoalList) bool {
	for i := 1; i < len(scope); i++ {
		if scope[i-1].Order >= scope[i].Order {
			return false
		}
	}
	return true
}

func indexOfGoal(scope []*store.Goal, id string) int {
	return slices.IndexFunc(scope, func(g *store.Goal) bool { return g.ID == id })
}

func indexOfList(scope []*store.GoalList, id string) int {
	return slices.IndexFunc(scope, func(l *store.GoalList) bool { return l.ID == id })
}

func findGoal(goals []*store.Goal, id string) (*store.Goal, error) {
	if i := indexOfGoal(goals, id); i >= 0 {
		return goals[i], nil
	}
	return nil, &store.NotFoundError{Kind: "goal", ID: id}
}

func findList(lists []*store.GoalList, id string) (*store.GoalList, error) {
	if i := indexOfList(lists, id); i >= 0 {
		return lists[i], nil
	}
	return nil, &store.NotFoundError{Kind: "goal list", ID: id}
}

// moveItem returns a copy of s with the element at from placed at to.
func moveItem[T any](s []T, from, to int) []T {
	out := slices.Clone(s)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}

func clamp(i, lo, hi int) int {
	return min(max(i, lo), hi)
}

// NextGoalOrder is the order for a goal appended to listID: one past the
// highest order in the list, or 0 for an empty list.
func NextGoalOrder(goals []*store.Goal, listID string) float64 {
	highest := -1.0
	for _, g := range goals {
		if g.GoalListID == listID && g.Order > highest {
			highest = g.Order
		}
	}
	return highest + 1
}

// NextListOrder is the order for a new goal list: one past the highest
// order across all lists, and never below 1.
func NextListOrder(lists []*store.GoalList) int {
	highest := 0
	for _, l := range lists {
		highest = max(highest, l.Order)
	}
	return highest + 1
}
