// Package board derives the read-only views of the tracker: the column map
// rendered on the dashboard, the focus list, progress figures, and the
// archive browser. Nothing here mutates its inputs.
package board

import (
	"github.com/stefanpenner/goalist/pkg/placement"
	"github.com/stefanpenner/goalist/pkg/store"
)

// ListView is a goal list with its active goals in display order.
type ListView struct {
	List  *store.GoalList `json:"list" yaml:"list" toml:"list"`
	Goals []*store.Goal   `json:"goals" yaml:"goals" toml:"goals"`
}

// Column is one dashboard column.
type Column struct {
	Number int        `json:"number" yaml:"number" toml:"number"`
	Lists  []ListView `json:"lists" yaml:"lists" toml:"lists"`
}

// ColumnMap is the dashboard layout, always columnCount columns long.
type ColumnMap []Column

// Build groups lists into columnCount columns by their clamped column
// number and attaches each list's non-archived goals. Stored column
// numbers are not modified.
func Build(lists []*store.GoalList, goals []*store.Goal, columnCount int) ColumnMap {
	if columnCount < 1 {
		columnCount = 1
	}

	byList := make(map[string][]*store.Goal)
	for _, g := range goals {
		if g.IsArchived() {
			continue
		}
		byList[g.GoalListID] = append(byList[g.GoalListID], g)
	}

	sorted := append([]*store.GoalList(nil), lists...)
	placement.SortLists(sorted)

	cm := make(ColumnMap, columnCount)
	for i := range cm {
		cm[i].Number = i + 1
	}
	for _, l := range sorted {
		scope := byList[l.ID]
		placement.SortGoals(scope)
		col := placement.EffectiveColumn(l.ColumnNumber, columnCount)
		cm[col-1].Lists = append(cm[col-1].Lists, ListView{List: l, Goals: scope})
	}
	return cm
}

// Column returns column n (1-based), or nil when out of range.
func (cm ColumnMap) Column(n int) *Column {
	if n < 1 || n > len(cm) {
		return nil
	}
	return &cm[n-1]
}

// ListCount returns the number of lists rendered in each column.
func (cm ColumnMap) ListCount() []int {
	counts := make([]int, len(cm))
	for i, c := range cm {
		counts[i] = len(c.Lists)
	}
	return counts
}

// PickColumn chooses the column for a new list: the one with the fewest
// lists, ties going to the lower column.
func PickColumn(lists []*store.GoalList, columnCount int) int {
	if columnCount < 1 {
		return 1
	}
	counts := make([]int, columnCount)
	for _, l := range lists {
		counts[placement.EffectiveColumn(l.ColumnNumber, columnCount)-1]++
	}
	best := 0
	for i, n := range counts {
		if n < counts[best] {
			best = i
		}
	}
	return best + 1
}

// FocusItem is a focused goal together with the title of its list.
type FocusItem struct {
	Goal      *store.Goal `json:"goal" yaml:"goal" toml:"goal"`
	ListTitle string      `json:"listTitle" yaml:"listTitle" toml:"listTitle"`
}

// Focus returns the focus list in display order.
func Focus(goals []*store.Goal, lists []*store.GoalList) []FocusItem {
	titles := listTitles(lists)
	scope := placement.FocusScope(goals)
	items := make([]FocusItem, 0, len(scope))
	for _, g := range scope {
		items = append(items, FocusItem{Goal: g, ListTitle: titles[g.GoalListID]})
	}
	return items
}

func listTitles(lists []*store.GoalList) map[string]string {
	titles := make(map[string]string, len(lists))
	for _, l := range lists {
		titles[l.ID] = l.Title
	}
	return titles
}
