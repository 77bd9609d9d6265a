package tui

import (
	"fmt"

	"github.com/stefanpenner/goalist/pkg/board"
	"github.com/stefanpenner/goalist/pkg/store"
)

// ItemKind is what a tree row shows.
type ItemKind int

const (
	KindSection ItemKind = iota // FOCUS or COLUMN n header
	KindList
	KindGoal
)

// Section ids.
const (
	FocusSectionID = "__focus"
	focusRowPrefix = "focus/"
)

// ColumnSectionID returns the header id for column n.
func ColumnSectionID(n int) string {
	return fmt.Sprintf("__column_%d", n)
}

// TreeItem represents one row of the flattened dashboard.
type TreeItem struct {
	ID          string // unique row id; focus rows are prefixed so a goal can appear twice
	ParentID    string // parent's row id for search ancestor tracking
	Kind        ItemKind
	Name        string
	Goal        *store.Goal
	List        *store.GoalList
	Column      int // 0 for the focus section
	Index       int // position within the row's ordering scope
	ScopeLen    int // size of that scope
	ListTitle   string
	Depth       int
	HasChildren bool
	IsExpanded  bool
}

// IsSectionHeader reports whether the row is a FOCUS or COLUMN header.
func (t TreeItem) IsSectionHeader() bool { return t.Kind == KindSection }

// InFocus reports whether the row is a goal inside the focus section.
func (t TreeItem) InFocus() bool { return t.Kind == KindGoal && t.Column == 0 }

// FlattenBoard turns the focus list and the column map into rows. Lists
// are expanded unless collapsed[list id] is set; the focus section is
// hidden when nothing is focused.
func FlattenBoard(focus []board.FocusItem, cm board.ColumnMap, collapsed map[string]bool) []TreeItem {
	var result []TreeItem

	if len(focus) > 0 {
		result = append(result, TreeItem{
			ID:          FocusSectionID,
			Kind:        KindSection,
			Name:        "FOCUS",
			HasChildren: true,
			IsExpanded:  true,
		})
		for i, it := range focus {
			result = append(result, TreeItem{
				ID:        focusRowPrefix + it.Goal.ID,
				ParentID:  FocusSectionID,
				Kind:      KindGoal,
				Name:      it.Goal.Title,
				Goal:      it.Goal,
				Index:     i,
				ScopeLen:  len(focus),
				ListTitle: it.ListTitle,
				Depth:     1,
			})
		}
	}

	for _, col := range cm {
		sectionID := ColumnSectionID(col.Number)
		result = append(result, TreeItem{
			ID:          sectionID,
			Kind:        KindSection,
			Name:        fmt.Sprintf("COLUMN %d", col.Number),
			Column:      col.Number,
			HasChildren: len(col.Lists) > 0,
			IsExpanded:  true,
		})
		for i, lv := range col.Lists {
			expanded := !collapsed[lv.List.ID]
			result = append(result, TreeItem{
				ID:          lv.List.ID,
				ParentID:    sectionID,
				Kind:        KindList,
				Name:        lv.List.Title,
				List:        lv.List,
				Column:      col.Number,
				Index:       i,
				ScopeLen:    len(col.Lists),
				Depth:       0,
				HasChildren: len(lv.Goals) > 0,
				IsExpanded:  expanded,
			})
			if !expanded {
				continue
			}
			for j, g := range lv.Goals {
				result = append(result, TreeItem{
					ID:        g.ID,
					ParentID:  lv.List.ID,
					Kind:      KindGoal,
					Name:      g.Title,
					Goal:      g,
					Column:    col.Number,
					Index:     j,
					ScopeLen:  len(lv.Goals),
					ListTitle: lv.List.Title,
					Depth:     1,
				})
			}
		}
	}
	return result
}

// FilterVisibleItems filters already-flattened visible items to only include
// items whose ID is in matchIDs or ancestorIDs.
func FilterVisibleItems(items []TreeItem, matchIDs, ancestorIDs map[string]bool) []TreeItem {
	var result []TreeItem
	for _, item := range items {
		if matchIDs[item.ID] || ancestorIDs[item.ID] {
			result = append(result, item)
		}
	}
	return result
}

// listOrder returns the lists in board traversal order, column by column.
func listOrder(cm board.ColumnMap) []board.ListView {
	var out []board.ListView
	for _, col := range cm {
		out = append(out, col.Lists...)
	}
	return out
}
