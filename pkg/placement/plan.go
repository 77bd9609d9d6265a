package placement

import (
	"fmt"

	"github.com/stefanpenner/goalist/pkg/store"
)

// GoalUpdate is one goal write. GoalListID is empty when the goal stays in
// its list.
type GoalUpdate struct {
	ID         string
	Order      float64
	GoalListID string
}

// Patch converts the update to a record store patch.
func (u GoalUpdate) Patch() store.GoalPatch {
	order := u.Order
	p := store.GoalPatch{Order: &order}
	if u.GoalListID != "" {
		list := u.GoalListID
		p.GoalListID = &list
	}
	return p
}

// ListUpdate is one goal list write. ColumnNumber is zero when the list
// stays in its column.
type ListUpdate struct {
	ID           string
	Order        int
	ColumnNumber int
}

// Patch converts the update to a record store patch.
func (u ListUpdate) Patch() store.GoalListPatch {
	order := u.Order
	p := store.GoalListPatch{Order: &order}
	if u.ColumnNumber != 0 {
		col := u.ColumnNumber
		p.ColumnNumber = &col
	}
	return p
}

// Plan is the set of writes a move needs. Only items whose stored values
// change are included; an empty plan means nothing to persist.
type Plan struct {
	Goals []GoalUpdate
	Lists []ListUpdate
}

// Empty reports whether the plan writes nothing.
func (p Plan) Empty() bool {
	return len(p.Goals) == 0 && len(p.Lists) == 0
}

// Len is the number of writes in the plan.
func (p Plan) Len() int {
	return len(p.Goals) + len(p.Lists)
}

// Apply writes the plan onto the given collections in place. Ids missing
// from the collections are skipped.
func (p Plan) Apply(goals []*store.Goal, lists []*store.GoalList) {
	for _, u := range p.Goals {
		if i := indexOfGoal(goals, u.ID); i >= 0 {
			u.Patch().Apply(goals[i])
		}
	}
	for _, u := range p.Lists {
		if i := indexOfList(lists, u.ID); i >= 0 {
			u.Patch().Apply(lists[i])
		}
	}
}

// Kind identifies a user gesture.
type Kind int

const (
	KindReorderGoal Kind = iota
	KindMoveGoal
	KindMoveList
	KindReorderFocus
)

func (k Kind) String() string {
	switch k {
	case KindReorderGoal:
		return "reorder-goal"
	case KindMoveGoal:
		return "move-goal"
	case KindMoveList:
		return "move-list"
	case KindReorderFocus:
		return "reorder-focus"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Move describes a drag: which item, where it was dropped, and at which
// index within the destination scope.
type Move struct {
	Kind     Kind
	ItemID   string
	ToListID string // KindMoveGoal
	ToColumn int    // KindMoveList
	Index    int
}

func (m Move) String() string {
	switch m.Kind {
	case KindMoveGoal:
		return fmt.Sprintf("%s %s -> %s[%d]", m.Kind, m.ItemID, m.ToListID, m.Index)
	case KindMoveList:
		return fmt.Sprintf("%s %s -> column %d[%d]", m.Kind, m.ItemID, m.ToColumn, m.Index)
	}
	return fmt.Sprintf("%s %s -> [%d]", m.Kind, m.ItemID, m.Index)
}

// Compute dispatches m to the matching planning function.
func Compute(goals []*store.Goal, lists []*store.GoalList, columnCount int, m Move) (Plan, error) {
	switch m.Kind {
	case KindReorderGoal:
		return ReorderGoal(goals, m.ItemID, m.Index)
	case KindMoveGoal:
		return MoveGoal(goals, lists, m.ItemID, m.ToListID, m.Index)
	case KindMoveList:
		return MoveList(lists, m.ItemID, m.ToColumn, m.Index, columnCount)
	case KindReorderFocus:
		return ReorderFocus(goals, m.ItemID, m.Index)
	}
	return Plan{}, store.Invalid("kind", "unknown move kind %d", int(m.Kind))
}
