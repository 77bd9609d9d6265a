package store

import "context"

// Table names understood by every RecordStore.
const (
	TableGoals     = "goals"
	TableGoalLists = "goal_lists"
)

// Record is a row keyed by snake_case column name.
type Record map[string]any

// Filter selects rows whose columns equal every given value.
type Filter map[string]any

// RecordStore is the remote persistence service. Implementations must be
// safe for concurrent use.
type RecordStore interface {
	// Select returns all rows of table matching filter. A nil filter
	// matches everything.
	Select(ctx context.Context, table string, filter Filter) ([]Record, error)
	// Insert stores rec and returns the stored row including generated
	// columns (id, created_at, updated_at).
	Insert(ctx context.Context, table string, rec Record) (Record, error)
	// Update overwrites the given columns of row id.
	Update(ctx context.Context, table, id string, fields Record) error
	// Delete removes row id. Deleting a goal list also removes its goals.
	Delete(ctx context.Context, table, id string) error
}

// Matches reports whether r has every column value in f.
func (f Filter) Matches(r Record) bool {
	for k, v := range f {
		if !sameValue(r[k], v) {
			return false
		}
	}
	return true
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		return ok && fa == fb
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		return ok && sa == sb
	}
	if ba, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ba == bb
	}
	return false
}
