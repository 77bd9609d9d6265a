package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Column names on the wire.
const (
	ColID              = "id"
	ColTitle           = "title"
	ColDescription     = "description"
	ColDueDate         = "due_date"
	ColGoalListID      = "goal_list_id"
	ColRepeatFrequency = "repeat_frequency"
	ColCarryOver       = "carry_over"
	ColCompletedAt     = "completed_at"
	ColCreatedAt       = "created_at"
	ColUpdatedAt       = "updated_at"
	ColUserID          = "user_id"
	ColGoalOrder       = "goal_order"
	ColIsFocused       = "is_focused"
	ColArchivedAt      = "archived_at"
	ColListOrder       = "list_order"
	ColColumnNumber    = "column_number"
)

type goalField struct {
	column string
	get    func(*Goal) any
	set    func(*Goal, any) error
}

type listField struct {
	column string
	get    func(*GoalList) any
	set    func(*GoalList, any) error
}

// goalFields is the single mapping between Goal and its wire columns.
var goalFields = []goalField{
	{ColID, func(g *Goal) any { return g.ID }, func(g *Goal, v any) (err error) { g.ID, err = toString(v); return }},
	{ColTitle, func(g *Goal) any { return g.Title }, func(g *Goal, v any) (err error) { g.Title, err = toString(v); return }},
	{ColDescription, func(g *Goal) any { return g.Description }, func(g *Goal, v any) (err error) { g.Description, err = toString(v); return }},
	{ColDueDate, func(g *Goal) any { return timePtrValue(g.DueDate) }, func(g *Goal, v any) (err error) { g.DueDate, err = toTimePtr(v); return }},
	{ColGoalListID, func(g *Goal) any { return g.GoalListID }, func(g *Goal, v any) (err error) { g.GoalListID, err = toString(v); return }},
	{ColRepeatFrequency, func(g *Goal) any { return string(g.RepeatFrequency) }, func(g *Goal, v any) error {
		s, err := toString(v)
		if s == "" {
			s = string(RepeatNone)
		}
		g.RepeatFrequency = RepeatFrequency(s)
		return err
	}},
	{ColCarryOver, func(g *Goal) any { return g.CarryOver }, func(g *Goal, v any) (err error) { g.CarryOver, err = toBool(v); return }},
	{ColCompletedAt, func(g *Goal) any { return timePtrValue(g.CompletedAt) }, func(g *Goal, v any) (err error) { g.CompletedAt, err = toTimePtr(v); return }},
	{ColCreatedAt, func(g *Goal) any { return g.CreatedAt }, func(g *Goal, v any) (err error) { g.CreatedAt, err = toTime(v); return }},
	{ColUpdatedAt, func(g *Goal) any { return g.UpdatedAt }, func(g *Goal, v any) (err error) { g.UpdatedAt, err = toTime(v); return }},
	{ColUserID, func(g *Goal) any { return g.UserID }, func(g *Goal, v any) (err error) { g.UserID, err = toString(v); return }},
	{ColGoalOrder, func(g *Goal) any { return g.Order }, func(g *Goal, v any) (err error) { g.Order, err = toFloat(v); return }},
	{ColIsFocused, func(g *Goal) any { return g.IsFocused }, func(g *Goal, v any) (err error) { g.IsFocused, err = toBool(v); return }},
	{ColArchivedAt, func(g *Goal) any { return timePtrValue(g.ArchivedAt) }, func(g *Goal, v any) (err error) { g.ArchivedAt, err = toTimePtr(v); return }},
}

var listFields = []listField{
	{ColID, func(l *GoalList) any { return l.ID }, func(l *GoalList, v any) (err error) { l.ID, err = toString(v); return }},
	{ColTitle, func(l *GoalList) any { return l.Title }, func(l *GoalList, v any) (err error) { l.Title, err = toString(v); return }},
	{ColUserID, func(l *GoalList) any { return l.UserID }, func(l *GoalList, v any) (err error) { l.UserID, err = toString(v); return }},
	{ColListOrder, func(l *GoalList) any { return l.Order }, func(l *GoalList, v any) (err error) { l.Order, err = toInt(v); return }},
	{ColColumnNumber, func(l *GoalList) any { return l.ColumnNumber }, func(l *GoalList, v any) error {
		n, err := toInt(v)
		if n == 0 {
			n = 1
		}
		l.ColumnNumber = n
		return err
	}},
	{ColCreatedAt, func(l *GoalList) any { return l.CreatedAt }, func(l *GoalList, v any) (err error) { l.CreatedAt, err = toTime(v); return }},
	{ColUpdatedAt, func(l *GoalList) any { return l.UpdatedAt }, func(l *GoalList, v any) (err error) { l.UpdatedAt, err = toTime(v); return }},
}

// GoalRecord converts a goal to its wire representation.
func GoalRecord(g *Goal) Record {
	r := make(Record, len(goalFields))
	for _, f := range goalFields {
		r[f.column] = f.get(g)
	}
	return r
}

// GoalFromRecord converts a wire row to a goal. Columns missing from the row
// keep their zero value.
func GoalFromRecord(r Record) (*Goal, error) {
	g := &Goal{RepeatFrequency: RepeatNone}
	for _, f := range goalFields {
		v, ok := r[f.column]
		if !ok {
			continue
		}
		if err := f.set(g, v); err != nil {
			return nil, fmt.Errorf("decoding goal column %s: %w", f.column, err)
		}
	}
	return g, nil
}

// ListRecord converts a goal list to its wire representation.
func ListRecord(l *GoalList) Record {
	r := make(Record, len(listFields))
	for _, f := range listFields {
		r[f.column] = f.get(l)
	}
	return r
}

// ListFromRecord converts a wire row to a goal list.
func ListFromRecord(r Record) (*GoalList, error) {
	l := &GoalList{ColumnNumber: 1}
	for _, f := range listFields {
		v, ok := r[f.column]
		if !ok {
			continue
		}
		if err := f.set(l, v); err != nil {
			return nil, fmt.Errorf("decoding goal list column %s: %w", f.column, err)
		}
	}
	return l, nil
}

// GoalsFromRecords decodes a batch of rows.
func GoalsFromRecords(rows []Record) ([]*Goal, error) {
	goals := make([]*Goal, 0, len(rows))
	for _, r := range rows {
		g, err := GoalFromRecord(r)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, nil
}

// ListsFromRecords decodes a batch of rows.
func ListsFromRecords(rows []Record) ([]*GoalList, error) {
	lists := make([]*GoalList, 0, len(rows))
	for _, r := range rows {
		l, err := ListFromRecord(r)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, nil
}

// GoalPatch is a partial goal update. Nil fields are left untouched; a
// NullTime with Valid=false clears the timestamp.
type GoalPatch struct {
	Title           *string
	Description     *string
	DueDate         *sql.NullTime
	GoalListID      *string
	RepeatFrequency *RepeatFrequency
	CarryOver       *bool
	CompletedAt     *sql.NullTime
	Order           *float64
	IsFocused       *bool
	ArchivedAt      *sql.NullTime
}

// IsEmpty reports whether the patch changes nothing.
func (p GoalPatch) IsEmpty() bool {
	return len(p.columns()) == 0
}

// Validate rejects values that can never be stored.
func (p GoalPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return Invalid("title", "must not be empty")
	}
	if p.GoalListID != nil && *p.GoalListID == "" {
		return Invalid("goal_list_id", "must not be empty")
	}
	if p.RepeatFrequency != nil && !p.RepeatFrequency.Valid() {
		return Invalid("repeat_frequency", "unknown value %q", *p.RepeatFrequency)
	}
	return nil
}

// Apply writes the set fields onto g.
func (p GoalPatch) Apply(g *Goal) {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.DueDate != nil {
		g.DueDate = nullTimePtr(*p.DueDate)
	}
	if p.GoalListID != nil {
		g.GoalListID = *p.GoalListID
	}
	if p.RepeatFrequency != nil {
		g.RepeatFrequency = *p.RepeatFrequency
	}
	if p.CarryOver != nil {
		g.CarryOver = *p.CarryOver
	}
	if p.CompletedAt != nil {
		g.CompletedAt = nullTimePtr(*p.CompletedAt)
	}
	if p.Order != nil {
		g.Order = *p.Order
	}
	if p.IsFocused != nil {
		g.IsFocused = *p.IsFocused
	}
	if p.ArchivedAt != nil {
		g.ArchivedAt = nullTimePtr(*p.ArchivedAt)
	}
}

// Record returns only the columns the patch sets.
func (p GoalPatch) Record() Record {
	var g Goal
	p.Apply(&g)
	full := GoalRecord(&g)
	r := make(Record)
	for _, col := range p.columns() {
		r[col] = full[col]
	}
	return r
}

func (p GoalPatch) columns() []string {
	var cols []string
	add := func(set bool, col string) {
		if set {
			cols = append(cols, col)
		}
	}
	add(p.Title != nil, ColTitle)
	add(p.Description != nil, ColDescription)
	add(p.DueDate != nil, ColDueDate)
	add(p.GoalListID != nil, ColGoalListID)
	add(p.RepeatFrequency != nil, ColRepeatFrequency)
	add(p.CarryOver != nil, ColCarryOver)
	add(p.CompletedAt != nil, ColCompletedAt)
	add(p.Order != nil, ColGoalOrder)
	add(p.IsFocused != nil, ColIsFocused)
	add(p.ArchivedAt != nil, ColArchivedAt)
	return cols
}

// GoalListPatch is a partial goal list update.
type GoalListPatch struct {
	Title        *string
	Order        *int
	ColumnNumber *int
}

// IsEmpty reports whether the patch changes nothing.
func (p GoalListPatch) IsEmpty() bool {
	return p.Title == nil && p.Order == nil && p.ColumnNumber == nil
}

// Validate rejects values that can never be stored.
func (p GoalListPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return Invalid("title", "must not be empty")
	}
	if p.ColumnNumber != nil && *p.ColumnNumber < 1 {
		return Invalid("column_number", "must be at least 1, got %d", *p.ColumnNumber)
	}
	return nil
}

// Apply writes the set fields onto l.
func (p GoalListPatch) Apply(l *GoalList) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Order != nil {
		l.Order = *p.Order
	}
	if p.ColumnNumber != nil {
		l.ColumnNumber = *p.ColumnNumber
	}
}

// Record returns only the columns the patch sets.
func (p GoalListPatch) Record() Record {
	var l GoalList
	p.Apply(&l)
	full := ListRecord(&l)
	r := make(Record)
	if p.Title != nil {
		r[ColTitle] = full[ColTitle]
	}
	if p.Order != nil {
		r[ColListOrder] = full[ColListOrder]
	}
	if p.ColumnNumber != nil {
		r[ColColumnNumber] = full[ColColumnNumber]
	}
	return r
}

// NullTime is shorthand for a set timestamp in a patch.
func NullTime(t time.Time) *sql.NullTime {
	return &sql.NullTime{Time: t, Valid: true}
}

// ClearTime is shorthand for clearing a timestamp in a patch.
func ClearTime() *sql.NullTime {
	return &sql.NullTime{}
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func timePtrValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	}
	return "", fmt.Errorf("expected string, got %T", v)
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	}
	if f, ok := asFloat(v); ok {
		return f != 0, nil
	}
	return false, fmt.Errorf("expected bool, got %T", v)
}

func toFloat(v any) (float64, error) {
	if v == nil {
		return 0, nil
	}
	if f, ok := asFloat(v); ok {
		return f, nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func toInt(v any) (int, error) {
	f, err := toFloat(v)
	return int(f), err
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func toTime(v any) (time.Time, error) {
	t, err := toTimePtr(v)
	if err != nil || t == nil {
		return time.Time{}, err
	}
	return *t, nil
}

func toTimePtr(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &t, nil
	case *time.Time:
		return t, nil
	case string:
		if t == "" {
			return nil, nil
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return &parsed, nil
			}
		}
		return nil, fmt.Errorf("unrecognised timestamp %q", t)
	}
	return nil, fmt.Errorf("expected timestamp, got %T", v)
}
