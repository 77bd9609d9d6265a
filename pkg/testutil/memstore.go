// Package testutil provides shared test doubles.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stefanpenner/goalist/pkg/store"
)

// UpdateCall records one Update invocation.
type UpdateCall struct {
	Table  string
	ID     string
	Fields store.Record
}

// MemoryStore is an in-memory store.RecordStore with error injection.
type MemoryStore struct {
	Tables map[string]map[string]store.Record

	// Errors returned instead of performing the call.
	SelectErr error
	InsertErr error
	DeleteErr error
	UpdateErr error
	// UpdateErrFor fails updates of specific row ids.
	UpdateErrFor map[string]error

	Updates     []UpdateCall
	InsertCalls int
	DeleteCalls int
	SelectCalls int

	NowTime time.Time

	mu     sync.Mutex
	nextID int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Tables: map[string]map[string]store.Record{
			store.TableGoals:     {},
			store.TableGoalLists: {},
		},
		UpdateErrFor: map[string]error{},
		NowTime:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// SeedGoals stores goals as rows.
func (m *MemoryStore) SeedGoals(goals ...*store.Goal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range goals {
		m.Tables[store.TableGoals][g.ID] = store.GoalRecord(g)
	}
}

// SeedLists stores goal lists as rows.
func (m *MemoryStore) SeedLists(lists ...*store.GoalList) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lists {
		m.Tables[store.TableGoalLists][l.ID] = store.ListRecord(l)
	}
}

// UpdateCount returns the number of Update calls so far.
func (m *MemoryStore) UpdateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Updates)
}

// Row returns a copy of a stored row, or nil.
func (m *MemoryStore) Row(table, id string) store.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.Tables[table][id]
	if !ok {
		return nil
	}
	return copyRecord(row)
}

// Select returns matching rows sorted by id.
func (m *MemoryStore) Select(_ context.Context, table string, filter store.Filter) ([]store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SelectCalls++
	if m.SelectErr != nil {
		return nil, m.SelectErr
	}
	rows, ok := m.Tables[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	var out []store.Record
	for _, r := range rows {
		if filter.Matches(r) {
			out = append(out, copyRecord(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i][store.ColID].(string) < out[j][store.ColID].(string)
	})
	return out, nil
}

// Insert stores rec with a sequential id.
func (m *MemoryStore) Insert(_ context.Context, table string, rec store.Record) (store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertCalls++
	if m.InsertErr != nil {
		return nil, m.InsertErr
	}
	rows, ok := m.Tables[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	row := copyRecord(rec)
	if id, _ := row[store.ColID].(string); id == "" {
		m.nextID++
		row[store.ColID] = fmt.Sprintf("%s-%d", table, m.nextID)
	}
	row[store.ColCreatedAt] = m.NowTime
	row[store.ColUpdatedAt] = m.NowTime
	rows[row[store.ColID].(string)] = row
	return copyRecord(row), nil
}

// Update merges fields into row id.
func (m *MemoryStore) Update(_ context.Context, table, id string, fields store.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, UpdateCall{Table: table, ID: id, Fields: copyRecord(fields)})
	if err := m.UpdateErrFor[id]; err != nil {
		return err
	}
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	row, ok := m.Tables[table][id]
	if !ok {
		return &store.NotFoundError{Kind: table, ID: id}
	}
	for k, v := range fields {
		row[k] = v
	}
	row[store.ColUpdatedAt] = m.NowTime
	return nil
}

// Delete removes row id, cascading goal list deletes to their goals.
func (m *MemoryStore) Delete(_ context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.Tables[table][id]; !ok {
		return &store.NotFoundError{Kind: table, ID: id}
	}
	delete(m.Tables[table], id)
	if table == store.TableGoalLists {
		for gid, g := range m.Tables[store.TableGoals] {
			if g[store.ColGoalListID] == id {
				delete(m.Tables[store.TableGoals], gid)
			}
		}
	}
	return nil
}

func copyRecord(r store.Record) store.Record {
	out := make(store.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// MockClock is a fixed clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (c *MockClock) Now() time.Time {
	return c.NowTime
}
