package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS goal_lists (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	user_id       TEXT NOT NULL DEFAULT '',
	list_order    INTEGER NOT NULL DEFAULT 0,
	column_number INTEGER NOT NULL DEFAULT 1,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS goals (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	due_date         TEXT,
	goal_list_id     TEXT NOT NULL REFERENCES goal_lists(id) ON DELETE CASCADE,
	repeat_frequency TEXT NOT NULL DEFAULT 'none',
	carry_over       INTEGER NOT NULL DEFAULT 0,
	completed_at     TEXT,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL,
	user_id          TEXT NOT NULL DEFAULT '',
	goal_order       REAL NOT NULL DEFAULT 0,
	is_focused       INTEGER NOT NULL DEFAULT 0,
	archived_at      TEXT
);

CREATE INDEX IF NOT EXISTS idx_goals_list ON goals(goal_list_id);
`

// sqliteColumns whitelists the columns each table accepts, in schema order.
var sqliteColumns = map[string][]string{
	TableGoalLists: {ColID, ColTitle, ColUserID, ColListOrder, ColColumnNumber, ColCreatedAt, ColUpdatedAt},
	TableGoals: {ColID, ColTitle, ColDescription, ColDueDate, ColGoalListID, ColRepeatFrequency, ColCarryOver,
		ColCompletedAt, ColCreatedAt, ColUpdatedAt, ColUserID, ColGoalOrder, ColIsFocused, ColArchivedAt},
}

// SQLiteStore is a RecordStore backed by a SQLite database file.
type SQLiteStore struct {
	conn *sql.DB
	path string
	now  func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema. WAL mode is enabled for concurrent reads.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// foreign_keys is per connection, so it goes in the DSN.
	conn, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{conn: conn, path: path, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *SQLiteStore) Path() string {
	return s.path
}

func columnsFor(table string) ([]string, error) {
	cols, ok := sqliteColumns[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	return cols, nil
}

func knownColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}

// Select returns rows of table matching filter, ordered by id.
func (s *SQLiteStore) Select(ctx context.Context, table string, filter Filter) ([]Record, error) {
	cols, err := columnsFor(table)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)
	var where []string
	var args []any
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !knownColumn(cols, k) {
			return nil, fmt.Errorf("unknown column %s.%s", table, k)
		}
		if filter[k] == nil {
			where = append(where, k+" IS NULL")
			continue
		}
		where = append(where, k+" = ?")
		args = append(args, sqliteValue(filter[k]))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		rec := make(Record, len(cols))
		for i, c := range cols {
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Insert stores rec with a generated id and timestamps.
func (s *SQLiteStore) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	cols, err := columnsFor(table)
	if err != nil {
		return nil, err
	}

	row := make(Record, len(cols))
	for k, v := range rec {
		if !knownColumn(cols, k) {
			return nil, fmt.Errorf("unknown column %s.%s", table, k)
		}
		row[k] = v
	}
	if id, _ := row[ColID].(string); id == "" {
		row[ColID] = uuid.New().String()
	}
	now := s.now().UTC()
	row[ColCreatedAt] = now
	row[ColUpdatedAt] = now

	names := make([]string, 0, len(row))
	marks := make([]string, 0, len(row))
	args := make([]any, 0, len(row))
	for _, c := range cols {
		v, ok := row[c]
		if !ok {
			continue
		}
		names = append(names, c)
		marks = append(marks, "?")
		args = append(args, sqliteValue(v))
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), strings.Join(marks, ", "))
	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	return row, nil
}

// Update overwrites the given columns of row id.
func (s *SQLiteStore) Update(ctx context.Context, table, id string, fields Record) error {
	cols, err := columnsFor(table)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == ColID || k == ColUpdatedAt {
			continue
		}
		if !knownColumn(cols, k) {
			return fmt.Errorf("unknown column %s.%s", table, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := []string{ColUpdatedAt + " = ?"}
	args := []any{sqliteValue(s.now().UTC())}
	for _, k := range keys {
		sets = append(sets, k+" = ?")
		args = append(args, sqliteValue(fields[k]))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &NotFoundError{Kind: table, ID: id}
	}
	return nil
}

// Delete removes row id; goals of a deleted list go with it via the
// foreign key cascade.
func (s *SQLiteStore) Delete(ctx context.Context, table, id string) error {
	if _, err := columnsFor(table); err != nil {
		return err
	}
	res, err := s.conn.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &NotFoundError{Kind: table, ID: id}
	}
	return nil
}

// sqliteValue normalises a record value for a driver argument. Timestamps
// are stored as RFC 3339 text so they sort and round-trip exactly.
func sqliteValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339Nano)
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	}
	return v
}
