package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStore is a RecordStore backed by markdown files, one per row:
// <root>/<table>/<id>.md with the columns as YAML frontmatter. A goal's
// description is kept as the markdown body so it stays editable by hand.
type FileStore struct {
	Root string // e.g., ~/.local/share/goalist

	mu  sync.Mutex
	now func() time.Time
}

// NewFileStore creates a FileStore rooted at the given directory.
// It creates the table directories if they don't exist.
func NewFileStore(root string) (*FileStore, error) {
	for _, table := range []string{TableGoals, TableGoalLists} {
		if err := os.MkdirAll(filepath.Join(root, table), 0755); err != nil {
			return nil, fmt.Errorf("creating %s directory: %w", table, err)
		}
	}
	return &FileStore{Root: root, now: time.Now}, nil
}

// TableDir returns the directory holding the rows of table.
func (s *FileStore) TableDir(table string) string {
	return filepath.Join(s.Root, table)
}

func (s *FileStore) rowPath(table, id string) string {
	return filepath.Join(s.TableDir(table), id+".md")
}

func checkTable(table string) error {
	if table != TableGoals && table != TableGoalLists {
		return fmt.Errorf("unknown table %q", table)
	}
	return nil
}

// Select reads every row of table and returns those matching filter,
// sorted by id for stable output.
func (s *FileStore) Select(ctx context.Context, table string, filter Filter) ([]Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(table, filter)
}

func (s *FileStore) selectLocked(table string, filter Filter) ([]Record, error) {
	entries, err := os.ReadDir(s.TableDir(table))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s directory: %w", table, err)
	}

	var rows []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".md")
		rec, err := s.readRow(table, id)
		if err != nil {
			return nil, err
		}
		if filter.Matches(rec) {
			rows = append(rows, rec)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, _ := rows[i][ColID].(string)
		b, _ := rows[j][ColID].(string)
		return a < b
	})
	return rows, nil
}

// Insert assigns an id and timestamps, then writes the row.
func (s *FileStore) Insert(ctx context.Context, table string, rec Record) (Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row := make(Record, len(rec)+3)
	for k, v := range rec {
		row[k] = v
	}
	if id, _ := row[ColID].(string); id == "" {
		row[ColID] = uuid.New().String()
	}
	now := s.now().UTC()
	row[ColCreatedAt] = now
	row[ColUpdatedAt] = now

	id := row[ColID].(string)
	if _, err := os.Stat(s.rowPath(table, id)); err == nil {
		return nil, fmt.Errorf("%s row %s already exists", table, id)
	}
	if err := s.writeRow(table, id, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Update merges fields into row id.
func (s *FileStore) Update(ctx context.Context, table, id string, fields Record) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.readRow(table, id)
	if err != nil {
		return err
	}
	for k, v := range fields {
		if k == ColID {
			continue
		}
		row[k] = v
	}
	row[ColUpdatedAt] = s.now().UTC()
	return s.writeRow(table, id, row)
}

// Delete removes row id. Deleting a goal list removes its goals too.
func (s *FileStore) Delete(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.rowPath(table, id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &NotFoundError{Kind: table, ID: id}
	}

	if table == TableGoalLists {
		goals, err := s.selectLocked(TableGoals, Filter{ColGoalListID: id})
		if err != nil {
			return err
		}
		for _, g := range goals {
			gid, _ := g[ColID].(string)
			if err := os.Remove(s.rowPath(TableGoals, gid)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("deleting goal %s: %w", gid, err)
			}
		}
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting %s row %s: %w", table, id, err)
	}
	return nil
}

func (s *FileStore) readRow(table, id string) (Record, error) {
	data, err := os.ReadFile(s.rowPath(table, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Kind: table, ID: id}
		}
		return nil, fmt.Errorf("reading %s row %s: %w", table, id, err)
	}
	rec, body, err := ParseFrontmatter(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s row %s: %w", table, id, err)
	}
	rec[ColID] = id
	return joinBody(table, rec, body), nil
}

// writeRow writes through a temp file and rename so readers and the file
// watcher never observe a half-written row.
func (s *FileStore) writeRow(table, id string, rec Record) error {
	front, body := splitBody(table, rec)
	delete(front, ColID)
	content, err := SerializeFrontmatter(front, body)
	if err != nil {
		return fmt.Errorf("serializing %s row %s: %w", table, id, err)
	}
	return writeFileAtomic(s.rowPath(table, id), []byte(content))
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
