// Package tracker owns the in-memory goal and goal list collections. Every
// change goes through it: moves are planned by the placement package,
// applied optimistically, persisted to the record store concurrently and
// rolled back as a whole if any write fails.
package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stefanpenner/goalist/pkg/board"
	"github.com/stefanpenner/goalist/pkg/placement"
	"github.com/stefanpenner/goalist/pkg/store"
)

// Column count bounds.
const (
	MinColumns     = 1
	MaxColumns     = 4
	DefaultColumns = 2
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Options configures a Tracker. Zero values pick defaults.
type Options struct {
	Cache            *store.Cache // nil disables the local mirror
	Logger           *slog.Logger
	Clock            Clock
	UserID           string
	Columns          int
	ArchiveAfterDays int
}

// Tracker is the single owner of the flat collections.
type Tracker struct {
	remote store.RecordStore
	cache  *store.Cache
	log    *slog.Logger
	clock  Clock
	userID string

	mu               sync.Mutex
	goals            []*store.Goal
	lists            []*store.GoalList
	columns          int
	archiveAfterDays int
	onChange         func()
}

// New creates a Tracker backed by remote.
func New(remote store.RecordStore, opts Options) (*Tracker, error) {
	if opts.Columns == 0 {
		opts.Columns = DefaultColumns
	}
	if err := ValidateColumns(opts.Columns); err != nil {
		return nil, err
	}
	if opts.ArchiveAfterDays < 0 {
		return nil, store.Invalid("archive_after_days", "must not be negative, got %d", opts.ArchiveAfterDays)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	return &Tracker{
		remote:           remote,
		cache:            opts.Cache,
		log:              opts.Logger,
		clock:            opts.Clock,
		userID:           opts.UserID,
		columns:          opts.Columns,
		archiveAfterDays: opts.ArchiveAfterDays,
	}, nil
}

// ValidateColumns checks a column count preference.
func ValidateColumns(n int) error {
	if n < MinColumns || n > MaxColumns {
		return store.Invalid("columns", "must be between %d and %d, got %d", MinColumns, MaxColumns, n)
	}
	return nil
}

// OnChange registers fn to be called after every change to the in-memory
// collections, including optimistic applies and rollbacks. fn runs on the
// goroutine that made the change and must not call back into the Tracker
// synchronously.
func (t *Tracker) OnChange(fn func()) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

func (t *Tracker) notify() {
	t.mu.Lock()
	fn := t.onChange
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// LoadCache fills the collections from the local mirror. It reports
// whether a cached copy existed.
func (t *Tracker) LoadCache() (bool, error) {
	if t.cache == nil {
		return false, nil
	}
	goals, lists, ok, err := t.cache.Load()
	if err != nil {
		return false, fmt.Errorf("load cache: %w", err)
	}
	if !ok {
		return false, nil
	}
	t.mu.Lock()
	t.goals, t.lists = goals, lists
	t.mu.Unlock()
	t.log.Debug("loaded cache", "goals", len(goals), "lists", len(lists))
	t.notify()
	return true, nil
}

// Refresh replaces the collections with the record store's contents and
// rewrites the cache. On failure the current collections are kept.
func (t *Tracker) Refresh(ctx context.Context) error {
	var filter store.Filter
	if t.userID != "" {
		filter = store.Filter{store.ColUserID: t.userID}
	}

	listRows, err := t.remote.Select(ctx, store.TableGoalLists, filter)
	if err != nil {
		return &store.PersistenceError{Op: "select", Table: store.TableGoalLists, Err: err}
	}
	goalRows, err := t.remote.Select(ctx, store.TableGoals, filter)
	if err != nil {
		return &store.PersistenceError{Op: "select", Table: store.TableGoals, Err: err}
	}
	lists, err := store.ListsFromRecords(listRows)
	if err != nil {
		return err
	}
	goals, err := store.GoalsFromRecords(goalRows)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.goals, t.lists = goals, lists
	t.mu.Unlock()
	t.log.Debug("refreshed", "goals", len(goals), "lists", len(lists))
	t.saveCache()
	t.notify()
	return nil
}

// Load reads the cache, then refreshes from the record store.
func (t *Tracker) Load(ctx context.Context) error {
	if _, err := t.LoadCache(); err != nil {
		// The cache is only a mirror; a broken one is replaced below.
		t.log.Warn("ignoring unreadable cache", "err", err)
	}
	return t.Refresh(ctx)
}

// Clear drops the collections and the local mirror, as on sign-out.
func (t *Tracker) Clear() error {
	t.mu.Lock()
	t.goals, t.lists = nil, nil
	t.mu.Unlock()
	t.notify()
	if t.cache == nil {
		return nil
	}
	return t.cache.Clear()
}

// Snapshot returns deep copies of the collections.
func (t *Tracker) Snapshot() ([]*store.Goal, []*store.GoalList) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneGoals(t.goals), cloneLists(t.lists)
}

// Columns returns the column count preference.
func (t *Tracker) Columns() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.columns
}

// SetColumns changes the column count preference. Stored column numbers
// are untouched; lists beyond the last column render in it.
func (t *Tracker) SetColumns(n int) error {
	if err := ValidateColumns(n); err != nil {
		return err
	}
	t.mu.Lock()
	t.columns = n
	t.mu.Unlock()
	t.notify()
	return nil
}

// ArchiveAfterDays returns the stale-archive threshold; 0 means disabled.
func (t *Tracker) ArchiveAfterDays() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.archiveAfterDays
}

// SetArchiveAfterDays changes the stale-archive threshold.
func (t *Tracker) SetArchiveAfterDays(days int) error {
	if days < 0 {
		return store.Invalid("archive_after_days", "must not be negative, got %d", days)
	}
	t.mu.Lock()
	t.archiveAfterDays = days
	t.mu.Unlock()
	return nil
}

// Board builds the dashboard column map from a snapshot.
func (t *Tracker) Board() board.ColumnMap {
	goals, lists := t.Snapshot()
	return board.Build(lists, goals, t.Columns())
}

// Focus builds the focus list from a snapshot.
func (t *Tracker) Focus() []board.FocusItem {
	goals, lists := t.Snapshot()
	return board.Focus(goals, lists)
}

// Goal returns a copy of goal id.
func (t *Tracker) Goal(id string) (*store.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	g, err := t.goalLocked(id)
	if err != nil {
		return nil, err
	}
	c := *g
	return &c, nil
}

// List returns a copy of goal list id.
func (t *Tracker) List(id string) (*store.GoalList, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, err := t.listLocked(id)
	if err != nil {
		return nil, err
	}
	c := *l
	return &c, nil
}

func (t *Tracker) goalLocked(id string) (*store.Goal, error) {
	for _, g := range t.goals {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, &store.NotFoundError{Kind: "goal", ID: id}
}

func (t *Tracker) listLocked(id string) (*store.GoalList, error) {
	for _, l := range t.lists {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, &store.NotFoundError{Kind: "goal list", ID: id}
}

// Status is the outcome of Apply.
type Status int

const (
	Applied Status = iota
	Failed
)

func (s Status) String() string {
	if s == Applied {
		return "applied"
	}
	return "failed"
}

// Result reports what Apply did. Reason is set when Status is Failed.
type Result struct {
	Status Status
	Plan   placement.Plan
	Reason error
}

// Err returns Reason for a failed result and nil otherwise.
func (r Result) Err() error {
	if r.Status == Failed {
		return r.Reason
	}
	return nil
}

// Apply plans m, applies it to the in-memory collections, then persists
// every affected item concurrently. If any write fails the collections are
// restored to exactly their state before the move. An empty plan is
// Applied without touching anything.
func (t *Tracker) Apply(ctx context.Context, m placement.Move) Result {
	t.mu.Lock()
	plan, err := placement.Compute(t.goals, t.lists, t.columns, m)
	t.mu.Unlock()
	if err != nil {
		return Result{Status: Failed, Reason: err}
	}
	if plan.Empty() {
		t.log.Debug("move is a no-op", "move", m.String())
		return Result{Status: Applied, Plan: plan}
	}

	writes := make([]write, 0, plan.Len())
	for _, u := range plan.Goals {
		writes = append(writes, write{table: store.TableGoals, id: u.ID, fields: u.Patch().Record()})
	}
	for _, u := range plan.Lists {
		writes = append(writes, write{table: store.TableGoalLists, id: u.ID, fields: u.Patch().Record()})
	}

	err = t.commit(ctx, m.String(), func() error {
		plan.Apply(t.goals, t.lists)
		return nil
	}, writes)
	if err != nil {
		return Result{Status: Failed, Plan: plan, Reason: err}
	}
	return Result{Status: Applied, Plan: plan}
}

// write is one record store call made by commit. A nil fields with
// remove set deletes the row.
type write struct {
	table  string
	id     string
	fields store.Record
	remove bool
}

// commit snapshots the collections, runs apply under the lock, notifies,
// then issues writes concurrently. Any failure restores the snapshot and
// returns a *store.PersistenceError; success rewrites the cache.
func (t *Tracker) commit(ctx context.Context, op string, apply func() error, writes []write) error {
	t.mu.Lock()
	goalsBefore, listsBefore := cloneGoals(t.goals), cloneLists(t.lists)
	if err := apply(); err != nil {
		t.goals, t.lists = goalsBefore, listsBefore
		t.mu.Unlock()
		return err
	}
	t.mu.Unlock()
	t.notify()

	t.log.Debug("persisting", "op", op, "writes", len(writes))

	// No shared cancellation: every write runs to completion.
	var g errgroup.Group
	for _, w := range writes {
		w := w
		g.Go(func() error {
			if w.remove {
				if err := t.remote.Delete(ctx, w.table, w.id); err != nil {
					return &store.PersistenceError{Op: "delete", Table: w.table, ID: w.id, Err: err}
				}
				return nil
			}
			if err := t.remote.Update(ctx, w.table, w.id, w.fields); err != nil {
				return &store.PersistenceError{Op: "update", Table: w.table, ID: w.id, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.log.Warn("rolling back", "op", op, "err", err)
		t.mu.Lock()
		t.goals, t.lists = goalsBefore, listsBefore
		t.mu.Unlock()
		t.notify()
		return err
	}

	t.saveCache()
	return nil
}

func (t *Tracker) saveCache() {
	if t.cache == nil {
		return
	}
	goals, lists := t.Snapshot()
	if err := t.cache.Save(goals, lists); err != nil {
		t.log.Warn("writing cache", "err", err)
	}
}

func cloneGoals(goals []*store.Goal) []*store.Goal {
	if goals == nil {
		return nil
	}
	out := make([]*store.Goal, len(goals))
	for i, g := range goals {
		c := *g
		c.DueDate = cloneTime(g.DueDate)
		c.CompletedAt = cloneTime(g.CompletedAt)
		c.ArchivedAt = cloneTime(g.ArchivedAt)
		out[i] = &c
	}
	return out
}

func cloneLists(lists []*store.GoalList) []*store.GoalList {
	if lists == nil {
		return nil
	}
	out := make([]*store.GoalList, len(lists))
	for i, l := range lists {
		c := *l
		out[i] = &c
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
