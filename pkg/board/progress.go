package board

import (
	"sort"
	"strings"
	"time"

	"github.com/stefanpenner/goalist/pkg/store"
)

// UnknownListTitle labels archived goals whose list no longer exists.
const UnknownListTitle = "Unknown List"

// ArchivePageSize is the number of list groups per archive page.
const ArchivePageSize = 10

// ListProgress returns the percentage (0-100) of a list's active goals that
// are complete. An empty list is 0.
func ListProgress(goals []*store.Goal, listID string) float64 {
	var total, done int
	for _, g := range goals {
		if g.GoalListID != listID || g.IsArchived() {
			continue
		}
		total++
		if g.IsComplete() {
			done++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// FocusProgress counts completed and total goals in the focus list.
func FocusProgress(goals []*store.Goal) (done, total int) {
	for _, g := range goals {
		if !g.IsFocused || g.IsArchived() {
			continue
		}
		total++
		if g.IsComplete() {
			done++
		}
	}
	return done, total
}

// ArchiveEligible returns completed, unarchived goals whose completion is
// older than days before now.
func ArchiveEligible(goals []*store.Goal, now time.Time, days int) []*store.Goal {
	if days <= 0 {
		return nil
	}
	cutoff := now.AddDate(0, 0, -days)
	var out []*store.Goal
	for _, g := range goals {
		if g.IsArchived() || !g.IsComplete() {
			continue
		}
		if g.CompletedAt.Before(cutoff) {
			out = append(out, g)
		}
	}
	return out
}

// ArchiveGroup is the archived goals of one list.
type ArchiveGroup struct {
	ListID    string        `json:"listId" yaml:"listId" toml:"listId"`
	ListTitle string        `json:"listTitle" yaml:"listTitle" toml:"listTitle"`
	Goals     []*store.Goal `json:"goals" yaml:"goals" toml:"goals"`
}

// Archived groups archived goals by their list, keeping only titles that
// contain query (case-insensitive). Groups follow list order, with groups
// for deleted lists last; goals are newest archive first.
func Archived(goals []*store.Goal, lists []*store.GoalList, query string) []ArchiveGroup {
	query = strings.ToLower(strings.TrimSpace(query))
	titles := listTitles(lists)

	rank := make(map[string]int, len(lists))
	sortedLists := append([]*store.GoalList(nil), lists...)
	sort.SliceStable(sortedLists, func(i, j int) bool {
		if sortedLists[i].ColumnNumber != sortedLists[j].ColumnNumber {
			return sortedLists[i].ColumnNumber < sortedLists[j].ColumnNumber
		}
		return sortedLists[i].Order < sortedLists[j].Order
	})
	for i, l := range sortedLists {
		rank[l.ID] = i
	}

	groups := make(map[string]*ArchiveGroup)
	var order []string
	for _, g := range goals {
		if !g.IsArchived() {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(g.Title), query) {
			continue
		}
		grp, ok := groups[g.GoalListID]
		if !ok {
			title, known := titles[g.GoalListID]
			if !known {
				title = UnknownListTitle
			}
			grp = &ArchiveGroup{ListID: g.GoalListID, ListTitle: title}
			groups[g.GoalListID] = grp
			order = append(order, g.GoalListID)
		}
		grp.Goals = append(grp.Goals, g)
	}

	sort.SliceStable(order, func(i, j int) bool {
		ri, iok := rank[order[i]]
		rj, jok := rank[order[j]]
		if iok != jok {
			return iok
		}
		if !iok {
			return order[i] < order[j]
		}
		return ri < rj
	})

	out := make([]ArchiveGroup, 0, len(order))
	for _, id := range order {
		grp := groups[id]
		sort.SliceStable(grp.Goals, func(i, j int) bool {
			return grp.Goals[i].ArchivedAt.After(*grp.Goals[j].ArchivedAt)
		})
		out = append(out, *grp)
	}
	return out
}

// Page returns page (1-based) of groups with size groups per page, and the
// total number of pages (at least 1). Out of range pages are clamped.
func Page(groups []ArchiveGroup, page, size int) ([]ArchiveGroup, int) {
	if size < 1 {
		size = ArchivePageSize
	}
	pages := max(1, (len(groups)+size-1)/size)
	page = min(max(page, 1), pages)
	start := (page - 1) * size
	end := min(start+size, len(groups))
	return groups[start:end], pages
}
