package tracker

import (
	"strings"

	"github.com/stefanpenner/goalist/pkg/store"
)

// ResolveGoal finds a goal by full id or unique id prefix.
func (t *Tracker) ResolveGoal(ref string) (*store.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var matches []*store.Goal
	for _, g := range t.goals {
		if g.ID == ref {
			c := *g
			return &c, nil
		}
		if ref != "" && strings.HasPrefix(g.ID, ref) {
			matches = append(matches, g)
		}
	}
	switch len(matches) {
	case 0:
		return nil, &store.NotFoundError{Kind: "goal", ID: ref}
	case 1:
		c := *matches[0]
		return &c, nil
	}
	return nil, store.Invalid("goal", "%q matches %d goals", ref, len(matches))
}

// ResolveList finds a goal list by full id, unique id prefix, or
// case-insensitive title.
func (t *Tracker) ResolveList(ref string) (*store.GoalList, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var byPrefix, byTitle []*store.GoalList
	for _, l := range t.lists {
		if l.ID == ref {
			c := *l
			return &c, nil
		}
		if ref != "" && strings.HasPrefix(l.ID, ref) {
			byPrefix = append(byPrefix, l)
		}
		if strings.EqualFold(strings.TrimSpace(l.Title), strings.TrimSpace(ref)) {
			byTitle = append(byTitle, l)
		}
	}
	for _, matches := range [][]*store.GoalList{byPrefix, byTitle} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			c := *matches[0]
			return &c, nil
		default:
			return nil, store.Invalid("list", "%q matches %d lists", ref, len(matches))
		}
	}
	return nil, &store.NotFoundError{Kind: "goal list", ID: ref}
}
