package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Cache keys. Each key names one YAML file in the cache directory.
const (
	GoalsCacheKey     = "goalist_goals_cache"
	GoalListsCacheKey = "goalist_goal_lists_cache"
)

// Cache is the local mirror of the last known good collections. It is read
// on startup before the remote fetch and rewritten after every successful
// mutation.
type Cache struct {
	Dir string
}

// NewCache returns a cache stored under dir.
func NewCache(dir string) *Cache {
	return &Cache{Dir: dir}
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key+".yaml")
}

// Load returns the cached collections. ok is false when nothing has been
// cached yet.
func (c *Cache) Load() (goals []*Goal, lists []*GoalList, ok bool, err error) {
	gOK, err := c.read(GoalsCacheKey, &goals)
	if err != nil {
		return nil, nil, false, err
	}
	lOK, err := c.read(GoalListsCacheKey, &lists)
	if err != nil {
		return nil, nil, false, err
	}
	return goals, lists, gOK && lOK, nil
}

// Save overwrites both cache entries.
func (c *Cache) Save(goals []*Goal, lists []*GoalList) error {
	if goals == nil {
		goals = []*Goal{}
	}
	if lists == nil {
		lists = []*GoalList{}
	}
	if err := c.write(GoalsCacheKey, goals); err != nil {
		return err
	}
	return c.write(GoalListsCacheKey, lists)
}

// Clear removes both cache entries.
func (c *Cache) Clear() error {
	var errs []error
	for _, key := range []string{GoalsCacheKey, GoalListsCacheKey} {
		if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("remove cache %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Cache) read(key string, v any) (bool, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read cache %s: %w", key, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse cache %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) write(key string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache %s: %w", key, err)
	}
	if err := writeFileAtomic(c.path(key), data); err != nil {
		return fmt.Errorf("write cache %s: %w", key, err)
	}
	return nil
}
