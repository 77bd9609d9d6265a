package store

import "time"

// RepeatFrequency is how often a goal recurs.
type RepeatFrequency string

const (
	RepeatNone    RepeatFrequency = "none"
	RepeatDaily   RepeatFrequency = "daily"
	RepeatWeekly  RepeatFrequency = "weekly"
	RepeatMonthly RepeatFrequency = "monthly"
	RepeatYearly  RepeatFrequency = "yearly"
)

// Valid reports whether f is one of the known frequencies.
func (f RepeatFrequency) Valid() bool {
	switch f {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	}
	return false
}

// Goal is a single to-do item belonging to exactly one goal list.
type Goal struct {
	ID              string          `yaml:"id" json:"id" toml:"id"`
	Title           string          `yaml:"title" json:"title" toml:"title"`
	Description     string          `yaml:"description,omitempty" json:"description,omitempty" toml:"description,omitempty"`
	DueDate         *time.Time      `yaml:"dueDate,omitempty" json:"dueDate,omitempty" toml:"dueDate,omitempty"`
	GoalListID      string          `yaml:"goalListId" json:"goalListId" toml:"goalListId"`
	RepeatFrequency RepeatFrequency `yaml:"repeatFrequency" json:"repeatFrequency" toml:"repeatFrequency"`
	CarryOver       bool            `yaml:"carryOver" json:"carryOver" toml:"carryOver"`
	CompletedAt     *time.Time      `yaml:"completedAt,omitempty" json:"completedAt,omitempty" toml:"completedAt,omitempty"`
	CreatedAt       time.Time       `yaml:"createdAt" json:"createdAt" toml:"createdAt"`
	UpdatedAt       time.Time       `yaml:"updatedAt" json:"updatedAt" toml:"updatedAt"`
	UserID          string          `yaml:"userId" json:"userId" toml:"userId"`
	Order           float64         `yaml:"goalOrder" json:"goalOrder" toml:"goalOrder"`
	IsFocused       bool            `yaml:"isFocused" json:"isFocused" toml:"isFocused"`
	ArchivedAt      *time.Time      `yaml:"archivedAt,omitempty" json:"archivedAt,omitempty" toml:"archivedAt,omitempty"`
}

// IsComplete returns true if the goal has a completion timestamp.
func (g *Goal) IsComplete() bool {
	return g.CompletedAt != nil
}

// IsArchived returns true if the goal has been archived.
func (g *Goal) IsArchived() bool {
	return g.ArchivedAt != nil
}

// GoalList is a named, ordered container of goals placed in a dashboard column.
type GoalList struct {
	ID           string    `yaml:"id" json:"id" toml:"id"`
	Title        string    `yaml:"title" json:"title" toml:"title"`
	UserID       string    `yaml:"userId" json:"userId" toml:"userId"`
	Order        int       `yaml:"order" json:"order" toml:"order"`
	ColumnNumber int       `yaml:"columnNumber" json:"columnNumber" toml:"columnNumber"`
	CreatedAt    time.Time `yaml:"createdAt" json:"createdAt" toml:"createdAt"`
	UpdatedAt    time.Time `yaml:"updatedAt" json:"updatedAt" toml:"updatedAt"`
}
