package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/stefanpenner/goalist/pkg/store"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	listColor    = color.New(color.Bold)
	doneColor    = color.New(color.FgGreen)
	focusColor   = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)
	successColor = color.New(color.FgGreen)
)

// shortIDLen is how many id characters are printed; any unique prefix is
// accepted back.
const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printGoalLine writes one goal as "○ title (id)" with markers.
func printGoalLine(w io.Writer, indent string, g *store.Goal) {
	mark := "○"
	title := g.Title
	if g.IsComplete() {
		mark = doneColor.Sprint("✓")
		title = dimColor.Sprint(title)
	}
	suffix := ""
	if g.IsFocused {
		suffix += " " + focusColor.Sprint("★")
	}
	if g.DueDate != nil {
		suffix += " " + dimColor.Sprintf("due %s", g.DueDate.Format("2006-01-02"))
	}
	if g.RepeatFrequency != "" && g.RepeatFrequency != store.RepeatNone {
		suffix += " " + dimColor.Sprintf("↻ %s", g.RepeatFrequency)
	}
	fmt.Fprintf(w, "%s%s %s %s%s\n", indent, mark, title, dimColor.Sprintf("(%s)", shortID(g.ID)), suffix)
}

func printDone(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", successColor.Sprint("✓"), fmt.Sprintf(format, args...))
}
