package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/stefanpenner/goalist/pkg/board"
	"github.com/stefanpenner/goalist/pkg/store"
)

const (
	minWidth  = 40
	minHeight = 10
)

// View implements tea.Model.
func (m Model) View() string {
	w, h := max(m.width, minWidth), max(m.height, minHeight)

	switch {
	case m.showHelpModal:
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.renderHelpModal())
	case m.showDeleteConfirm:
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.renderDeleteModal())
	}

	rule := RuleStyle.Render(strings.Repeat("─", w))
	top := []string{m.renderHeader(w), m.renderColumnTabs(), rule}
	if m.isSearching || m.searchQuery != "" {
		top = append(top, m.renderSearchBar(w))
	}
	bottom := []string{rule, m.renderFooter()}
	bodyHeight := max(1, h-len(top)-len(bottom))

	treeWidth := max(20, w/3)
	notesWidth := max(20, w-treeWidth-1)

	divider := DividerStyle
	if m.focusedPane == 1 || m.isEditing {
		divider = DividerActiveStyle
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		fit(m.renderTreePanel(treeWidth, bodyHeight), treeWidth, bodyHeight),
		divider.Render(strings.TrimSuffix(strings.Repeat("│\n", bodyHeight), "\n")),
		fit(m.renderNotesPanel(bodyHeight), notesWidth, bodyHeight),
	)

	rows := append(top, body)
	return lipgloss.JoinVertical(lipgloss.Left, append(rows, bottom...)...)
}

// fit pads or cuts block to exactly width x height cells.
func fit(block string, width, height int) string {
	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(block)
}

// pinFooter cuts or pads lines to height and appends footer below them.
func pinFooter(lines []string, height int, footer string) string {
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(append(lines, footer), "\n")
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n "), "\n")
}

func (m Model) renderHeader(width int) string {
	total, done := m.counts()
	stats := fmt.Sprintf("%d/%d goals complete", done, total)
	if n := len(m.focus); n > 0 {
		focusDone := 0
		for _, it := range m.focus {
			if it.Goal.IsComplete() {
				focusDone++
			}
		}
		stats = fmt.Sprintf("focus %d/%d  %s", focusDone, n, stats)
	}

	left := TitleStyle.Render("Goalist")
	if m.statusMsg != "" && time.Now().Before(m.statusTimeout) {
		left += "  " + StatusStyle.Render(m.statusMsg)
	}
	right := MutedStyle.Render(stats)
	return left + strings.Repeat(" ", max(1, width-lipgloss.Width(left)-lipgloss.Width(right))) + right
}

// renderColumnTabs shows one tab per column and highlights the column
// holding the cursor.
func (m Model) renderColumnTabs() string {
	if len(m.columns) == 0 {
		return MutedStyle.Render("Columns: (none)")
	}

	active := 0
	if item, ok := m.selected(); ok && !item.InFocus() {
		active = item.Column
	}

	tabs := []string{MutedStyle.Render("Columns: ")}
	for _, col := range m.columns {
		label := fmt.Sprintf("%d (%d)", col.Number, len(col.Lists))
		if col.Number == active {
			tabs = append(tabs, TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}
	return strings.Join(tabs, "")
}

func (m Model) renderSearchBar(width int) string {
	bar := PromptStyle.Render(" / ") + m.searchQuery
	if m.isSearching {
		bar += "█"
	}
	if m.searchQuery == "" {
		return bar
	}
	count := MutedStyle.Render(fmt.Sprintf("%d matches", len(m.searchMatchIDs)))
	return bar + strings.Repeat(" ", max(1, width-lipgloss.Width(bar)-lipgloss.Width(count))) + count
}

func (m Model) renderTreePanel(width, height int) string {
	rows := max(1, height-1) // last line shows the data directory
	start, end := scrollWindow(m.cursor, len(m.visibleItems), rows)

	var lines []string
	if len(m.visibleItems) == 0 {
		lines = append(lines, MutedStyle.Render("No lists yet. Press 'A' to add one."))
	}

	inputShown := false
	for i := start; i < end; i++ {
		item := m.visibleItems[i]
		switch {
		case item.IsSectionHeader():
			lines = append(lines, m.renderSectionHeader(item, width))
		case m.isRenameMode && item.ID == m.renameTarget.ID:
			lines = append(lines, m.inputLine(item.Depth, "✎ "))
		default:
			lines = append(lines, m.renderTreeItem(item, i == m.cursor, width))
		}
		if m.isInputMode && i == m.inputInsertAfter {
			lines = append(lines, m.inputLine(m.inputDepth, "> "))
			inputShown = true
		}
	}
	if m.isInputMode && !inputShown {
		lines = append(lines, m.inputLine(m.inputDepth, "> "))
	}

	footer := ""
	if m.files != nil {
		footer = PathStyle.Render(fileHyperlink(m.files.Root))
	}
	return pinFooter(lines, rows, footer)
}

func (m Model) inputLine(depth int, prompt string) string {
	return strings.Repeat(DepthIndent, depth) + PromptStyle.Render(prompt) + m.textInput.View()
}

// scrollWindow returns the [start, end) range of n rows shown in height
// lines, keeping the cursor near the middle.
func scrollWindow(cursor, n, height int) (int, int) {
	if n <= height {
		return 0, n
	}
	start := min(max(0, cursor-height/2), n-height)
	return start, start + height
}

func (m Model) renderSectionHeader(item TreeItem, width int) string {
	style := ColumnSectionStyle
	if item.ID == FocusSectionID {
		style = FocusSectionStyle
	}

	label := style.Render("── " + item.Name + " ")
	if rest := width - lipgloss.Width(label); rest > 0 {
		label += RuleStyle.Render(strings.Repeat("─", rest))
	}
	return label
}

func (m Model) renderTreeItem(item TreeItem, isSelected bool, width int) string {
	indent := strings.Repeat(DepthIndent, item.Depth)

	isMoveTarget := m.isMoveMode && item.ID == m.moveTarget
	if isMoveTarget {
		indent += IconMove + " "
	}

	isMatch := m.searchQuery != "" && m.searchMatchIDs[item.ID]
	name := item.Name
	switch {
	case isMatch && isSelected:
		name = highlightMatch(name, m.searchQuery, MatchCursorStyle, CursorRowStyle)
	case isMatch:
		name = highlightMatch(name, m.searchQuery, MatchStyle, MatchRowStyle)
	case item.Kind == KindList:
		name = ListTitleStyle.Render(name)
	}

	var line string
	if item.Kind == KindList {
		expander := "  "
		if item.HasChildren && item.IsExpanded {
			expander = IconExpanded + " "
		} else if item.HasChildren {
			expander = IconCollapsed + " "
		}
		pct := board.ListProgress(m.listGoals(item.List.ID), item.List.ID)
		line = indent + expander + name + " " + MutedStyle.Render(fmt.Sprintf("%.0f%%", pct))
	} else {
		line = indent + goalStatusIcon(item.Goal) + " " + name + m.goalSuffix(item)
	}

	if pad := width - lipgloss.Width(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}

	switch {
	case isMoveTarget:
		return MoveRowStyle.Render(line)
	case isMatch && !isSelected:
		return MatchRowStyle.Render(line)
	case isSelected:
		return CursorRowStyle.Render(line)
	}
	return line
}

func goalStatusIcon(g *store.Goal) string {
	if g.IsComplete() {
		return DoneStyle.Render(IconComplete)
	}
	return OpenStyle.Render(IconIncomplete)
}

// goalSuffix renders the markers after a goal title: focus star, repeat,
// due date and, for focus rows, the owning list.
func (m Model) goalSuffix(item TreeItem) string {
	g := item.Goal
	var parts []string
	if g.IsFocused && !item.InFocus() {
		parts = append(parts, FocusSectionStyle.Render(IconFocus))
	}
	if g.RepeatFrequency != "" && g.RepeatFrequency != store.RepeatNone {
		parts = append(parts, MutedStyle.Render(IconRepeat))
	}
	if g.DueDate != nil {
		due := g.DueDate.Local().Format(time.DateOnly)
		if !g.IsComplete() && g.DueDate.Before(time.Now()) {
			parts = append(parts, OverdueStyle.Render(due))
		} else {
			parts = append(parts, MutedStyle.Render(due))
		}
	}
	if item.InFocus() {
		parts = append(parts, ListLabelStyle.Render(item.ListTitle))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func (m Model) renderNotesPanel(height int) string {
	item, ok := m.selected()
	if !ok {
		return MutedStyle.Render(" Select a list or goal")
	}

	var header, body, path string
	if item.Kind == KindList {
		header = m.renderListHeader(item)
		path = m.rowFile(store.TableGoalLists, item.List.ID)
	} else {
		header = m.renderGoalHeader(item)
		body = item.Goal.Description
		path = m.rowFile(store.TableGoals, item.Goal.ID)
	}
	footer := ""
	if path != "" {
		footer = PathStyle.Render(fileHyperlink(path))
	}

	var lines []string
	if m.isEditing {
		lines = splitLines(m.renderMarkdown(header))
		lines = append(lines, strings.Split(m.noteEditor.View(), "\n")...)
	} else {
		md := header
		if body != "" {
			md += strings.TrimRight(body, "\n") + "\n"
		}
		lines = splitLines(m.renderMarkdown(md))
		lines = lines[min(max(0, m.notesScroll), len(lines)-1):]
	}
	return pinFooter(lines, max(1, height-1), footer)
}

// renderMarkdown renders md with the cached glamour renderer, falling back
// to the raw text.
func (m Model) renderMarkdown(md string) string {
	if m.glamourRenderer == nil {
		return md
	}
	out, err := m.glamourRenderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// renderGoalHeader builds the markdown title and metadata line of a goal.
func (m Model) renderGoalHeader(item TreeItem) string {
	goal := item.Goal

	meta := []string{"**List:** " + item.ListTitle}
	if goal.IsComplete() {
		meta = append(meta, "**Done:** "+goal.CompletedAt.Local().Format(time.DateOnly))
	}
	if goal.IsFocused {
		meta = append(meta, "**Focused**")
	}
	if goal.DueDate != nil {
		meta = append(meta, "**Due:** "+goal.DueDate.Local().Format(time.DateOnly))
	}
	if goal.RepeatFrequency != "" && goal.RepeatFrequency != store.RepeatNone {
		meta = append(meta, "**Repeats:** "+string(goal.RepeatFrequency))
	}
	if !goal.CarryOver {
		meta = append(meta, "**No carry-over**")
	}
	return "# " + goal.Title + "\n\n" + strings.Join(meta, " | ") + "\n\n"
}

// renderListHeader summarises a list: its column, position and goals.
func (m Model) renderListHeader(item TreeItem) string {
	goals := m.listGoals(item.List.ID)
	done := 0
	for _, g := range goals {
		if g.IsComplete() {
			done++
		}
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", item.List.Title)
	fmt.Fprintf(&md, "**Column:** %d | **Position:** %d of %d\n\n", item.Column, item.Index+1, item.ScopeLen)
	fmt.Fprintf(&md, "%d of %d goals complete (%.0f%%)\n\n", done, len(goals), board.ListProgress(goals, item.List.ID))
	for _, g := range goals {
		mark := "[ ]"
		if g.IsComplete() {
			mark = "[x]"
		}
		fmt.Fprintf(&md, "- %s %s\n", mark, g.Title)
	}
	return md.String()
}

func (m Model) renderFooter() string {
	var help string
	switch {
	case m.isInputMode, m.isRenameMode:
		help = "enter confirm  esc cancel"
	case m.isEditing:
		help = "esc save & exit  ctrl+s save  ctrl+c cancel"
	case m.isSearching:
		help = "type to search  enter/↓ keep filter  esc clear"
	case m.searchQuery != "":
		help = "esc/enter clear filter  ↑↓ nav"
	case m.isMoveMode:
		help = "↑↓ reorder  ←→ change list/column  enter/esc exit move"
	case m.focusedPane == 1:
		help = "↑↓ scroll notes  tab board  e edit  E $EDITOR  ? help"
	default:
		help = m.keys.ShortHelp()
	}
	return MutedStyle.Render(help)
}

func (m Model) renderHelpModal() string {
	bindings := m.keys.FullHelp()
	half := (len(bindings) + 1) / 2
	column := func(rows [][]string) string {
		lines := make([]string, len(rows))
		for i, r := range rows {
			lines[i] = HelpKeyStyle.Render(r[0]) + HelpDescStyle.Render(r[1])
		}
		return strings.Join(lines, "\n")
	}

	return ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		ModalTitleStyle.Render("Keyboard Shortcuts"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, column(bindings[:half]), "    ", column(bindings[half:])),
		"",
		MutedStyle.Render("esc or ? to close"),
	))
}

func (m Model) renderDeleteModal() string {
	title, question := "Delete Goal", fmt.Sprintf("Delete '%s'?", m.deleteTarget.Name)
	if m.deleteTarget.Kind == KindList {
		title, question = "Delete List", fmt.Sprintf("Delete '%s' and all of its goals?", m.deleteTarget.Name)
	}

	return ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		ModalTitleStyle.Render(title),
		"",
		question,
		"",
		DoneStyle.Render("[y]")+" Yes  "+OverdueStyle.Render("[n]")+" No",
	))
}

// highlightMatch styles the first case-insensitive occurrence of query in
// name with hit and the rest with base.
func highlightMatch(name, query string, hit, base lipgloss.Style) string {
	lower := strings.ToLower(name)
	idx := strings.Index(lower, strings.ToLower(query))
	if idx < 0 || len(lower) != len(name) {
		return base.Render(name)
	}
	end := idx + len(query)

	var b strings.Builder
	for _, part := range []struct {
		text  string
		style lipgloss.Style
	}{{name[:idx], base}, {name[idx:end], hit}, {name[end:], base}} {
		if part.text != "" {
			b.WriteString(part.style.Render(part.text))
		}
	}
	return b.String()
}

// fileHyperlink wraps path in an OSC 8 escape so terminals make it clickable.
func fileHyperlink(path string) string {
	return "\x1b]8;;file://" + path + "\x1b\\" + path + "\x1b]8;;\x1b\\"
}

// counts returns the number of goals on the board and how many are done.
func (m Model) counts() (total, done int) {
	for _, col := range m.columns {
		for _, lv := range col.Lists {
			for _, g := range lv.Goals {
				total++
				if g.IsComplete() {
					done++
				}
			}
		}
	}
	return total, done
}

// listGoals returns the active goals of a list from the current board.
func (m Model) listGoals(listID string) []*store.Goal {
	for _, col := range m.columns {
		for _, lv := range col.Lists {
			if lv.List.ID == listID {
				return lv.Goals
			}
		}
	}
	return nil
}
