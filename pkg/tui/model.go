package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/stefanpenner/goalist/pkg/board"
	"github.com/stefanpenner/goalist/pkg/placement"
	"github.com/stefanpenner/goalist/pkg/store"
	gitsync "github.com/stefanpenner/goalist/pkg/sync"
	"github.com/stefanpenner/goalist/pkg/tracker"
)

// BoardChangedMsg is sent when the tracker's collections change, including
// optimistic moves and their rollbacks.
type BoardChangedMsg struct{}

// FileChangedMsg is sent when the file watcher detects changes.
type FileChangedMsg struct{}

// EditorFinishedMsg is sent when $EDITOR returns.
type EditorFinishedMsg struct {
	Err error
}

// opDoneMsg reports a finished tracker call.
type opDoneMsg struct {
	status string
	err    error
}

// Options configures a Model.
type Options struct {
	Log *slog.Logger
	// Files enables $EDITOR and file paths for the file backend.
	Files *store.FileStore
}

type inputKind int

const (
	inputGoal inputKind = iota
	inputList
)

// Model is the Bubble Tea model for the goal dashboard.
type Model struct {
	ctx          context.Context
	tracker      *tracker.Tracker
	files        *store.FileStore
	log          *slog.Logger
	keys         KeyMap
	width        int
	height       int
	columns      board.ColumnMap
	focus        []board.FocusItem
	visibleItems []TreeItem
	collapsed    map[string]bool
	cursor       int
	focusedPane  int // 0 = board, 1 = notes
	notesScroll  int

	// Modal state
	showHelpModal     bool
	showDeleteConfirm bool
	deleteTarget      TreeItem

	// Move mode
	isMoveMode bool
	moveTarget string // row id of the item being moved

	// Input mode (for adding goals and lists)
	isInputMode      bool
	textInput        textinput.Model
	inputKind        inputKind
	inputListID      string
	inputDepth       int
	inputInsertAfter int

	// Rename mode
	isRenameMode bool
	renameTarget TreeItem

	// Inline edit mode
	isEditing  bool
	noteEditor textarea.Model
	editGoalID string

	// Search state
	isSearching    bool
	searchQuery    string
	searchMatchIDs map[string]bool
	searchAncIDs   map[string]bool

	// Status message
	statusMsg     string
	statusTimeout time.Time

	// Cached glamour renderer (expensive to create)
	glamourRenderer *glamour.TermRenderer
	glamourWidth    int

	allCollapsed bool
}

// NewModel creates a new TUI model over a loaded tracker.
func NewModel(ctx context.Context, t *tracker.Tracker, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "title"
	ti.CharLimit = 120

	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return Model{
		ctx:       ctx,
		tracker:   t,
		files:     opts.Files,
		log:       log,
		keys:      DefaultKeyMap(),
		collapsed: make(map[string]bool),
		textInput: ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Pre-create glamour renderer at the right width
		m.getGlamourRenderer(max(20, msg.Width-(msg.Width/3)-1-2))
		if m.isEditing {
			m.noteEditor.SetWidth(max(20, msg.Width-(msg.Width/3)-1))
			m.noteEditor.SetHeight(max(3, msg.Height-5-4-1))
		}
		m.reload()
		return m, tea.ClearScreen

	case BoardChangedMsg:
		m.reload()
		return m, nil

	case FileChangedMsg:
		return m, m.refresh("")

	case EditorFinishedMsg:
		if msg.Err != nil {
			m.setStatus("Editor failed: " + msg.Err.Error())
		}
		return m, m.refresh("")

	case opDoneMsg:
		if msg.err != nil {
			m.log.Warn("dashboard operation failed", "err", msg.err)
		}
		if msg.status != "" {
			m.setStatus(msg.status)
		}
		m.reload()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.isInputMode {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	if m.isEditing {
		var cmd tea.Cmd
		m.noteEditor, cmd = m.noteEditor.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.isInputMode || m.isRenameMode {
		return m.handleTextInput(msg)
	}

	// Inline edit mode handling
	if m.isEditing {
		return m.handleEditMode(msg)
	}

	// Search input mode handling
	if m.isSearching {
		return m.handleSearchInput(msg)
	}

	// Help modal
	if m.showHelpModal {
		switch msg.String() {
		case "esc", "enter", "?", "q":
			m.showHelpModal = false
		}
		return m, nil
	}

	// Move mode handling
	if m.isMoveMode {
		return m.handleMoveMode(msg)
	}

	// Delete confirmation
	if m.showDeleteConfirm {
		switch msg.String() {
		case "y", "Y":
			m.showDeleteConfirm = false
			target := m.deleteTarget
			return m, m.run("Deleted: "+target.Name, func(ctx context.Context, t *tracker.Tracker) error {
				if target.Kind == KindList {
					return t.DeleteList(ctx, target.List.ID)
				}
				return t.DeleteGoal(ctx, target.Goal.ID)
			})
		case "n", "N", "esc":
			m.showDeleteConfirm = false
		}
		return m, nil
	}

	// If search filter is active (not typing), Esc/Enter clears it
	if m.searchQuery != "" && (msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter) {
		m.setSearch("")
		return m, nil
	}

	// Normal mode
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.focusedPane == 1 {
			if m.notesScroll > 0 {
				m.notesScroll--
			}
		} else {
			m.step(-1)
			m.notesScroll = 0
		}

	case key.Matches(msg, m.keys.Down):
		if m.focusedPane == 1 {
			m.notesScroll++
		} else {
			m.step(1)
			m.notesScroll = 0
		}

	case key.Matches(msg, m.keys.Right):
		if item, ok := m.selected(); ok && item.Kind == KindList && !item.IsExpanded {
			delete(m.collapsed, item.ID)
			m.rebuildVisible()
			m.moveCursorTo(item.ID)
		}

	case key.Matches(msg, m.keys.Left):
		if item, ok := m.selected(); ok {
			switch {
			case item.Kind == KindList && item.IsExpanded:
				m.collapsed[item.ID] = true
				m.rebuildVisible()
				m.moveCursorTo(item.ID)
			case item.Kind == KindGoal && !item.InFocus():
				m.moveCursorTo(item.ParentID)
			}
		}

	case key.Matches(msg, m.keys.Enter):
		if item, ok := m.selected(); ok && item.Kind == KindList {
			m.collapsed[item.ID] = !m.collapsed[item.ID]
			m.rebuildVisible()
			m.moveCursorTo(item.ID)
		}

	case key.Matches(msg, m.keys.Space):
		if item, ok := m.selectedGoal(); ok {
			id, name := item.Goal.ID, item.Name
			return m, func() tea.Msg {
				done, err := m.tracker.ToggleComplete(m.ctx, id)
				if err != nil {
					return opDoneMsg{status: "Error: " + err.Error(), err: err}
				}
				if done {
					return opDoneMsg{status: "Completed: " + name}
				}
				return opDoneMsg{status: "Reopened: " + name}
			}
		}

	case key.Matches(msg, m.keys.Focus):
		if item, ok := m.selectedGoal(); ok {
			id, focused := item.Goal.ID, !item.Goal.IsFocused
			status := "Focused: " + item.Name
			if !focused {
				status = "Unfocused: " + item.Name
			}
			return m, m.run(status, func(ctx context.Context, t *tracker.Tracker) error {
				return t.SetFocused(ctx, id, focused)
			})
		}

	case key.Matches(msg, m.keys.Archive):
		if item, ok := m.selectedGoal(); ok {
			id := item.Goal.ID
			return m, m.run("Archived: "+item.Name, func(ctx context.Context, t *tracker.Tracker) error {
				return t.Archive(ctx, id)
			})
		}

	case key.Matches(msg, m.keys.ArchiveStale):
		return m, func() tea.Msg {
			n, err := m.tracker.ArchiveStale(m.ctx)
			if err != nil {
				return opDoneMsg{status: "Error: " + err.Error(), err: err}
			}
			return opDoneMsg{status: fmt.Sprintf("Archived %d completed goal(s)", n)}
		}

	case key.Matches(msg, m.keys.Tab):
		m.focusedPane = (m.focusedPane + 1) % 2

	case key.Matches(msg, m.keys.NextColumn):
		m.jumpSection(1)

	case key.Matches(msg, m.keys.PrevColumn):
		m.jumpSection(-1)

	case key.Matches(msg, m.keys.InlineEdit):
		if item, ok := m.selectedGoal(); ok {
			m.enterEditMode(item.Goal)
			return m, textarea.Blink
		}

	case key.Matches(msg, m.keys.ExternalEdit):
		if item, ok := m.selectedGoal(); ok {
			if m.files == nil {
				m.setStatus("$EDITOR needs the file backend")
				break
			}
			return m, m.openEditor(item.Goal)
		}

	case key.Matches(msg, m.keys.AddList):
		m.startInput(inputList, "", 0, len(m.visibleItems)-1, "new list title")
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Add):
		listID := m.targetListID()
		if listID == "" {
			m.setStatus("Add a list first (A)")
			break
		}
		if m.collapsed[listID] {
			delete(m.collapsed, listID)
			m.rebuildVisible()
		}
		insertAfter := len(m.visibleItems) - 1
		for i, item := range m.visibleItems {
			if item.ID == listID || (item.Kind == KindGoal && !item.InFocus() && item.Goal.GoalListID == listID) {
				insertAfter = i
			}
		}
		title := ""
		if l, err := m.tracker.List(listID); err == nil {
			title = l.Title
		}
		m.startInput(inputGoal, listID, 1, insertAfter, "goal title in "+title)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Rename):
		if item, ok := m.selected(); ok {
			m.isRenameMode = true
			m.renameTarget = item
			m.textInput.Reset()
			m.textInput.SetValue(item.Name)
			m.textInput.Focus()
			m.textInput.Placeholder = "new title"
			return m, textinput.Blink
		}

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.selected(); ok {
			m.deleteTarget = item
			m.showDeleteConfirm = true
		}

	case key.Matches(msg, m.keys.ToggleExpand):
		if m.allCollapsed {
			m.collapsed = make(map[string]bool)
		} else {
			for _, lv := range listOrder(m.columns) {
				m.collapsed[lv.List.ID] = true
			}
		}
		m.allCollapsed = !m.allCollapsed
		curID := m.currentID()
		m.rebuildVisible()
		m.moveCursorTo(curID)

	case key.Matches(msg, m.keys.Reload):
		return m, m.refresh("Reloaded")

	case key.Matches(msg, m.keys.Sync):
		if m.files == nil {
			m.setStatus("Sync needs the file backend")
			break
		}
		m.setStatus("Syncing...")
		dir := m.files.Root
		return m, m.run("Synced", func(ctx context.Context, t *tracker.Tracker) error {
			if err := gitsync.SyncRepo(ctx, dir, io.Discard); err != nil {
				return err
			}
			return t.Refresh(ctx)
		})

	case key.Matches(msg, m.keys.Move):
		if item, ok := m.selected(); ok {
			m.isMoveMode = true
			m.moveTarget = item.ID
			switch {
			case item.InFocus():
				m.setStatus("Move mode: j/k reorder focus, enter/esc exit")
			case item.Kind == KindList:
				m.setStatus("Move mode: j/k reorder, h/l change column, enter/esc exit")
			default:
				m.setStatus("Move mode: j/k reorder (crosses lists at the ends), h/l change list, enter/esc exit")
			}
		}

	case key.Matches(msg, m.keys.Search):
		m.isSearching = true
		m.setSearch("")

	case key.Matches(msg, m.keys.Help):
		m.showHelpModal = !m.showHelpModal
	}

	return m, nil
}

// handleTextInput drives the one-line prompt used to add and rename.
func (m Model) handleTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.isInputMode, m.isRenameMode = false, false
		return m, nil
	case tea.KeyEnter:
	default:
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	title := strings.TrimSpace(m.textInput.Value())
	renaming := m.isRenameMode
	m.isInputMode, m.isRenameMode = false, false
	if title == "" {
		return m, nil
	}

	switch {
	case renaming:
		target := m.renameTarget
		if title == target.Name {
			return m, nil
		}
		return m, m.run("Renamed to: "+title, func(ctx context.Context, t *tracker.Tracker) error {
			if target.Kind == KindList {
				return t.RenameList(ctx, target.List.ID, title)
			}
			return t.UpdateGoal(ctx, target.Goal.ID, store.GoalPatch{Title: &title})
		})
	case m.inputKind == inputList:
		return m, m.run("Added list: "+title, func(ctx context.Context, t *tracker.Tracker) error {
			_, err := t.AddList(ctx, title)
			return err
		})
	}
	listID := m.inputListID
	return m, m.run("Added: "+title, func(ctx context.Context, t *tracker.Tracker) error {
		_, err := t.AddGoal(ctx, listID, title)
		return err
	})
}

func (m *Model) startInput(kind inputKind, listID string, depth, insertAfter int, placeholder string) {
	m.isInputMode = true
	m.inputKind = kind
	m.inputListID = listID
	m.inputDepth = depth
	m.inputInsertAfter = insertAfter
	m.textInput.Reset()
	m.textInput.Placeholder = placeholder
	m.textInput.Focus()
}

// handleEditMode handles key messages while inline editing.
func (m Model) handleEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		// Save and exit
		m.isEditing = false
		m.noteEditor.Blur()
		return m, m.saveInlineEdit()

	case msg.Type == tea.KeyCtrlS:
		// Save but stay in edit mode
		return m, m.saveInlineEdit()

	case msg.Type == tea.KeyCtrlC:
		// Cancel without saving
		m.isEditing = false
		m.noteEditor.Blur()
		m.setStatus("Edit cancelled")
		return m, nil

	default:
		var cmd tea.Cmd
		m.noteEditor, cmd = m.noteEditor.Update(msg)
		return m, cmd
	}
}

// handleSearchInput handles key messages while typing in the search bar.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.isSearching = false
		m.setSearch("")
	case tea.KeyEnter, tea.KeyDown, tea.KeyTab:
		// Keep the filter, leave the search bar
		m.isSearching = false
	case tea.KeyBackspace:
		_, size := utf8.DecodeLastRuneInString(m.searchQuery)
		m.setSearch(m.searchQuery[:len(m.searchQuery)-size])
	case tea.KeySpace:
		m.setSearch(m.searchQuery + " ")
	case tea.KeyRunes:
		m.setSearch(m.searchQuery + string(msg.Runes))
	}
	return m, nil
}

// setSearch changes the search query and rebuilds the rows, keeping the
// cursor on the same row when it is still visible.
func (m *Model) setSearch(query string) {
	curID := m.currentID()
	m.searchQuery = query
	m.applySearchFilter()
	m.rebuildVisible()
	m.moveCursorTo(curID)
}

// enterEditMode sets up the textarea for inline editing of a goal's
// description.
func (m *Model) enterEditMode(goal *store.Goal) {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.SetValue(goal.Description)

	// Size the editor to the right panel, leaving room for the header
	rightWidth := max(20, m.width-(m.width/3)-1)
	contentHeight := m.height - 5
	editorHeight := max(3, contentHeight-4-1)
	ta.SetWidth(rightWidth)
	ta.SetHeight(editorHeight)
	ta.Focus()

	m.isEditing = true
	m.noteEditor = ta
	m.editGoalID = goal.ID
	m.focusedPane = 1
}

// saveInlineEdit writes the textarea content to the goal's description.
func (m *Model) saveInlineEdit() tea.Cmd {
	id, body := m.editGoalID, m.noteEditor.Value()
	return m.run("Saved", func(ctx context.Context, t *tracker.Tracker) error {
		g, err := t.Goal(id)
		if err != nil {
			return err
		}
		if g.Description == body {
			return nil
		}
		return t.UpdateGoal(ctx, id, store.GoalPatch{Description: &body})
	})
}

// applySearchFilter computes searchMatchIDs and searchAncIDs based on
// searchQuery, expanding lists that hold matches.
func (m *Model) applySearchFilter() {
	if m.searchQuery == "" {
		m.searchMatchIDs = nil
		m.searchAncIDs = nil
		return
	}

	query := strings.ToLower(m.searchQuery)
	m.searchMatchIDs = make(map[string]bool)
	m.searchAncIDs = make(map[string]bool)

	// Walk every row, including goals of collapsed lists
	allItems := FlattenBoard(m.focus, m.columns, nil)
	parents := make(map[string]string, len(allItems))
	for _, item := range allItems {
		parents[item.ID] = item.ParentID
	}

	for _, item := range allItems {
		if item.IsSectionHeader() {
			continue
		}
		if strings.Contains(strings.ToLower(item.Name), query) {
			m.searchMatchIDs[item.ID] = true
			for p := item.ParentID; p != "" && !m.searchAncIDs[p]; p = parents[p] {
				m.searchAncIDs[p] = true
				delete(m.collapsed, p)
			}
		}
	}
}

func (m Model) handleMoveMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.isMoveMode = false
		m.moveTarget = ""
		m.setStatus("Move cancelled")

	case msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter:
		m.isMoveMode = false
		m.moveTarget = ""
		m.setStatus("Move complete")

	case key.Matches(msg, m.keys.Down):
		cmd = m.moveCmd(1, 0)

	case key.Matches(msg, m.keys.Up):
		cmd = m.moveCmd(-1, 0)

	case key.Matches(msg, m.keys.Left):
		cmd = m.moveCmd(0, -1)

	case key.Matches(msg, m.keys.Right):
		cmd = m.moveCmd(0, 1)
	}

	return m, cmd
}

// moveCmd plans a one-step move of the move target: dy reorders within its
// scope, dx changes list (goals) or column (lists). A goal pushed past
// either end of its list continues into the neighbouring list.
func (m *Model) moveCmd(dy, dx int) tea.Cmd {
	item, ok := m.itemByID(m.moveTarget)
	if !ok {
		m.isMoveMode = false
		return nil
	}

	switch {
	case item.InFocus():
		to := item.Index + dy
		if dx != 0 || to < 0 || to >= item.ScopeLen {
			return nil
		}
		return m.apply(placement.Move{Kind: placement.KindReorderFocus, ItemID: item.Goal.ID, Index: to})

	case item.Kind == KindList:
		if dx != 0 {
			to := item.Column + dx
			if to < 1 || to > len(m.columns) {
				return nil
			}
			return m.apply(placement.Move{Kind: placement.KindMoveList, ItemID: item.List.ID, ToColumn: to, Index: item.Index})
		}
		to := item.Index + dy
		if to < 0 || to >= item.ScopeLen {
			return nil
		}
		return m.apply(placement.Move{Kind: placement.KindMoveList, ItemID: item.List.ID, ToColumn: item.Column, Index: to})

	case item.Kind == KindGoal:
		if dx == 0 {
			to := item.Index + dy
			if to >= 0 && to < item.ScopeLen {
				return m.apply(placement.Move{Kind: placement.KindReorderGoal, ItemID: item.Goal.ID, Index: to})
			}
		}
		step := dy
		if dx != 0 {
			step = dx
		}
		lists := listOrder(m.columns)
		cur := -1
		for i, lv := range lists {
			if lv.List.ID == item.Goal.GoalListID {
				cur = i
				break
			}
		}
		next := cur + step
		if cur < 0 || next < 0 || next >= len(lists) {
			return nil
		}
		dest := lists[next]
		index := len(dest.Goals)
		if step > 0 {
			index = 0
		}
		delete(m.collapsed, dest.List.ID)
		return m.apply(placement.Move{Kind: placement.KindMoveGoal, ItemID: item.Goal.ID, ToListID: dest.List.ID, Index: index})
	}
	return nil
}

// apply runs a move through the tracker. The optimistic change and any
// rollback arrive as BoardChangedMsg.
func (m Model) apply(mv placement.Move) tea.Cmd {
	ctx, t := m.ctx, m.tracker
	return func() tea.Msg {
		res := t.Apply(ctx, mv)
		if err := res.Err(); err != nil {
			return opDoneMsg{status: "Move failed: " + err.Error(), err: err}
		}
		return opDoneMsg{}
	}
}

// run calls fn on a tracker goroutine and reports the outcome.
func (m Model) run(ok string, fn func(context.Context, *tracker.Tracker) error) tea.Cmd {
	ctx, t := m.ctx, m.tracker
	return func() tea.Msg {
		if err := fn(ctx, t); err != nil {
			return opDoneMsg{status: "Error: " + err.Error(), err: err}
		}
		return opDoneMsg{status: ok}
	}
}

// refresh reloads the tracker from the record store.
func (m Model) refresh(ok string) tea.Cmd {
	return m.run(ok, func(ctx context.Context, t *tracker.Tracker) error {
		return t.Refresh(ctx)
	})
}

// step moves the cursor by delta, skipping section headers.
func (m *Model) step(delta int) {
	for i := m.cursor + delta; i >= 0 && i < len(m.visibleItems); i += delta {
		if !m.visibleItems[i].IsSectionHeader() {
			m.cursor = i
			return
		}
	}
}

// jumpSection moves the cursor to the first row of the next or previous
// section.
func (m *Model) jumpSection(delta int) {
	var starts []int
	for i, item := range m.visibleItems {
		if item.IsSectionHeader() && i+1 < len(m.visibleItems) && !m.visibleItems[i+1].IsSectionHeader() {
			starts = append(starts, i+1)
		}
	}
	if len(starts) == 0 {
		return
	}
	cur := 0
	for i, s := range starts {
		if s <= m.cursor {
			cur = i
		}
	}
	next := (cur + delta + len(starts)) % len(starts)
	m.cursor = starts[next]
	m.notesScroll = 0
}

func (m Model) selected() (TreeItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visibleItems) {
		return TreeItem{}, false
	}
	item := m.visibleItems[m.cursor]
	return item, !item.IsSectionHeader()
}

func (m Model) selectedGoal() (TreeItem, bool) {
	item, ok := m.selected()
	return item, ok && item.Kind == KindGoal
}

func (m Model) currentID() string {
	if m.cursor >= 0 && m.cursor < len(m.visibleItems) {
		return m.visibleItems[m.cursor].ID
	}
	return ""
}

// targetListID is the list a new goal goes into: the selected list, the
// selected goal's list, or the first list on the board.
func (m Model) targetListID() string {
	if item, ok := m.selected(); ok {
		if item.Kind == KindList {
			return item.List.ID
		}
		return item.Goal.GoalListID
	}
	if lists := listOrder(m.columns); len(lists) > 0 {
		return lists[0].List.ID
	}
	return ""
}

func (m Model) itemByID(id string) (TreeItem, bool) {
	for _, item := range m.visibleItems {
		if item.ID == id {
			return item, true
		}
	}
	return TreeItem{}, false
}

// moveCursorTo positions the cursor on the row with the given id.
func (m *Model) moveCursorTo(id string) {
	for i, item := range m.visibleItems {
		if item.ID == id {
			m.cursor = i
			return
		}
	}
}

// reload rebuilds the rows from the tracker, keeping the cursor on the same
// row when it still exists.
func (m *Model) reload() {
	curID := m.currentID()
	if m.isMoveMode {
		curID = m.moveTarget
	}

	m.columns = m.tracker.Board()
	m.focus = m.tracker.Focus()
	if m.searchQuery != "" {
		m.applySearchFilter()
	}
	m.rebuildVisible()
	if curID != "" {
		m.moveCursorTo(curID)
	}
	if m.isMoveMode {
		if _, ok := m.itemByID(m.moveTarget); !ok {
			m.isMoveMode = false
			m.moveTarget = ""
		}
	}
}

func (m *Model) rebuildVisible() {
	m.visibleItems = FlattenBoard(m.focus, m.columns, m.collapsed)

	// Apply search filter if active
	if m.searchQuery != "" && (m.searchMatchIDs != nil || m.searchAncIDs != nil) {
		m.visibleItems = FilterVisibleItems(m.visibleItems, m.searchMatchIDs, m.searchAncIDs)
	}

	// Clamp cursor
	if m.cursor >= len(m.visibleItems) {
		m.cursor = len(m.visibleItems) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	// Skip section headers
	if m.cursor < len(m.visibleItems) && m.visibleItems[m.cursor].IsSectionHeader() {
		for i := m.cursor; i < len(m.visibleItems); i++ {
			if !m.visibleItems[i].IsSectionHeader() {
				m.cursor = i
				return
			}
		}
	}
}

// getGlamourRenderer returns a cached glamour renderer, creating one if needed
// or if the width changed.
func (m *Model) getGlamourRenderer(width int) *glamour.TermRenderer {
	if m.glamourRenderer != nil && m.glamourWidth == width {
		return m.glamourRenderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	m.glamourRenderer = r
	m.glamourWidth = width
	return r
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusTimeout = time.Now().Add(3 * time.Second)
}

// rowFile returns the file holding a row, or "" without the file backend.
func (m Model) rowFile(table, id string) string {
	if m.files == nil {
		return ""
	}
	return filepath.Join(m.files.TableDir(table), id+".md")
}

func (m Model) openEditor(g *store.Goal) tea.Cmd {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}

	c := exec.Command(editor, m.rowFile(store.TableGoals, g.ID))
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return EditorFinishedMsg{Err: err}
	})
}
