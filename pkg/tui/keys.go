package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the dashboard bindings. Their help text feeds the help modal.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding
	Right        key.Binding
	Enter        key.Binding
	Space        key.Binding
	Tab          key.Binding
	NextColumn   key.Binding
	PrevColumn   key.Binding
	InlineEdit   key.Binding
	ExternalEdit key.Binding
	Add          key.Binding
	AddList      key.Binding
	Delete       key.Binding
	Rename       key.Binding
	Focus        key.Binding
	Archive      key.Binding
	ArchiveStale key.Binding
	ToggleExpand key.Binding
	Reload       key.Binding
	Sync         key.Binding
	Help         key.Binding
	Move         key.Binding
	Search       key.Binding
	Quit         key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:           bind("k ↑", "Cursor up (move mode: item up)", "k", "up"),
		Down:         bind("j ↓", "Cursor down (move mode: item down)", "j", "down"),
		Left:         bind("h ←", "Fold list, or jump to its list", "h", "left"),
		Right:        bind("l →", "Unfold list", "l", "right"),
		Enter:        bind("enter", "Fold or unfold list", "enter"),
		Space:        bind("space", "Mark goal done or open", " ", "space"),
		Focus:        bind("f", "Add to or drop from focus", "f"),
		Tab:          bind("tab", "Board or notes pane", "tab"),
		NextColumn:   bind("]", "Next section", "]"),
		PrevColumn:   bind("[", "Previous section", "["),
		InlineEdit:   bind("e", "Write goal notes here", "e"),
		ExternalEdit: bind("E", "Open goal file in $EDITOR", "E"),
		Search:       bind("/", "Filter by title", "/"),
		Add:          bind("a", "New goal under cursor", "a"),
		AddList:      bind("A", "New list", "A"),
		Rename:       bind("r", "Retitle list or goal", "r"),
		Delete:       bind("d", "Delete, asks first", "d"),
		Archive:      bind("x", "Archive goal", "x"),
		ArchiveStale: bind("X", "Archive goals done before the cutoff", "X"),
		ToggleExpand: bind("C", "Fold or unfold every list", "C"),
		Move:         bind("m", "Move mode: j/k order, h/l list or column", "m"),
		Reload:       bind("R", "Refetch every record", "R"),
		Sync:         bind("S", "Git sync the data dir (file backend)", "S"),
		Help:         bind("?", "This help", "?"),
		Quit:         bind("q", "Quit", "q", "ctrl+c"),
	}
}

// ShortHelp is the footer line in normal mode.
func (k KeyMap) ShortHelp() string {
	return "j/k nav  space done  f focus  a/A add  r rename  m move  e notes  / filter  ? help  q quit"
}

// FullHelp lists key and description pairs in help-modal order.
func (k KeyMap) FullHelp() [][]string {
	order := []key.Binding{
		k.Up, k.Down, k.Left, k.Right, k.Enter, k.Space, k.Focus, k.Tab,
		k.NextColumn, k.PrevColumn, k.InlineEdit, k.ExternalEdit, k.Search,
		k.Add, k.AddList, k.Rename, k.Delete, k.Archive, k.ArchiveStale,
		k.ToggleExpand, k.Move, k.Reload, k.Sync, k.Help, k.Quit,
	}
	rows := make([][]string, 0, len(order))
	for _, b := range order {
		h := b.Help()
		rows = append(rows, []string{h.Key, h.Desc})
	}
	return rows
}
