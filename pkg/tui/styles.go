package tui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	ColorAccent   = lipgloss.Color("#5FAFD7")
	ColorFocus    = lipgloss.Color("#E5B567")
	ColorDone     = lipgloss.Color("#87AF5F")
	ColorDanger   = lipgloss.Color("#D75F5F")
	ColorMuted    = lipgloss.Color("#6C6C6C")
	ColorFaint    = lipgloss.Color("#3A3A3A")
	ColorText     = lipgloss.Color("#E4E4E4")
	ColorSoftText = lipgloss.Color("#BCBCBC")
	ColorLabel    = lipgloss.Color("#AF87D7")
	ColorCursorBg = lipgloss.Color("#263445")
	ColorMoveFg   = lipgloss.Color("#FFAF5F")
	ColorMoveBg   = lipgloss.Color("#402A14")
	ColorMatchBg  = lipgloss.Color("#22203A")
	ColorMatchHi  = lipgloss.Color("#34305A")
)

// Chrome
var (
	TitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	StatusStyle = lipgloss.NewStyle().Foreground(ColorFocus)
	RuleStyle   = lipgloss.NewStyle().Foreground(ColorFaint)
	PathStyle   = lipgloss.NewStyle().Foreground(ColorFaint)

	DividerStyle       = lipgloss.NewStyle().Foreground(ColorFaint)
	DividerActiveStyle = lipgloss.NewStyle().Foreground(ColorAccent)

	TabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorAccent).
			Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)
)

// Board rows
var (
	FocusSectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorFocus)
	ColumnSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	ListTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(ColorSoftText)
	DoneStyle          = lipgloss.NewStyle().Foreground(ColorDone)
	OpenStyle          = lipgloss.NewStyle().Foreground(ColorSoftText)
	OverdueStyle       = lipgloss.NewStyle().Foreground(ColorDanger)
	ListLabelStyle     = lipgloss.NewStyle().Foreground(ColorLabel)

	CursorRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorCursorBg)

	MoveRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMoveFg).
			Background(ColorMoveBg)

	DepthIndent = "  "
)

// Search
var (
	MatchRowStyle = lipgloss.NewStyle().Background(ColorMatchBg)

	MatchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Background(ColorMatchHi)

	MatchCursorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorAccent).
				Background(ColorCursorBg)
)

// Modals and prompts
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2)

	ModalTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	HelpKeyStyle    = lipgloss.NewStyle().Foreground(ColorFocus).Width(8)
	HelpDescStyle   = lipgloss.NewStyle().Foreground(ColorText)
	PromptStyle     = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

// Icons
const (
	IconComplete   = "✓"
	IconIncomplete = "○"
	IconFocus      = "★"
	IconRepeat     = "↻"
	IconExpanded   = "▼"
	IconCollapsed  = "▶"
	IconMove       = "↕"
)
