package display

import "github.com/charmbracelet/lipgloss"

// RowProps contains pre-computed display data for one line of the prefix
// list. Rendering functions make no decisions about what to show.
type RowProps struct {
	Label  string // prefix, group title or marker text
	Icon   string // "▼" expanded, "▶" collapsed, "…" loading, "•" leaf
	Badge  string // one-letter type badge, e.g. "[A]"
	Detail string // description or group detail
	Right  string // right-aligned column, e.g. node name
	Depth  int    // indentation depth

	BadgeStyle lipgloss.Style
	ItemStyle  lipgloss.Style
	IsSelected bool
}
