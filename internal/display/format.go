// Package display formats prefix list rows for the terminal. It is shared
// by ipamctl and prefixexplorer.
package display

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joshuapare/ipamkit/pkg/preftree"
)

// Tree icons.
const (
	IconExpanded  = "▼"
	IconCollapsed = "▶"
	IconLoading   = "…"
	IconLeaf      = "•"
)

// TypeName renders a prefix type as a label, "assignment" -> "Assignment".
func TypeName(t string) string {
	if t == "" {
		return ""
	}
	// Casers carry state, so each call gets its own.
	return cases.Title(language.English).String(t)
}

// TypeBadge renders the one-letter type badge, "assignment" -> "[A]".
func TypeBadge(t string) string {
	name := TypeName(t)
	if name == "" {
		return "[ ]"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return "[" + string(r) + "]"
}

// Indent returns the leading whitespace for a nesting level.
func Indent(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat("  ", level)
}

// HiddenMarker is the placeholder text for a collapsed run of non-matching
// prefixes.
func HiddenMarker(count int) string {
	noun := "prefixes"
	if count == 1 {
		noun = "prefix"
	}
	return fmt.Sprintf("(%d hidden %s, press enter to display)", count, noun)
}

// GroupTitle returns the panel header, falling back to the VRF id while
// its metadata is loading.
func GroupTitle(info preftree.GroupInfo) string {
	if info.Title != "" {
		return info.Title
	}
	return fmt.Sprintf("VRF %d", info.Key)
}

// EntryIcon picks the disclosure icon for a node.
func EntryIcon(n *preftree.Node, state preftree.ExpandState) string {
	switch {
	case state == preftree.FetchPending:
		return IconLoading
	case state == preftree.Expanded:
		return IconExpanded
	case n != nil && n.HasChildren():
		return IconCollapsed
	default:
		return IconLeaf
	}
}
