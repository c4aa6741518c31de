package display

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	mutedColor    = lipgloss.Color("#666666")
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#7D56F4")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)
)

// RenderRow formats props into a single line of the given width, with the
// Right column right-justified. Long labels are truncated with "...".
func RenderRow(p RowProps, width int) string {
	indent := Indent(p.Depth)

	// Format: indent + icon + space + badge + space + label + [2 + detail] + padding + right
	fixed := lipgloss.Width(indent)
	if p.Icon != "" {
		fixed += lipgloss.Width(p.Icon) + 1
	}
	if p.Badge != "" {
		fixed += lipgloss.Width(p.Badge) + 1
	}
	rightWidth := lipgloss.Width(p.Right)
	minPadding := 2

	label := truncate(p.Label, width-fixed-rightWidth-minPadding)
	used := fixed + lipgloss.Width(label)

	detail := ""
	if p.Detail != "" {
		if room := width - used - rightWidth - minPadding - 2; room > 0 {
			detail = truncate(p.Detail, room)
			used += 2 + lipgloss.Width(detail)
		}
	}

	padding := width - used - rightWidth
	if padding < 1 {
		padding = 1
	}

	var parts []string
	parts = append(parts, indent)
	if p.Icon != "" {
		parts = append(parts, p.Icon+" ")
	}
	if p.Badge != "" {
		parts = append(parts, p.BadgeStyle.Render(p.Badge)+" ")
	}
	parts = append(parts, label)
	if detail != "" {
		parts = append(parts, "  "+p.ItemStyle.Foreground(mutedColor).Render(detail))
	}
	parts = append(parts, strings.Repeat(" ", padding))
	if p.Right != "" {
		parts = append(parts, p.ItemStyle.Foreground(mutedColor).Italic(true).Render(p.Right))
	}

	line := strings.Join(parts, "")
	if p.IsSelected {
		return selectedStyle.Render(line)
	}
	return p.ItemStyle.Render(line)
}

func truncate(s string, room int) string {
	r := []rune(s)
	switch {
	case len(r) <= room:
		return s
	case room > 3:
		return string(r[:room-3]) + "..."
	case room > 0:
		return string(r[:room])
	default:
		return ""
	}
}
