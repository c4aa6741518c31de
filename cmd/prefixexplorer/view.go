package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/joshuapare/ipamkit/internal/display"
	"github.com/joshuapare/ipamkit/pkg/nipap"
)

// View renders the entire UI
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.showHelp {
		return m.renderHelpOverlay()
	}

	// The overlay is rebuilt on each render so the background sees the
	// current model value.
	if m.notice != nil {
		n := *m.notice
		n.width = min(max(m.width/2, 30), 80)
		return overlay.New(&n, NewMainViewModel(&m), overlay.Center, overlay.Center, 0, 0).View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderContent(),
		m.renderStatus(),
	)
}

// paneWidth is the content width inside the pane border and padding.
func (m Model) paneWidth() int {
	return max(m.width-4, 20)
}

// renderHeader renders the title, the search box and the interpretation
// of the last query.
func (m Model) renderHeader() string {
	title := lipgloss.JoinHorizontal(
		lipgloss.Top,
		headerStyle.Render("NIPAP Prefix Explorer"),
		"  ",
		pathStyle.Render(m.cfg.Backend.URL),
	)
	return lipgloss.JoinVertical(lipgloss.Left, title, m.input.View(), m.renderInterpretation())
}

// renderInterpretation shows how the backend parsed the query string.
func (m Model) renderInterpretation() string {
	q, ok := m.ctrl.Meta().(*nipap.QueryPart)
	if !ok || q == nil {
		return ""
	}
	var parts []string
	for _, term := range q.Describe() {
		if term.Error {
			parts = append(parts, errorStyle.Render(term.Text))
			continue
		}
		parts = append(parts, contextStyle.Render(term.Text))
	}
	line := strings.Join(parts, contextStyle.Render(" | "))
	return lipgloss.NewStyle().MaxWidth(max(m.width, 20)).Render(line)
}

// renderContent renders the prefix pane
func (m Model) renderContent() string {
	width := m.paneWidth()
	height := m.listHeight()

	title := fmt.Sprintf("Prefixes (%d)", m.view.VisibleEntries())
	if m.ctrl.Pending() {
		title += " " + display.IconLoading
	}

	list := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Render(m.list.View())

	style := paneStyle
	if !m.inputMode {
		style = activePaneStyle
	}
	return style.
		Width(width + 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, list))
}

// renderStatus renders the status bar
func (m Model) renderStatus() string {
	if m.statusMessage != "" {
		return statusStyle.Render(m.statusMessage)
	}

	var help []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		help = append(help, helpStyle.Render(h.Key)+" "+h.Desc)
	}

	st := m.ctrl.Stats()
	counts := statusCountStyle.Render(fmt.Sprintf("%d prefixes", st.TotalNodes))
	if _, ok := m.ctrl.Current(); ok && !m.ctrl.EndOfResult() {
		counts += " " + contextStyle.Render("(more, press n)")
	}

	mode := "browse"
	if m.inputMode {
		mode = "search"
	}
	return statusStyle.Render(strings.Join(append(help, counts, mode), "  •  "))
}

// renderHelpOverlay lists every key binding.
func (m Model) renderHelpOverlay() string {
	var b strings.Builder
	b.WriteString(helpTitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []string{"Navigation", "Prefixes", "Commands"}
	for i, group := range m.keys.FullHelp() {
		b.WriteString(modalTitleStyle.Render(sections[i]))
		b.WriteString("\n")
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(helpKeyStyle.Render(h.Key))
			b.WriteString("  ")
			b.WriteString(helpDescStyle.Render(h.Desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(contextStyle.Render("Typing in the search box runs the query once input pauses."))
	b.WriteString("\n")
	b.WriteString(contextStyle.Render("Press ? or esc to close"))

	box := paneStyle.Padding(1, 2).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
