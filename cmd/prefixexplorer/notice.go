package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// notice is a modal error message raised by the controller.
type notice struct {
	title   string
	message string
	width   int
}

func (n *notice) Init() tea.Cmd { return nil }

// Update is a no-op; the parent model dismisses the notice.
func (n *notice) Update(tea.Msg) (tea.Model, tea.Cmd) { return n, nil }

func (n *notice) View() string {
	width := n.width
	if width <= 0 {
		width = 60
	}
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render(n.title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(width).Render(n.message))
	b.WriteString("\n\n")
	b.WriteString(contextStyle.Render("Press enter or esc to dismiss"))
	return modalStyle.Render(b.String())
}
