package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/ipamkit/internal/logger"
	"github.com/joshuapare/ipamkit/pkg/preftree"
	"github.com/joshuapare/ipamkit/pkg/preftree/memview"
)

const statusDuration = 2 * time.Second

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-len(m.input.Prompt)-4, 10)
		m.list.SetSize(m.paneWidth(), m.listHeight())
		return m, m.fillPage()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case searchTriggerMsg:
		// The input may have changed again since the debouncer fired.
		if msg.query != m.input.Value() {
			return m, nil
		}
		return m, m.search(false)

	case queryResultMsg:
		return m.handleResult(msg)

	case groupLoadedMsg:
		if msg.err != nil {
			logger.Warn("VRF lookup failed", "vrf", msg.key, "error", msg.err)
			return m, nil
		}
		m.ctrl.SetGroupInfo(*msg.info)
		m.refresh()
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			logger.Warn("clipboard write failed", "error", msg.err)
			m.statusMessage = "Failed to copy prefix"
		} else {
			m.statusMessage = fmt.Sprintf("✓ Copied: %s", msg.text)
		}
		return m, clearStatusAfter(statusDuration)

	case clearStatusMsg:
		m.statusMessage = ""
		return m, nil
	}

	// Cursor blink and other textinput messages
	if m.inputMode {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Close()
		return m, tea.Quit
	}

	if m.notice != nil {
		switch msg.String() {
		case "enter", "esc":
			m.notice = m.bridge.takeNotice()
		}
		return m, nil
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Esc, m.keys.Help, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.inputMode {
		return m.handleInputKey(msg)
	}
	return m.handleListKey(msg)
}

// handleInputKey edits the search box. Typing schedules a debounced
// search; enter runs it at once.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "tab", "down":
		m.inputMode = false
		m.input.Blur()
		return m, nil

	case "enter":
		var cmd tea.Cmd
		m.debouncer.Flush(func() {
			cmd = m.search(true)
		})
		m.inputMode = false
		m.input.Blur()
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		b := m.bridge
		m.debouncer.Schedule(func() {
			b.post(searchTriggerMsg{query: value})
		})
	}
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.inputMode = true
		cmd := m.input.Focus()
		return m, tea.Batch(cmd, textinput.Blink)

	case key.Matches(msg, m.keys.Esc):
		m.debouncer.Cancel()
		m.input.SetValue("")
		m.ctrl.Clear()
		m.refresh()
		m.list.SetCursor(0)
		m.statusMessage = "Search cleared"
		return m, clearStatusAfter(statusDuration)

	case key.Matches(msg, m.keys.TopLevel):
		m.debouncer.Cancel()
		m.input.SetValue("")
		return m, m.search(true)

	case key.Matches(msg, m.keys.Refresh):
		m.debouncer.Cancel()
		return m, m.search(true)

	case key.Matches(msg, m.keys.NextPage):
		return m, m.runQuery(m.ctrl.NextPage())

	case key.Matches(msg, m.keys.Up):
		m.list.Move(-1)
	case key.Matches(msg, m.keys.Down):
		if m.list.AtEnd() {
			return m, m.runQuery(m.ctrl.NextPage())
		}
		m.list.Move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.list.Move(-m.listHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.list.Move(m.listHeight())
		if m.list.AtEnd() {
			return m, m.runQuery(m.ctrl.NextPage())
		}
	case key.Matches(msg, m.keys.Home):
		m.list.SetCursor(0)
	case key.Matches(msg, m.keys.End):
		m.list.SetCursor(m.rows.ItemCount() - 1)

	case key.Matches(msg, m.keys.Enter):
		return m.activate(false)
	case key.Matches(msg, m.keys.Right):
		return m.activate(true)
	case key.Matches(msg, m.keys.Left):
		m.collapseOrParent()

	case key.Matches(msg, m.keys.Copy):
		row, ok := m.currentRow()
		if !ok || row.Kind != memview.RowEntry {
			return m, nil
		}
		text := row.Node.Label
		return m, func() tea.Msg {
			return copyResultMsg{text: text, err: clipboard.WriteAll(text)}
		}
	}
	return m, nil
}

// activate acts on the row under the cursor: entries toggle, hidden rows
// reveal their run. With expandOnly an expanded entry is left alone.
func (m Model) activate(expandOnly bool) (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}

	switch row.Kind {
	case memview.RowHidden:
		if err := m.ctrl.Reveal(row.HiddenID); err != nil {
			logger.Warn("reveal failed", "hidden", row.HiddenID, "error", err)
		}
		m.refresh()
		return m, m.fillPage()

	case memview.RowEntry:
		id := row.Node.ID
		if expandOnly && m.ctrl.State(id) != preftree.Collapsed {
			return m, nil
		}
		q, err := m.ctrl.Toggle(id)
		if err != nil {
			logger.Warn("toggle failed", "node", id, "error", err)
			return m, nil
		}
		m.refresh()
		if q == nil {
			return m, m.fillPage()
		}
		return m, m.runQuery(q)
	}
	return m, nil
}

// collapseOrParent collapses the entry under the cursor, or moves the
// cursor to its parent when it is not expanded.
func (m *Model) collapseOrParent() {
	row, ok := m.currentRow()
	if !ok || row.Kind != memview.RowEntry {
		return
	}
	if m.ctrl.State(row.Node.ID) == preftree.Expanded {
		if _, err := m.ctrl.Toggle(row.Node.ID); err != nil {
			logger.Warn("collapse failed", "node", row.Node.ID, "error", err)
		}
		m.refresh()
		return
	}
	for i := m.list.Cursor() - 1; i >= 0; i-- {
		r := m.rows.rows[i]
		if r.Kind == memview.RowGroup {
			return
		}
		if r.Kind == memview.RowEntry && r.Indent < row.Indent {
			m.list.SetCursor(i)
			return
		}
	}
}

// search submits the input box. An explicit search with an empty box lists
// the top-level prefixes; a debounced one clears the list.
func (m *Model) search(explicit bool) tea.Cmd {
	f := m.filters
	f.Explicit = explicit
	query := m.input.Value()
	if explicit && strings.TrimSpace(query) == "" {
		f.TopLevel = true
	}
	q := m.ctrl.Search(query, f)
	m.refresh()
	return m.runQuery(q)
}

func (m Model) handleResult(msg queryResultMsg) (tea.Model, tea.Cmd) {
	err := m.ctrl.Receive(msg.Query, msg.Response, msg.Err)
	if m.notice == nil {
		m.notice = m.bridge.takeNotice()
	}
	if errors.Is(err, preftree.ErrStale) {
		return m, nil
	}

	m.refresh()
	cmds := []tea.Cmd{m.loadGroups()}
	if err == nil {
		if msg.Query.Kind == preftree.KindSearch {
			m.list.SetCursor(0)
			st := m.ctrl.Stats()
			m.statusMessage = fmt.Sprintf("Query took %.3f seconds", st.QueryTime.Seconds())
			cmds = append(cmds, clearStatusAfter(statusDuration))
		}
		cmds = append(cmds, m.fillPage())
	}
	return m, tea.Batch(cmds...)
}

// fillPage fetches the next page while the list does not fill the pane.
func (m Model) fillPage() tea.Cmd {
	if m.height == 0 || !m.ctrl.WantsMore(m.rows.ItemCount(), m.listHeight()) {
		return nil
	}
	return m.runQuery(m.ctrl.NextPage())
}
