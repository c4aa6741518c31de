package main

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/ipamkit/cmd/prefixexplorer/virtuallist"
	"github.com/joshuapare/ipamkit/internal/config"
	"github.com/joshuapare/ipamkit/pkg/preftree"
	"github.com/joshuapare/ipamkit/pkg/preftree/memview"
)

// Layout constants
const (
	headerHeight = 3 // title, search input and interpretation
	chromeHeight = 6 // pane border, pane title and status bar
	minListRows  = 3
)

// backend is what the explorer needs from the NIPAP client.
type backend interface {
	preftree.Backend
	preftree.GroupSource
}

// bridge carries state that outlives a single Update: the program's Send
// for debounced searches and notices raised by the controller.
type bridge struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	notices []notice
}

func (b *bridge) setSend(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *bridge) post(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (b *bridge) notify(title, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, notice{title: title, message: msg})
}

// takeNotice pops the oldest pending notice.
func (b *bridge) takeNotice() *notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.notices) == 0 {
		return nil
	}
	n := b.notices[0]
	b.notices = b.notices[1:]
	return &n
}

// Model is the main application model
type Model struct {
	cfg     config.Config
	backend backend
	ctx     context.Context

	ctrl *preftree.Controller
	view *memview.View
	rows *rowList
	list *virtuallist.Renderer

	input     textinput.Model
	inputMode bool
	filters   preftree.Filters
	debouncer *preftree.Debouncer
	bridge    *bridge

	keys   KeyMap
	width  int
	height int

	// Error modal, shown over the main view
	notice *notice

	// Help overlay
	showHelp bool

	// Status message for temporary feedback
	statusMessage string

	err error
}

// NewModel creates a new TUI model
func NewModel(cfg config.Config, be backend) Model {
	b := &bridge{}
	view := memview.New()
	opts := cfg.Search.Options()
	opts.Notify = b.notify
	ctrl := preftree.NewController(view, opts)

	rows := &rowList{state: ctrl.State}
	list := virtuallist.New(rows)
	list.SetPlaceholder("Type a query, or press t for top-level prefixes.")

	input := textinput.New()
	input.Prompt = "Search: "
	input.PromptStyle = searchPromptStyle
	input.Placeholder = "prefix, #tag, vrf, description..."
	input.Focus()

	return Model{
		cfg:       cfg,
		backend:   be,
		ctx:       context.Background(),
		ctrl:      ctrl,
		view:      view,
		rows:      rows,
		list:      list,
		input:     input,
		inputMode: true,
		filters:   cfg.Search.Filters(),
		debouncer: preftree.NewDebouncer(cfg.Search.Debounce),
		bridge:    b,
		keys:      DefaultKeyMap(),
	}
}

// SetSender wires debounced searches to the running program.
func (m Model) SetSender(send func(tea.Msg)) {
	m.bridge.setSend(send)
}

// Init starts the cursor blink and runs the initial search: the query
// given on the command line, or the top-level listing.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.search(true))
}

// Close stops pending timers.
func (m *Model) Close() {
	m.debouncer.Cancel()
}

// listHeight is the number of rows the tree pane can show.
func (m Model) listHeight() int {
	return max(m.height-headerHeight-chromeHeight, minListRows)
}

// refresh re-flattens the view after the controller changed it.
func (m *Model) refresh() {
	m.rows.rows = m.view.Rows()
	m.list.SetCursor(m.list.Cursor())
}

// currentRow returns the row under the cursor.
func (m Model) currentRow() (memview.Row, bool) {
	i := m.list.Cursor()
	if i < 0 || i >= len(m.rows.rows) {
		return memview.Row{}, false
	}
	return m.rows.rows[i], true
}

// runQuery executes q off the UI goroutine.
func (m Model) runQuery(q *preftree.Query) tea.Cmd {
	if q == nil {
		return nil
	}
	be, ctx, query := m.backend, m.ctx, *q
	return func() tea.Msg {
		return queryResultMsg{preftree.Run(ctx, be, query)}
	}
}

// loadGroups fetches metadata for panels created since the last call.
func (m Model) loadGroups() tea.Cmd {
	keys := m.ctrl.GroupRequests()
	if len(keys) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(keys))
	for _, key := range keys {
		be, ctx, key := m.backend, m.ctx, key
		cmds = append(cmds, func() tea.Msg {
			info, err := be.Group(ctx, key)
			return groupLoadedMsg{key: key, info: info, err: err}
		})
	}
	return tea.Batch(cmds...)
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
