package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/ipamkit/internal/config"
	"github.com/joshuapare/ipamkit/pkg/nipap"
	"github.com/joshuapare/ipamkit/pkg/nipap/nipaptest"
	"github.com/joshuapare/ipamkit/pkg/preftree"
	"github.com/joshuapare/ipamkit/pkg/preftree/memview"
)

// cmdTimeout bounds how long a command may take before it is treated as a
// timer (cursor blink, status clear) and dropped.
const cmdTimeout = 100 * time.Millisecond

// fakeBackend answers searches from in-memory prefix lists.
type fakeBackend struct {
	mu       sync.Mutex
	results  map[string][]preftree.Node // by query string; "" is the top-level listing
	children map[preftree.NodeID][]preftree.Node
	groups   map[preftree.GroupKey]preftree.GroupInfo
	fail     error
	queries  []preftree.Query
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		results:  make(map[string][]preftree.Node),
		children: make(map[preftree.NodeID][]preftree.Node),
		groups:   make(map[preftree.GroupKey]preftree.GroupInfo),
	}
}

func (f *fakeBackend) Search(_ context.Context, q preftree.Query) (*preftree.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.fail != nil {
		return nil, f.fail
	}

	var nodes []preftree.Node
	if q.Kind == preftree.KindChildren {
		nodes = f.children[q.Parent]
	} else {
		all := f.results[q.QueryString]
		start := min(q.Offset, len(all))
		end := len(all)
		if q.MaxResult > 0 {
			end = min(start+q.MaxResult, len(all))
		}
		nodes = all[start:end]
	}
	return &preftree.Response{
		QueryID:   q.ID,
		Offset:    q.Offset,
		MaxResult: q.MaxResult,
		Nodes:     append([]preftree.Node(nil), nodes...),
	}, nil
}

func (f *fakeBackend) Group(_ context.Context, key preftree.GroupKey) (*preftree.GroupInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.groups[key]
	if !ok {
		return nil, fmt.Errorf("no VRF %d", key)
	}
	return &info, nil
}

func (f *fakeBackend) set(query string, prefixes ...nipap.Prefix) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[query] = nodesOf(prefixes)
}

func (f *fakeBackend) setChildren(parent preftree.NodeID, prefixes ...nipap.Prefix) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.children[parent] = nodesOf(prefixes)
}

// searches returns the recorded queries of the given kind.
func (f *fakeBackend) searches(kind preftree.QueryKind) []preftree.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []preftree.Query
	for _, q := range f.queries {
		if q.Kind == kind {
			out = append(out, q)
		}
	}
	return out
}

func nodesOf(prefixes []nipap.Prefix) []preftree.Node {
	nodes := make([]preftree.Node, len(prefixes))
	for i := range prefixes {
		nodes[i] = prefixes[i].Node()
	}
	return nodes
}

// topLevel returns n indent-0 matching prefixes 10.0.0.0/16, 10.1.0.0/16, ...
func topLevel(n int) []nipap.Prefix {
	out := make([]nipap.Prefix, n)
	for i := range n {
		out[i] = nipaptest.Prefix(int64(i+1), fmt.Sprintf("10.%d.0.0/16", i), 0, true)
	}
	return out
}

// TestHelper drives a Model the way the bubbletea runtime does, running
// commands and feeding their messages back into Update.
type TestHelper struct {
	t       *testing.T
	model   Model
	backend *fakeBackend
	sent    chan tea.Msg
}

func NewTestHelper(t *testing.T, be *fakeBackend, opts ...func(*config.Config)) *TestHelper {
	t.Helper()
	cfg := config.Default()
	cfg.Backend.URL = "http://nipap.test"
	cfg.Search.BatchSize = 5
	cfg.Search.Debounce = 50 * time.Millisecond
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &TestHelper{
		t:       t,
		backend: be,
		sent:    make(chan tea.Msg, 16),
	}
	h.model = NewModel(cfg, be)
	h.model.SetSender(func(msg tea.Msg) { h.sent <- msg })
	t.Cleanup(func() { h.model.Close() })
	return h
}

// Start sizes the window and runs Init.
func (h *TestHelper) Start(width, height int) *TestHelper {
	h.Run(h.update(tea.WindowSizeMsg{Width: width, Height: height}))
	h.Run(h.model.Init())
	return h
}

func (h *TestHelper) update(msg tea.Msg) tea.Cmd {
	updated, cmd := h.model.Update(msg)
	h.model = updated.(Model)
	return cmd
}

// Send delivers msg and runs the resulting commands.
func (h *TestHelper) Send(msg tea.Msg) *TestHelper {
	h.Run(h.update(msg))
	return h
}

// SendKey simulates a key press
func (h *TestHelper) SendKey(keyType tea.KeyType) *TestHelper {
	return h.Send(tea.KeyMsg{Type: keyType})
}

// SendKeyRune simulates a character key press
func (h *TestHelper) SendKeyRune(r rune) *TestHelper {
	return h.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// Type enters s into the focused search box.
func (h *TestHelper) Type(s string) *TestHelper {
	for _, r := range s {
		h.SendKeyRune(r)
	}
	return h
}

// AwaitDebounce waits for the debounced trigger for the current input and
// delivers it. Triggers for earlier input are delivered too.
func (h *TestHelper) AwaitDebounce() *TestHelper {
	h.t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-h.sent:
			h.Send(msg)
			if trig, ok := msg.(searchTriggerMsg); ok && trig.query == h.model.input.Value() {
				return h
			}
		case <-timeout:
			h.t.Fatal("debounced search never fired")
			return h
		}
	}
}

// Run executes cmd and everything it leads to. Commands that do not
// finish within cmdTimeout are dropped. Messages are applied in command
// order so runs are deterministic.
func (h *TestHelper) Run(cmd tea.Cmd) {
	pending := []tea.Cmd{cmd}
	for len(pending) > 0 {
		msgs := collect(pending)
		pending = nil
		for _, msg := range msgs {
			switch msg := msg.(type) {
			case tea.BatchMsg:
				pending = append(pending, msg...)
			case tea.QuitMsg:
			default:
				pending = append(pending, h.update(msg))
			}
		}
	}
}

func collect(cmds []tea.Cmd) []tea.Msg {
	results := make([]chan tea.Msg, len(cmds))
	for i, cmd := range cmds {
		if cmd == nil {
			continue
		}
		ch := make(chan tea.Msg, 1)
		results[i] = ch
		go func() { ch <- cmd() }()
	}

	timer := time.NewTimer(cmdTimeout)
	defer timer.Stop()
	expired := false

	var msgs []tea.Msg
	for _, ch := range results {
		if ch == nil {
			continue
		}
		var msg tea.Msg
		if expired {
			select {
			case msg = <-ch:
			default:
			}
		} else {
			select {
			case msg = <-ch:
			case <-timer.C:
				expired = true
			}
		}
		if msg != nil {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// Rows returns the flattened rows on screen.
func (h *TestHelper) Rows() []memview.Row {
	return h.model.rows.rows
}

// Labels returns the labels of visible entry rows.
func (h *TestHelper) Labels() []string {
	var out []string
	for _, r := range h.Rows() {
		if r.Kind == memview.RowEntry {
			out = append(out, r.Node.Label)
		}
	}
	return out
}

// CursorTo moves the cursor onto the row whose label or marker contains s.
func (h *TestHelper) CursorTo(s string) *TestHelper {
	h.t.Helper()
	for i, r := range h.Rows() {
		if rowText(r) != "" && strings.Contains(rowText(r), s) {
			h.model.list.SetCursor(i)
			return h
		}
	}
	h.t.Fatalf("no row containing %q in %v", s, h.Labels())
	return h
}

func rowText(r memview.Row) string {
	switch r.Kind {
	case memview.RowEntry:
		return r.Node.Label
	case memview.RowHidden:
		return fmt.Sprintf("hidden %d", r.HiddenCount)
	case memview.RowGroup:
		return r.Info.Title
	}
	return ""
}

// GetView returns the rendered view
func (h *TestHelper) GetView() string {
	return h.model.View()
}

var errBackendDown = errors.New("backend down")
