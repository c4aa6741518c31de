package main

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/ipamkit/internal/config"
	"github.com/joshuapare/ipamkit/pkg/nipap"
	"github.com/joshuapare/ipamkit/pkg/nipap/nipaptest"
	"github.com/joshuapare/ipamkit/pkg/preftree"
	"github.com/joshuapare/ipamkit/pkg/preftree/memview"
)

func TestStartupListsTopLevel(t *testing.T) {
	be := newFakeBackend()
	be.set("", topLevel(3)...)
	be.groups[0] = preftree.GroupInfo{Key: 0, Title: "- default"}

	h := NewTestHelper(t, be).Start(100, 40)

	searches := be.searches(preftree.KindSearch)
	if len(searches) != 1 {
		t.Fatalf("expected 1 search, got %d", len(searches))
	}
	if searches[0].Indent == nil || *searches[0].Indent != 0 {
		t.Errorf("startup search should list indent 0 only, got %v", searches[0].Indent)
	}

	want := []string{"10.0.0.0/16", "10.1.0.0/16", "10.2.0.0/16"}
	if got := h.Labels(); !slices.Equal(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
	if rows := h.Rows(); len(rows) == 0 || rows[0].Kind != memview.RowGroup || rows[0].Info.Title != "- default" {
		t.Errorf("first row should be the loaded VRF header, got %+v", rows)
	}

	view := h.GetView()
	for _, s := range []string{"NIPAP Prefix Explorer", "http://nipap.test", "10.1.0.0/16", "- default"} {
		if !strings.Contains(view, s) {
			t.Errorf("view missing %q", s)
		}
	}
}

func TestTypingDebouncesSearch(t *testing.T) {
	be := newFakeBackend()
	be.set("10.2", nipaptest.Prefix(1, "10.2.0.0/16", 0, true))

	h := NewTestHelper(t, be).Start(100, 40)
	before := len(be.searches(preftree.KindSearch))

	h.Type("10.2")
	if got := len(be.searches(preftree.KindSearch)); got != before {
		t.Fatalf("typing must not search before the input settles, got %d new searches", got-before)
	}
	if !h.model.debouncer.Pending() {
		t.Fatal("expected a pending debounced search")
	}

	h.AwaitDebounce()

	searches := be.searches(preftree.KindSearch)
	if len(searches) != before+1 {
		t.Fatalf("expected exactly one debounced search, got %d", len(searches)-before)
	}
	if q := searches[len(searches)-1].QueryString; q != "10.2" {
		t.Errorf("searched %q, want %q", q, "10.2")
	}
	if got := h.Labels(); !slices.Equal(got, []string{"10.2.0.0/16"}) {
		t.Errorf("labels = %v", got)
	}
	if !h.model.inputMode {
		t.Error("debounced search should leave focus in the search box")
	}
}

func TestOutdatedTriggerIgnored(t *testing.T) {
	be := newFakeBackend()
	h := NewTestHelper(t, be).Start(100, 40)
	before := len(be.queries)

	h.model.input.SetValue("new")
	h.Send(searchTriggerMsg{query: "old"})

	if len(be.queries) != before {
		t.Errorf("trigger for an outdated input must not search, got %d queries", len(be.queries)-before)
	}
}

func TestEnterSearchesImmediately(t *testing.T) {
	be := newFakeBackend()
	be.set("core", nipaptest.Prefix(4, "192.168.0.0/16", 0, true))

	h := NewTestHelper(t, be).Start(100, 40)
	h.Type("core").SendKey(tea.KeyEnter)

	if h.model.debouncer.Pending() {
		t.Error("enter should cancel the pending debounced search")
	}
	if h.model.inputMode {
		t.Error("enter should move focus to the list")
	}
	if got := h.Labels(); !slices.Equal(got, []string{"192.168.0.0/16"}) {
		t.Errorf("labels = %v", got)
	}
	if !strings.Contains(h.model.statusMessage, "Query took") {
		t.Errorf("status = %q, want query time", h.model.statusMessage)
	}

	// Enter again re-runs the same search.
	n := len(be.searches(preftree.KindSearch))
	h.SendKeyRune('/').SendKey(tea.KeyEnter)
	if got := len(be.searches(preftree.KindSearch)); got != n+1 {
		t.Errorf("explicit search should be re-issued, got %d new searches", got-n)
	}
}

func TestSupersededResultDiscarded(t *testing.T) {
	be := newFakeBackend()
	be.set("a", nipaptest.Prefix(1, "10.0.0.0/8", 0, true))
	be.set("b", nipaptest.Prefix(2, "172.16.0.0/12", 0, true))

	h := NewTestHelper(t, be).Start(100, 40)

	h.model.input.SetValue("a")
	first := h.model.search(true)
	h.model.input.SetValue("b")
	second := h.model.search(true)

	h.Run(second)
	h.Run(first)

	if got := h.Labels(); !slices.Equal(got, []string{"172.16.0.0/12"}) {
		t.Errorf("older response replaced newer results: %v", got)
	}
}

func TestExpandAndCollapse(t *testing.T) {
	be := newFakeBackend()
	be.set("", nipaptest.Prefix(1, "10.0.0.0/8", 0, true))
	be.setChildren(1,
		nipaptest.Prefix(10, "10.0.0.0/16", 1, false),
		nipaptest.Prefix(11, "10.1.0.0/16", 1, false),
	)

	h := NewTestHelper(t, be).Start(100, 40)
	h.SendKey(tea.KeyEsc) // leave the search box
	h.CursorTo("10.0.0.0/8").SendKey(tea.KeyEnter)

	children := be.searches(preftree.KindChildren)
	if len(children) != 1 || children[0].Parent != 1 {
		t.Fatalf("expected one child fetch for node 1, got %+v", children)
	}
	if st := h.model.ctrl.State(1); st != preftree.Expanded {
		t.Fatalf("state after fetch = %v, want expanded", st)
	}
	want := []string{"10.0.0.0/8", "10.0.0.0/16", "10.1.0.0/16"}
	if got := h.Labels(); !slices.Equal(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}

	// Left on a child moves to its parent, then collapses it.
	h.CursorTo("10.1.0.0/16").SendKey(tea.KeyLeft)
	if row, _ := h.model.currentRow(); row.Node == nil || row.Node.ID != 1 {
		t.Fatalf("left should move to the parent, cursor on %+v", row)
	}
	h.SendKey(tea.KeyLeft)
	if st := h.model.ctrl.State(1); st != preftree.Collapsed {
		t.Errorf("state after collapse = %v", st)
	}
	if got := h.Labels(); !slices.Equal(got, []string{"10.0.0.0/8"}) {
		t.Errorf("labels after collapse = %v", got)
	}

	// Expanding again reuses the loaded children.
	h.SendKey(tea.KeyRight)
	if got := len(be.searches(preftree.KindChildren)); got != 1 {
		t.Errorf("re-expanding should not fetch again, got %d fetches", got)
	}
	if st := h.model.ctrl.State(1); st != preftree.Expanded {
		t.Errorf("state after re-expand = %v", st)
	}
}

func TestRevealHiddenRun(t *testing.T) {
	be := newFakeBackend()
	list := []nipap.Prefix{nipaptest.Prefix(1, "10.0.0.0/8", 0, true)}
	for i := 0; i < 6; i++ {
		list = append(list, nipaptest.Prefix(int64(2+i), fmt.Sprintf("10.%d.0.0/16", i), 1, false))
	}
	list = append(list, nipaptest.Prefix(8, "10.200.0.0/16", 1, true))
	be.set("10.200", list...)

	h := NewTestHelper(t, be, func(c *config.Config) { c.Search.BatchSize = 50 }).Start(100, 40)
	h.Type("10.200").SendKey(tea.KeyEnter)

	if got := h.Labels(); !slices.Equal(got, []string{"10.0.0.0/8", "10.200.0.0/16"}) {
		t.Fatalf("labels = %v", got)
	}
	if !strings.Contains(h.GetView(), "6 hidden prefixes") {
		t.Error("view should show the hidden marker")
	}

	h.CursorTo("hidden 6").SendKey(tea.KeyEnter)
	if got := len(h.Labels()); got != 8 {
		t.Errorf("after reveal %d prefixes visible, want 8", got)
	}
	if strings.Contains(h.GetView(), "hidden prefixes") {
		t.Error("marker should be gone after reveal")
	}
}

func TestScrollPastEndLoadsNextPage(t *testing.T) {
	be := newFakeBackend()
	be.set("", topLevel(12)...)

	// 12 rows high leaves three list rows, so the first page fills the pane.
	h := NewTestHelper(t, be).Start(100, 12)
	if got := len(be.searches(preftree.KindNextPage)); got != 0 {
		t.Fatalf("a full pane should not load more, got %d pages", got)
	}
	if got := len(h.Labels()); got != 5 {
		t.Fatalf("first page has %d prefixes, want 5", got)
	}

	h.SendKey(tea.KeyEsc).SendKeyRune('G').SendKey(tea.KeyDown)

	pages := be.searches(preftree.KindNextPage)
	if len(pages) != 1 {
		t.Fatalf("expected one next page, got %d", len(pages))
	}
	if pages[0].Offset != 4 {
		t.Errorf("next page offset = %d, want 4", pages[0].Offset)
	}
	if got := len(h.Labels()); got != 9 {
		t.Errorf("after one page %d prefixes, want 9", got)
	}

	h.SendKeyRune('n').SendKeyRune('n')
	if got := len(h.Labels()); got != 12 {
		t.Errorf("all pages loaded: %d prefixes, want 12", got)
	}
	if !h.model.ctrl.EndOfResult() {
		t.Error("expected end of result")
	}
	if strings.Contains(h.GetView(), "more, press n") {
		t.Error("status should not offer more results at the end")
	}
}

func TestTallWindowFillsWithPages(t *testing.T) {
	be := newFakeBackend()
	be.set("", topLevel(12)...)

	h := NewTestHelper(t, be).Start(100, 60)

	if got := len(h.Labels()); got != 12 {
		t.Errorf("a tall pane should load every page, got %d prefixes", got)
	}
	if !h.model.ctrl.EndOfResult() {
		t.Error("expected end of result")
	}
}

func TestBackendErrorShowsNotice(t *testing.T) {
	be := newFakeBackend()
	be.fail = errBackendDown

	h := NewTestHelper(t, be).Start(100, 40)

	if h.model.notice == nil {
		t.Fatal("expected an error notice")
	}
	if h.model.notice.title != "Search failed" {
		t.Errorf("notice title = %q", h.model.notice.title)
	}
	if view := h.GetView(); !strings.Contains(view, "backend down") {
		t.Errorf("notice not rendered:\n%s", view)
	}

	h.SendKey(tea.KeyEnter)
	if h.model.notice != nil {
		t.Error("enter should dismiss the notice")
	}
}

func TestEscClearsSearch(t *testing.T) {
	be := newFakeBackend()
	be.set("", topLevel(2)...)

	h := NewTestHelper(t, be).Start(100, 40)
	h.SendKey(tea.KeyEsc) // leave the search box
	h.SendKey(tea.KeyEsc) // clear

	if got := len(h.Labels()); got != 0 {
		t.Errorf("expected no prefixes after clearing, got %d", got)
	}
	if h.model.statusMessage != "Search cleared" {
		t.Errorf("status = %q", h.model.statusMessage)
	}

	h.SendKeyRune('t')
	if got := len(h.Labels()); got != 2 {
		t.Errorf("t should list top-level prefixes again, got %d", got)
	}
}

func TestEmptyResult(t *testing.T) {
	be := newFakeBackend()
	h := NewTestHelper(t, be).Start(100, 40)
	h.Type("nothing").SendKey(tea.KeyEnter)

	if !h.model.ctrl.Empty() {
		t.Error("expected an empty result")
	}
	if !strings.Contains(h.GetView(), memview.EmptyText) {
		t.Error("view should show the empty notice")
	}
}

func TestHelpOverlay(t *testing.T) {
	h := NewTestHelper(t, newFakeBackend()).Start(100, 40)
	h.SendKey(tea.KeyEsc).SendKeyRune('?')

	if !h.model.showHelp {
		t.Fatal("? should open help")
	}
	if view := h.GetView(); !strings.Contains(view, "Keyboard Shortcuts") || !strings.Contains(view, "top-level prefixes") {
		t.Errorf("help overlay incomplete:\n%s", view)
	}
	h.SendKeyRune('?')
	if h.model.showHelp {
		t.Error("? should close help")
	}
}

func TestQuitKeepsSearchBoxTyping(t *testing.T) {
	h := NewTestHelper(t, newFakeBackend()).Start(100, 40)

	h.model.debouncer.Cancel()
	updated, _ := h.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	typed := updated.(Model)
	if typed.input.Value() != "q" || !typed.inputMode {
		t.Fatalf("q in the search box should be typed, value %q", typed.input.Value())
	}
	typed.debouncer.Cancel()

	h.SendKey(tea.KeyEsc)
	_, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q in the list should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q in the list should quit")
	}
}

func TestCopyReportsStatus(t *testing.T) {
	be := newFakeBackend()
	be.set("", topLevel(1)...)
	h := NewTestHelper(t, be).Start(100, 40)
	h.SendKey(tea.KeyEsc).CursorTo("10.0.0.0/16")

	h.Send(copyResultMsg{text: "10.0.0.0/16"})
	if h.model.statusMessage != "✓ Copied: 10.0.0.0/16" {
		t.Errorf("status = %q", h.model.statusMessage)
	}
	h.Send(clearStatusMsg{})
	if h.model.statusMessage != "" {
		t.Error("status should clear")
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    cliOptions
		wantErr bool
	}{
		{"none", nil, cliOptions{}, false},
		{"query words", []string{"10.0.0.0/8", "#core"}, cliOptions{query: "10.0.0.0/8 #core"}, false},
		{"debug", []string{"-d"}, cliOptions{debug: true}, false},
		{"config value", []string{"--config", "/tmp/c.yaml"}, cliOptions{config: "/tmp/c.yaml"}, false},
		{"config equals", []string{"--config=/tmp/c.yaml"}, cliOptions{config: "/tmp/c.yaml"}, false},
		{"url", []string{"--url", "http://ipam:5000", "foo"}, cliOptions{url: "http://ipam:5000", query: "foo"}, false},
		{"help", []string{"-h"}, cliOptions{help: true}, false},
		{"missing value", []string{"--url"}, cliOptions{}, true},
		{"unknown flag", []string{"--bogus"}, cliOptions{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseArgs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
