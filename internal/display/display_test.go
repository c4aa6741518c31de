package display

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/joshuapare/ipamkit/pkg/nipap"
	"github.com/joshuapare/ipamkit/pkg/preftree"
	"github.com/joshuapare/ipamkit/pkg/preftree/memview"
)

func TestTypeBadge(t *testing.T) {
	tests := []struct {
		in, name, badge string
	}{
		{"assignment", "Assignment", "[A]"},
		{"reservation", "Reservation", "[R]"},
		{"host", "Host", "[H]"},
		{"", "", "[ ]"},
	}
	for _, tt := range tests {
		if got := TypeName(tt.in); got != tt.name {
			t.Errorf("TypeName(%q) = %q, want %q", tt.in, got, tt.name)
		}
		if got := TypeBadge(tt.in); got != tt.badge {
			t.Errorf("TypeBadge(%q) = %q, want %q", tt.in, got, tt.badge)
		}
	}
}

func TestHiddenMarker(t *testing.T) {
	if got := HiddenMarker(1); got != "(1 hidden prefix, press enter to display)" {
		t.Errorf("unexpected marker %q", got)
	}
	if got := HiddenMarker(7); !strings.Contains(got, "7 hidden prefixes") {
		t.Errorf("unexpected marker %q", got)
	}
}

func TestIndent(t *testing.T) {
	if Indent(0) != "" || Indent(-1) != "" {
		t.Error("non-positive levels should not indent")
	}
	if Indent(3) != "      " {
		t.Errorf("Indent(3) = %q", Indent(3))
	}
}

func TestEntryIcon(t *testing.T) {
	parent := &preftree.Node{ID: 1, Children: preftree.ChildrenUnknown}
	leaf := &preftree.Node{ID: 2, Children: preftree.ChildrenNone}

	if got := EntryIcon(parent, preftree.Collapsed); got != IconCollapsed {
		t.Errorf("collapsed parent icon = %q", got)
	}
	if got := EntryIcon(parent, preftree.FetchPending); got != IconLoading {
		t.Errorf("pending icon = %q", got)
	}
	if got := EntryIcon(parent, preftree.Expanded); got != IconExpanded {
		t.Errorf("expanded icon = %q", got)
	}
	if got := EntryIcon(leaf, preftree.Collapsed); got != IconLeaf {
		t.Errorf("leaf icon = %q", got)
	}
}

func TestPropsForEntry(t *testing.T) {
	pr := &nipap.Prefix{ID: 5, Prefix: "10.0.0.0/8", Description: "core", Node: "rtr1"}
	row := memview.Row{
		Kind:   memview.RowEntry,
		Node:   &preftree.Node{ID: 5, Label: "10.0.0.0/8", Type: "reservation", Children: preftree.ChildrenKnown, Data: pr},
		Indent: 2,
	}

	p := Props(row, nil)
	if p.Icon != IconCollapsed || p.Badge != "[R]" || p.Depth != 2 {
		t.Errorf("unexpected props %+v", p)
	}
	if p.Detail != "core" || p.Right != "rtr1" {
		t.Errorf("prefix fields not carried: %+v", p)
	}

	p = Props(row, func(preftree.NodeID) preftree.ExpandState { return preftree.FetchPending })
	if p.Icon != IconLoading {
		t.Errorf("state func ignored, icon %q", p.Icon)
	}
}

func TestTextRendersTree(t *testing.T) {
	rows := []memview.Row{
		{Kind: memview.RowGroup, Info: preftree.GroupInfo{Key: 0, Title: "- default"}},
		{Kind: memview.RowEntry, Node: &preftree.Node{ID: 1, Label: "10.0.0.0/8", Type: "reservation", Children: preftree.ChildrenKnown}, Expanded: true},
		{Kind: memview.RowHidden, HiddenID: 2, HiddenCount: 6, Indent: 1},
		{Kind: memview.RowGroup, Info: preftree.GroupInfo{Key: 3}},
		{Kind: memview.RowEntry, Node: &preftree.Node{ID: 9, Label: "192.168.0.0/16", Type: "assignment", Children: preftree.ChildrenNone}},
	}

	want := strings.Join([]string{
		"- default",
		"---------",
		"▼ [R] 10.0.0.0/8",
		"  (6 hidden prefixes, press enter to display)",
		"",
		"VRF 3",
		"-----",
		"• [A] 192.168.0.0/16",
		"",
	}, "\n")
	if got := Text(rows, nil); got != want {
		t.Errorf("Text mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestTextEmpty(t *testing.T) {
	got := Text([]memview.Row{{Kind: memview.RowEmpty}}, nil)
	if got != memview.EmptyText+"\n" {
		t.Errorf("unexpected empty text %q", got)
	}
}

func TestRenderRowTruncates(t *testing.T) {
	p := RowProps{
		Label:     strings.Repeat("x", 100),
		Icon:      IconLeaf,
		Right:     "rtr1",
		ItemStyle: lipgloss.NewStyle(),
	}
	out := RenderRow(p, 40)
	if !strings.Contains(out, "...") {
		t.Error("long label should be truncated with an ellipsis")
	}
	if !strings.Contains(out, "rtr1") {
		t.Error("right column should survive truncation")
	}
}

func TestRenderRowSelected(t *testing.T) {
	p := RowProps{Label: "10.0.0.0/8", Icon: IconLeaf, ItemStyle: lipgloss.NewStyle(), IsSelected: true}
	if out := RenderRow(p, 60); !strings.Contains(out, "10.0.0.0/8") {
		t.Error("selected row should contain its label")
	}
}
