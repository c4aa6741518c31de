package display

import (
	"strings"

	"github.com/joshuapare/ipamkit/pkg/nipap"
	"github.com/joshuapare/ipamkit/pkg/preftree"
	"github.com/joshuapare/ipamkit/pkg/preftree/memview"
)

// StateFunc reports the disclosure state of a node. A nil StateFunc derives
// it from the row alone.
type StateFunc func(preftree.NodeID) preftree.ExpandState

// Props maps a flattened row to display props. Styles are left zero.
func Props(r memview.Row, state StateFunc) RowProps {
	switch r.Kind {
	case memview.RowGroup:
		return RowProps{Label: GroupTitle(r.Info), Detail: r.Info.Detail}
	case memview.RowHidden:
		return RowProps{Label: HiddenMarker(r.HiddenCount), Depth: r.Indent}
	case memview.RowEmpty:
		return RowProps{Label: memview.EmptyText}
	}

	n := r.Node
	st := preftree.Collapsed
	if state != nil {
		st = state(n.ID)
	} else if r.Expanded {
		st = preftree.Expanded
	}
	p := RowProps{
		Label: n.Label,
		Icon:  EntryIcon(n, st),
		Badge: TypeBadge(n.Type),
		Depth: r.Indent,
	}
	if pr, ok := n.Data.(*nipap.Prefix); ok {
		p.Detail = pr.Description
		p.Right = pr.Node
	}
	return p
}

// Plain formats props without padding or styles.
func Plain(p RowProps) string {
	var b strings.Builder
	b.WriteString(Indent(p.Depth))
	if p.Icon != "" {
		b.WriteString(p.Icon)
		b.WriteByte(' ')
	}
	if p.Badge != "" {
		b.WriteString(p.Badge)
		b.WriteByte(' ')
	}
	b.WriteString(p.Label)
	if p.Detail != "" {
		b.WriteString("  ")
		b.WriteString(p.Detail)
	}
	if p.Right != "" {
		b.WriteString("  (")
		b.WriteString(p.Right)
		b.WriteByte(')')
	}
	return b.String()
}

// Text renders rows as plain lines. Group headers are underlined with
// dashes and separated by a blank line.
func Text(rows []memview.Row, state StateFunc) string {
	var b strings.Builder
	for i, r := range rows {
		line := Plain(Props(r, state))
		if r.Kind == memview.RowGroup {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(line)
			b.WriteByte('\n')
			b.WriteString(strings.Repeat("-", len([]rune(GroupTitle(r.Info)))))
			b.WriteByte('\n')
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
