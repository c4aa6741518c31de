package memview

import "github.com/joshuapare/ipamkit/pkg/preftree"

// RowKind is the kind of a flattened display row.
type RowKind int

const (
	RowGroup  RowKind = iota // panel header
	RowEntry                 // one node
	RowHidden                // placeholder for a collapsed hidden run
	RowEmpty                 // "no results" notice
)

// EmptyText is shown when a search returned nothing.
const EmptyText = "No prefixes found."

// Row is one line of the flattened view.
type Row struct {
	Kind  RowKind
	Group preftree.GroupKey
	Info  preftree.GroupInfo // RowGroup; Title is empty until metadata arrives
	Node  *preftree.Node     // RowEntry
	// HiddenID keys the hidden run behind a RowHidden row; pass it to
	// Controller.Reveal.
	HiddenID    preftree.NodeID
	HiddenCount int
	Indent      int
	Expanded    bool // RowEntry: child container visible
}

// Rows flattens the visible part of the view in document order.
func (v *View) Rows() []Row {
	if v.empty {
		return []Row{{Kind: RowEmpty}}
	}
	var rows []Row
	for g := v.root.first; g != nil; g = g.next {
		key := preftree.GroupKey(g.id)
		info, ok := v.info[key]
		if !ok {
			info = preftree.GroupInfo{Key: key}
		}
		rows = append(rows, Row{Kind: RowGroup, Group: key, Info: info})
		rows = v.appendRows(rows, g, key)
	}
	return rows
}

func (v *View) appendRows(rows []Row, parent *element, key preftree.GroupKey) []Row {
	for e := parent.first; e != nil; e = e.next {
		switch e.kind {
		case preftree.ElemEntry:
			c := v.children[e.node.ID]
			rows = append(rows, Row{
				Kind:     RowEntry,
				Group:    key,
				Node:     e.node,
				Indent:   e.node.Indent,
				Expanded: c != nil && c.visible,
			})
		case preftree.ElemChildren:
			if e.visible {
				rows = v.appendRows(rows, e, key)
			}
		case preftree.ElemHidden:
			if e.visible {
				rows = v.appendRows(rows, e, key)
				continue
			}
			rows = append(rows, Row{
				Kind:        RowHidden,
				Group:       key,
				HiddenID:    preftree.NodeID(e.id),
				HiddenCount: e.entries,
				Indent:      e.indent,
			})
		}
	}
	return rows
}

// VisibleEntries counts entry rows currently shown.
func (v *View) VisibleEntries() int {
	n := 0
	for _, r := range v.Rows() {
		if r.Kind == RowEntry {
			n++
		}
	}
	return n
}

// Order returns every rendered node id in document order, including nodes
// inside collapsed containers.
func (v *View) Order() []preftree.NodeID {
	var ids []preftree.NodeID
	var walk func(*element)
	walk = func(p *element) {
		for e := p.first; e != nil; e = e.next {
			if e.kind == preftree.ElemEntry {
				ids = append(ids, preftree.NodeID(e.id))
			}
			walk(e)
		}
	}
	walk(v.root)
	return ids
}

// Path returns the kinds of the ancestors of node id, innermost first,
// stopping at the group panel. It is meant for assertions in tests.
func (v *View) Path(id preftree.NodeID) []preftree.ElementKind {
	e := v.entries[id]
	if e == nil {
		return nil
	}
	var kinds []preftree.ElementKind
	for p := e.parent; p != nil && p.kind != kindRoot; p = p.parent {
		kinds = append(kinds, p.kind)
	}
	return kinds
}
