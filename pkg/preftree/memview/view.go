// Package memview is an in-memory preftree.View. It keeps the element tree
// as doubly linked sibling lists and flattens it into display rows.
package memview

import (
	"fmt"

	"github.com/joshuapare/ipamkit/pkg/preftree"
)

const kindRoot preftree.ElementKind = -1

type element struct {
	view    *View
	kind    preftree.ElementKind
	id      int64
	indent  int // hidden containers
	node    *preftree.Node
	visible bool

	parent      *element
	prev, next  *element
	first, last *element
	entries     int
}

// View implements preftree.View.
type View struct {
	root     *element
	groups   map[preftree.GroupKey]*element
	entries  map[preftree.NodeID]*element
	children map[preftree.NodeID]*element
	hidden   map[preftree.NodeID]*element
	info     map[preftree.GroupKey]preftree.GroupInfo
	empty    bool
}

var _ preftree.View = (*View)(nil)

// New returns an empty view.
func New() *View {
	v := &View{}
	v.Reset()
	return v
}

// Reset removes every element.
func (v *View) Reset() {
	v.root = &element{view: v, kind: kindRoot, visible: true}
	v.groups = make(map[preftree.GroupKey]*element)
	v.entries = make(map[preftree.NodeID]*element)
	v.children = make(map[preftree.NodeID]*element)
	v.hidden = make(map[preftree.NodeID]*element)
	v.info = make(map[preftree.GroupKey]preftree.GroupInfo)
	v.empty = false
}

func handle(e *element) preftree.Handle {
	if e == nil {
		return nil
	}
	return e
}

func (v *View) Group(key preftree.GroupKey) preftree.Handle { return handle(v.groups[key]) }
func (v *View) Entry(id preftree.NodeID) preftree.Handle    { return handle(v.entries[id]) }
func (v *View) Children(id preftree.NodeID) preftree.Handle { return handle(v.children[id]) }
func (v *View) Hidden(id preftree.NodeID) preftree.Handle   { return handle(v.hidden[id]) }

func (v *View) NewGroup(key preftree.GroupKey) preftree.Handle {
	g := &element{view: v, kind: preftree.ElemGroup, id: int64(key), visible: true}
	v.groups[key] = g
	v.root.appendChild(g)
	return g
}

func (v *View) NewEntry(n *preftree.Node) preftree.Handle {
	e := &element{view: v, kind: preftree.ElemEntry, id: int64(n.ID), node: n, visible: true}
	v.entries[n.ID] = e
	return e
}

func (v *View) NewChildren(id preftree.NodeID) preftree.Handle {
	e := &element{view: v, kind: preftree.ElemChildren, id: int64(id)}
	v.children[id] = e
	return e
}

func (v *View) NewHidden(first preftree.NodeID, indent int) preftree.Handle {
	e := &element{view: v, kind: preftree.ElemHidden, id: int64(first), indent: indent}
	v.hidden[first] = e
	return e
}

func (v *View) SetGroupInfo(info preftree.GroupInfo) { v.info[info.Key] = info }

// GroupInfo returns the metadata set for key.
func (v *View) GroupInfo(key preftree.GroupKey) (preftree.GroupInfo, bool) {
	info, ok := v.info[key]
	return info, ok
}

func (v *View) SetEmpty(empty bool) { v.empty = empty }

// Empty reports whether the "no results" notice is shown.
func (v *View) Empty() bool { return v.empty }

// RevealAll makes every hidden container visible.
func (v *View) RevealAll() {
	for _, h := range v.hidden {
		h.visible = true
	}
}

// ExpandAll makes every child container visible.
func (v *View) ExpandAll() {
	for _, c := range v.children {
		c.visible = true
	}
}

func (e *element) Kind() preftree.ElementKind { return e.kind }
func (e *element) ID() int64                  { return e.id }
func (e *element) Visible() bool              { return e.visible }
func (e *element) SetVisible(b bool)          { e.visible = b }
func (e *element) EntryCount() int            { return e.entries }

func (e *element) Parent() preftree.Handle {
	if e.parent == nil || e.parent.kind == kindRoot {
		return nil
	}
	return e.parent
}

func (e *element) Next() preftree.Handle  { return handle(e.next) }
func (e *element) First() preftree.Handle { return handle(e.first) }

func (e *element) Insert(pos preftree.Position, child preftree.Handle) {
	c, ok := child.(*element)
	if !ok || c.view != e.view {
		panic(fmt.Sprintf("memview: foreign handle %T", child))
	}
	c.detach()

	switch pos {
	case preftree.Prepend:
		e.insertChildAfter(c, nil)
	case preftree.Append:
		e.appendChild(c)
	case preftree.Before:
		e.mustParent().insertChildAfter(c, e.prev)
	case preftree.After:
		e.mustParent().insertChildAfter(c, e)
	default:
		panic(fmt.Sprintf("memview: invalid position %d", pos))
	}
}

func (e *element) mustParent() *element {
	if e.parent == nil {
		panic(fmt.Sprintf("memview: sibling insert next to detached %s %d", e.kind, e.id))
	}
	return e.parent
}

func (e *element) appendChild(c *element) { e.insertChildAfter(c, e.last) }

// insertChildAfter links c into e's children after mark, or first when
// mark is nil.
func (e *element) insertChildAfter(c, mark *element) {
	c.parent = e
	c.prev = mark
	if mark == nil {
		c.next = e.first
		e.first = c
	} else {
		c.next = mark.next
		mark.next = c
	}
	if c.next != nil {
		c.next.prev = c
	} else {
		e.last = c
	}
	if c.kind == preftree.ElemEntry {
		e.entries++
	}
}

func (e *element) detach() {
	p := e.parent
	if p == nil {
		return
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		p.first = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		p.last = e.prev
	}
	if e.kind == preftree.ElemEntry {
		p.entries--
	}
	e.parent, e.prev, e.next = nil, nil, nil
}
