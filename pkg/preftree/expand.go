package preftree

import "github.com/joshuapare/ipamkit/internal/logger"

// ExpandState is the disclosure state of one node.
type ExpandState int

const (
	Collapsed    ExpandState = iota
	FetchPending             // children requested, not yet received
	Expanded
)

func (s ExpandState) String() string {
	switch s {
	case Collapsed:
		return "collapsed"
	case FetchPending:
		return "fetch-pending"
	case Expanded:
		return "expanded"
	default:
		return "invalid"
	}
}

// State returns the disclosure state of id. Unknown ids are Collapsed.
func (c *Controller) State(id NodeID) ExpandState {
	if _, ok := c.fetching[id]; ok {
		return FetchPending
	}
	if ch := c.view.Children(id); ch != nil && ch.Visible() {
		return Expanded
	}
	return Collapsed
}

// Toggle flips the disclosure state of id. It returns a query when the
// node's children have to be fetched first; the node expands once that
// query is received. Toggling a node with a fetch in flight does nothing.
func (c *Controller) Toggle(id NodeID) (*Query, error) {
	node, ok := c.registry.Get(id)
	if !ok {
		return nil, ErrUnknownNode
	}

	switch c.State(id) {
	case FetchPending:
		return nil, nil
	case Expanded:
		c.view.Children(id).SetVisible(false)
		logger.Debug("collapsed", "node", id)
		return nil, nil
	}

	if !node.HasChildren() {
		return nil, nil
	}

	if c.needsFetch(node) {
		q := c.current
		q.Kind = KindChildren
		q.Parent = id
		q.ParentsDepth = DepthNone
		q.ChildrenDepth = DepthImmediate
		q.Indent = nil
		q.Offset = 0
		q.MaxResult = 0
		issued := c.issue(q)
		c.fetching[id] = issued.ID
		logger.Debug("fetching children", "node", id, "query_id", issued.ID)
		return issued, nil
	}

	ch := c.view.Children(id)
	if ch == nil {
		return nil, nil
	}
	ch.SetVisible(true)
	logger.Debug("expanded", "node", id)
	return nil, nil
}

// needsFetch reports whether the rendered children of n are incomplete.
func (c *Controller) needsFetch(n *Node) bool {
	if c.loaded[n.ID] {
		return false
	}
	switch n.Children {
	case ChildrenUnknown:
		return true
	case ChildrenAtLeastOne:
		return c.renderedChildren(n.ID) == 0
	case ChildrenKnown:
		return c.renderedChildren(n.ID) < n.ChildCount
	default:
		return false
	}
}

// renderedChildren counts the direct children of id on screen or folded
// into hidden runs.
func (c *Controller) renderedChildren(id NodeID) int {
	ch := c.view.Children(id)
	if ch == nil {
		return 0
	}
	n := 0
	for e := ch.First(); e != nil; e = e.Next() {
		switch e.Kind() {
		case ElemEntry:
			n++
		case ElemHidden:
			n += e.EntryCount()
		}
	}
	return n
}
