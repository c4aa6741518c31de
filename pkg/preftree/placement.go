package preftree

import "github.com/joshuapare/ipamkit/internal/logger"

// Branch names the placement rule that produced a Directive.
type Branch int

const (
	BranchGroup   Branch = iota // first node of a new group panel
	BranchDescend               // deeper than the previous node
	BranchAscend                // shallower than the previous node
	BranchLevel                 // same depth as the previous node
)

func (b Branch) String() string {
	switch b {
	case BranchGroup:
		return "group"
	case BranchDescend:
		return "descend"
	case BranchAscend:
		return "ascend"
	case BranchLevel:
		return "level"
	default:
		return "invalid"
	}
}

// Directive says where a node's entry goes: at Pos relative to Ref.
type Directive struct {
	Ref    Handle
	Pos    Position
	Branch Branch
	Hidden bool // the entry lands inside a hidden container
}

// Resolver decides where the next node of a batch goes given the node
// rendered just before it. Resolve may create group panels, child and
// hidden containers, and may reveal or expand containers as a side effect.
type Resolver struct {
	view      View
	threshold int
	collapsed map[string]bool

	// onNewGroup is called for each panel Resolve creates.
	onNewGroup func(GroupKey)
}

// NewResolver returns a Resolver over view. Hidden containers holding at
// most threshold entries are revealed when the walk leaves them. Matching
// nodes whose type is listed in collapsedTypes are not auto-expanded.
func NewResolver(view View, threshold int, collapsedTypes []string) *Resolver {
	r := &Resolver{
		view:      view,
		threshold: threshold,
		collapsed: make(map[string]bool, len(collapsedTypes)),
	}
	for _, t := range collapsedTypes {
		r.collapsed[t] = true
	}
	return r
}

// GroupPanel returns the panel for key, creating it when missing.
func (r *Resolver) GroupPanel(key GroupKey) Handle {
	if g := r.view.Group(key); g != nil {
		return g
	}
	g := r.view.NewGroup(key)
	if r.onNewGroup != nil {
		r.onNewGroup(key)
	}
	return g
}

// Resolve computes the placement of node, which follows prev in the
// depth-first order. prev must already be rendered.
func (r *Resolver) Resolve(node, prev *Node) Directive {
	if node.Group != prev.Group {
		return Directive{Ref: r.GroupPanel(node.Group), Pos: Append, Branch: BranchGroup}
	}

	prevEntry := r.view.Entry(prev.ID)
	if prevEntry == nil {
		logger.Warn("previous node not rendered, placing at panel end",
			"node", node.ID, "prev", prev.ID)
		return Directive{Ref: r.GroupPanel(node.Group), Pos: Append, Branch: BranchGroup}
	}

	switch {
	case node.Indent > prev.Indent:
		return r.descend(node, prev, prevEntry)
	case node.Indent < prev.Indent:
		return r.ascend(node, prev, prevEntry)
	default:
		return r.level(node, prev, prevEntry)
	}
}

func (r *Resolver) descend(node, prev *Node, prevEntry Handle) Directive {
	container := r.ensureChildren(prev.ID, prevEntry)

	d := Directive{Branch: BranchDescend}
	if node.Match {
		d.Ref, d.Pos = container, Prepend
	} else {
		d.Hidden = true
		if first := container.First(); isKind(first, ElemHidden) {
			d.Ref, d.Pos = first, Prepend
		} else {
			h := r.view.NewHidden(node.ID, node.Indent)
			container.Insert(Prepend, h)
			d.Ref, d.Pos = h, Append
		}
	}

	// The parent evidently has children now.
	if prev.Children == ChildrenUnknown || prev.Children == ChildrenNone {
		prev.Children = ChildrenAtLeastOne
		prev.ChildCount = 0
	}
	if h := r.view.Hidden(prev.ID); h != nil {
		h.SetVisible(true)
	}
	if !(prev.Match && r.collapsed[prev.Type]) {
		container.SetVisible(true)
	}
	return d
}

func (r *Resolver) ascend(node, prev *Node, prevEntry Handle) Directive {
	cur := prevEntry
	for steps := prev.Indent - node.Indent; steps > 0; steps-- {
		up := cur.Parent()
		for isKind(up, ElemHidden) {
			up = up.Parent()
		}
		if up == nil || up.Kind() == ElemGroup {
			break
		}
		cur = up
	}
	if cur.Kind() == ElemEntry {
		cur = trailing(r.view, cur)
	}

	d := Directive{Branch: BranchAscend}
	if node.Match {
		d.Ref, d.Pos = cur, After
	} else {
		d.Hidden = true
		if next := cur.Next(); isKind(next, ElemHidden) {
			d.Ref, d.Pos = next, Prepend
		} else {
			h := r.view.NewHidden(node.ID, node.Indent)
			cur.Insert(After, h)
			d.Ref, d.Pos = h, Append
		}
	}

	if !prev.Match {
		if p := prevEntry.Parent(); isKind(p, ElemHidden) {
			r.autoReveal(p)
		}
	}
	return d
}

func (r *Resolver) level(node, prev *Node, prevEntry Handle) Directive {
	d := Directive{Branch: BranchLevel}
	parent := prevEntry.Parent()

	switch {
	case !prev.Match && node.Match:
		if isKind(parent, ElemHidden) {
			r.autoReveal(parent)
			d.Ref, d.Pos = parent, After
		} else {
			d.Ref, d.Pos = trailing(r.view, prevEntry), After
		}

	case prev.Match && !node.Match:
		ref := trailing(r.view, prevEntry)
		d.Hidden = true
		if next := ref.Next(); isKind(next, ElemHidden) {
			d.Ref, d.Pos = next, Prepend
		} else {
			h := r.view.NewHidden(node.ID, node.Indent)
			ref.Insert(After, h)
			d.Ref, d.Pos = h, Append
		}

	default:
		d.Ref, d.Pos = trailing(r.view, prevEntry), After
		d.Hidden = isKind(parent, ElemHidden)
	}
	return d
}

// ensureChildren returns the child container of id, creating it right
// after the entry when missing.
func (r *Resolver) ensureChildren(id NodeID, entry Handle) Handle {
	if c := r.view.Children(id); c != nil {
		return c
	}
	c := r.view.NewChildren(id)
	entry.Insert(After, c)
	return c
}

// autoReveal shows a hidden container small enough not to be worth hiding.
func (r *Resolver) autoReveal(h Handle) {
	if h.Visible() {
		return
	}
	if h.EntryCount() <= r.threshold {
		h.SetVisible(true)
	}
}
