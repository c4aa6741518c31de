package preftree

import "github.com/joshuapare/ipamkit/internal/logger"

// Renderer places batches of nodes into a View, skipping nodes that are
// already rendered.
type Renderer struct {
	view     View
	registry *Registry
	resolver *Resolver

	newGroups []GroupKey
}

// NewRenderer wires a renderer to view and registry.
func NewRenderer(view View, registry *Registry, threshold int, collapsedTypes []string) *Renderer {
	r := &Renderer{
		view:     view,
		registry: registry,
		resolver: NewResolver(view, threshold, collapsedTypes),
	}
	r.resolver.onNewGroup = func(key GroupKey) { r.newGroups = append(r.newGroups, key) }
	return r
}

// InsertList renders batch. When anchor is set the batch continues below
// that already rendered node, as a child fetch does; it is put in front of
// the batch unless the batch already starts with it.
func (r *Renderer) InsertList(batch []Node, anchor *Node) {
	if len(batch) == 0 {
		return
	}
	if anchor != nil && batch[0].ID != anchor.ID {
		logger.Debug("anchoring batch below parent", "parent", anchor.ID, "first", batch[0].ID)
		batch = append([]Node{*anchor}, batch...)
	}

	prev := r.registry.Upsert(batch[0])
	if r.view.Entry(prev.ID) == nil {
		r.render(prev, r.resolver.GroupPanel(prev.Group), Append)
	}

	for i := 1; i < len(batch); i++ {
		node := r.registry.Upsert(batch[i])

		hidden := false
		if entry := r.view.Entry(node.ID); entry != nil {
			hidden = isKind(entry.Parent(), ElemHidden)
		} else {
			d := r.resolver.Resolve(node, prev)
			logger.Debug("placing node", "node", node.ID, "prev", prev.ID,
				"branch", d.Branch.String(), "pos", d.Pos.String(), "hidden", d.Hidden)
			r.render(node, d.Ref, d.Pos)
			hidden = d.Hidden
		}

		// Leaving a small hidden run for a visible one shows the run.
		if !hidden {
			if pe := r.view.Entry(prev.ID); pe != nil {
				if p := pe.Parent(); isKind(p, ElemHidden) {
					r.resolver.autoReveal(p)
				}
			}
		}
		prev = node
	}
}

// render creates the entry for n at pos relative to ref, followed by a
// collapsed child container unless n is a known leaf.
func (r *Renderer) render(n *Node, ref Handle, pos Position) Handle {
	entry := r.view.NewEntry(n)
	ref.Insert(pos, entry)
	if n.HasChildren() && r.view.Children(n.ID) == nil {
		entry.Insert(After, r.view.NewChildren(n.ID))
	}
	return entry
}

// TakeNewGroups returns and forgets the panels created since the last call.
func (r *Renderer) TakeNewGroups() []GroupKey {
	keys := r.newGroups
	r.newGroups = nil
	return keys
}

// Reset clears the view and the registry.
func (r *Renderer) Reset() {
	r.view.Reset()
	r.registry.Clear()
	r.newGroups = nil
}
