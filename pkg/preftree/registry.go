package preftree

// Registry maps node ids to the latest copy seen of each node. Pointers
// returned by Upsert and Get stay valid until Clear.
type Registry struct {
	nodes map[NodeID]*Node
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[NodeID]*Node)}
}

// Upsert stores n, overwriting an older copy in place. Knowledge about
// children is never downgraded: an incoming Unknown keeps whatever the
// registry already learned.
func (r *Registry) Upsert(n Node) *Node {
	cur, ok := r.nodes[n.ID]
	if !ok {
		stored := n
		r.nodes[n.ID] = &stored
		return &stored
	}
	if n.Children == ChildrenUnknown && cur.Children != ChildrenUnknown {
		n.Children = cur.Children
		n.ChildCount = cur.ChildCount
	}
	*cur = n
	return cur
}

// Get looks up a node by id.
func (r *Registry) Get(id NodeID) (*Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Len returns the number of known nodes.
func (r *Registry) Len() int { return len(r.nodes) }

// Clear forgets every node.
func (r *Registry) Clear() {
	r.nodes = make(map[NodeID]*Node)
}
