package preftree

// ElementKind is the role of an element in the rendered tree.
type ElementKind int

const (
	ElemGroup    ElementKind = iota // top-level panel for one GroupKey
	ElemEntry                       // one node
	ElemChildren                    // child container, next sibling of its entry
	ElemHidden                      // collapsed run of non-matching nodes
)

func (k ElementKind) String() string {
	switch k {
	case ElemGroup:
		return "group"
	case ElemEntry:
		return "entry"
	case ElemChildren:
		return "children"
	case ElemHidden:
		return "hidden"
	default:
		return "invalid"
	}
}

// Position says where Insert puts an element relative to the receiver.
type Position int

const (
	Before  Position = iota // previous sibling
	After                   // next sibling
	Prepend                 // first child
	Append                  // last child
)

func (p Position) String() string {
	switch p {
	case Before:
		return "before"
	case After:
		return "after"
	case Prepend:
		return "prepend"
	case Append:
		return "append"
	default:
		return "invalid"
	}
}

// Handle is a reference to one element of a View.
//
// ID is the node id for entries and child containers, the id of the first
// node placed in a hidden container, and the group key for panels.
// Parent returns nil for panels. Next and First return nil when there is
// no such element.
type Handle interface {
	Kind() ElementKind
	ID() int64
	Parent() Handle
	Next() Handle
	First() Handle
	// EntryCount counts the direct entry children of the element.
	EntryCount() int
	Visible() bool
	SetVisible(bool)
	// Insert attaches a detached element created by the same View.
	Insert(pos Position, child Handle)
}

// View is the visual tree the Controller renders into. Lookups return nil
// when nothing is registered under the id.
type View interface {
	Group(key GroupKey) Handle
	Entry(id NodeID) Handle
	Children(id NodeID) Handle
	Hidden(id NodeID) Handle

	// NewGroup creates a panel and appends it after existing panels.
	NewGroup(key GroupKey) Handle
	// NewEntry creates a detached, visible entry for n.
	NewEntry(n *Node) Handle
	// NewChildren creates a detached, invisible child container.
	NewChildren(id NodeID) Handle
	// NewHidden creates a detached, invisible hidden container.
	NewHidden(first NodeID, indent int) Handle

	SetGroupInfo(info GroupInfo)
	// SetEmpty toggles the "no results" notice.
	SetEmpty(empty bool)
	// Reset removes every element.
	Reset()
}

// isKind reports whether h is non-nil and of kind k.
func isKind(h Handle, k ElementKind) bool {
	return h != nil && h.Kind() == k
}

// trailing returns the element that closes an entry in document order:
// its child container when one follows, otherwise the entry itself.
func trailing(v View, entry Handle) Handle {
	if c := v.Children(NodeID(entry.ID())); c != nil {
		return c
	}
	return entry
}
