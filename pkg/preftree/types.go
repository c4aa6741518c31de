package preftree

import (
	"fmt"
	"strings"
	"time"
)

// NodeID identifies a node across every batch of a search.
type NodeID int64

// GroupKey identifies the top-level panel a node belongs to.
type GroupKey int64

// ChildState records what is known about a node's children.
type ChildState int

const (
	ChildrenUnknown    ChildState = iota // backend did not say
	ChildrenAtLeastOne                   // a child has been observed but the total is unknown
	ChildrenNone                         // node is a leaf
	ChildrenKnown                        // Node.ChildCount holds the total
)

func (s ChildState) String() string {
	switch s {
	case ChildrenUnknown:
		return "unknown"
	case ChildrenAtLeastOne:
		return "at-least-one"
	case ChildrenNone:
		return "none"
	case ChildrenKnown:
		return "known"
	default:
		return fmt.Sprintf("ChildState(%d)", int(s))
	}
}

// Backend child-count sentinels.
const (
	SentinelUnknown    = -2
	SentinelAtLeastOne = -1
)

// ChildStateFromCount maps a backend child count onto a ChildState.
// -2 means unknown and -1 means at least one. Zero is a leaf and any
// positive value is an exact count. Other negative values are treated as
// unknown.
func ChildStateFromCount(n int) (ChildState, int) {
	switch {
	case n == 0:
		return ChildrenNone, 0
	case n > 0:
		return ChildrenKnown, n
	case n == SentinelAtLeastOne:
		return ChildrenAtLeastOne, 0
	default:
		return ChildrenUnknown, 0
	}
}

// Node is one item of a depth-first result list.
type Node struct {
	ID         NodeID
	Indent     int
	Match      bool
	Children   ChildState
	ChildCount int // valid when Children == ChildrenKnown
	Type       string
	Group      GroupKey
	Label      string
	Data       any // backend payload, opaque to this package
}

// HasChildren reports whether the node may have children worth showing.
func (n *Node) HasChildren() bool {
	return n.Children != ChildrenNone
}

// Depth selects how many levels of parents or children a search includes.
type Depth int

const (
	DepthNone      Depth = 0
	DepthImmediate Depth = 1
	DepthAll       Depth = -1
)

// ParseDepth accepts "none", "immediate" or "all".
func ParseDepth(s string) (Depth, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return DepthNone, nil
	case "immediate":
		return DepthImmediate, nil
	case "all":
		return DepthAll, nil
	}
	return DepthNone, fmt.Errorf("invalid depth %q (want none, immediate or all)", s)
}

func (d Depth) String() string {
	switch d {
	case DepthNone:
		return "none"
	case DepthImmediate:
		return "immediate"
	case DepthAll:
		return "all"
	default:
		return fmt.Sprintf("Depth(%d)", int(d))
	}
}

// QueryKind tells Receive how to apply a response.
type QueryKind int

const (
	KindSearch   QueryKind = iota // full replacement of the view
	KindNextPage                  // next batch of the current search
	KindChildren                  // lazy load of one node's children
)

func (k QueryKind) String() string {
	switch k {
	case KindSearch:
		return "search"
	case KindNextPage:
		return "next-page"
	case KindChildren:
		return "children"
	default:
		return fmt.Sprintf("QueryKind(%d)", int(k))
	}
}

// Filters narrow a search.
type Filters struct {
	ParentsDepth  Depth
	ChildrenDepth Depth
	Groups        []string // backend group filter, e.g. VRF route targets
	// TopLevel lists only indent-0 nodes when the query string is empty.
	TopLevel bool
	// Explicit re-issues a search even when it equals the current one.
	Explicit bool
}

// Query describes one backend request. Queries are values; the
// Controller keeps its own copy of every query it hands out.
type Query struct {
	ID            int64
	Kind          QueryKind
	QueryString   string
	ParentsDepth  Depth
	ChildrenDepth Depth
	Groups        []string
	Indent        *int   // restrict results to one indent level
	Parent        NodeID // KindChildren only
	Offset        int
	MaxResult     int // zero means unbounded
}

// sameSearch reports whether two searches would return the same list.
func (q Query) sameSearch(o Query) bool {
	if q.QueryString != o.QueryString || q.ParentsDepth != o.ParentsDepth ||
		q.ChildrenDepth != o.ChildrenDepth || len(q.Groups) != len(o.Groups) {
		return false
	}
	if (q.Indent == nil) != (o.Indent == nil) || (q.Indent != nil && *q.Indent != *o.Indent) {
		return false
	}
	for i := range q.Groups {
		if q.Groups[i] != o.Groups[i] {
			return false
		}
	}
	return true
}

// Response is a decoded backend reply.
type Response struct {
	QueryID   int64
	Offset    int
	MaxResult int // zero means unbounded
	Nodes     []Node
	// Meta carries backend extras such as the parsed query interpretation.
	Meta any
}

// GroupInfo is the metadata shown in a group panel header.
type GroupInfo struct {
	Key    GroupKey
	Title  string
	Detail string
}

// Stats describes the most recently applied response.
type Stats struct {
	QueryID     int64
	Kind        QueryKind
	Results     int
	QueryTime   time.Duration // dispatch to Receive
	ApplyTime   time.Duration // time spent placing nodes
	TotalNodes  int
	EndOfResult bool
}
