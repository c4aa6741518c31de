package preftree_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ipamkit/pkg/preftree"
	"github.com/joshuapare/ipamkit/pkg/preftree/memview"
)

func node(id int64, indent int, match bool) preftree.Node {
	return preftree.Node{
		ID:       preftree.NodeID(id),
		Indent:   indent,
		Match:    match,
		Children: preftree.ChildrenUnknown,
		Type:     "reservation",
	}
}

func leaf(id int64, indent int, match bool) preftree.Node {
	n := node(id, indent, match)
	n.Children = preftree.ChildrenNone
	return n
}

type notice struct{ title, msg string }

type harness struct {
	ctrl    *preftree.Controller
	view    *memview.View
	notices []notice
}

func newHarness(t *testing.T, opts preftree.Options) *harness {
	t.Helper()
	h := &harness{view: memview.New()}
	opts.Notify = func(title, msg string) { h.notices = append(h.notices, notice{title, msg}) }
	h.ctrl = preftree.NewController(h.view, opts)
	return h
}

// respond applies nodes as the answer to q.
func (h *harness) respond(t *testing.T, q *preftree.Query, nodes ...preftree.Node) error {
	t.Helper()
	require.NotNil(t, q)
	return h.ctrl.Receive(*q, &preftree.Response{
		QueryID:   q.ID,
		Offset:    q.Offset,
		MaxResult: q.MaxResult,
		Nodes:     nodes,
	}, nil)
}

// search runs a search and applies nodes as its first page.
func (h *harness) search(t *testing.T, query string, nodes ...preftree.Node) *preftree.Query {
	t.Helper()
	q := h.ctrl.Search(query, preftree.Filters{Explicit: true})
	require.NotNil(t, q)
	require.NoError(t, h.respond(t, q, nodes...))
	return q
}

func ids(v ...int64) []preftree.NodeID {
	out := make([]preftree.NodeID, len(v))
	for i, id := range v {
		out[i] = preftree.NodeID(id)
	}
	return out
}

// parentOf returns the node whose child container holds id, skipping
// hidden containers.
func parentOf(t require.TestingT, v *memview.View, id preftree.NodeID) (preftree.NodeID, bool) {
	e := v.Entry(id)
	require.NotNil(t, e)
	p := e.Parent()
	for p != nil && p.Kind() == preftree.ElemHidden {
		p = p.Parent()
	}
	require.NotNil(t, p)
	if p.Kind() == preftree.ElemGroup {
		return 0, false
	}
	require.Equal(t, preftree.ElemChildren, p.Kind())
	return preftree.NodeID(p.ID()), true
}

// fakeBackend serves queries from a function and records them.
type fakeBackend struct {
	mu      sync.Mutex
	queries []preftree.Query
	answer  func(q preftree.Query) (*preftree.Response, error)
}

func (b *fakeBackend) Search(_ context.Context, q preftree.Query) (*preftree.Response, error) {
	b.mu.Lock()
	b.queries = append(b.queries, q)
	b.mu.Unlock()
	return b.answer(q)
}

type fakeGroups map[preftree.GroupKey]string

func (g fakeGroups) Group(_ context.Context, key preftree.GroupKey) (*preftree.GroupInfo, error) {
	title, ok := g[key]
	if !ok {
		return nil, &preftree.Error{Kind: preftree.ErrKindBackend, Msg: "no such group"}
	}
	return &preftree.GroupInfo{Key: key, Title: title}, nil
}
