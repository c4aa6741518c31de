package nipap

import (
	"fmt"
	"net/netip"

	"github.com/go-playground/validator/v10"

	"github.com/joshuapare/ipamkit/internal/logger"
	"github.com/joshuapare/ipamkit/pkg/preftree"
)

var validate = validator.New()

// Search include flags travel as the strings "true" and "false".
func flag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// NewSearchRequest encodes q for the smart prefix search endpoint.
func NewSearchRequest(q preftree.Query) *SearchRequest {
	req := &SearchRequest{
		QueryID:            q.ID,
		QueryString:        q.QueryString,
		ParentsDepth:       int(q.ParentsDepth),
		ChildrenDepth:      int(q.ChildrenDepth),
		IncludeAllParents:  flag(true),
		IncludeAllChildren: flag(false),
		IncludeNeighbors:   flag(true),
		MaxResult:          MaxResult(q.MaxResult),
		Offset:             q.Offset,
		VRFFilter:          q.Groups,
		Indent:             q.Indent,
	}
	if q.Kind == preftree.KindChildren {
		parent := int64(q.Parent)
		req.ParentPrefix = &parent
		req.ParentsDepth = int(preftree.DepthNone)
		req.ChildrenDepth = int(preftree.DepthImmediate)
		req.MaxResult = 0
		req.Offset = 0
		req.Indent = nil
	}
	return req
}

// HostPrefix reports whether the prefix is a single address, which can
// never have children.
func (p *Prefix) HostPrefix() bool {
	pfx, err := netip.ParsePrefix(p.Prefix)
	if err != nil {
		return false
	}
	return pfx.Bits() == pfx.Addr().BitLen()
}

// Label is the text shown for the prefix.
func (p *Prefix) Label() string {
	if p.DisplayPrefix != "" {
		return p.DisplayPrefix
	}
	return p.Prefix
}

// GroupKey is the VRF the prefix lives in.
func (p *Prefix) GroupKey() preftree.GroupKey {
	if p.VRFID == nil {
		return 0
	}
	return preftree.GroupKey(*p.VRFID)
}

// Node converts p for the renderer. The prefix itself is kept in Data.
func (p Prefix) Node() preftree.Node {
	state, count := preftree.ChildStateFromCount(p.Children)
	if p.HostPrefix() {
		state, count = preftree.ChildrenNone, 0
	}
	return preftree.Node{
		ID:         preftree.NodeID(p.ID),
		Indent:     p.Indent,
		Match:      p.Match,
		Children:   state,
		ChildCount: count,
		Type:       p.Type,
		Group:      p.GroupKey(),
		Label:      p.Label(),
		Data:       &p,
	}
}

// ToResponse validates r and converts it for the renderer.
func (r *SearchResponse) ToResponse() (*preftree.Response, error) {
	if r.Failed() {
		return nil, &BackendError{Message: r.Text(), Type: r.Type}
	}
	if r.SearchOptions.QueryID == nil {
		return nil, &preftree.Error{Kind: preftree.ErrKindProtocol, Msg: "response carries no query_id"}
	}

	nodes := make([]preftree.Node, 0, len(r.Result))
	for i := range r.Result {
		if err := validate.Struct(&r.Result[i]); err != nil {
			return nil, &preftree.Error{
				Kind: preftree.ErrKindProtocol,
				Msg:  fmt.Sprintf("invalid prefix at position %d", i),
				Err:  err,
			}
		}
		nodes = append(nodes, r.Result[i].Node())
	}

	resp := &preftree.Response{
		QueryID:   int64(*r.SearchOptions.QueryID),
		Offset:    int(r.SearchOptions.Offset),
		MaxResult: int(r.SearchOptions.MaxResult),
		Nodes:     nodes,
	}
	if len(r.Interpretation) > 0 {
		interp, err := ParseInterpretation(r.Interpretation)
		switch {
		case err != nil:
			logger.Warn("unreadable query interpretation", "error", err)
		case interp != nil:
			resp.Meta = interp
		}
	}
	return resp, nil
}
