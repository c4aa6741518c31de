package preftree

import (
	"strings"
	"time"

	"github.com/joshuapare/ipamkit/internal/logger"
)

// Controller drives search, pagination and expand/collapse over a View.
// It must only be used from one goroutine.
type Controller struct {
	opts     Options
	view     View
	registry *Registry
	renderer *Renderer

	lastID      int64 // last query id handed out
	newest      int64 // id of the newest applied response
	current     Query
	hasCurrent  bool
	offset      int // offset of the last applied page
	endOfResult bool
	pageID      int64 // outstanding next-page query, zero when none
	searchID    int64 // search whose first page is outstanding, zero when none
	empty       bool
	meta        any

	inflight map[int64]sent
	fetching map[NodeID]int64 // child fetches in flight, by parent
	loaded   map[NodeID]bool  // nodes whose children were fetched

	stats Stats
}

type sent struct {
	query Query
	at    time.Time
}

// NewController returns a Controller rendering into view.
func NewController(view View, opts Options) *Controller {
	opts = opts.withDefaults()
	reg := NewRegistry()
	return &Controller{
		opts:        opts,
		view:        view,
		registry:    reg,
		renderer:    NewRenderer(view, reg, opts.RevealThreshold, opts.CollapsedTypes),
		endOfResult: true,
		inflight:    make(map[int64]sent),
		fetching:    make(map[NodeID]int64),
		loaded:      make(map[NodeID]bool),
	}
}

// Options returns the effective options.
func (c *Controller) Options() Options { return c.opts }

// View returns the view the controller renders into.
func (c *Controller) View() View { return c.view }

// Node returns the registry copy of id.
func (c *Controller) Node(id NodeID) (*Node, bool) { return c.registry.Get(id) }

// Current returns the active search query.
func (c *Controller) Current() (Query, bool) { return c.current, c.hasCurrent }

// EndOfResult reports whether the current search has no further pages.
func (c *Controller) EndOfResult() bool { return c.endOfResult }

// Empty reports whether the last applied search returned nothing.
func (c *Controller) Empty() bool { return c.empty }

// Meta returns the backend extras of the last applied search.
func (c *Controller) Meta() any { return c.meta }

// Stats describes the last applied response.
func (c *Controller) Stats() Stats { return c.stats }

// Pending reports whether any query is awaiting Receive.
func (c *Controller) Pending() bool { return len(c.inflight) > 0 }

func (c *Controller) issue(q Query) *Query {
	c.lastID++
	q.ID = c.lastID
	c.inflight[q.ID] = sent{query: q, at: c.opts.Now()}
	return &q
}

// Search starts a new search and returns the query to run, or nil when
// nothing needs fetching. An empty query string clears the view unless
// f.TopLevel asks for the indent-0 listing. Repeating the current search
// is a no-op unless f.Explicit is set.
func (c *Controller) Search(queryString string, f Filters) *Query {
	q := Query{
		Kind:          KindSearch,
		QueryString:   queryString,
		ParentsDepth:  f.ParentsDepth,
		ChildrenDepth: f.ChildrenDepth,
		Groups:        append([]string(nil), f.Groups...),
		MaxResult:     c.opts.BatchSize,
	}

	if strings.TrimSpace(queryString) == "" {
		if !f.TopLevel {
			c.Clear()
			return nil
		}
		zero := 0
		q.Indent = &zero
	}

	if c.hasCurrent && !f.Explicit && c.current.sameSearch(q) {
		logger.Debug("search unchanged, skipping", "query", queryString)
		return nil
	}

	issued := c.issue(q)
	c.current = *issued
	c.hasCurrent = true
	c.offset = 0
	c.endOfResult = false
	c.pageID = 0
	c.searchID = issued.ID
	logger.Debug("search issued", "query_id", issued.ID, "query", queryString)
	return issued
}

// Clear drops every node and invalidates all queries in flight.
func (c *Controller) Clear() {
	c.renderer.Reset()
	c.view.SetEmpty(false)
	c.current = Query{}
	c.hasCurrent = false
	c.offset = 0
	c.endOfResult = true
	c.pageID = 0
	c.searchID = 0
	c.empty = false
	c.meta = nil
	c.newest = c.lastID + 1
	clear(c.inflight)
	clear(c.fetching)
	clear(c.loaded)
}

// NextPage returns the query for the next page of the current search, or
// nil when the first page or another page is still outstanding or the
// result is exhausted.
func (c *Controller) NextPage() *Query {
	if !c.hasCurrent || c.endOfResult || c.pageID != 0 || c.searchID != 0 {
		return nil
	}
	q := c.current
	q.Kind = KindNextPage
	q.Offset = c.offset + c.opts.BatchSize - 1
	issued := c.issue(q)
	c.pageID = issued.ID
	logger.Debug("next page issued", "query_id", issued.ID, "offset", issued.Offset)
	return issued
}

// WantsMore reports whether another page should be fetched to fill a
// viewport of capacity rows currently showing visibleRows.
func (c *Controller) WantsMore(visibleRows, capacity int) bool {
	return c.hasCurrent && !c.endOfResult && c.pageID == 0 && c.searchID == 0 && visibleRows < capacity
}

// GroupRequests returns the panels created since the last call. Their
// metadata can be fetched from a GroupSource and applied with SetGroupInfo.
func (c *Controller) GroupRequests() []GroupKey {
	return c.renderer.TakeNewGroups()
}

// SetGroupInfo applies fetched panel metadata.
func (c *Controller) SetGroupInfo(info GroupInfo) {
	if c.view.Group(info.Key) == nil {
		return
	}
	c.view.SetGroupInfo(info)
}

// Reveal shows the hidden container keyed by id.
func (c *Controller) Reveal(id NodeID) error {
	h := c.view.Hidden(id)
	if h == nil {
		return ErrNoHidden
	}
	h.SetVisible(true)
	return nil
}

// Receive applies the outcome of q. It returns ErrStale for responses
// superseded by a newer one and ErrEmptyUpdate for incremental updates
// without nodes; neither is reported through Notify. Other errors are
// reported once and returned.
func (c *Controller) Receive(q Query, resp *Response, err error) error {
	s, tracked := c.inflight[q.ID]
	delete(c.inflight, q.ID)
	if c.pageID == q.ID {
		c.pageID = 0
	}
	failedSearch := false
	if c.searchID == q.ID {
		c.searchID = 0
		failedSearch = err != nil || resp == nil
	}
	if q.Kind == KindChildren && c.fetching[q.Parent] == q.ID {
		delete(c.fetching, q.Parent)
	}

	if err == nil && resp == nil {
		err = &Error{Kind: ErrKindProtocol, Msg: "empty response"}
	}
	if err != nil {
		if !tracked || q.ID < c.newest {
			logger.Debug("dropping error for superseded query", "query_id", q.ID, "error", err)
			return ErrStale
		}
		if failedSearch {
			// No page of a failed search can be continued.
			c.endOfResult = true
		}
		logger.Error("query failed", "query_id", q.ID, "kind", q.Kind.String(), "error", err)
		c.notify(q, err)
		return err
	}

	if resp.QueryID < c.newest {
		logger.Debug("discarding stale response", "query_id", resp.QueryID, "newest", c.newest)
		return ErrStale
	}
	if q.Kind == KindChildren && !tracked {
		logger.Debug("dropping child fetch of a replaced search", "query_id", q.ID, "parent", q.Parent)
		return ErrStale
	}
	if resp.QueryID != q.ID {
		logger.Warn("response query id differs from request", "request", q.ID, "response", resp.QueryID)
	}
	c.newest = resp.QueryID

	start := c.opts.Now()
	var applyErr error
	switch q.Kind {
	case KindSearch:
		c.applySearch(resp)
	case KindNextPage:
		applyErr = c.applyPage(q, resp)
	case KindChildren:
		applyErr = c.applyChildren(q.Parent, resp)
	}

	c.stats = Stats{
		QueryID:     resp.QueryID,
		Kind:        q.Kind,
		Results:     len(resp.Nodes),
		ApplyTime:   c.opts.Now().Sub(start),
		TotalNodes:  c.registry.Len(),
		EndOfResult: c.endOfResult,
	}
	if tracked {
		c.stats.QueryTime = start.Sub(s.at)
	}

	if applyErr != nil && !silent(applyErr) {
		c.notify(q, applyErr)
	}
	return applyErr
}

func (c *Controller) applySearch(resp *Response) {
	c.renderer.Reset()
	// Child fetches issued against the replaced tree have no parent to
	// land on any more.
	for id, s := range c.inflight {
		if s.query.Kind == KindChildren {
			delete(c.inflight, id)
		}
	}
	clear(c.fetching)
	clear(c.loaded)
	c.meta = resp.Meta
	c.empty = len(resp.Nodes) == 0
	c.view.SetEmpty(c.empty)
	c.endOfResult = exhausted(resp, c.current.MaxResult)
	if c.empty {
		logger.Info("search returned no results", "query_id", resp.QueryID)
		return
	}
	c.renderer.InsertList(resp.Nodes, nil)
}

func (c *Controller) applyPage(q Query, resp *Response) error {
	// Pages of an older search still render, but only the current search
	// decides whether more pages exist.
	current := q.ID > c.current.ID
	if len(resp.Nodes) == 0 {
		logger.Warn("next page returned no results", "query_id", resp.QueryID)
		if current {
			c.endOfResult = true
		}
		return ErrEmptyUpdate
	}
	if current {
		c.offset = q.Offset
		c.endOfResult = exhausted(resp, q.MaxResult)
	}
	c.renderer.InsertList(resp.Nodes, nil)
	return nil
}

func (c *Controller) applyChildren(parent NodeID, resp *Response) error {
	node, ok := c.registry.Get(parent)
	if !ok {
		logger.Warn("children for unknown parent", "parent", parent)
		return ErrUnknownNode
	}
	if len(resp.Nodes) == 0 {
		logger.Warn("child fetch returned no results", "parent", parent)
		return ErrEmptyUpdate
	}

	c.renderer.InsertList(resp.Nodes, node)
	c.loaded[parent] = true

	container := c.view.Children(parent)
	if container == nil {
		return nil
	}
	if first := container.First(); isKind(first, ElemHidden) {
		first.SetVisible(true)
	}
	container.SetVisible(true)
	return nil
}

func (c *Controller) notify(q Query, err error) {
	if c.opts.Notify == nil {
		return
	}
	title := "Error"
	switch q.Kind {
	case KindSearch, KindNextPage:
		title = "Search failed"
	case KindChildren:
		title = "Could not load children"
	}
	c.opts.Notify(title, err.Error())
}

// exhausted reports whether resp was the last page: fewer nodes than the
// page size that was asked for.
func exhausted(resp *Response, asked int) bool {
	limit := resp.MaxResult
	if limit <= 0 {
		limit = asked
	}
	if limit <= 0 {
		return true
	}
	return len(resp.Nodes) < limit
}
