package preftree

import (
	"context"
	"errors"
)

// Backend answers queries.
type Backend interface {
	Search(ctx context.Context, q Query) (*Response, error)
}

// GroupSource resolves panel metadata.
type GroupSource interface {
	Group(ctx context.Context, key GroupKey) (*GroupInfo, error)
}

// Result is the outcome of running a Query.
type Result struct {
	Query    Query
	Response *Response
	Err      error
}

// Run executes q against b. Errors that are not already typed are
// reported as transport errors.
func Run(ctx context.Context, b Backend, q Query) Result {
	resp, err := b.Search(ctx, q)
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			err = &Error{Kind: ErrKindTransport, Msg: "query failed", Err: err}
		}
	}
	return Result{Query: q, Response: resp, Err: err}
}

// Do runs q synchronously and applies the result. A nil q is a no-op.
func (c *Controller) Do(ctx context.Context, b Backend, q *Query) error {
	if q == nil {
		return nil
	}
	res := Run(ctx, b, *q)
	return c.Receive(res.Query, res.Response, res.Err)
}

// FillGroups fetches metadata for every pending panel and applies it.
// Lookup failures are returned joined; the remaining panels still update.
func (c *Controller) FillGroups(ctx context.Context, src GroupSource) error {
	var errs []error
	for _, key := range c.GroupRequests() {
		info, err := src.Group(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.SetGroupInfo(*info)
	}
	return errors.Join(errs...)
}
