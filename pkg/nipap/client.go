// Package nipap is a client for the NIPAP web backend's smart search
// endpoints. Client implements preftree.Backend for prefixes and
// preftree.GroupSource for VRF panel titles.
package nipap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/joshuapare/ipamkit/internal/logger"
	"github.com/joshuapare/ipamkit/pkg/preftree"
)

// Endpoint paths relative to the base URL.
const (
	PathSmartSearchPrefix = "/xhr/smart_search_prefix"
	PathSmartSearchVRF    = "/xhr/smart_search_vrf"
)

const defaultTimeout = 30 * time.Second

// Client talks to one backend.
type Client struct {
	baseURL string
	http    *http.Client

	vrfs    singleflight.Group
	mu      sync.Mutex
	vrfInfo map[preftree.GroupKey]*preftree.GroupInfo
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("nipap: empty backend URL")
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		vrfInfo: make(map[preftree.GroupKey]*preftree.GroupInfo),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SmartSearchPrefix runs a prefix search.
func (c *Client) SmartSearchPrefix(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.post(ctx, PathSmartSearchPrefix, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SmartSearchVRF runs a VRF search.
func (c *Client) SmartSearchVRF(ctx context.Context, req *VRFSearchRequest) (*VRFSearchResponse, error) {
	var resp VRFSearchResponse
	if err := c.post(ctx, PathSmartSearchVRF, req, &resp); err != nil {
		return nil, err
	}
	if resp.Failed() {
		return nil, &BackendError{Message: resp.Text(), Type: resp.Type}
	}
	return &resp, nil
}

// Search implements preftree.Backend.
func (c *Client) Search(ctx context.Context, q preftree.Query) (*preftree.Response, error) {
	start := time.Now()
	resp, err := c.SmartSearchPrefix(ctx, NewSearchRequest(q))
	if err != nil {
		return nil, err
	}
	out, err := resp.ToResponse()
	if err != nil {
		return nil, err
	}
	logger.Debug("prefix search answered", "query_id", out.QueryID, "results", len(out.Nodes),
		"elapsed", time.Since(start))
	return out, nil
}

// VRF looks up one VRF by id. Concurrent lookups of the same id share a
// single request.
func (c *Client) VRF(ctx context.Context, id int64) (*VRF, error) {
	v, err, _ := c.vrfs.Do(strconv.FormatInt(id, 10), func() (any, error) {
		resp, err := c.SmartSearchVRF(ctx, &VRFSearchRequest{QueryString: "", VRFID: &id})
		if err != nil {
			return nil, err
		}
		if len(resp.Result) == 0 {
			return nil, &preftree.Error{Kind: preftree.ErrKindBackend, Msg: fmt.Sprintf("VRF %d not found", id)}
		}
		return &resp.Result[0], nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*VRF), nil
}

// Group implements preftree.GroupSource. Results are cached per client.
func (c *Client) Group(ctx context.Context, key preftree.GroupKey) (*preftree.GroupInfo, error) {
	c.mu.Lock()
	info, ok := c.vrfInfo[key]
	c.mu.Unlock()
	if ok {
		return info, nil
	}

	v, err := c.VRF(ctx, int64(key))
	if err != nil {
		return nil, err
	}
	info = GroupInfo(v)

	c.mu.Lock()
	c.vrfInfo[key] = info
	c.mu.Unlock()
	return info, nil
}

// GroupInfo builds the panel header for a VRF.
func GroupInfo(v *VRF) *preftree.GroupInfo {
	rt := "-"
	if v.RT != nil && *v.RT != "" {
		rt = *v.RT
	}
	return &preftree.GroupInfo{
		Key:    preftree.GroupKey(v.ID),
		Title:  rt + " " + v.Name,
		Detail: v.Description,
	}
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &preftree.Error{Kind: preftree.ErrKindTransport, Msg: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &preftree.Error{Kind: preftree.ErrKindTransport, Msg: "POST " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &preftree.Error{Kind: preftree.ErrKindTransport, Msg: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &preftree.Error{Kind: preftree.ErrKindProtocol, Msg: "decode response", Err: err}
	}
	return nil
}
