package nipap

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// MaxResult is a page size that encodes as false when unbounded.
type MaxResult int

func (m MaxResult) MarshalJSON() ([]byte, error) {
	if m <= 0 {
		return []byte("false"), nil
	}
	return strconv.AppendInt(nil, int64(m), 10), nil
}

func (m *MaxResult) UnmarshalJSON(b []byte) error {
	var v FlexInt
	if err := v.UnmarshalJSON(b); err != nil {
		return err
	}
	*m = MaxResult(v)
	return nil
}

// FlexInt decodes integers sent either as numbers or numeric strings.
// false and null decode as zero.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := string(b)
	switch s {
	case "null", "false", `"false"`, `""`:
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*f = FlexInt(n)
	return nil
}

// SearchRequest is the body of a smart prefix search.
type SearchRequest struct {
	QueryID            int64     `json:"query_id"`
	QueryString        string    `json:"query_string"`
	ParentsDepth       int       `json:"parents_depth"`
	ChildrenDepth      int       `json:"children_depth"`
	IncludeAllParents  string    `json:"include_all_parents"`
	IncludeAllChildren string    `json:"include_all_children"`
	IncludeNeighbors   string    `json:"include_neighbors"`
	MaxResult          MaxResult `json:"max_result"`
	Offset             int       `json:"offset"`
	VRFFilter          []string  `json:"vrf_filter,omitempty"`
	Indent             *int      `json:"indent,omitempty"`
	ParentPrefix       *int64    `json:"parent_prefix,omitempty"`
}

// SearchOptions echoes the options the backend applied.
type SearchOptions struct {
	QueryID      *FlexInt  `json:"query_id"`
	MaxResult    MaxResult `json:"max_result"`
	Offset       FlexInt   `json:"offset"`
	ParentsDepth FlexInt   `json:"parents_depth"`
	ChildDepth   FlexInt   `json:"children_depth"`
	ParentPrefix *FlexInt  `json:"parent_prefix"`
}

// Tag is a prefix or VRF tag.
type Tag struct {
	Name string `json:"name"`
}

// Prefix is one prefix as returned by a search.
type Prefix struct {
	ID            int64           `json:"id" validate:"required"`
	Family        int             `json:"family" validate:"omitempty,oneof=4 6"`
	VRFID         *int64          `json:"vrf_id"`
	VRFRT         *string         `json:"vrf_rt"`
	Prefix        string          `json:"prefix" validate:"required"`
	DisplayPrefix string          `json:"display_prefix"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	Expires       *string         `json:"expires"`
	Comment       string          `json:"comment"`
	Tags          map[string]Tag  `json:"tags"`
	InheritedTags map[string]Tag  `json:"inherited_tags"`
	Node          string          `json:"node"`
	PoolID        *int64          `json:"pool_id"`
	Type          string          `json:"type" validate:"omitempty,oneof=reservation assignment host"`
	Indent        int             `json:"indent" validate:"gte=0"`
	Country       string          `json:"country"`
	OrderID       string          `json:"order_id"`
	CustomerID    string          `json:"customer_id"`
	Display       bool            `json:"display"`
	Match         bool            `json:"match"`
	Children      int             `json:"children" validate:"gte=-2"`
	VLAN          *int            `json:"vlan"`
	Total         json.RawMessage `json:"total_addresses,omitempty"`
	Used          json.RawMessage `json:"used_addresses,omitempty"`
	Free          json.RawMessage `json:"free_addresses,omitempty"`
	AVPs          map[string]any  `json:"avps"`
}

// VRF is a routing table prefixes are grouped by.
type VRF struct {
	ID          int64          `json:"id"`
	RT          *string        `json:"rt"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Tags        map[string]Tag `json:"tags"`
}

// Status carries the error fields every response may have.
type Status struct {
	Error   json.RawMessage `json:"error"`
	Message json.RawMessage `json:"message"`
	Type    string          `json:"type"`
}

// Failed reports whether the error field is present and truthy.
func (s *Status) Failed() bool {
	switch strings.TrimSpace(string(s.Error)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

// Text returns the error message. Messages may be sent as a string or as a
// list of strings.
func (s *Status) Text() string {
	if len(s.Message) == 0 {
		return ""
	}
	var one string
	if err := json.Unmarshal(s.Message, &one); err == nil {
		return one
	}
	var many []any
	if err := json.Unmarshal(s.Message, &many); err == nil {
		parts := make([]string, 0, len(many))
		for _, m := range many {
			switch v := m.(type) {
			case string:
				parts = append(parts, v)
			default:
				b, _ := json.Marshal(v)
				parts = append(parts, string(b))
			}
		}
		return strings.Join(parts, ", ")
	}
	return string(s.Message)
}

// SearchResponse is the reply to a smart prefix search.
type SearchResponse struct {
	Status
	SearchOptions  SearchOptions   `json:"search_options"`
	Result         []Prefix        `json:"result"`
	Interpretation json.RawMessage `json:"interpretation"`
}

// VRFSearchRequest is the body of a smart VRF search.
type VRFSearchRequest struct {
	QueryID     int64  `json:"query_id,omitempty"`
	QueryString string `json:"query_string"`
	VRFID       *int64 `json:"vrf_id,omitempty"`
}

// VRFSearchResponse is the reply to a smart VRF search.
type VRFSearchResponse struct {
	Status
	SearchOptions SearchOptions `json:"search_options"`
	Result        []VRF         `json:"result"`
}
