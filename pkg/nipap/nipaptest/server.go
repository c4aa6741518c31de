// Package nipaptest provides an in-process fake of the NIPAP smart search
// endpoints for tests.
package nipaptest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/joshuapare/ipamkit/pkg/nipap"
	"github.com/joshuapare/ipamkit/pkg/preftree"
)

// Server serves a fixed depth-first prefix list with offset paging.
type Server struct {
	*httptest.Server

	mu             sync.Mutex
	prefixes       []nipap.Prefix
	children       map[int64][]nipap.Prefix
	vrfs           map[int64]nipap.VRF
	interpretation json.RawMessage
	failure        string
	requests       []nipap.SearchRequest
	vrfRequests    []nipap.VRFSearchRequest
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		children: make(map[int64][]nipap.Prefix),
		vrfs:     make(map[int64]nipap.VRF),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Post(nipap.PathSmartSearchPrefix, s.handlePrefix)
	r.Post(nipap.PathSmartSearchVRF, s.handleVRF)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// SetPrefixes replaces the list served to searches.
func (s *Server) SetPrefixes(p ...nipap.Prefix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefixes = p
}

// SetChildren sets the answer to a child fetch below parent. The parent
// itself is put in front of the answer when it is known.
func (s *Server) SetChildren(parent int64, p ...nipap.Prefix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children[parent] = p
}

// AddVRF registers a VRF for lookups.
func (s *Server) AddVRF(v nipap.VRF) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vrfs[v.ID] = v
}

// SetInterpretation sets the interpretation tree returned with searches.
func (s *Server) SetInterpretation(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interpretation = json.RawMessage(raw)
}

// Fail makes every prefix search answer with a backend error. An empty
// message restores normal answers.
func (s *Server) Fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = msg
}

// Requests returns the prefix searches received so far.
func (s *Server) Requests() []nipap.SearchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]nipap.SearchRequest(nil), s.requests...)
}

// VRFRequests returns the VRF searches received so far.
func (s *Server) VRFRequests() []nipap.VRFSearchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]nipap.VRFSearchRequest(nil), s.vrfRequests...)
}

type errorReply struct {
	Error   int      `json:"error"`
	Message []string `json:"message"`
	Type    string   `json:"type"`
}

type searchOptions struct {
	QueryID      int64           `json:"query_id"`
	MaxResult    nipap.MaxResult `json:"max_result"`
	Offset       int             `json:"offset"`
	ParentPrefix *int64          `json:"parent_prefix,omitempty"`
}

type prefixReply struct {
	SearchOptions  searchOptions   `json:"search_options"`
	Result         []nipap.Prefix  `json:"result"`
	Interpretation json.RawMessage `json:"interpretation,omitempty"`
}

type vrfReply struct {
	SearchOptions searchOptions `json:"search_options"`
	Result        []nipap.VRF   `json:"result"`
}

func (s *Server) handlePrefix(w http.ResponseWriter, r *http.Request) {
	var req nipap.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	failure := s.failure
	result := s.selectLocked(&req)
	interp := s.interpretation
	s.mu.Unlock()

	if failure != "" {
		writeJSON(w, errorReply{Error: 1, Message: []string{failure}, Type: "NipapInputError"})
		return
	}
	writeJSON(w, prefixReply{
		SearchOptions: searchOptions{
			QueryID:      req.QueryID,
			MaxResult:    req.MaxResult,
			Offset:       req.Offset,
			ParentPrefix: req.ParentPrefix,
		},
		Result:         result,
		Interpretation: interp,
	})
}

func (s *Server) selectLocked(req *nipap.SearchRequest) []nipap.Prefix {
	if req.ParentPrefix != nil {
		var out []nipap.Prefix
		for _, p := range s.prefixes {
			if p.ID == *req.ParentPrefix {
				out = append(out, p)
				break
			}
		}
		return append(out, s.children[*req.ParentPrefix]...)
	}

	var list []nipap.Prefix
	for _, p := range s.prefixes {
		if req.Indent != nil && p.Indent != *req.Indent {
			continue
		}
		list = append(list, p)
	}

	start := min(max(req.Offset, 0), len(list))
	end := len(list)
	if req.MaxResult > 0 {
		end = min(start+int(req.MaxResult), len(list))
	}
	return append([]nipap.Prefix{}, list[start:end]...)
}

func (s *Server) handleVRF(w http.ResponseWriter, r *http.Request) {
	var req nipap.VRFSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.vrfRequests = append(s.vrfRequests, req)
	var result []nipap.VRF
	if req.VRFID != nil {
		if v, ok := s.vrfs[*req.VRFID]; ok {
			result = append(result, v)
		}
	}
	s.mu.Unlock()

	writeJSON(w, vrfReply{SearchOptions: searchOptions{QueryID: req.QueryID}, Result: result})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Prefix builds a prefix for fixtures.
func Prefix(id int64, prefix string, indent int, match bool) nipap.Prefix {
	vrf := int64(0)
	return nipap.Prefix{
		ID:            id,
		Family:        4,
		VRFID:         &vrf,
		Prefix:        prefix,
		DisplayPrefix: prefix,
		Type:          "reservation",
		Indent:        indent,
		Match:         match,
		Children:      preftree.SentinelUnknown,
	}
}
