package nipap

import (
	"fmt"

	"github.com/joshuapare/ipamkit/pkg/preftree"
)

// BackendError is an error reported by the backend in a response body.
type BackendError struct {
	Message string
	Type    string // backend exception class, e.g. NipapInputError
}

func (e *BackendError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return e.Message
}

// Unwrap classifies the error for preftree.KindOf.
func (e *BackendError) Unwrap() error {
	return &preftree.Error{Kind: preftree.ErrKindBackend, Msg: "backend error"}
}

// HTTPError is a non-2xx reply.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) Unwrap() error {
	return &preftree.Error{Kind: preftree.ErrKindTransport, Msg: "unexpected status"}
}
