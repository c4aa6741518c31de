package preftree

import "errors"

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindBackend   ErrKind = iota // backend answered with an error message
	ErrKindTransport                // request never got a usable answer
	ErrKindProtocol                 // answer was malformed
	ErrKindState                    // operation invalid for the current state
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindBackend:
		return "backend"
	case ErrKindTransport:
		return "transport"
	case ErrKindProtocol:
		return "protocol"
	case ErrKindState:
		return "state"
	default:
		return "unknown"
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels returned by the Controller.
var (
	// ErrStale marks a response superseded by a newer applied one. It is
	// dropped silently.
	ErrStale = &Error{Kind: ErrKindState, Msg: "stale response"}
	// ErrEmptyUpdate marks an incremental update that carried no nodes.
	ErrEmptyUpdate = &Error{Kind: ErrKindState, Msg: "empty incremental update"}
	// ErrUnknownNode is returned for ids that are not in the registry.
	ErrUnknownNode = &Error{Kind: ErrKindState, Msg: "unknown node"}
	// ErrNoHidden is returned by Reveal for an id without a hidden container.
	ErrNoHidden = &Error{Kind: ErrKindState, Msg: "no hidden container"}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// silent reports whether err should not be surfaced to the user.
func silent(err error) bool {
	return errors.Is(err, ErrStale) || errors.Is(err, ErrEmptyUpdate)
}
