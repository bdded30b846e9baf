package common

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Error Kinds
// --------------------------------------------------------------------------

// ErrorKind classifies every failure the client can surface to a caller
type ErrorKind uint8

const (
	// KindInvalidArgument means the caller's input could not be encoded (no request was sent)
	KindInvalidArgument ErrorKind = iota + 1
	// KindTransport means sending the request or receiving the reply failed
	KindTransport
	// KindMalformedResponse means the reply was expected to be JSON but could not be parsed
	KindMalformedResponse
	// KindServer means the server parsed the request and rejected it (ok=false)
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindTransport:
		return "transport error"
	case KindMalformedResponse:
		return "malformed response"
	case KindServer:
		return "server error"
	default:
		return "unknown error"
	}
}

// Sentinel errors for use with errors.Is. Matching is done on the Kind only.
var (
	ErrInvalidArgument   = &Error{Kind: KindInvalidArgument}
	ErrTransport         = &Error{Kind: KindTransport}
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse}
	ErrServer            = &Error{Kind: KindServer}
)

// --------------------------------------------------------------------------
// Error Type
// --------------------------------------------------------------------------

// Error is the error type returned by all client operations.
type Error struct {
	Kind ErrorKind
	Msg  string // Human-readable message (for KindServer the server's err text)
	Raw  string // Raw reply, set for KindMalformedResponse and for ok=false replies without err
	Err  error  // Underlying cause, set for KindTransport and KindMalformedResponse
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case msg == "":
		return "t38: " + e.Kind.String()
	case e.Raw != "":
		return fmt.Sprintf("t38: %s: %s (reply: %q)", e.Kind, msg, e.Raw)
	default:
		return fmt.Sprintf("t38: %s: %s", e.Kind, msg)
	}
}

// Unwrap exposes the underlying cause so errors.Is(err, context.DeadlineExceeded) keeps working
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for error comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// --------------------------------------------------------------------------
// Factory Functions
// --------------------------------------------------------------------------

// NewInvalidArgumentError creates an error for input rejected before any network call
func NewInvalidArgumentError(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

// NewTransportError wraps a send/receive failure. Errors that already carry a Kind are returned as is.
func NewTransportError(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindTransport, Err: err}
}

// NewMalformedResponseError creates an error for a reply that is not valid JSON
func NewMalformedResponseError(raw string, cause error) error {
	return &Error{Kind: KindMalformedResponse, Msg: "reply is not valid json", Raw: raw, Err: cause}
}

// NewServerError creates an error for a reply with ok=false.
// If the server did not send an err text, a generic message and the raw reply are kept.
func NewServerError(msg, raw string) error {
	if msg == "" {
		return &Error{Kind: KindServer, Msg: "unexpected response", Raw: raw}
	}
	return &Error{Kind: KindServer, Msg: msg}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// IsInvalidArgument checks if the request was rejected before it was sent
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsTransport checks if the error was caused by the transport layer
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsMalformedResponse checks if the server reply could not be parsed
func IsMalformedResponse(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// IsServer checks if the server rejected the request
func IsServer(err error) bool {
	return errors.Is(err, ErrServer)
}

// KindOf returns the kind of err, or 0 if err is not an *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
