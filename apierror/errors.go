// Package apierror defines the closed set of failures a request can end with.
//
// Every failure surfaced by the request and client packages is an [*Error].
// Use [errors.Is] with the sentinel values to test for a kind:
//
//	if errors.Is(err, apierror.ErrNotFound) { ... }
//
// or [As] to inspect the status code and message.
package apierror

import (
	"errors"
	"fmt"
)

// Kind enumerates the error variants.
type Kind int

const (
	KindURL Kind = iota + 1
	KindNetwork
	KindServer
	KindDecoding
	KindTimeout
	KindUnauthorized
	KindNotFound
	KindTooManyRequests
	KindUnknown
)

var kindNames = map[Kind]string{
	KindURL:             "url",
	KindNetwork:         "network",
	KindServer:          "server",
	KindDecoding:        "decoding",
	KindTimeout:         "timeout",
	KindUnauthorized:    "unauthorized",
	KindNotFound:        "not_found",
	KindTooManyRequests: "too_many_requests",
	KindUnknown:         "unknown",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for use with errors.Is. They match any *Error of the same Kind.
var (
	ErrURL             = &Error{Kind: KindURL}
	ErrNetwork         = &Error{Kind: KindNetwork}
	ErrServer          = &Error{Kind: KindServer}
	ErrDecoding        = &Error{Kind: KindDecoding}
	ErrTimeout         = &Error{Kind: KindTimeout}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrTooManyRequests = &Error{Kind: KindTooManyRequests}
	ErrUnknown         = &Error{Kind: KindUnknown}
)

// ErrAuthRequired may be returned by a transport that cannot proceed
// without credentials. It is classified as KindUnauthorized.
var ErrAuthRequired = errors.New("authentication required")

// Error is a terminal request failure.
//
// StatusCode is set for KindServer. Message carries the network or
// unknown detail, or the optional server message. Err is the underlying
// cause, if any; it never appears in Error().
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

// Error returns the human-readable description of the failure.
func (e *Error) Error() string {
	switch e.Kind {
	case KindURL:
		return "Invalid URL. Please check the request URL."
	case KindNetwork:
		return "Network error occurred: " + e.Message
	case KindServer:
		msg := e.Message
		if msg == "" {
			msg = "No additional details"
		}
		return fmt.Sprintf("Server error (%d): %s", e.StatusCode, msg)
	case KindDecoding:
		return "Failed to decode response. The data format might have changed or is incorrect."
	case KindTimeout:
		return "The request timed out. Please try again later."
	case KindUnauthorized:
		return "Unauthorized request. Please check authentication credentials."
	case KindNotFound:
		return "The requested resource could not be found (404)."
	case KindTooManyRequests:
		return "Too many requests. Please slow down and try again later."
	case KindUnknown:
		return "An unknown error occurred: " + e.Message
	default:
		return "An unknown error occurred: " + e.Kind.String()
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	return e, true
}

// /////////////////////////////////////////////////////////////////////////////////////////////

// URLError reports a request that could not be composed.
func URLError(cause error) *Error {
	return &Error{Kind: KindURL, Err: cause}
}

// NetworkError reports a transport failure with a displayable message.
func NetworkError(message string) *Error {
	return &Error{Kind: KindNetwork, Message: message}
}

// ServerError reports a non-success status. An empty message is rendered
// as "No additional details".
func ServerError(statusCode int, message string) *Error {
	return &Error{Kind: KindServer, StatusCode: statusCode, Message: message}
}

// DecodingError reports a response body that did not fit the requested type.
func DecodingError(cause error) *Error {
	return &Error{Kind: KindDecoding, Err: cause}
}

// TimeoutError reports a request that exceeded its deadline.
func TimeoutError(cause error) *Error {
	return &Error{Kind: KindTimeout, Err: cause}
}

func Unauthorized() *Error { return &Error{Kind: KindUnauthorized} }

func NotFound() *Error { return &Error{Kind: KindNotFound} }

func TooManyRequests() *Error { return &Error{Kind: KindTooManyRequests} }

// UnknownError is the fallback variant.
func UnknownError(message string) *Error {
	return &Error{Kind: KindUnknown, Message: message}
}
