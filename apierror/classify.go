package apierror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

const (
	defaultBadRequest  = "Bad Request"
	defaultForbidden   = "Forbidden"
	defaultServerError = "Server encountered an error"

	msgNoInternet    = "No internet connection"
	msgCannotConnect = "Cannot connect to the server"
)

// Classify maps a non-2xx status code to an *Error. message is the
// optional detail extracted from the response; empty means absent.
// Callers handle 2xx as success and never pass it here.
func Classify(statusCode int, message string) *Error {
	orDefault := func(def string) string {
		if message == "" {
			return def
		}
		return message
	}

	switch {
	case statusCode == 400:
		return ServerError(statusCode, orDefault(defaultBadRequest))
	case statusCode == 401:
		return Unauthorized()
	case statusCode == 403:
		return ServerError(statusCode, orDefault(defaultForbidden))
	case statusCode == 404:
		return NotFound()
	case statusCode == 429:
		return TooManyRequests()
	case statusCode >= 500 && statusCode <= 599:
		return ServerError(statusCode, orDefault(defaultServerError))
	default:
		return UnknownError(fmt.Sprintf("Received unexpected status code: %d", statusCode))
	}
}

// ClassifyTransport maps an error returned by the transport to an *Error.
// An err that already is an *Error is returned as is.
func ClassifyTransport(err error) *Error {
	if e, ok := As(err); ok {
		return e
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TimeoutError(err)
	}

	if errors.Is(err, ErrAuthRequired) {
		e := Unauthorized()
		e.Err = err
		return e
	}

	if msg := classifySyscall(err); msg != "" {
		e := NetworkError(msg)
		e.Err = err
		return e
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		e := NetworkError(msgCannotConnect)
		e.Err = err
		return e
	}

	msg := err.Error()
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		msg = urlErr.Err.Error()
	}

	e := NetworkError(msg)
	e.Err = err
	return e
}

// classifySyscall returns the message for errno values that have one.
func classifySyscall(err error) string {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return ""
	}

	switch errno {
	case syscall.ENETUNREACH, syscall.ENETDOWN:
		return msgNoInternet
	case syscall.ECONNREFUSED, syscall.EHOSTUNREACH, syscall.EHOSTDOWN:
		return msgCannotConnect
	}

	return ""
}
