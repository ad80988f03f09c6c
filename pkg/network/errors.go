package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrorKind classifies a request failure.
type ErrorKind string

const (
	// KindInvalidURL means the request URL could not be assembled.
	KindInvalidURL ErrorKind = "invalid_url"

	// KindTimeout means the transport gave up waiting.
	KindTimeout ErrorKind = "timeout"

	// KindCancelled means the request was cancelled by its caller.
	KindCancelled ErrorKind = "cancelled"

	// KindNoConnection means the host could not be reached at all.
	KindNoConnection ErrorKind = "no_connection"

	// KindTransport covers any other transport failure.
	KindTransport ErrorKind = "transport"

	// KindInvalidResponse means the response was not a usable HTTP response.
	KindInvalidResponse ErrorKind = "invalid_response"

	// KindClient represents 4xx responses.
	KindClient ErrorKind = "client"

	// KindServer represents 5xx responses.
	KindServer ErrorKind = "server"

	// KindInvalidData means a successful response carried no body.
	KindInvalidData ErrorKind = "invalid_data"

	// KindDecoding means the body could not be decoded into the target type.
	KindDecoding ErrorKind = "decoding"

	// KindUnknown is everything that fits nowhere else.
	KindUnknown ErrorKind = "unknown"
)

// Error is the single error type produced by the client.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	URL        string
	Err        error
}

// Error implements the error interface. Messages are stable for a given kind
// and status, so callers can compare them to suppress repeats.
func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidURL:
		return fmt.Sprintf("invalid URL: %s", e.URL)
	case KindTimeout:
		return "request timed out"
	case KindCancelled:
		return "request was cancelled"
	case KindNoConnection:
		return "no connection"
	case KindTransport:
		if e.Err != nil {
			return fmt.Sprintf("network error: %v", e.Err)
		}
		return "network error"
	case KindInvalidResponse:
		if e.StatusCode != 0 {
			return fmt.Sprintf("invalid response received from server (status %d)", e.StatusCode)
		}
		return "invalid response received from server"
	case KindClient:
		return fmt.Sprintf("client error %d", e.StatusCode)
	case KindServer:
		return fmt.Sprintf("server error %d", e.StatusCode)
	case KindInvalidData:
		return "invalid data received from server"
	case KindDecoding:
		if e.Err != nil {
			return fmt.Sprintf("failed to decode response: %v", e.Err)
		}
		return "failed to decode response"
	default:
		if e.Err != nil {
			return fmt.Sprintf("unknown error occurred: %v", e.Err)
		}
		return "unknown error occurred"
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a client error, or KindUnknown for anything else.
func KindOf(err error) ErrorKind {
	var netErr *Error
	if errors.As(err, &netErr) {
		return netErr.Kind
	}
	return KindUnknown
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var netErr *Error
	if errors.As(err, &netErr) {
		return netErr.StatusCode
	}
	return 0
}

// IsCancelled reports whether err is a cancellation.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}

func invalidURLError(rawURL string, cause error) *Error {
	return &Error{Kind: KindInvalidURL, URL: rawURL, Err: cause}
}

func cancelledError() *Error {
	return &Error{Kind: KindCancelled, Err: context.Canceled}
}

// classifyStatus maps a non-2xx status code to an error.
func classifyStatus(code int) *Error {
	switch {
	case code >= 400 && code < 500:
		return &Error{Kind: KindClient, StatusCode: code}
	case code >= 500 && code < 600:
		return &Error{Kind: KindServer, StatusCode: code}
	default:
		return &Error{Kind: KindInvalidResponse, StatusCode: code}
	}
}

// ClassifyTransport maps an error returned by the HTTP transport into the
// taxonomy.
func ClassifyTransport(err error) *Error {
	if err == nil {
		return nil
	}

	var netErr *Error
	if errors.As(err, &netErr) {
		return netErr
	}

	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCancelled, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Err: err}
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}

	if isNoConnection(err) {
		return &Error{Kind: KindNoConnection, Err: err}
	}

	return &Error{Kind: KindTransport, Err: err}
}

func isNoConnection(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ENETUNREACH,
		syscall.EHOSTUNREACH,
		syscall.ENETDOWN,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	return false
}
