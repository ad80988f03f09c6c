package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"invalid url", &Error{Kind: KindInvalidURL, URL: "::bad"}, "invalid URL: ::bad"},
		{"timeout", &Error{Kind: KindTimeout}, "request timed out"},
		{"cancelled", &Error{Kind: KindCancelled}, "request was cancelled"},
		{"no connection", &Error{Kind: KindNoConnection}, "no connection"},
		{"client", &Error{Kind: KindClient, StatusCode: 403}, "client error 403"},
		{"server", &Error{Kind: KindServer, StatusCode: 503}, "server error 503"},
		{"invalid response", &Error{Kind: KindInvalidResponse, StatusCode: 304}, "invalid response received from server (status 304)"},
		{"invalid data", &Error{Kind: KindInvalidData}, "invalid data received from server"},
		{"unknown", &Error{Kind: KindUnknown}, "unknown error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_MessageIsStable(t *testing.T) {
	a := &Error{Kind: KindServer, StatusCode: 500, URL: "https://api.unsplash.com/photos?page=1"}
	b := &Error{Kind: KindServer, StatusCode: 500, URL: "https://api.unsplash.com/photos?page=2"}
	if a.Error() != b.Error() {
		t.Errorf("messages differ for same kind and status: %q vs %q", a.Error(), b.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", &Error{Kind: KindDecoding, Err: cause})

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if KindOf(err) != KindDecoding {
		t.Errorf("KindOf() = %v, want %v", KindOf(err), KindDecoding)
	}
	if KindOf(cause) != KindUnknown {
		t.Errorf("KindOf(foreign) = %v, want %v", KindOf(cause), KindUnknown)
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorKind
	}{
		{400, KindClient},
		{403, KindClient},
		{404, KindClient},
		{429, KindClient},
		{499, KindClient},
		{500, KindServer},
		{503, KindServer},
		{599, KindServer},
		{304, KindInvalidResponse},
		{101, KindInvalidResponse},
		{600, KindInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.code), func(t *testing.T) {
			err := classifyStatus(tt.code)
			if err.Kind != tt.want {
				t.Errorf("classifyStatus(%d) = %v, want %v", tt.code, err.Kind, tt.want)
			}
			if err.StatusCode != tt.code {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.code)
			}
		})
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyTransport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"context cancelled", fmt.Errorf("get: %w", context.Canceled), KindCancelled},
		{"deadline exceeded", context.DeadlineExceeded, KindTimeout},
		{"net timeout", timeoutError{}, KindTimeout},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "api.unsplash.com"}, KindNoConnection},
		{"connection refused", &net.OpError{Op: "read", Err: syscall.ECONNREFUSED}, KindNoConnection},
		{"dial error", &net.OpError{Op: "dial", Err: errors.New("whatever")}, KindNoConnection},
		{"other", errors.New("tls: handshake failure"), KindTransport},
		{"already classified", &Error{Kind: KindServer, StatusCode: 502}, KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyTransport(tt.err)
			if got.Kind != tt.want {
				t.Errorf("ClassifyTransport() = %v, want %v", got.Kind, tt.want)
			}
		})
	}

	if ClassifyTransport(nil) != nil {
		t.Error("ClassifyTransport(nil) should be nil")
	}
}

func TestStatusCodeOf(t *testing.T) {
	if got := StatusCodeOf(&Error{Kind: KindClient, StatusCode: 403}); got != 403 {
		t.Errorf("StatusCodeOf() = %d, want 403", got)
	}
	if got := StatusCodeOf(errors.New("plain")); got != 0 {
		t.Errorf("StatusCodeOf(plain) = %d, want 0", got)
	}
	if !IsCancelled(cancelledError()) {
		t.Error("IsCancelled should be true for a cancelled error")
	}
}
