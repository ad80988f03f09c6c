package unsplash

import (
	"net/http"

	"github.com/Sternrassler/unsplash-client/pkg/network"
)

// Authorization returns request middleware that signs every request with
// the application access key.
func Authorization(accessKey string) network.RequestMiddleware {
	return func(req *http.Request) *http.Request {
		if accessKey == "" {
			return req
		}
		out := req.Clone(req.Context())
		out.Header.Set("Authorization", "Client-ID "+accessKey)
		return out
	}
}

// DefaultHeaders returns request middleware that pins the API version and
// identifies the client.
func DefaultHeaders(userAgent string) network.RequestMiddleware {
	return func(req *http.Request) *http.Request {
		out := req.Clone(req.Context())
		out.Header.Set("Accept-Version", "v1")
		if out.Header.Get("Accept") == "" {
			out.Header.Set("Accept", "application/json")
		}
		if userAgent != "" && out.Header.Get("User-Agent") == "" {
			out.Header.Set("User-Agent", userAgent)
		}
		return out
	}
}
