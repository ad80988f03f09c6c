package cache

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// CacheKey represents a unique identifier for a cached API response.
type CacheKey struct {
	// Method is the HTTP method (only GET is cached by the client)
	Method string

	// Endpoint is the request path (e.g., "/photos/abc123")
	Endpoint string

	// QueryParams are the query parameters (e.g., {"page": "2"})
	QueryParams url.Values
}

// KeyFromRequest builds the cache key for req.
func KeyFromRequest(req *http.Request) CacheKey {
	return CacheKey{
		Method:      req.Method,
		Endpoint:    req.URL.Path,
		QueryParams: req.URL.Query(),
	}
}

// String generates a deterministic cache key string.
// Format: unsplash:method:endpoint:query1=val1:query2=val2
//
// Example:
//
//	unsplash:GET:search/photos:page=1:query=cats
func (k CacheKey) String() string {
	parts := []string{"unsplash"}

	method := strings.ToUpper(k.Method)
	if method == "" {
		method = http.MethodGet
	}
	parts = append(parts, method)

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Query params sorted for determinism; all values of a key are kept
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			values := append([]string(nil), k.QueryParams[key]...)
			sort.Strings(values)
			parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(values, ",")))
		}
	}

	return strings.Join(parts, ":")
}
