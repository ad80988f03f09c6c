package cache

import (
	"net/http"
	"time"
)

// CacheEntry is one stored Unsplash API response.
type CacheEntry struct {
	// Endpoint is the request's endpoint label, its name or path. It is
	// empty for entries stored outside the network client.
	Endpoint string `json:"endpoint,omitempty"`

	Data        []byte `json:"data"`
	ContentType string `json:"content_type,omitempty"`
	StatusCode  int    `json:"status_code"`

	// Validators for revalidation with If-None-Match and If-Modified-Since.
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`

	Headers  http.Header `json:"headers"`
	CachedAt time.Time   `json:"cached_at"`
	Expires  time.Time   `json:"expires"`
}

// IsExpired reports whether the entry is past its freshness lifetime.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL is the remaining freshness, 0 once expired.
func (e *CacheEntry) TTL() time.Duration {
	return max(time.Until(e.Expires), 0)
}

// Age is how long ago the response was stored.
func (e *CacheEntry) Age() time.Duration {
	if e.CachedAt.IsZero() {
		return 0
	}
	return time.Since(e.CachedAt)
}

// Revalidatable reports whether a stale entry can be refreshed with a
// conditional request.
func (e *CacheEntry) Revalidatable() bool {
	return ShouldMakeConditionalRequest(e)
}
