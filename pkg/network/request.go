package network

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

// CachePolicy controls how a request interacts with the response cache.
type CachePolicy int

const (
	// ReloadIgnoringCache always goes to the network and never stores.
	ReloadIgnoringCache CachePolicy = iota

	// UseProtocolCachePolicy serves fresh entries from cache, revalidates
	// stale ones with conditional headers, and stores cacheable responses.
	UseProtocolCachePolicy

	// ReturnCacheDataElseLoad serves any cached entry, fresh or stale, and
	// only loads from the network on a miss.
	ReturnCacheDataElseLoad
)

// ParseCachePolicy maps a policy name back to its value. The empty string
// selects ReloadIgnoringCache.
func ParseCachePolicy(name string) (CachePolicy, error) {
	for _, p := range []CachePolicy{ReloadIgnoringCache, UseProtocolCachePolicy, ReturnCacheDataElseLoad} {
		if name == p.String() {
			return p, nil
		}
	}
	if name == "" {
		return ReloadIgnoringCache, nil
	}
	return 0, fmt.Errorf("unknown cache policy %q", name)
}

// String returns the policy name.
func (p CachePolicy) String() string {
	switch p {
	case UseProtocolCachePolicy:
		return "use_protocol"
	case ReturnCacheDataElseLoad:
		return "return_cache_else_load"
	default:
		return "reload_ignoring_cache"
	}
}

type requestMetaKey struct{}

type requestMeta struct {
	policy   CachePolicy
	endpoint string
}

// CachePolicyFrom returns the cache policy attached to req by the builder.
func CachePolicyFrom(req *http.Request) CachePolicy {
	if meta, ok := req.Context().Value(requestMetaKey{}).(requestMeta); ok {
		return meta.policy
	}
	return ReloadIgnoringCache
}

// EndpointNameFrom returns the endpoint label attached to req by the builder.
func EndpointNameFrom(req *http.Request) string {
	if meta, ok := req.Context().Value(requestMetaKey{}).(requestMeta); ok {
		return meta.endpoint
	}
	return req.URL.Path
}

// RequestBuilder turns descriptors into HTTP requests.
type RequestBuilder struct {
	baseURL string
}

// NewRequestBuilder creates a builder for baseURL.
func NewRequestBuilder(baseURL string) *RequestBuilder {
	return &RequestBuilder{baseURL: baseURL}
}

// Build materializes d against the base URL and runs it through chain.
// The request deadline comes from ctx.
func (b *RequestBuilder) Build(ctx context.Context, d Descriptor, policy CachePolicy, chain *Chain) (*http.Request, error) {
	u, err := b.buildURL(d)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if d.Body != nil {
		body = bytes.NewReader(d.Body)
	}

	method := string(d.Method)
	if method == "" {
		method = string(MethodGet)
	}

	ctx = context.WithValue(ctx, requestMetaKey{}, requestMeta{policy: policy, endpoint: d.label()})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, invalidURLError(u.String(), err)
	}

	for key, value := range d.Headers {
		if key == "" || value == "" {
			continue
		}
		req.Header.Set(key, value)
	}

	if chain == nil {
		return req, nil
	}

	out, err := chain.ProcessRequest(req)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Err: err}
	}
	return out, nil
}

func (b *RequestBuilder) buildURL(d Descriptor) (*url.URL, error) {
	base, err := url.Parse(b.baseURL)
	if err != nil {
		return nil, invalidURLError(b.baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, invalidURLError(b.baseURL, fmt.Errorf("base URL must be absolute"))
	}

	u := *base
	u.Path = path.Join("/", base.Path, d.Path)
	u.RawPath = ""

	query := url.Values{}
	for key, value := range d.Params {
		if key == "" || value == "" {
			continue
		}
		query.Set(key, value)
	}
	u.RawQuery = query.Encode()
	u.Fragment = ""

	if _, err := url.ParseRequestURI(u.String()); err != nil {
		return nil, invalidURLError(u.String(), err)
	}
	return &u, nil
}
