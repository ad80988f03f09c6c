// Package network provides the HTTP client core: a typed endpoint model, a
// middleware chain, request building, response decoding and delivery of
// completions onto a single dispatch queue.
package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/unsplash-client/pkg/cache"
	"github.com/Sternrassler/unsplash-client/pkg/dispatch"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client executes endpoints against one base URL.
type Client struct {
	httpClient *http.Client
	builder    *RequestBuilder
	chain      *Chain
	queue      dispatch.Queue
	cache      cache.Store
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL every endpoint path is joined onto (REQUIRED)
	BaseURL string

	// Timeout applied to each request; zero disables it
	Timeout time.Duration

	// CachePolicy used when a request does not override it
	CachePolicy CachePolicy

	// HTTPClient performs the transport; nil uses a plain http.Client
	HTTPClient *http.Client

	// Queue receives completions of asynchronous requests.
	// Nil delivers on the transport goroutine.
	Queue dispatch.Queue

	// Cache backs the cache policies; nil disables caching
	Cache cache.Store

	// UserAgent is set on requests that carry none
	UserAgent string
}

// DefaultConfig returns a configuration with a 30 second timeout and no
// caching.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:     baseURL,
		Timeout:     30 * time.Second,
		CachePolicy: ReloadIgnoringCache,
	}
}

// New creates a client. The chain may be nil.
func New(cfg Config, chain *Chain) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	if cfg.CachePolicy < ReloadIgnoringCache || cfg.CachePolicy > ReturnCacheDataElseLoad {
		return nil, fmt.Errorf("unknown cache policy %d", cfg.CachePolicy)
	}

	if chain == nil {
		chain = NewChain()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	queue := cfg.Queue
	if queue == nil {
		queue = dispatch.Immediate{}
	}

	return &Client{
		httpClient: httpClient,
		builder:    NewRequestBuilder(cfg.BaseURL),
		chain:      chain,
		queue:      queue,
		cache:      cfg.Cache,
		config:     cfg,
		logger:     log.With().Str("component", "network-client").Logger(),
	}, nil
}

// Chain returns the middleware chain so callers can register more middleware.
func (c *Client) Chain() *Chain {
	return c.chain
}

// RequestOption overrides client defaults for one request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	policy  CachePolicy
	timeout time.Duration
}

// WithCachePolicy overrides the cache policy for one request.
func WithCachePolicy(p CachePolicy) RequestOption {
	return func(o *requestOptions) { o.policy = p }
}

// WithTimeout overrides the timeout for one request.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = d }
}

func (c *Client) options(opts []RequestOption) requestOptions {
	o := requestOptions{policy: c.config.CachePolicy, timeout: c.config.Timeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Request starts ep and delivers the outcome to completion exactly once.
//
// When the request cannot be built, completion runs synchronously on the
// caller's goroutine and nil is returned. Otherwise the transport runs in the
// background and completion is posted to the configured queue.
func Request[T any](ctx context.Context, c *Client, ep Endpoint[T], completion func(T, error), opts ...RequestOption) *Task {
	o := c.options(opts)

	req, err := c.builder.Build(ctx, ep.Descriptor(), o.policy, c.chain)
	if err != nil {
		c.recordError(ep.Descriptor().label(), err)
		var zero T
		completion(zero, err)
		return nil
	}

	reqCtx, cancel := withTimeout(req.Context(), o.timeout)
	req = req.WithContext(reqCtx)
	task := newTask(cancel)

	go func() {
		body, err := c.execute(req)
		var value T
		if err == nil {
			value, err = Decode[T](body)
		}

		c.queue.Async(func() {
			if task.deliver() {
				var zero T
				value, err = zero, cancelledError()
			}
			completion(value, err)
		})
	}()

	return task
}

// Do runs ep and blocks until it finishes.
func Do[T any](ctx context.Context, c *Client, ep Endpoint[T], opts ...RequestOption) (T, error) {
	var zero T
	o := c.options(opts)

	req, err := c.builder.Build(ctx, ep.Descriptor(), o.policy, c.chain)
	if err != nil {
		c.recordError(ep.Descriptor().label(), err)
		return zero, err
	}

	reqCtx, cancel := withTimeout(req.Context(), o.timeout)
	defer cancel()

	body, err := c.execute(req.WithContext(reqCtx))
	if err != nil {
		return zero, err
	}
	return Decode[T](body)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// execute performs the transport step and returns the body of a successful
// response, consulting the cache according to the request's policy.
func (c *Client) execute(req *http.Request) ([]byte, error) {
	ctx := req.Context()
	endpoint := EndpointNameFrom(req)
	policy := CachePolicyFrom(req)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	useCache := c.cache != nil && policy != ReloadIgnoringCache && req.Method == http.MethodGet

	var cacheKey cache.CacheKey
	var cachedEntry *cache.CacheEntry
	if useCache {
		cacheKey = cache.KeyFromRequest(req)
		entry, err := c.cache.Get(ctx, cacheKey)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
		cachedEntry = entry

		if cachedEntry != nil && (policy == ReturnCacheDataElseLoad || !cachedEntry.IsExpired()) {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Str("policy", policy.String()).
				Dur("age", cachedEntry.Age()).
				Msg("Serving response from cache")
			requestsTotal.WithLabelValues(endpoint, "cache").Inc()
			return cachedEntry.Data, nil
		}

		if cachedEntry != nil && cachedEntry.Revalidatable() {
			req = req.Clone(ctx)
			cache.AddConditionalHeaders(req, cachedEntry)
			cache.ConditionalRequestsSent.Inc()
			c.logger.Debug().
				Str("endpoint", endpoint).
				Str("etag", cachedEntry.ETag).
				Msg("Making conditional request")
		} else {
			cachedEntry = nil
		}
	}

	if c.config.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		netErr := ClassifyTransport(err)
		netErr.URL = req.URL.String()
		requestsTotal.WithLabelValues(endpoint, string(netErr.Kind)).Inc()
		c.recordError(endpoint, netErr)
		return nil, netErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := ClassifyTransport(err)
		netErr.URL = req.URL.String()
		c.recordError(endpoint, netErr)
		return nil, netErr
	}

	c.chain.ProcessResponse(resp, body, req)
	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusNotModified && cachedEntry != nil:
		cache.NotModifiedResponses.Inc()
		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified - using cache")
		if refreshed, err := cache.ResponseToEntry(resp, nil); err == nil {
			if err := c.cache.UpdateTTL(ctx, cacheKey, refreshed.Expires); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to update cache TTL")
			}
		}
		return cachedEntry.Data, nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if useCache && cache.Cacheable(resp) {
			c.store(ctx, endpoint, cacheKey, resp, body)
		}
		return body, nil

	default:
		netErr := classifyStatus(resp.StatusCode)
		netErr.URL = req.URL.String()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("kind", string(netErr.Kind)).
			Msg("Request error")
		c.recordError(endpoint, netErr)
		return nil, netErr
	}
}

func (c *Client) store(ctx context.Context, endpoint string, key cache.CacheKey, resp *http.Response, body []byte) {
	entry, err := cache.ResponseToEntry(resp, body)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		return
	}
	entry.Endpoint = endpoint
	if err := c.cache.Set(ctx, key, entry); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to cache response")
		return
	}
	c.logger.Debug().
		Str("endpoint", entry.Endpoint).
		Str("content_type", entry.ContentType).
		Dur("ttl", entry.TTL()).
		Msg("Cached response")
}

func (c *Client) recordError(endpoint string, err error) {
	kind := KindOf(err)
	errorsTotal.WithLabelValues(string(kind)).Inc()
	if kind == KindCancelled {
		c.logger.Debug().Str("endpoint", endpoint).Msg("Request cancelled")
		return
	}
	c.logger.Debug().Err(err).Str("endpoint", endpoint).Str("kind", string(kind)).Msg("Request failed")
}
