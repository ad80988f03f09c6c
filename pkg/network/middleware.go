package network

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestMiddleware transforms an outgoing request. Implementations should
// return a modified clone rather than mutating their input.
type RequestMiddleware func(req *http.Request) *http.Request

// ResponseMiddleware observes a completed response. It cannot alter the
// outcome of the request.
type ResponseMiddleware func(resp *http.Response, body []byte, req *http.Request)

// ErrNilRequest is returned when a request middleware returns nil.
var ErrNilRequest = errors.New("request middleware returned nil request")

// Chain holds the ordered middleware lists. Registration order is invocation
// order and nothing is de-duplicated.
//
// A failing request middleware aborts request construction. A failing
// response middleware is recovered and logged, and the remaining response
// middleware still runs.
type Chain struct {
	mu       sync.RWMutex
	request  []RequestMiddleware
	response []ResponseMiddleware
	logger   zerolog.Logger
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{
		logger: log.With().Str("component", "middleware-chain").Logger(),
	}
}

// NewChainWith creates a chain pre-populated with middleware.
func NewChainWith(request []RequestMiddleware, response []ResponseMiddleware) *Chain {
	c := NewChain()
	for _, m := range request {
		c.AddRequestMiddleware(m)
	}
	for _, m := range response {
		c.AddResponseMiddleware(m)
	}
	return c
}

// AddRequestMiddleware appends m to the request middleware list.
func (c *Chain) AddRequestMiddleware(m RequestMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.request = append(c.request, m)
}

// AddResponseMiddleware appends m to the response middleware list.
func (c *Chain) AddResponseMiddleware(m ResponseMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.response = append(c.response, m)
}

// ProcessRequest folds req through every request middleware in order.
func (c *Chain) ProcessRequest(req *http.Request) (out *http.Request, err error) {
	c.mu.RLock()
	middleware := c.request
	c.mu.RUnlock()

	current := req
	for i, m := range middleware {
		current, err = applyRequestMiddleware(m, current)
		if err != nil {
			middlewareFailuresTotal.WithLabelValues("request").Inc()
			return nil, fmt.Errorf("request middleware %d: %w", i, err)
		}
	}
	return current, nil
}

func applyRequestMiddleware(m RequestMiddleware, req *http.Request) (out *http.Request, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	out = m(req)
	if out == nil {
		return nil, ErrNilRequest
	}
	return out, nil
}

// ProcessResponse hands the response to every response middleware in order.
func (c *Chain) ProcessResponse(resp *http.Response, body []byte, req *http.Request) {
	c.mu.RLock()
	middleware := c.response
	c.mu.RUnlock()

	for i, m := range middleware {
		c.applyResponseMiddleware(i, m, resp, body, req)
	}
}

func (c *Chain) applyResponseMiddleware(index int, m ResponseMiddleware, resp *http.Response, body []byte, req *http.Request) {
	defer func() {
		if r := recover(); r != nil {
			middlewareFailuresTotal.WithLabelValues("response").Inc()
			c.logger.Warn().
				Int("index", index).
				Interface("panic", r).
				Msg("Response middleware panicked, continuing")
		}
	}()
	m(resp, body, req)
}
