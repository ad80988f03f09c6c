package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	requestsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unsplash_ratelimit_remaining",
		Help: "Requests remaining in the current Unsplash rate limit window",
	})

	requestsLimit = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unsplash_ratelimit_limit",
		Help: "Requests allowed per Unsplash rate limit window",
	})

	headerErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unsplash_ratelimit_header_errors_total",
		Help: "Responses with unparsable rate limit headers",
	})
)

// Tracker keeps the latest observed quota in memory and, when a Redis
// client is configured, mirrors it to Redis so several processes share it.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger

	mu        sync.RWMutex
	state     *State
	listeners []func(State)
}

// NewTracker creates a new rate limit tracker. redisClient may be nil.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// OnChange registers fn to be called after every state update.
func (t *Tracker) OnChange(fn func(State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Observe is a response middleware that feeds response headers to the
// tracker.
func (t *Tracker) Observe(resp *http.Response, _ []byte, req *http.Request) {
	if resp == nil {
		return
	}
	ctx := context.Background()
	if req != nil {
		ctx = context.WithoutCancel(req.Context())
	}
	if err := t.UpdateFromHeaders(ctx, resp.Header); err != nil {
		headerErrorsTotal.Inc()
		t.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
	}
}

// GetState returns the latest state. The in-memory copy wins; otherwise the
// Redis mirror is consulted. With no data at all a healthy placeholder is
// returned.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	t.mu.RLock()
	if t.state != nil {
		s := *t.state
		t.mu.RUnlock()
		return &s, nil
	}
	t.mu.RUnlock()

	if t.redis == nil {
		return defaultState(), nil
	}

	limit, err := t.redis.Get(ctx, RedisKeyLimit).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get limit: %w", err)
	}

	remaining, err := t.redis.Get(ctx, RedisKeyRemaining).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get remaining: %w", err)
	}

	lastUpdateStr, err := t.redis.Get(ctx, RedisKeyLastUpdate).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get last update: %w", err)
	}

	if err == redis.Nil {
		t.logger.Debug().Msg("No rate limit state in Redis, returning default healthy state")
		return defaultState(), nil
	}

	var lastUpdate time.Time
	if err := json.Unmarshal([]byte(lastUpdateStr), &lastUpdate); err != nil {
		return nil, fmt.Errorf("parse last update: %w", err)
	}

	state := &State{
		Limit:      limit,
		Remaining:  remaining,
		LastUpdate: lastUpdate,
	}
	state.UpdateHealth()
	return state, nil
}

func defaultState() *State {
	return &State{
		Limit:      50,
		Remaining:  50,
		LastUpdate: time.Now(),
		IsHealthy:  true,
	}
}

// UpdateFromHeaders parses the rate limit headers and records the state.
// Responses without the headers are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil
	}

	remaining, err := strconv.Atoi(remainStr)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	limit := 0
	if limitStr := headers.Get(HeaderLimit); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return fmt.Errorf("parse %s header: %w", HeaderLimit, err)
		}
	}

	state := State{
		Limit:      limit,
		Remaining:  remaining,
		LastUpdate: time.Now(),
	}
	state.UpdateHealth()

	t.mu.Lock()
	t.state = &state
	listeners := append(([]func(State))(nil), t.listeners...)
	t.mu.Unlock()

	requestsRemaining.Set(float64(remaining))
	requestsLimit.Set(float64(limit))

	if t.redis != nil {
		if err := t.store(ctx, state); err != nil {
			return err
		}
	}

	logEvent := t.logger.Debug()
	switch {
	case state.IsExhausted():
		logEvent = t.logger.Error()
	case !state.IsHealthy:
		logEvent = t.logger.Warn()
	}
	logEvent.
		Int("limit", limit).
		Int("remaining", remaining).
		Bool("is_healthy", state.IsHealthy).
		Msg("Rate limit state updated")

	for _, fn := range listeners {
		fn(state)
	}
	return nil
}

func (t *Tracker) store(ctx context.Context, state State) error {
	lastUpdateJSON, err := json.Marshal(state.LastUpdate)
	if err != nil {
		return fmt.Errorf("marshal last update: %w", err)
	}

	// Keys expire with the window they describe
	ttl := time.Until(state.ResetAt())
	if ttl <= 0 {
		ttl = time.Hour
	}

	pipe := t.redis.Pipeline()
	pipe.Set(ctx, RedisKeyLimit, state.Limit, ttl)
	pipe.Set(ctx, RedisKeyRemaining, state.Remaining, ttl)
	pipe.Set(ctx, RedisKeyLastUpdate, lastUpdateJSON, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}
	return nil
}
