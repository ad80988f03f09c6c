//go:build integration

package network_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/unsplash-client/internal/testutil"
	"github.com/Sternrassler/unsplash-client/pkg/cache"
	"github.com/Sternrassler/unsplash-client/pkg/network"
	"github.com/Sternrassler/unsplash-client/pkg/ratelimit"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

func newRedisBackedClient(t *testing.T, baseURL string, redisClient *redis.Client, tracker *ratelimit.Tracker) *network.Client {
	t.Helper()

	chain := network.NewChainWith(
		[]network.RequestMiddleware{unsplash.Authorization("integration")},
		[]network.ResponseMiddleware{tracker.Observe},
	)
	cfg := network.DefaultConfig(baseURL)
	cfg.Cache = cache.NewManager(redisClient)
	cfg.CachePolicy = network.UseProtocolCachePolicy

	c, err := network.New(cfg, chain)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

// TestSharedCache checks that two clients on the same Redis share cached
// responses and revalidate them with conditional requests.
func TestSharedCache(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockUnsplash()
	defer mock.Close()

	mock.SetHandler("/photos/shared", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"shared-v1"`)
		w.Header().Set("Cache-Control", "max-age=300")
		w.Header().Set("X-Ratelimit-Limit", "50")
		w.Header().Set("X-Ratelimit-Remaining", "42")
		if r.Header.Get("If-None-Match") == `"shared-v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testutil.PhotoJSON("shared")))
	})

	logger := zerolog.Nop()
	first := newRedisBackedClient(t, mock.URL(), redisClient, ratelimit.NewTracker(redisClient, logger))
	second := newRedisBackedClient(t, mock.URL(), redisClient, ratelimit.NewTracker(redisClient, logger))

	ctx := context.Background()

	// Request 1: cache miss, stored in Redis
	if _, err := network.Do(ctx, first, unsplash.GetPhoto("shared")); err != nil {
		t.Fatalf("Request 1 failed: %v", err)
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Fatalf("After request 1: API requests = %d, want 1", got)
	}

	// Request 2 from the other client: fresh hit, no network
	dto, err := network.Do(ctx, second, unsplash.GetPhoto("shared"))
	if err != nil {
		t.Fatalf("Request 2 failed: %v", err)
	}
	if dto.ID != "shared" {
		t.Errorf("cached photo ID = %q", dto.ID)
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("After request 2: API requests = %d, want 1", got)
	}

	// Expire the entry: request 3 revalidates and is answered with a 304
	key := cache.CacheKey{Method: http.MethodGet, Endpoint: "/photos/shared", QueryParams: map[string][]string{}}
	if err := cache.NewManager(redisClient).UpdateTTL(ctx, key, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("UpdateTTL failed: %v", err)
	}
	if _, err := network.Do(ctx, second, unsplash.GetPhoto("shared")); err != nil {
		t.Fatalf("Request 3 failed: %v", err)
	}
	if got := mock.GetConditionalCount(); got != 1 {
		t.Errorf("Conditional requests = %d, want 1", got)
	}
}

// TestRateLimitMirroredAcrossTrackers checks that a quota observed by one
// client is visible to a tracker in another process.
func TestRateLimitMirroredAcrossTrackers(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockUnsplash()
	defer mock.Close()

	logger := zerolog.Nop()
	c := newRedisBackedClient(t, mock.URL(), redisClient, ratelimit.NewTracker(redisClient, logger))

	if _, err := network.Do(context.Background(), c, unsplash.GetPhotos(1, 5)); err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	state, err := ratelimit.NewTracker(redisClient, logger).GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.Limit != 50 || state.Remaining != 49 {
		t.Errorf("mirrored state = %+v, want 49/50", state)
	}
}
