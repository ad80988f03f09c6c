package main

import (
	"context"
	"fmt"

	"github.com/Sternrassler/unsplash-client/internal/config"
	"github.com/Sternrassler/unsplash-client/pkg/cache"
	"github.com/Sternrassler/unsplash-client/pkg/dispatch"
	"github.com/Sternrassler/unsplash-client/pkg/favorites"
	"github.com/Sternrassler/unsplash-client/pkg/logging"
	"github.com/Sternrassler/unsplash-client/pkg/network"
	"github.com/Sternrassler/unsplash-client/pkg/ratelimit"
	"github.com/Sternrassler/unsplash-client/pkg/search"
	"github.com/Sternrassler/unsplash-client/pkg/store"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

const (
	userAgent = "unsplash-client/0.1.0"

	favoritesPrefix = "unsplash:favorites"
	recentPrefix    = "unsplash:recent"
)

// app holds everything a command needs. Without a Redis address the cache
// and stores live in memory for the lifetime of the process.
type app struct {
	cfg    config.Config
	logger zerolog.Logger

	redis     *redis.Client
	queue     *dispatch.MainQueue
	client    *network.Client
	repo      *unsplash.Repository
	tracker   *ratelimit.Tracker
	favorites *favorites.Repository
	details   *favorites.DetailService
	recents   *search.RecentQueries
}

// loadApp reads the configuration named by the global flags and builds the
// app from it.
func loadApp(ctx context.Context, cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"), cmd.String("env-file"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return newApp(ctx, cfg)
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	logCfg := cfg.Log.Logging()
	a := &app{
		cfg:    cfg,
		logger: logging.Setup(logCfg).With().Str("component", "cli").Logger(),
		queue:  dispatch.NewMainQueue(),
	}

	var (
		responses  cache.Store
		favStore   store.Store[unsplash.Photo]
		queryStore store.Store[unsplash.Query]
	)
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		responses = cache.NewManager(a.redis)
		favStore = store.NewRedisStore[unsplash.Photo](a.redis, favoritesPrefix, store.Options{})
		queryStore = store.NewRedisStore[unsplash.Query](a.redis, recentPrefix, store.Options{Limit: search.RecentLimit})
		a.logger.Debug().Str("addr", cfg.Redis.Addr).Msg("Using Redis for cache and storage")
	} else {
		responses = cache.NewMemoryStore()
		favStore = store.NewMemoryStore[unsplash.Photo](store.Options{})
		queryStore = store.NewMemoryStore[unsplash.Query](store.Options{Limit: search.RecentLimit})
	}

	a.tracker = ratelimit.NewTracker(a.redis, logging.NewLogger("ratelimit"))
	a.tracker.OnChange(func(s ratelimit.State) {
		if !s.IsHealthy {
			a.logger.Warn().
				Int("remaining", s.Remaining).
				Int("limit", s.Limit).
				Time("reset_at", s.ResetAt()).
				Msg("Rate limit running low")
		}
	})

	chain := network.NewChainWith(
		[]network.RequestMiddleware{
			unsplash.DefaultHeaders(userAgent),
			unsplash.Authorization(cfg.API.AccessKey),
		},
		[]network.ResponseMiddleware{a.tracker.Observe},
	)

	client, err := network.New(network.Config{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		CachePolicy: cfg.API.Policy(),
		Queue:       a.queue,
		Cache:       responses,
		UserAgent:   userAgent,
	}, chain)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}

	a.client = client
	a.repo = unsplash.NewRepository(client)
	a.favorites = favorites.NewRepository(favStore)
	a.details = favorites.NewDetailService(a.favorites, a.repo)
	a.recents = search.NewRecentQueries(queryStore)
	return a, nil
}

// Close stops the queue and releases the Redis connection.
func (a *app) Close() {
	a.queue.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
}

// withApp adapts a command body that needs the app to a cli action.
func withApp(run func(ctx context.Context, cmd *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		a, err := loadApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(ctx, cmd, a)
	}
}
