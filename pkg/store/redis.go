package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedisStore keeps records in Redis under a key prefix:
//
//	<prefix>:records  hash of ID -> JSON record
//	<prefix>:index    sorted set of IDs scored by write sequence
//	<prefix>:seq      write sequence counter
//	<prefix>:changes  pub/sub channel announcing writes
type RedisStore[T any] struct {
	redis  *redis.Client
	prefix string
	opts   Options
	logger zerolog.Logger
}

// NewRedisStore creates a store under prefix.
func NewRedisStore[T any](redisClient *redis.Client, prefix string, opts Options) *RedisStore[T] {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore[T]{
		redis:  redisClient,
		prefix: prefix,
		opts:   opts,
		logger: log.With().Str("component", "redis-store").Str("prefix", prefix).Logger(),
	}
}

func (s *RedisStore[T]) recordsKey() string { return s.prefix + ":records" }
func (s *RedisStore[T]) indexKey() string   { return s.prefix + ":index" }
func (s *RedisStore[T]) seqKey() string     { return s.prefix + ":seq" }
func (s *RedisStore[T]) channel() string    { return s.prefix + ":changes" }

// Put implements Store.
func (s *RedisStore[T]) Put(ctx context.Context, id string, value T) error {
	record := Record[T]{ID: id, Value: value, UpdatedAt: s.opts.now()}
	if err := s.write(ctx, "put", record); err != nil {
		return err
	}
	if err := s.evict(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to evict oldest records")
	}
	s.publish(ctx, id)
	return nil
}

// Touch implements Store.
func (s *RedisStore[T]) Touch(ctx context.Context, id string) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	record.UpdatedAt = s.opts.now()
	if err := s.write(ctx, "touch", record); err != nil {
		return err
	}
	s.publish(ctx, id)
	return nil
}

func (s *RedisStore[T]) write(ctx context.Context, op string, record Record[T]) error {
	data, err := json.Marshal(record)
	if err != nil {
		StoreErrors.WithLabelValues(op).Inc()
		return fmt.Errorf("marshal record: %w", err)
	}

	seq, err := s.redis.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		StoreErrors.WithLabelValues(op).Inc()
		return fmt.Errorf("redis incr: %w", err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.recordsKey(), record.ID, data)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(seq), Member: record.ID})
		return nil
	})
	if err != nil {
		StoreErrors.WithLabelValues(op).Inc()
		return fmt.Errorf("redis %s: %w", op, err)
	}

	StoreWrites.WithLabelValues(op).Inc()
	return nil
}

func (s *RedisStore[T]) evict(ctx context.Context) error {
	if s.opts.Limit <= 0 {
		return nil
	}
	stale, err := s.redis.ZRevRange(ctx, s.indexKey(), int64(s.opts.Limit), -1).Result()
	if err != nil {
		return fmt.Errorf("redis zrevrange: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	members := make([]any, len(stale))
	for i, id := range stale {
		members[i] = id
	}
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.recordsKey(), stale...)
		pipe.ZRem(ctx, s.indexKey(), members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis evict: %w", err)
	}
	s.logger.Debug().Int("evicted", len(stale)).Msg("Evicted oldest records")
	return nil
}

// Delete implements Store. Deleting a missing ID is not an error.
func (s *RedisStore[T]) Delete(ctx context.Context, id string) error {
	var removed *redis.IntCmd
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, s.recordsKey(), id)
		pipe.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		StoreErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis delete: %w", err)
	}

	if removed.Val() > 0 {
		StoreWrites.WithLabelValues("delete").Inc()
		s.publish(ctx, id)
	}
	return nil
}

// Get implements Store.
func (s *RedisStore[T]) Get(ctx context.Context, id string) (Record[T], error) {
	data, err := s.redis.HGet(ctx, s.recordsKey(), id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record[T]{}, ErrNotFound
		}
		StoreErrors.WithLabelValues("get").Inc()
		return Record[T]{}, fmt.Errorf("redis hget: %w", err)
	}
	return decodeRecord[T](data)
}

// List implements Store.
func (s *RedisStore[T]) List(ctx context.Context, page, perPage int) ([]Record[T], error) {
	start, stop, ok := pageBounds(page, perPage)
	if !ok {
		return nil, nil
	}

	ids, err := s.redis.ZRevRange(ctx, s.indexKey(), int64(start), int64(stop)).Result()
	if err != nil {
		StoreErrors.WithLabelValues("list").Inc()
		return nil, fmt.Errorf("redis zrevrange: %w", err)
	}
	if len(ids) == 0 {
		return []Record[T]{}, nil
	}

	values, err := s.redis.HMGet(ctx, s.recordsKey(), ids...).Result()
	if err != nil {
		StoreErrors.WithLabelValues("list").Inc()
		return nil, fmt.Errorf("redis hmget: %w", err)
	}

	records := make([]Record[T], 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// index entry without a record, left behind by a concurrent delete
			continue
		}
		record, err := decodeRecord[T]([]byte(raw))
		if err != nil {
			s.logger.Warn().Err(err).Str("id", ids[i]).Msg("Skipping corrupt record")
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Count implements Store.
func (s *RedisStore[T]) Count(ctx context.Context) (int, error) {
	n, err := s.redis.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		StoreErrors.WithLabelValues("count").Inc()
		return 0, fmt.Errorf("redis zcard: %w", err)
	}
	return int(n), nil
}

// Observe implements Store. Changes made by other processes sharing the
// prefix are observed too.
func (s *RedisStore[T]) Observe(ctx context.Context, limit int) <-chan []Record[T] {
	changes := make(chan struct{}, 1)

	pubsub := s.redis.Subscribe(ctx, s.channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Subscription failed, observing initial snapshot only")
		_ = pubsub.Close()
	} else {
		go func() {
			defer pubsub.Close()
			messages := pubsub.Channel()
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-messages:
					if !ok {
						return
					}
					select {
					case changes <- struct{}{}:
					default:
					}
				}
			}
		}()
	}

	return observe(ctx, changes, func(ctx context.Context) ([]Record[T], error) {
		return s.List(ctx, 0, limit)
	}, s.logger)
}

// Clear removes every record under the prefix.
func (s *RedisStore[T]) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.recordsKey(), s.indexKey(), s.seqKey()).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	s.publish(ctx, "")
	return nil
}

func (s *RedisStore[T]) publish(ctx context.Context, id string) {
	if err := s.redis.Publish(ctx, s.channel(), id).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to publish change")
	}
}

func decodeRecord[T any](data []byte) (Record[T], error) {
	var record Record[T]
	if err := json.Unmarshal(data, &record); err != nil {
		return Record[T]{}, fmt.Errorf("decode record: %w", err)
	}
	return record, nil
}
