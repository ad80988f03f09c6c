// Package cache stores API responses for the network client's cache policies.
//
// Two Store implementations are provided: Manager, backed by Redis and shared
// between processes, and MemoryStore for a single process or tests.
//
// Entries outlive their freshness window so that a stale entry carrying an
// ETag or Last-Modified date can be revalidated with a conditional request.
// A 304 answer refreshes the entry instead of transferring the body again.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//	store := cache.NewManager(redisClient)
//
//	key := cache.KeyFromRequest(req)
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// go to the network
//	}
//	if entry.IsExpired() && cache.ShouldMakeConditionalRequest(entry) {
//		cache.AddConditionalHeaders(req, entry)
//	}
//
// # Freshness
//
// The freshness window comes from Cache-Control max-age, then Expires, then
// DefaultTTL. Responses marked Cache-Control no-store are never cached.
//
// # Metrics
//
//   - unsplash_cache_hits_total{layer} - Cache hits
//   - unsplash_cache_misses_total - Cache misses
//   - unsplash_cache_size_bytes{layer} - Bytes written
//   - unsplash_304_responses_total - Successful revalidations
//   - unsplash_conditional_requests_total - Conditional requests sent
//   - unsplash_cache_errors_total{operation} - Cache operation errors
package cache
