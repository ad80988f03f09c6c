package pagination

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel requests.
	// The demo quota is 50 requests per hour, so keep this small.
	MaxConcurrency int
	// Timeout per page fetch
	Timeout time.Duration
	// MaxPages caps how many pages one batch may fetch
	MaxPages int
}

// DefaultConfig returns a conservative configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 3,
		Timeout:        15 * time.Second,
		MaxPages:       5,
	}
}

// PageFetcher fetches a single page
type PageFetcher[T any] interface {
	// FetchPage returns the items of pageNum and the total page count,
	// or 0 when the endpoint does not report one
	FetchPage(ctx context.Context, pageNum int) (items []T, totalPages int, err error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc[T any] func(ctx context.Context, pageNum int) ([]T, int, error)

// FetchPage calls f.
func (f PageFetcherFunc[T]) FetchPage(ctx context.Context, pageNum int) ([]T, int, error) {
	return f(ctx, pageNum)
}

// PageResult represents the result of fetching a single page
type PageResult[T any] struct {
	PageNumber int
	Items      []T
	Error      error
}

// BatchFetcher handles parallel fetching of multiple pages
type BatchFetcher[T any] struct {
	fetcher PageFetcher[T]
	config  Config
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher[T any](fetcher PageFetcher[T], config Config) *BatchFetcher[T] {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.MaxPages <= 0 {
		config.MaxPages = 5
	}

	return &BatchFetcher[T]{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchPages fetches pages first..first+MaxPages-1 with a worker pool.
// The first page is fetched alone to learn the total page count, which
// further limits the batch. Returns map of pageNumber -> items for every
// page that succeeded; on a worker error the partial map is returned with
// the error.
func (bf *BatchFetcher[T]) FetchPages(ctx context.Context, first int) (map[int][]T, error) {
	start := time.Now()

	firstCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	firstItems, totalPages, err := bf.fetcher.FetchPage(firstCtx, first)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	last := first + bf.config.MaxPages - 1
	if totalPages > 0 && totalPages < last {
		last = totalPages
	}

	results := map[int][]T{first: firstItems}
	if last <= first || len(firstItems) == 0 {
		log.Debug().
			Int("pages", 1).
			Dur("duration", time.Since(start)).
			Msg("Fetch complete (single page)")
		return results, nil
	}

	log.Debug().
		Int("first", first).
		Int("last", last).
		Int("total_pages", totalPages).
		Msg("Starting parallel page fetch")

	remaining := last - first
	pageQueue := make(chan int, remaining)
	pageResults := make(chan PageResult[T], remaining)
	errors := make(chan error, bf.config.MaxConcurrency)

	for page := first + 1; page <= last; page++ {
		pageQueue <- page
	}
	close(pageQueue)

	var wg sync.WaitGroup
	for i := 0; i < bf.config.MaxConcurrency; i++ {
		wg.Add(1)
		go bf.worker(ctx, pageQueue, pageResults, errors, &wg, i)
	}

	go func() {
		wg.Wait()
		close(pageResults)
		close(errors)
	}()

	for result := range pageResults {
		results[result.PageNumber] = result.Items
	}

	if err := <-errors; err != nil {
		log.Warn().
			Err(err).
			Int("fetched_pages", len(results)).
			Int("requested_pages", remaining+1).
			Msg("Worker error - returning partial results")
		return results, fmt.Errorf("worker error (partial data: %d/%d pages): %w", len(results), remaining+1, err)
	}

	log.Debug().
		Int("pages", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return results, nil
}

// worker processes pages from the queue
func (bf *BatchFetcher[T]) worker(ctx context.Context, pageQueue <-chan int, results chan<- PageResult[T], errors chan<- error, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	pagesProcessed := 0

	for pageNum := range pageQueue {
		select {
		case <-ctx.Done():
			log.Debug().
				Int("worker_id", workerID).
				Int("pages_processed", pagesProcessed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
		items, _, err := bf.fetcher.FetchPage(pageCtx, pageNum)
		cancel()

		if err != nil {
			log.Warn().
				Err(err).
				Int("worker_id", workerID).
				Int("page", pageNum).
				Msg("Page fetch failed")

			select {
			case errors <- err:
			default:
			}
			return
		}

		results <- PageResult[T]{PageNumber: pageNum, Items: items}
		pagesProcessed++
	}
}

// Ordered returns the pages of results in ascending page order, stopping at
// the first missing page so the cursor never sees a gap.
func Ordered[T any](results map[int][]T) [][]T {
	pages := make([]int, 0, len(results))
	for page := range results {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	out := make([][]T, 0, len(pages))
	for i, page := range pages {
		if i > 0 && page != pages[i-1]+1 {
			break
		}
		out = append(out, results[page])
	}
	return out
}
