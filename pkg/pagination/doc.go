// Package pagination holds the page cursor shared by the feed, search and
// favorites coordinators, plus a worker-pool batch fetcher for loading
// several pages at once.
//
// A Cursor merges pages idempotently: items are deduplicated by ID, the page
// counter only moves when a page contributes something new, and "has more"
// drops to false on a short or fully repeated page.
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher[unsplash.Photo](pageFunc, pagination.DefaultConfig())
//	pages, err := fetcher.FetchPages(ctx, 1)
//	for _, items := range pagination.Ordered(pages) {
//		cursor.Merge(items)
//	}
package pagination
