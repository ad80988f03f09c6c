package pagination

// DefaultLookahead is how close to the end of the list a displayed item must
// be before the next page is requested.
const DefaultLookahead = 5

// Cursor accumulates paged items in first-seen order, deduplicated by ID.
//
// Cursor is not safe for concurrent use; coordinators own one and only
// touch it from their dispatch queue.
type Cursor[T any] struct {
	base     int
	pageSize int
	id       func(T) string

	page    int
	hasMore bool
	items   []T
	seen    map[string]struct{}
}

// NewCursor creates a cursor whose first page number is base.
func NewCursor[T any](base, pageSize int, id func(T) string) *Cursor[T] {
	c := &Cursor[T]{
		base:     base,
		pageSize: pageSize,
		id:       id,
	}
	c.Reset()
	return c
}

// Reset drops every accumulated item and rewinds to the base page.
func (c *Cursor[T]) Reset() {
	c.page = c.base
	c.hasMore = true
	c.items = nil
	c.seen = make(map[string]struct{})
}

// Merge appends the items of one page that have not been seen before and
// returns how many were added.
//
// The page counter advances only when something new arrived, so a server
// that keeps echoing its last page cannot make the cursor run away. More
// pages are assumed while a page is full and brings new items.
func (c *Cursor[T]) Merge(incoming []T) int {
	added := 0
	for _, item := range incoming {
		key := c.id(item)
		if _, dup := c.seen[key]; dup {
			continue
		}
		c.seen[key] = struct{}{}
		c.items = append(c.items, item)
		added++
	}

	if added > 0 {
		c.page++
	}
	c.hasMore = added > 0 && len(incoming) >= c.pageSize
	return added
}

// Items returns a copy of the accumulated items.
func (c *Cursor[T]) Items() []T {
	return append([]T(nil), c.items...)
}

// At returns the item at index i.
func (c *Cursor[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(c.items) {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// Len returns the number of accumulated items.
func (c *Cursor[T]) Len() int { return len(c.items) }

// Page returns the page number to request next.
func (c *Cursor[T]) Page() int { return c.page }

// PageSize returns the fixed page size.
func (c *Cursor[T]) PageSize() int { return c.pageSize }

// HasMore reports whether more pages are believed to exist.
func (c *Cursor[T]) HasMore() bool { return c.hasMore }

// NearEnd reports whether index is within lookahead items of the end.
func (c *Cursor[T]) NearEnd(index, lookahead int) bool {
	return index >= len(c.items)-lookahead
}
