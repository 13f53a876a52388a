package feed

import "sync"

// Cursor tracks how much history backfill has been loaded and whether more
// exists, and prevents concurrent backfill requests. Safe for concurrent
// use: the UI may poll CanLoadMore while a load is in flight.
type Cursor struct {
	mu      sync.Mutex
	more    bool
	loading bool
}

// NewCursor returns a cursor that assumes more history exists until the
// first load says otherwise.
func NewCursor() *Cursor {
	return &Cursor{more: true}
}

// CanLoadMore reports whether a backfill request would be dispatched:
// false if no more history exists or a load is already in flight.
func (c *Cursor) CanLoadMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.more && !c.loading
}

// BeginLoad atomically checks CanLoadMore and, if allowed, marks a load in
// flight. Every successful BeginLoad must be paired with exactly one
// EndLoad, on success or failure, or the cursor sticks in loading state.
func (c *Cursor) BeginLoad() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.more || c.loading {
		return false
	}
	c.loading = true
	return true
}

// EndLoad clears the in-flight flag and records whether more history
// remains.
func (c *Cursor) EndLoad(more bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.more = more
}

// Fail clears the in-flight flag leaving the more flag unchanged, so a
// failed page fetch can be retried.
func (c *Cursor) Fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
}
