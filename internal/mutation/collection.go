package mutation

import "sync"

// Collection is the in-memory list a view renders from. Cache loads replace
// it wholesale; mutations edit single records in place.
type Collection[T any] struct {
	idOf func(T) string

	mu    sync.RWMutex
	items []T
}

// NewCollection returns an empty collection keyed by idOf.
func NewCollection[T any](idOf func(T) string) *Collection[T] {
	return &Collection[T]{idOf: idOf}
}

// Replace swaps in a fresh list (copied).
func (c *Collection[T]) Replace(items []T) {
	cp := append([]T(nil), items...)
	c.mu.Lock()
	c.items = cp
	c.mu.Unlock()
}

// Items returns a copy of the current list.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

// Get returns the record with id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Update replaces the record with id by fn(record) and returns both versions.
func (c *Collection[T]) Update(id string, fn func(T) T) (prev, next T, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return prev, next, false
	}
	prev = c.items[i]
	next = fn(prev)
	c.items[i] = next
	return prev, next, true
}

// Set puts item where the record with id currently is. When id is gone the
// item is prepended unless a record with the item's own id already exists.
func (c *Collection[T]) Set(id string, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		c.items[i] = item
		return
	}
	if c.index(c.idOf(item)) >= 0 {
		return
	}
	c.items = append([]T{item}, c.items...)
}

// Prepend inserts item at the front.
func (c *Collection[T]) Prepend(item T) {
	c.mu.Lock()
	c.items = append([]T{item}, c.items...)
	c.mu.Unlock()
}

// Remove deletes the record with id and reports whether it existed.
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) index(id string) int {
	for i, it := range c.items {
		if c.idOf(it) == id {
			return i
		}
	}
	return -1
}
