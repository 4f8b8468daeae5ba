// Package store holds the generic in-memory collection shared by every repository.
package store

import (
	"context"
	"sync"
	"time"

	"pulse/internal/observability"
)

// Record is anything stored in a Collection.
type Record interface {
	GetID() uint
}

// Collection is a mutex-guarded slice of records with simulated latency.
// Reads hand out copies; the latency wait never holds the lock.
type Collection[T Record] struct {
	name    string
	latency time.Duration
	clone   func(T) T
	metrics *observability.StoreMetrics

	mu    sync.RWMutex
	items []T
}

// Option configures a Collection.
type Option[T Record] func(*Collection[T])

// WithClone sets the copy function applied to every record crossing the
// collection boundary. Needed for records holding slices or maps.
func WithClone[T Record](fn func(T) T) Option[T] {
	return func(c *Collection[T]) { c.clone = fn }
}

// New builds a collection seeded with a copy of items.
func New[T Record](name string, items []T, latency time.Duration, opts ...Option[T]) *Collection[T] {
	c := &Collection[T]{
		name:    name,
		latency: latency,
		clone:   func(v T) T { return v },
		metrics: observability.NewStoreMetrics(name),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.items = make([]T, 0, len(items))
	for _, item := range items {
		c.items = append(c.items, c.clone(item))
	}
	return c
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Latency returns the configured simulated delay.
func (c *Collection[T]) Latency() time.Duration { return c.latency }

// Wait suspends the caller for the simulated latency. It returns ctx.Err()
// if the context ends first, in which case the caller must not mutate.
func (c *Collection[T]) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.latency <= 0 {
		return nil
	}
	start := time.Now()
	timer := time.NewTimer(c.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		c.metrics.ObserveLatency(time.Since(start))
		return nil
	}
}

// Record forwards an operation outcome to the store metrics.
func (c *Collection[T]) Record(operation string, err error) {
	c.metrics.Record(operation, err)
}

// Snapshot returns a copy of every record in storage order.
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = c.clone(item)
	}
	return out
}

// Filter returns copies of the records matching keep, in storage order.
func (c *Collection[T]) Filter(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []T
	for _, item := range c.items {
		if keep(item) {
			out = append(out, c.clone(item))
		}
	}
	return out
}

// Find returns a copy of the record with id.
func (c *Collection[T]) Find(id uint) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.clone(c.items[i]), true
	}
	var zero T
	return zero, false
}

// Len returns the number of stored records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// NextID returns max(Id)+1, or 1 for an empty collection.
func (c *Collection[T]) NextID() uint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nextIDLocked()
}

func (c *Collection[T]) nextIDLocked() uint {
	var highest uint
	for _, item := range c.items {
		if id := item.GetID(); id > highest {
			highest = id
		}
	}
	return highest + 1
}

// Position selects where Insert places a new record.
type Position int

const (
	// Back appends the record.
	Back Position = iota
	// Front prepends the record.
	Front
)

// Insert assigns the next id via build and stores the result at pos.
// Id assignment and insertion happen under one lock so concurrent inserts
// never reuse an id.
func (c *Collection[T]) Insert(pos Position, build func(id uint) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := c.clone(build(c.nextIDLocked()))
	if pos == Front {
		c.items = append([]T{item}, c.items...)
	} else {
		c.items = append(c.items, item)
	}
	return c.clone(item)
}

// Update applies fn to the stored record with id. A non-nil error from fn
// leaves the record untouched.
func (c *Collection[T]) Update(id uint, fn func(*T) error) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, false, nil
	}
	working := c.clone(c.items[i])
	if err := fn(&working); err != nil {
		return zero, true, err
	}
	c.items[i] = working
	return c.clone(working), true, nil
}

// UpdateWhere applies fn to every record matching keep and returns how many changed.
func (c *Collection[T]) UpdateWhere(keep func(T) bool, fn func(*T)) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for i := range c.items {
		if keep(c.items[i]) {
			fn(&c.items[i])
			n++
		}
	}
	return n
}

// Delete removes the record with id and returns it.
func (c *Collection[T]) Delete(id uint) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, false
	}
	removed := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	return removed, true
}

func (c *Collection[T]) indexOf(id uint) int {
	for i, item := range c.items {
		if item.GetID() == id {
			return i
		}
	}
	return -1
}
