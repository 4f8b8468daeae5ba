// Package enrich attaches related records to query results by resolving
// their foreign keys at read time.
package enrich

import (
	"context"
	"sync"

	"pulse/internal/observability"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentLookups bounds the resolver goroutines per call.
const maxConcurrentLookups = 16

// Key extracts the foreign key from an item. ok is false when the item
// carries no reference, e.g. a notification without a post.
type Key[T any, K comparable] func(item T) (key K, ok bool)

// Resolver loads the related record for one key.
type Resolver[K comparable, R any] func(ctx context.Context, key K) (*R, error)

// Setter stores the resolved record (possibly nil) on the item.
type Setter[T any, R any] func(item *T, related *R)

// Relation describes one foreign-key join.
type Relation[T any, K comparable, R any] struct {
	// Name labels the relation in logs and metrics, e.g. "post.author".
	Name    string
	Key     Key[T, K]
	Resolve Resolver[K, R]
	Set     Setter[T, R]
}

// Apply resolves every distinct key in items concurrently and attaches the
// result to each item in place. A lookup that fails attaches nil and is
// counted as a miss. The only error returned is the context's, once the
// caller has gone away.
func (rel Relation[T, K, R]) Apply(ctx context.Context, items []T) error {
	if len(items) == 0 {
		return nil
	}

	keys := make(map[K]struct{}, len(items))
	for _, item := range items {
		if k, ok := rel.Key(item); ok {
			keys[k] = struct{}{}
		}
	}

	var (
		mu       sync.Mutex
		resolved = make(map[K]*R, len(keys))
		g        errgroup.Group
	)
	g.SetLimit(maxConcurrentLookups)

	for k := range keys {
		k := k
		g.Go(func() error {
			related, err := rel.Resolve(ctx, k)
			if err != nil {
				related = nil
				if ctx.Err() == nil {
					observability.EnrichmentMisses.WithLabelValues(rel.Name).Inc()
					observability.GlobalLogger.DebugContext(ctx, "enrichment miss",
						"relation", rel.Name,
						"key", k,
						"error", err,
					)
				}
			}
			mu.Lock()
			resolved[k] = related
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	for i := range items {
		k, ok := rel.Key(items[i])
		if !ok {
			rel.Set(&items[i], nil)
			continue
		}
		rel.Set(&items[i], resolved[k])
	}
	return nil
}

// One enriches a single record.
func (rel Relation[T, K, R]) One(ctx context.Context, item *T) error {
	if item == nil {
		return nil
	}
	items := []T{*item}
	if err := rel.Apply(ctx, items); err != nil {
		return err
	}
	*item = items[0]
	return nil
}
