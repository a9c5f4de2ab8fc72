// Package cache holds small in-process caches for static reference data.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Once caches the first successful result of a fetch for the process
// lifetime. Concurrent callers share a single in-flight fetch; a failed
// fetch caches nothing, so the next caller retries.
type Once[T any] struct {
	mu     sync.RWMutex
	group  singleflight.Group
	value  T
	loaded bool
}

// Get returns the cached value, fetching it on first use.
func (c *Once[T]) Get(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	c.mu.RLock()
	if c.loaded {
		v := c.value
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("value", func() (any, error) {
		c.mu.RLock()
		if c.loaded {
			v := c.value
			c.mu.RUnlock()
			return v, nil
		}
		c.mu.RUnlock()

		fetched, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.value = fetched
		c.loaded = true
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Loaded reports whether a value has been cached.
func (c *Once[T]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
