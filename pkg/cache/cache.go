// Package cache is an in-memory TTL cache for fetched resources. It only
// saves round trips; a miss or an eviction is never an error.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/muesli/cache2go"

	"github.com/krsjen/github-project-mcp/pkg/types"
)

const defaultTTL = time.Hour

// ResourceCache keys one cache2go table per resource kind. cache2go's
// table registry is process-global, so each cache instance namespaces
// its tables to stay isolated.
type ResourceCache struct {
	mu        sync.Mutex
	namespace string
	ttl       time.Duration
	tables    map[types.ResourceType]*cache2go.CacheTable
}

// New creates a cache with the given TTL; ttl <= 0 uses one hour.
func New(ttl time.Duration) *ResourceCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ResourceCache{
		namespace: uuid.NewString(),
		ttl:       ttl,
		tables:    make(map[types.ResourceType]*cache2go.CacheTable),
	}
}

func (c *ResourceCache) table(resource types.ResourceType) *cache2go.CacheTable {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tables[resource]
	if !ok {
		t = cache2go.Cache(fmt.Sprintf("%s-%s", c.namespace, resource))
		c.tables[resource] = t
	}
	return t
}

// Set stores value under (resource, id).
func (c *ResourceCache) Set(resource types.ResourceType, id string, value any) {
	c.table(resource).Add(id, c.ttl, value)
}

// Get returns the cached value, if any.
func (c *ResourceCache) Get(resource types.ResourceType, id string) (any, bool) {
	item, err := c.table(resource).Value(id)
	if err != nil {
		return nil, false
	}
	return item.Data(), true
}

// Invalidate drops one entry.
func (c *ResourceCache) Invalidate(resource types.ResourceType, id string) {
	_, _ = c.table(resource).Delete(id)
}

// InvalidateAll drops every entry of a resource kind. Mutations that
// change list results call this.
func (c *ResourceCache) InvalidateAll(resource types.ResourceType) {
	c.table(resource).Flush()
}
