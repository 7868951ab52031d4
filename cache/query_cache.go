package cache

import (
	"sync"
)

// CachedQuery is a rendered SELECT together with the labels of its result
// columns, in order.
type CachedQuery struct {
	SQL    string
	Labels []string
}

// QueryCache maps a query fingerprint to its rendered form.
type QueryCache interface {
	GetSQL(fingerprint uint64) (*CachedQuery, bool)
	SetSQL(fingerprint uint64, q *CachedQuery)
}

type memQueryCache struct {
	mu   sync.RWMutex
	data map[uint64]*CachedQuery
}

func NewQueryCache() QueryCache {
	return &memQueryCache{
		data: make(map[uint64]*CachedQuery, 64),
	}
}

func (c *memQueryCache) GetSQL(f uint64) (*CachedQuery, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.data[f]
	return q, ok
}

func (c *memQueryCache) SetSQL(f uint64, q *CachedQuery) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[f] = q
}
