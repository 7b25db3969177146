package salaryschema

import (
	"context"
	"errors"
	"sync"

	"github.com/lib/pq"
	"github.com/locvowork/epms/internal/logger"
)

// Prober produces a fresh Layout from the live database.
type Prober interface {
	Probe(ctx context.Context) (Layout, error)
}

// Publisher broadcasts an invalidation to other processes sharing the database.
type Publisher interface {
	PublishInvalidation(ctx context.Context) error
}

// Cache holds the process-wide Layout. The first Get probes the database;
// later calls reuse the snapshot until it is invalidated.
type Cache struct {
	prober    Prober
	publisher Publisher

	mu     sync.RWMutex
	layout *Layout
}

// NewCache creates a new Cache
func NewCache(p Prober) *Cache {
	return &Cache{prober: p}
}

// SetPublisher enables cross-process invalidation broadcasts.
func (c *Cache) SetPublisher(p Publisher) {
	c.mu.Lock()
	c.publisher = p
	c.mu.Unlock()
}

// Get returns the cached Layout, probing when there is none. Probe errors are not cached.
func (c *Cache) Get(ctx context.Context) (Layout, error) {
	c.mu.RLock()
	if c.layout != nil {
		l := *c.layout
		c.mu.RUnlock()
		return l, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.layout != nil {
		return *c.layout, nil
	}
	l, err := c.prober.Probe(ctx)
	if err != nil {
		return Layout{}, err
	}
	c.layout = &l
	return l, nil
}

// Invalidate drops the local snapshot.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.layout = nil
	c.mu.Unlock()
}

// Refresh drops the local snapshot and tells other processes to do the same.
func (c *Cache) Refresh(ctx context.Context) {
	c.Invalidate()

	c.mu.RLock()
	p := c.publisher
	c.mu.RUnlock()
	if p == nil {
		return
	}
	if err := p.PublishInvalidation(ctx); err != nil {
		logger.WarnLog(ctx, "Failed to broadcast schema invalidation: %v", err)
	}
}

// InvalidateOnSchemaError refreshes the snapshot when err shows the schema
// moved under us and reports whether it did. The failed call is not retried.
func (c *Cache) InvalidateOnSchemaError(ctx context.Context, err error) bool {
	if !IsSchemaError(err) {
		return false
	}
	logger.WarnLog(ctx, "Schema change detected, dropping cached salary layout: %v", err)
	c.Refresh(ctx)
	return true
}

// IsSchemaError reports whether err is a Postgres undefined_column or undefined_table error.
func IsSchemaError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "42703" || pqErr.Code == "42P01"
}
