// Package cache keeps built projections and rendered queries. Building
// itself never caches; callers that rebuild the same projection often wrap
// their factory in Projections.
package cache

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Konsultn-Engineering/rowmap/projection"
	"github.com/Konsultn-Engineering/rowmap/relpath"
)

// DefaultSize is the number of projections kept when no size is configured.
const DefaultSize = 256

// Builder builds projections; *projection.Factory implements it.
type Builder = projection.Builder

// Projections is an LRU of built projections keyed by type and path
// structure. Failed builds are not cached.
type Projections struct {
	builder Builder
	cache   *lru.Cache[Key, *projection.Expression]
	mu      sync.Mutex
	logger  *slog.Logger
	size    int
}

type Option func(*Projections)

// WithSize bounds the number of cached projections.
func WithSize(size int) Option {
	return func(p *Projections) { p.size = size }
}

// WithLogger logs evictions at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(p *Projections) { p.logger = l }
}

func NewProjections(builder Builder, options ...Option) (*Projections, error) {
	p := &Projections{
		builder: builder,
		logger:  slog.New(slog.DiscardHandler),
		size:    DefaultSize,
	}
	for _, opt := range options {
		opt(p)
	}

	cache, err := lru.NewWithEvict(p.size, func(key Key, _ *projection.Expression) {
		p.logger.Debug("evicted projection",
			slog.String("type", key.Type.String()),
			slog.Uint64("path", key.Path))
	})
	if err != nil {
		return nil, fmt.Errorf("cache.NewProjections: %w", err)
	}
	p.cache = cache
	return p, nil
}

// ConstructorExpression returns the cached projection of t over p, building
// it on a miss.
func (p *Projections) ConstructorExpression(t reflect.Type, path relpath.Path) (*projection.Expression, error) {
	key := NewKey(t, path)

	// Fast path: lru.Cache is safe for concurrent reads
	if expr, ok := p.cache.Get(key); ok {
		return expr, nil
	}

	// Slow path: one build per key
	p.mu.Lock()
	defer p.mu.Unlock()

	if expr, ok := p.cache.Get(key); ok {
		return expr, nil
	}

	expr, err := p.builder.ConstructorExpression(t, path)
	if err != nil {
		return nil, err
	}
	p.cache.Add(key, expr)
	return expr, nil
}

// Len returns the number of cached projections.
func (p *Projections) Len() int { return p.cache.Len() }

// Purge drops every cached projection.
func (p *Projections) Purge() { p.cache.Purge() }
