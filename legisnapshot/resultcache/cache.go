// Package resultcache memoizes snapshot results per (shape, root id, reference date).
//
// A snapshot at a past date never changes once the archive is imported, so entries live until
// they are evicted by size or expire by TTL. Concurrent identical requests share one computation.
// Failed computations are never stored.
package resultcache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/legilibre/legi-snapshot-go/legisnapshot"
)

// Defaults for New.
const (
	DefaultMaxEntries = 1024
	DefaultTTL        = 10 * time.Minute
)

// ErrNilSnapshotter is returned by New when inner is nil.
var ErrNilSnapshotter = errors.New("snapshotter must not be nil")

// ErrInvalidMaxEntries is returned by WithMaxEntries for values below one.
var ErrInvalidMaxEntries = errors.New("max entries must be at least 1")

// Snapshotter is the part of legisnapshot.Service the cache wraps.
type Snapshotter interface {
	GetStructure(ctx context.Context, id string, date legisnapshot.Date) (legisnapshot.TreeNode, error)
	GetFull(ctx context.Context, id string, date legisnapshot.Date) (legisnapshot.TreeNode, error)
	GetValidityDates(ctx context.Context, id string) ([]legisnapshot.Date, error)
}

var _ Snapshotter = (*legisnapshot.Service)(nil)

type shape uint8

const (
	shapeStructure shape = iota
	shapeFull
	shapeValidityDates
)

func (s shape) String() string {
	switch s {
	case shapeStructure:
		return "structure"
	case shapeFull:
		return "full"
	default:
		return "validity_dates"
	}
}

type key struct {
	shape  shape
	rootID string
	date   string
}

func (k key) String() string {
	return k.shape.String() + "|" + k.rootID + "|" + k.date
}

// Stats is a point-in-time view of the cache counters.
// Evictions counts entries dropped for size, expiry or Purge. Shared counts callers that received
// a result computed for a concurrent identical request.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Shared    uint64
	Evictions uint64
	Entries   int
}

// Cache is a Snapshotter that memoizes another Snapshotter. It is safe for concurrent use.
// Returned trees share memory with the cache and must not be modified.
type Cache struct {
	inner      Snapshotter
	entries    *expirable.LRU[key, any]
	flight     singleflight.Group
	maxEntries int
	ttl        time.Duration
	today      func() legisnapshot.Date

	hits      atomic.Uint64
	misses    atomic.Uint64
	shared    atomic.Uint64
	evictions atomic.Uint64
}

var _ Snapshotter = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache) error

// WithMaxEntries bounds the number of cached results. The least recently used entry is evicted first.
func WithMaxEntries(n int) Option {
	return func(c *Cache) error {
		if n < 1 {
			return ErrInvalidMaxEntries
		}

		c.maxEntries = n

		return nil
	}
}

// WithTTL sets how long an entry stays valid. Zero or negative disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) error {
		c.ttl = ttl
		return nil
	}
}

// WithClock sets the clock used to resolve the zero reference date to today,
// so that "today" and its explicit date share one entry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}

		c.today = func() legisnapshot.Date { return legisnapshot.Today(now) }

		return nil
	}
}

// New wraps inner with a cache.
func New(inner Snapshotter, opts ...Option) (*Cache, error) {
	if inner == nil {
		return nil, ErrNilSnapshotter
	}

	c := &Cache{
		inner:      inner,
		maxEntries: DefaultMaxEntries,
		ttl:        DefaultTTL,
		today:      func() legisnapshot.Date { return legisnapshot.Today(time.Now) },
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.entries = expirable.NewLRU[key, any](c.maxEntries, func(key, any) { c.evictions.Add(1) }, c.ttl)

	return c, nil
}

// GetStructure implements Snapshotter.
func (c *Cache) GetStructure(ctx context.Context, id string, date legisnapshot.Date) (legisnapshot.TreeNode, error) {
	date = c.resolve(date)

	return load(ctx, c, key{shape: shapeStructure, rootID: id, date: date.String()},
		func(ctx context.Context) (legisnapshot.TreeNode, error) {
			return c.inner.GetStructure(ctx, id, date)
		})
}

// GetFull implements Snapshotter.
func (c *Cache) GetFull(ctx context.Context, id string, date legisnapshot.Date) (legisnapshot.TreeNode, error) {
	date = c.resolve(date)

	return load(ctx, c, key{shape: shapeFull, rootID: id, date: date.String()},
		func(ctx context.Context) (legisnapshot.TreeNode, error) {
			return c.inner.GetFull(ctx, id, date)
		})
}

// GetValidityDates implements Snapshotter.
func (c *Cache) GetValidityDates(ctx context.Context, id string) ([]legisnapshot.Date, error) {
	dates, err := load(ctx, c, key{shape: shapeValidityDates, rootID: id},
		func(ctx context.Context) ([]legisnapshot.Date, error) {
			return c.inner.GetValidityDates(ctx, id)
		})
	if err != nil {
		return nil, err
	}

	return append([]legisnapshot.Date(nil), dates...), nil
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Shared:    c.shared.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.entries.Len(),
	}
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.entries.Purge()
}

func (c *Cache) resolve(date legisnapshot.Date) legisnapshot.Date {
	if date.IsZero() {
		return c.today()
	}

	return date
}

// load returns the cached value for k or computes it once for all concurrent callers.
// The computation runs without the caller's cancellation. Each caller stops waiting on its own ctx.
func load[T any](ctx context.Context, c *Cache, k key, compute func(context.Context) (T, error)) (T, error) {
	var zero T

	if cached, ok := c.entries.Get(k); ok {
		c.hits.Add(1)
		return cached.(T), nil
	}

	c.misses.Add(1)

	resultCh := c.flight.DoChan(k.String(), func() (any, error) {
		value, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.entries.Add(k, value)

		return value, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case result := <-resultCh:
		if result.Shared {
			c.shared.Add(1)
		}

		if result.Err != nil {
			return zero, result.Err
		}

		return result.Val.(T), nil
	}
}
