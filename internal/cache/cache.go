// Package cache holds short-lived serialized values keyed by string.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Store is implemented by the in-process Cache and the Redis client.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Incr bumps an integer counter that never expires and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
}

type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
	now func() time.Time
}

// zero exp means the entry never expires
type entry struct {
	val []byte
	exp time.Time
}

// New returns an in-process cache; ttl is used when Set is given none.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl: ttl,
		m:   make(map[string]entry),
		now: time.Now,
	}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if !e.exp.IsZero() && now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false, nil
	}

	return e.val, true, nil
}

func (c *Cache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	c.m[key] = entry{val: append([]byte(nil), val...), exp: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Incr mirrors redis INCR: a missing key counts from zero and the value is
// kept as decimal text.
func (c *Cache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	if e, ok := c.m[key]; ok {
		cur, err := strconv.ParseInt(string(e.val), 10, 64)
		if err != nil {
			return 0, err
		}
		n = cur
	}
	n++

	c.m[key] = entry{val: []byte(strconv.FormatInt(n, 10))}
	return n, nil
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry)
	c.mu.Unlock()
}
