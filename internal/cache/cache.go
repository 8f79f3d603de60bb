package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// Store caches JSON-serializable values. A ttl of zero uses the store default.
type Store interface {
	Get(ctx context.Context, key string, target interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

type item struct {
	data       []byte
	expiration int64
}

// Memory is an in-process Store with lazy expiry and a periodic sweep.
type Memory struct {
	items map[string]item
	mu    sync.RWMutex
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
}

// NewMemory starts a memory cache that sweeps expired items every sweep interval.
func NewMemory(defaultTTL, sweep time.Duration) *Memory {
	c := &Memory{
		items: make(map[string]item),
		ttl:   defaultTTL,
		stop:  make(chan struct{}),
	}
	if sweep > 0 {
		go c.cleanupExpired(sweep)
	}
	return c
}

func (c *Memory) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item{data: data, expiration: time.Now().Add(ttl).UnixNano()}
	return nil
}

func (c *Memory) Get(_ context.Context, key string, target interface{}) (bool, error) {
	c.mu.RLock()
	it, found := c.items[key]
	c.mu.RUnlock()

	if !found || time.Now().UnixNano() > it.expiration {
		return false, nil
	}
	if err := json.Unmarshal(it.data, target); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Memory) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}

func (c *Memory) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

// Size returns the number of stored items, expired ones included until swept.
func (c *Memory) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the sweeper.
func (c *Memory) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *Memory) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Memory) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().UnixNano()
	for key, it := range c.items {
		if now > it.expiration {
			delete(c.items, key)
		}
	}
}
