package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryConfig struct {
	defaultTTL time.Duration
	interval   time.Duration
	maxEntries int
}

// MemoryOption configures NewMemory.
type MemoryOption func(*memoryConfig)

// WithDefaultTTL sets the TTL used when Set receives zero. Default 5 minutes.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.defaultTTL = d }
}

// WithCleanupInterval sets how often expired entries are swept. Zero disables the sweeper.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.interval = d }
}

// WithMaxEntries bounds the cache; the least recently used entry is evicted first.
func WithMaxEntries(n int) MemoryOption {
	return func(c *memoryConfig) { c.maxEntries = n }
}

type item[V any] struct {
	expires time.Time // zero never expires
	value   V
	key     string
}

func (it *item[V]) expired(now time.Time) bool {
	return !it.expires.IsZero() && now.After(it.expires)
}

// Memory is an in-process cache with TTL and optional LRU eviction.
type Memory[V any] struct {
	items  map[string]*list.Element
	lru    *list.List // front is most recently used
	done   chan struct{}
	cfg    memoryConfig
	mu     sync.Mutex
	closed bool
}

// NewMemory creates an in-memory cache. Call Close to stop the sweeper.
//
// Example:
//
//	c := cache.NewMemory[backends.Identity](
//	    cache.WithDefaultTTL(time.Minute),
//	    cache.WithMaxEntries(10_000),
//	)
//	defer c.Close()
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := memoryConfig{
		defaultTTL: 5 * time.Minute,
		interval:   time.Minute,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Memory[V]{
		items: make(map[string]*list.Element),
		lru:   list.New(),
		done:  make(chan struct{}),
		cfg:   cfg,
	}
	if cfg.interval > 0 {
		go m.sweep()
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	el, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	it := el.Value.(*item[V])
	if it.expired(time.Now()) {
		m.remove(el)
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(el)
	return it.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if ttl == 0 {
		ttl = m.cfg.defaultTTL
	}
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	if el, ok := m.items[key]; ok {
		it := el.Value.(*item[V])
		it.value, it.expires = value, expires
		m.lru.MoveToFront(el)
		return nil
	}

	if m.cfg.maxEntries > 0 && len(m.items) >= m.cfg.maxEntries {
		if back := m.lru.Back(); back != nil {
			m.remove(back)
		}
	}
	m.items[key] = m.lru.PushFront(&item[V]{key: key, value: value, expires: expires})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if el, ok := m.items[key]; ok {
		m.remove(el)
	}
	return nil
}

func (m *Memory[V]) Has(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	clear(m.items)
	m.lru.Init()
	return nil
}

// Len returns the number of stored entries, expired ones included until swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the sweeper. It is safe to call more than once.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory[V]) sweep() {
	t := time.NewTicker(m.cfg.interval)
	defer t.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-t.C:
			m.mu.Lock()
			for el := m.lru.Back(); el != nil; {
				prev := el.Prev()
				if el.Value.(*item[V]).expired(now) {
					m.remove(el)
				}
				el = prev
			}
			m.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (m *Memory[V]) remove(el *list.Element) {
	m.lru.Remove(el)
	delete(m.items, el.Value.(*item[V]).key)
}

var _ Cache[any] = (*Memory[any])(nil)
