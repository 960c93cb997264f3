package cache

import (
	"container/list"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// entry holds a stored value with its expiration time and key.
type entry struct {
	expiresAt time.Time // zero value = never expires
	key       string
	value     []byte
}

// isExpired reports whether the entry has passed its expiration time.
func (e *entry) isExpired(now time.Time) bool {
	if e.expiresAt.IsZero() {
		return false
	}
	return now.After(e.expiresAt)
}

func (e *entry) size() int64 {
	return int64(len(e.key) + len(e.value))
}

// Memory is an in-process Store with TTL-based expiration, glob key
// enumeration and optional LRU eviction when a maximum entry count is set.
//
// It uses a hash map for O(1) lookups and a doubly-linked list for O(1)
// LRU eviction ordering. The most recently accessed items are at the
// front of the list; the least recently used are at the back.
type Memory struct {
	items    map[string]*list.Element
	eviction *list.List
	opts     *memoryOptions
	done     chan struct{}
	used     int64
	mu       sync.Mutex
	closed   bool
}

// NewMemory creates a new in-memory store.
//
// Example:
//
//	s := cache.NewMemory(
//	    cache.WithCleanupInterval(30 * time.Second),
//	    cache.WithMaxEntries(10000),
//	)
//	defer s.Close()
func NewMemory(opts ...MemoryOption) *Memory {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory{
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		opts:     o,
		done:     make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go m.janitor()
	}

	return m
}

// Get retrieves a value by key.
// Accessing a key marks it as recently used for LRU purposes.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	elem, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}

	e := elem.Value.(*entry)
	if e.isExpired(time.Now()) {
		m.removeElement(elem)
		return nil, ErrNotFound
	}

	m.eviction.MoveToFront(elem)

	return slices.Clone(e.value), nil
}

// Set stores a copy of value. Non-positive TTL means the entry never expires.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	value = slices.Clone(value)

	if elem, ok := m.items[key]; ok {
		e := elem.Value.(*entry)
		m.used += int64(len(value) - len(e.value))
		e.value = value
		e.expiresAt = expiresAt
		m.eviction.MoveToFront(elem)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if m.opts.policy == PolicyNoEviction {
			return ErrOutOfMemory
		}
		m.evictOldest()
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	m.items[key] = m.eviction.PushFront(e)
	m.used += e.size()

	return nil
}

// Delete removes keys from the store.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	for _, key := range keys {
		if elem, ok := m.items[key]; ok {
			m.removeElement(elem)
		}
	}

	return nil
}

// Has checks whether a key exists and has not expired.
func (m *Memory) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false, ErrClosed
	}

	elem, ok := m.items[key]
	if !ok {
		return false, nil
	}

	if elem.Value.(*entry).isExpired(time.Now()) {
		m.removeElement(elem)
		return false, nil
	}

	return true, nil
}

// Keys returns all live keys matching pattern, sorted.
func (m *Memory) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if pattern == "" {
		return nil, ErrInvalidPattern
	}

	now := time.Now()
	var keys []string
	for key, elem := range m.items {
		if elem.Value.(*entry).isExpired(now) {
			continue
		}
		if matchPattern(pattern, key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	return keys, nil
}

// TTL returns the remaining lifetime of a key.
func (m *Memory) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}

	elem, ok := m.items[key]
	if !ok {
		return 0, ErrNotFound
	}

	e := elem.Value.(*entry)
	now := time.Now()
	if e.isExpired(now) {
		m.removeElement(elem)
		return 0, ErrNotFound
	}
	if e.expiresAt.IsZero() {
		return NoExpiry, nil
	}

	return e.expiresAt.Sub(now), nil
}

// ConfigSet supports the "maxmemory-policy" parameter with the
// allkeys-lru and noeviction policies.
func (m *Memory) ConfigSet(_ context.Context, parameter, value string) error {
	if parameter != "maxmemory-policy" {
		return fmt.Errorf("%w: config parameter %q", ErrUnsupported, parameter)
	}
	if value != PolicyAllKeysLRU && value != PolicyNoEviction {
		return fmt.Errorf("%w: eviction policy %q", ErrUnsupported, value)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.opts.policy = value

	return nil
}

// MemoryUsage reports the bytes held by keys and values.
func (m *Memory) MemoryUsage(_ context.Context) (MemoryInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return MemoryInfo{}, ErrClosed
	}

	return MemoryInfo{
		UsedBytes: m.used,
		UsedHuman: humanize.Bytes(uint64(max(m.used, 0))),
		Policy:    m.opts.policy,
	}, nil
}

// Len returns the number of stored entries, including expired ones not yet
// collected by the janitor.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the background janitor goroutine and marks the store as closed.
// Close is idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true
	close(m.done)

	return nil
}

// janitor periodically removes expired entries.
func (m *Memory) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.deleteExpired()
		}
	}
}

// deleteExpired removes all expired entries from back to front.
func (m *Memory) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for elem := m.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*entry).isExpired(now) {
			m.removeElement(elem)
		}
		elem = prev
	}
}

// evictOldest removes the least recently used entry.
// Caller must hold the mutex.
func (m *Memory) evictOldest() {
	if elem := m.eviction.Back(); elem != nil {
		m.removeElement(elem)
	}
}

// removeElement removes a specific element.
// Caller must hold the mutex.
func (m *Memory) removeElement(elem *list.Element) {
	m.eviction.Remove(elem)
	e := elem.Value.(*entry)
	delete(m.items, e.key)
	m.used -= e.size()
}

var (
	_ Store          = (*Memory)(nil)
	_ KeyLister      = (*Memory)(nil)
	_ TTLReader      = (*Memory)(nil)
	_ Configurer     = (*Memory)(nil)
	_ MemoryReporter = (*Memory)(nil)
)
