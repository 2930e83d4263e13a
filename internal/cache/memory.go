package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryStore is an LRU store with an optional time-to-live per entry.
type MemoryStore struct {
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
	now      func() time.Time
}

type memoryEntry struct {
	key     string
	value   []byte
	expires time.Time
}

// NewMemoryStore creates a store holding at most capacity entries. ttl <= 0
// disables expiry.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryStore{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
		now:      time.Now,
	}
}

// Get returns the value for key if present and not expired.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	entry := elem.Value.(*memoryEntry)
	if !entry.expires.IsZero() && m.now().After(entry.expires) {
		m.lru.Remove(elem)
		delete(m.items, key)
		return nil, false, nil
	}
	m.lru.MoveToFront(elem)
	return entry.value, true, nil
}

// Set stores value for key, evicting the least recently used entry if at capacity.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if m.ttl > 0 {
		expires = m.now().Add(m.ttl)
	}
	if elem, ok := m.items[key]; ok {
		m.lru.MoveToFront(elem)
		entry := elem.Value.(*memoryEntry)
		entry.value = value
		entry.expires = expires
		return nil
	}

	elem := m.lru.PushFront(&memoryEntry{key: key, value: value, expires: expires})
	m.items[key] = elem

	if m.lru.Len() > m.capacity {
		if oldest := m.lru.Back(); oldest != nil {
			m.lru.Remove(oldest)
			delete(m.items, oldest.Value.(*memoryEntry).key)
		}
	}
	return nil
}

// Flush empties the store.
func (m *MemoryStore) Flush(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]*list.Element)
	m.lru.Init()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
