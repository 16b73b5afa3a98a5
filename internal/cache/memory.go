package cache

import (
	"container/list"
	"context"
	"sync"
)

// Memory is a bounded in-process LRU cache. It is the default backend when
// no REDIS_URL is configured, sized to match the model server's own
// memoization limit.
type Memory struct {
	mu      sync.Mutex
	max     int
	order   *list.List // front = most recently used
	entries map[string]*list.Element
}

type memoryEntry struct {
	key   string
	audio []byte
}

var _ Cache = (*Memory)(nil)

// NewMemory creates an LRU cache holding at most maxEntries payloads.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Memory{
		max:     maxEntries,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	m.order.MoveToFront(el)
	return el.Value.(*memoryEntry).audio, true
}

func (m *Memory) Set(_ context.Context, key string, audio []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.entries[key]; ok {
		el.Value.(*memoryEntry).audio = audio
		m.order.MoveToFront(el)
		return
	}

	m.entries[key] = m.order.PushFront(&memoryEntry{key: key, audio: audio})

	for m.order.Len() > m.max {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.entries, oldest.Value.(*memoryEntry).key)
	}
}

func (m *Memory) Close() error { return nil }
