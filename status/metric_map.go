package status

import (
	"slices"
	"sync"
)

// MetricMap hands out stable pointers to metrics of type T by key
// Lookup takes a lock; writers cache the pointer and update it lock-free
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric for key, allocating it on first use
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.RLock()
	ptr, ok := m.items[key]
	m.mu.RUnlock()
	if ok {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ptr, ok := m.items[key]; ok {
		return ptr
	}
	ptr = new(T)
	m.items[key] = ptr
	return ptr
}

// Lookup returns the metric for key without creating it
func (m *MetricMap[T]) Lookup(key string) (*T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ptr, ok := m.items[key]
	return ptr, ok
}

// Range visits metrics in key order
func (m *MetricMap[T]) Range(fn func(key string, ptr *T)) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fn(k, m.items[k])
	}
}

func (m *MetricMap[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
