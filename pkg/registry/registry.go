// Package registry keeps named timing instruments (stopwatches, timers)
// so front-ends can address them by key.
package registry

import (
	"sort"
	"sync"
)

// Entry represents a named instrument.
type Entry[T any] struct {
	Key   string
	Value T
}

// Registry is a thread-safe map of named values.
// The instruments it holds are not themselves safe for concurrent use.
type Registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
	}
}

// Set stores a value with the given key, replacing any previous one.
func (r *Registry[T]) Set(key string, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key] = value
}

// Get retrieves a value by key.
func (r *Registry[T]) Get(key string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.items[key]
	return value, ok
}

// GetOrCreate returns the value under key, calling create and storing its
// result if the key is absent. create runs with the registry locked.
func (r *Registry[T]) GetOrCreate(key string, create func() T) T {
	r.mu.RLock()
	value, ok := r.items[key]
	r.mu.RUnlock()
	if ok {
		return value
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if value, ok := r.items[key]; ok {
		return value
	}
	value = create()
	r.items[key] = value
	return value
}

// Delete removes an entry by key.
func (r *Registry[T]) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, key)
}

// Clear removes all entries.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[string]T)
}

// Has checks if a key exists.
func (r *Registry[T]) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[key]
	return ok
}

// Len returns the number of entries.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Keys returns all keys in sorted order.
func (r *Registry[T]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.items))
	for key := range r.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// List returns all entries sorted by key.
func (r *Registry[T]) List() []Entry[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry[T], 0, len(r.items))
	for key, value := range r.items {
		entries = append(entries, Entry[T]{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries
}
