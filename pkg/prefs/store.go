// Package prefs provides the key/value preference store the settings
// controller reads selections from, with change notification.
package prefs

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrClosed is returned when writing to a closed store.
var ErrClosed = errors.New("prefs: store closed")

// Listener is called with the key whose value changed.
type Listener func(key string)

// Store defines the interface for preference storage.
type Store interface {
	// Get returns the stored value and whether one exists
	Get(key string) (string, bool)

	// Set stores a value. Listeners fire only if the value changed.
	Set(key, value string) error

	// Remove deletes a value. Listeners fire only if one existed.
	Remove(key string) error

	// All returns a copy of every stored value
	All() map[string]string

	// Subscribe registers a listener and returns a function that removes it
	Subscribe(l Listener) (unsubscribe func())
}

// notifier keeps listeners in subscription order.
type notifier struct {
	mu        sync.Mutex
	listeners []subscription
}

type subscription struct {
	id string
	fn Listener
}

func (n *notifier) subscribe(l Listener) func() {
	id := uuid.New().String()

	n.mu.Lock()
	n.listeners = append(n.listeners, subscription{id: id, fn: l})
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.listeners {
			if s.id == id {
				n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
				return
			}
		}
	}
}

// notify calls listeners on the caller's goroutine. It must be called
// without the store lock held so listeners can read the store.
func (n *notifier) notify(key string) {
	n.mu.Lock()
	listeners := make([]Listener, len(n.listeners))
	for i, s := range n.listeners {
		listeners[i] = s.fn
	}
	n.mu.Unlock()

	for _, l := range listeners {
		l(key)
	}
}

func (n *notifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// MemoryStore implements Store in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	notifier
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// NewMemoryStoreWith creates an in-memory store seeded with values.
func NewMemoryStoreWith(values map[string]string) *MemoryStore {
	s := NewMemoryStore()
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Get returns the stored value.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value and notifies listeners if it changed.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	if old, ok := s.values[key]; ok && old == value {
		s.mu.Unlock()
		return nil
	}
	s.values[key] = value
	s.mu.Unlock()

	s.notify(key)
	return nil
}

// Remove deletes a value and notifies listeners if it existed.
func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	if _, ok := s.values[key]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.values, key)
	s.mu.Unlock()

	s.notify(key)
	return nil
}

// All returns a copy of every stored value.
func (s *MemoryStore) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Subscribe registers a change listener.
func (s *MemoryStore) Subscribe(l Listener) func() {
	return s.subscribe(l)
}

// Listeners returns the number of registered listeners.
func (s *MemoryStore) Listeners() int {
	return s.count()
}
