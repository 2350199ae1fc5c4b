package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JSONStore implements Store using a JSON file for persistence.
// Every change is written through before listeners fire.
type JSONStore struct {
	path   string
	values map[string]string
	mu     sync.RWMutex
	closed bool
	notifier
}

// storeData is the JSON structure for the store file.
type storeData struct {
	Version   int               `json:"version"`
	UpdatedAt string            `json:"updated_at"`
	Values    map[string]string `json:"values"`
}

const currentVersion = 1

// NewJSONStore creates a new JSON-based store at the given path.
// If the file doesn't exist, it will be created on first write.
func NewJSONStore(path string) (*JSONStore, error) {
	store := &JSONStore{
		path:   path,
		values: make(map[string]string),
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := store.load(); err != nil {
			return nil, fmt.Errorf("failed to load store: %w", err)
		}
	}

	return store, nil
}

// load reads the store from disk.
func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var stored storeData
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if stored.Version > currentVersion {
		return fmt.Errorf("unsupported store version %d", stored.Version)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string, len(stored.Values))
	for k, v := range stored.Values {
		s.values[k] = v
	}
	return nil
}

// save writes the store to disk. Caller holds s.mu.
func (s *JSONStore) save() error {
	stored := storeData{
		Version:   currentVersion,
		UpdatedAt: time.Now().Format(time.RFC3339),
		Values:    s.values,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	// Write to temp file first, then rename (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Get returns the stored value.
func (s *JSONStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value, persists it, then notifies listeners if it changed.
// On a failed write the previous value is kept.
func (s *JSONStore) Set(key, value string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	old, existed := s.values[key]
	if existed && old == value {
		s.mu.Unlock()
		return nil
	}

	s.values[key] = value
	if err := s.save(); err != nil {
		if existed {
			s.values[key] = old
		} else {
			delete(s.values, key)
		}
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify(key)
	return nil
}

// Remove deletes a value, persists, then notifies listeners if it existed.
func (s *JSONStore) Remove(key string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	old, existed := s.values[key]
	if !existed {
		s.mu.Unlock()
		return nil
	}

	delete(s.values, key)
	if err := s.save(); err != nil {
		s.values[key] = old
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify(key)
	return nil
}

// All returns a copy of every stored value.
func (s *JSONStore) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Subscribe registers a change listener.
func (s *JSONStore) Subscribe(l Listener) func() {
	return s.subscribe(l)
}

// Listeners returns the number of registered listeners.
func (s *JSONStore) Listeners() int {
	return s.count()
}

// Path returns the file path of the store.
func (s *JSONStore) Path() string {
	return s.path
}

// Close rejects further writes. Reads keep working.
func (s *JSONStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
