package providers

import (
	"fmt"
	"sync"
)

// Set is an ordered collection of named, configured sources. It is built once
// at startup and only read afterwards.
type Set struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Source
}

// NewSet creates an empty source set.
func NewSet() *Set {
	return &Set{byName: make(map[string]Source)}
}

// Add registers a source under its metadata name.
func (s *Set) Add(src Source) error {
	name := src.Metadata().Name
	if name == "" {
		return fmt.Errorf("source has no name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("source %s is already configured", name)
	}

	s.byName[name] = src
	s.order = append(s.order, name)
	return nil
}

// Get returns the source with the given name.
func (s *Set) Get(name string) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, ok := s.byName[name]
	return src, ok
}

// All returns the sources in insertion order.
func (s *Set) All() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Source, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}
