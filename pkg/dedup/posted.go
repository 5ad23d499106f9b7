// Package dedup tracks the final texts already submitted during a run.
package dedup

import "sync"

// PostedSet records submitted post texts. Keys are compared exactly, so case
// and whitespace differences make texts distinct. It is never persisted.
type PostedSet struct {
	mu    sync.RWMutex
	seen  map[string]struct{}
	order []string
}

// NewPostedSet creates a set pre-seeded with texts
func NewPostedSet(texts ...string) *PostedSet {
	s := &PostedSet{seen: make(map[string]struct{}, len(texts))}
	for _, text := range texts {
		s.Add(text)
	}
	return s
}

// Has reports whether text was already submitted
func (s *PostedSet) Has(text string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[text]
	return ok
}

// Add records text and reports whether it was new
func (s *PostedSet) Add(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[text]; ok {
		return false
	}
	s.seen[text] = struct{}{}
	s.order = append(s.order, text)
	return true
}

// Len returns the number of recorded texts
func (s *PostedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Items returns the recorded texts in insertion order
func (s *PostedSet) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]string, len(s.order))
	copy(items, s.order)
	return items
}
