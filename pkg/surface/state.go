package surface

import "sync"

// State is a key/value store scoped to one user session.
type State interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
}

// MemoryState is an in-process State.
type MemoryState struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemoryState returns an empty MemoryState.
func NewMemoryState() *MemoryState {
	return &MemoryState{values: make(map[string]any)}
}

func (s *MemoryState) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryState) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *MemoryState) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Len reports how many keys are stored.
func (s *MemoryState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
