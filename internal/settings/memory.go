package settings

import (
	"strconv"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and as a stand-in when no
// settings file is configured.
type MemoryStore struct {
	mu     sync.Mutex
	values map[Layer]map[string]string
	saves  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[Layer]map[string]string),
	}
}

func (s *MemoryStore) SetBool(layer Layer, section, key string, value bool) {
	s.set(layer, section, key, strconv.FormatBool(value))
}

func (s *MemoryStore) SetInt(layer Layer, section, key string, value int) {
	s.set(layer, section, key, strconv.Itoa(value))
}

func (s *MemoryStore) SetString(layer Layer, section, key, value string) {
	s.set(layer, section, key, value)
}

func (s *MemoryStore) set(layer Layer, section, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values[layer] == nil {
		s.values[layer] = make(map[string]string)
	}
	s.values[layer][section+"/"+key] = value
}

func (s *MemoryStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++

	return nil
}

// Snapshot returns a copy of one layer's values.
func (s *MemoryStore) Snapshot(layer Layer) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.values[layer]))
	for k, v := range s.values[layer] {
		out[k] = v
	}

	return out
}

// SaveCount returns how many times Save has been called.
func (s *MemoryStore) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saves
}
