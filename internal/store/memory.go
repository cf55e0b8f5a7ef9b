package store

import (
	"maps"
	"sync"

	"github.com/i474232898/city-weather/internal/common"
	"github.com/i474232898/city-weather/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory weather cache.
// It keeps only the latest record per city and never expires entries.
type MemoryStore struct {
	mu sync.RWMutex

	// key: normalized city name
	data map[string]weather.Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]weather.Record),
	}
}

// Save stores rec for city, replacing any previous record.
func (s *MemoryStore) Save(city string, rec weather.Record) {
	key := common.NormalizeCity(city)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = rec
}

// Get returns the cached record for city.
func (s *MemoryStore) Get(city string) (weather.Record, bool) {
	key := common.NormalizeCity(city)

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[key]
	return rec, ok
}

// Delete evicts the record for city, if any.
func (s *MemoryStore) Delete(city string) {
	key := common.NormalizeCity(city)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Snapshot returns a copy of the cache keyed by normalized city name.
func (s *MemoryStore) Snapshot() map[string]weather.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.data)
}
