package memory

import (
	"context"
	"sync"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
)

// CityCache is an unbounded process-local cache. Entries live until the
// process exits.
type CityCache struct {
	mu      sync.RWMutex
	entries map[string][]domain.CitySuggestion
}

func NewCityCache() *CityCache {
	return &CityCache{entries: make(map[string][]domain.CitySuggestion)}
}

func (c *CityCache) Get(_ context.Context, term string) ([]domain.CitySuggestion, bool, error) {
	c.mu.RLock()
	cities, ok := c.entries[term]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return cloneCities(cities), true, nil
}

func (c *CityCache) Set(_ context.Context, term string, cities []domain.CitySuggestion) error {
	stored := cloneCities(cities)
	c.mu.Lock()
	c.entries[term] = stored
	c.mu.Unlock()
	return nil
}

func (c *CityCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cloneCities copies into a non-nil slice so a cached empty result stays
// an empty list.
func cloneCities(cities []domain.CitySuggestion) []domain.CitySuggestion {
	out := make([]domain.CitySuggestion, len(cities))
	copy(out, cities)
	return out
}

var _ ports.CityCache = (*CityCache)(nil)
