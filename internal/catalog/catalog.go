// Package catalog loads the read-only restaurant reference data.
package catalog

import (
	"encoding/json"
	"os"
	"sync"

	"reservation-agent/internal/common/logger"
	"reservation-agent/internal/models"
)

// Catalog holds the restaurant list loaded at startup. The list is never
// mutated after load.
type Catalog struct {
	mu          sync.RWMutex
	restaurants []models.Restaurant
}

// fallback returns the single hard-coded restaurant used when the catalog
// file is missing or unreadable.
func fallback() []models.Restaurant {
	return []models.Restaurant{
		{
			ID:       "r_000",
			Name:     "GoodFoods Default",
			Area:     "Koramangala",
			Capacity: 40,
			Cuisines: []string{"Indian"},
			Rating:   4.2,
			OpenHours: map[string]string{
				"mon": "11:00-23:00",
			},
		},
	}
}

// Load reads the catalog JSON file at path. Absence or corruption of the
// file is not fatal: the fallback restaurant is returned instead.
func Load(path string, log logger.Logger) *Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("catalog file unavailable, using fallback", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return &Catalog{restaurants: fallback()}
	}

	var restaurants []models.Restaurant
	if err := json.Unmarshal(data, &restaurants); err != nil || len(restaurants) == 0 {
		log.Warn("catalog file unparseable or empty, using fallback", map[string]interface{}{
			"path": path,
		})
		return &Catalog{restaurants: fallback()}
	}

	log.Info("catalog loaded", map[string]interface{}{
		"path":  path,
		"count": len(restaurants),
	})
	return &Catalog{restaurants: restaurants}
}

// FromRestaurants builds a catalog from an in-memory list. Used by tests and
// by callers that source reference data elsewhere.
func FromRestaurants(restaurants []models.Restaurant) *Catalog {
	if len(restaurants) == 0 {
		restaurants = fallback()
	}
	return &Catalog{restaurants: restaurants}
}

// All returns the full restaurant list.
func (c *Catalog) All() []models.Restaurant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.restaurants
}

// ByID returns the restaurant with the given id, or false.
func (c *Catalog) ByID(id string) (models.Restaurant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.restaurants {
		if r.ID == id {
			return r, true
		}
	}
	return models.Restaurant{}, false
}

// Capacity returns the capacity of the restaurant with the given id, or 0
// for unknown restaurants. An unknown restaurant is therefore never
// available.
func (c *Catalog) Capacity(id string) int {
	r, ok := c.ByID(id)
	if !ok {
		return 0
	}
	return r.Capacity
}
