package store

import (
	"sort"
	"strings"

	"reservation-agent/internal/catalog"
	"reservation-agent/internal/models"
)

// searchCatalog is the shared location search over the read-only catalog.
// Area matches as a case-insensitive substring; empty area matches all.
func searchCatalog(cat *catalog.Catalog, area string, partySize, limit int) []models.ScoredRestaurant {
	areaLower := strings.ToLower(strings.TrimSpace(area))

	var results []models.ScoredRestaurant
	for _, r := range cat.All() {
		if areaLower != "" && !strings.Contains(strings.ToLower(r.Area), areaLower) {
			continue
		}
		if r.Capacity < partySize {
			continue
		}
		results = append(results, models.ScoredRestaurant{Restaurant: r, Score: r.Rating})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit <= 0 {
		limit = 3
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
