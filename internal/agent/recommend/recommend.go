// Package recommend re-scores location search results. It is a pure layer
// on top of the store's own rating order: score, then top-k.
package recommend

import (
	"sort"

	"reservation-agent/internal/models"
)

// Score computes the ranking score for one restaurant. Capacity-constrained
// options are penalized when the party barely fits.
func Score(r models.Restaurant, partySize int) float64 {
	rating := r.Rating
	capacity := r.Capacity
	if capacity < 1 {
		capacity = 1
	}
	penalty := float64(partySize-capacity) / float64(capacity)
	if penalty < 0 {
		penalty = 0
	}
	return rating - penalty
}

// Rerank re-scores, re-sorts descending, and truncates to limit.
func Rerank(results []models.ScoredRestaurant, partySize, limit int) []models.ScoredRestaurant {
	scored := make([]models.ScoredRestaurant, len(results))
	for i, r := range results {
		scored[i] = models.ScoredRestaurant{
			Restaurant: r.Restaurant,
			Score:      Score(r.Restaurant, partySize),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
