package models

// Restaurant is read-only reference data loaded from the catalog file.
// The core never mutates it.
type Restaurant struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Area      string            `json:"area"`
	Capacity  int               `json:"capacity"`
	Cuisines  []string          `json:"cuisines"`
	Rating    float64           `json:"rating"`
	OpenHours map[string]string `json:"open_hours,omitempty"`
}

// ScoredRestaurant is a restaurant annotated with a ranking score, as
// returned by location search and the recommender re-ranking pass.
type ScoredRestaurant struct {
	Restaurant
	Score float64 `json:"_score"`
}
