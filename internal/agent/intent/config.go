package intent

// Config holds the extractor tunables.
type Config struct {
	Areas          []string // gazetteer, matched as lowercase substrings
	SearchLimit    int      // book-intent search_locations limit
	RecommendLimit int      // recommend-intent search_locations limit
}

// defaultAreas is the fixed gazetteer of known area names.
var defaultAreas = []string{
	"koramangala",
	"indiranagar",
	"mg road",
	"brigade road",
	"jayanagar",
	"whitefield",
	"hebbal",
	"majestic",
	"malleshwaram",
	"yelahanka",
	"ulsoor",
}

func LoadConfig() *Config {
	return &Config{
		Areas:          defaultAreas,
		SearchLimit:    3,
		RecommendLimit: 5,
	}
}
