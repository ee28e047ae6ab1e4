package memory

import (
	"log/slog"

	"github.com/phrazzld/cityinfo-api/internal/domain"
)

// NewSeededStore creates a store pre-populated with ten cities and twenty
// points of interest.
func NewSeededStore(logger *slog.Logger) *Store {
	return NewStore(SeedCities(), logger)
}

// SeedCities returns the default city data set.
func SeedCities() []domain.City {
	city := func(id int, name, description string, pois ...domain.PointOfInterest) domain.City {
		return domain.City{
			ID:               id,
			Name:             name,
			Description:      domain.StringPtr(description),
			PointsOfInterest: pois,
		}
	}
	poi := func(id int, name, description string) domain.PointOfInterest {
		return domain.PointOfInterest{ID: id, Name: name, Description: domain.StringPtr(description)}
	}

	return []domain.City{
		city(1, "New York City", "The one with that big park.",
			poi(1, "Central Park", "The most visited urban park in the United States."),
			poi(2, "Empire State Building", "A 102-story skyscraper located in Midtown Manhattan.")),
		city(2, "Los Angeles", "The city of angels.",
			poi(3, "Hollywood Walk of Fame", "A historic sidewalk with stars embedded in honor of celebrities."),
			poi(4, "Griffith Observatory", "A popular spot for stargazing and city views.")),
		city(3, "Chicago", "The windy city.",
			poi(5, "Millennium Park", "Known for its public art and outdoor events."),
			poi(6, "Willis Tower", "Formerly known as the Sears Tower.")),
		city(4, "San Francisco", "The city by the bay.",
			poi(7, "Golden Gate Bridge", "A famous suspension bridge."),
			poi(8, "Alcatraz Island", "A former federal prison.")),
		city(5, "Miami", "The Magic City.",
			poi(9, "South Beach", "Famous for its colorful art deco architecture."),
			poi(10, "Art Deco Historic District", "Preserving the Miami Beach architectural style.")),
		city(6, "Las Vegas", "The entertainment capital of the world.",
			poi(11, "The Strip", "A stretch of South Las Vegas Boulevard known for its resorts and casinos."),
			poi(12, "Fremont Street Experience", "A pedestrian mall and attraction in downtown Las Vegas.")),
		city(7, "Washington, D.C.", "The nation's capital.",
			poi(13, "The White House", "The official residence and workplace of the President of the United States."),
			poi(14, "The National Mall", "A landscaped park within the city.")),
		city(8, "Seattle", "The Emerald City.",
			poi(15, "Space Needle", "An iconic observation tower."),
			poi(16, "Pike Place Market", "A public market overlooking Elliott Bay waterfront.")),
		city(9, "Boston", "The Cradle of Liberty.",
			poi(17, "Freedom Trail", "A 2.5-mile-long path through historic sites."),
			poi(18, "Fenway Park", "Home of the Boston Red Sox.")),
		city(10, "New Orleans", "The Big Easy.",
			poi(19, "French Quarter", "The oldest neighborhood in the city."),
			poi(20, "Café du Monde", "Famous for beignets and café au lait.")),
	}
}
