package api

import (
	"github.com/phrazzld/cityinfo-api/internal/domain"
)

// The mapper copies fields between entities and transfer objects by name.
// It performs no validation.

// ToCityDto maps a city to the full view. The points of interest are always
// present in the result, empty when the city has none loaded.
func ToCityDto(city domain.City) CityDto {
	pois := ToPointOfInterestDtos(city.PointsOfInterest)
	return CityDto{
		ID:                       city.ID,
		Name:                     city.Name,
		Description:              copyString(city.Description),
		NumberOfPointsOfInterest: len(pois),
		PointsOfInterest:         pois,
	}
}

// ToCityWithoutPointsOfInterestDto maps a city to the reduced view.
func ToCityWithoutPointsOfInterestDto(city domain.City) CityWithoutPointsOfInterestDto {
	return CityWithoutPointsOfInterestDto{
		ID:          city.ID,
		Name:        city.Name,
		Description: copyString(city.Description),
	}
}

// ToCityWithoutPointsOfInterestDtos maps each city to the reduced view.
func ToCityWithoutPointsOfInterestDtos(cities []domain.City) []CityWithoutPointsOfInterestDto {
	out := make([]CityWithoutPointsOfInterestDto, 0, len(cities))
	for _, c := range cities {
		out = append(out, ToCityWithoutPointsOfInterestDto(c))
	}
	return out
}

// ToPointOfInterestDto maps a point of interest to its response view.
func ToPointOfInterestDto(poi domain.PointOfInterest) PointOfInterestDto {
	return PointOfInterestDto{
		ID:          poi.ID,
		Name:        poi.Name,
		Description: copyString(poi.Description),
	}
}

// ToPointOfInterestDtos maps each point of interest. The result is never nil.
func ToPointOfInterestDtos(pois []domain.PointOfInterest) []PointOfInterestDto {
	out := make([]PointOfInterestDto, 0, len(pois))
	for _, p := range pois {
		out = append(out, ToPointOfInterestDto(p))
	}
	return out
}

// PointOfInterestFromCreation builds a new, unsaved entity from a creation request.
func PointOfInterestFromCreation(req PointOfInterestForCreation) *domain.PointOfInterest {
	return domain.NewPointOfInterest(req.Name, copyString(req.Description))
}

// ToPointOfInterestForUpdate maps an entity to its update view.
func ToPointOfInterestForUpdate(poi domain.PointOfInterest) PointOfInterestForUpdate {
	return PointOfInterestForUpdate{
		Name:        poi.Name,
		Description: copyString(poi.Description),
	}
}

// ApplyPointOfInterestUpdate copies the update view onto poi. Identity and
// city are left untouched.
func ApplyPointOfInterestUpdate(req PointOfInterestForUpdate, poi *domain.PointOfInterest) {
	poi.Name = req.Name
	poi.Description = copyString(req.Description)
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
