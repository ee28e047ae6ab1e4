package api

import (
	"encoding/xml"
	"strings"

	"github.com/phrazzld/cityinfo-api/internal/domain"
)

// nameRequiredMessage replaces the default "required" message for names.
const nameRequiredMessage = "Please provide a name value."

// CityDto is the full view of a city, always carrying its points of interest.
type CityDto struct {
	XMLName                  xml.Name             `json:"-"                        xml:"City"`
	ID                       int                  `json:"id"                       xml:"Id"`
	Name                     string               `json:"name"                     xml:"Name"`
	Description              *string              `json:"description"              xml:"Description,omitempty"`
	NumberOfPointsOfInterest int                  `json:"numberOfPointsOfInterest" xml:"NumberOfPointsOfInterest"`
	PointsOfInterest         []PointOfInterestDto `json:"pointsOfInterest"         xml:"PointsOfInterest>PointOfInterest"`
}

// CityWithoutPointsOfInterestDto is the reduced view of a city.
type CityWithoutPointsOfInterestDto struct {
	XMLName     xml.Name `json:"-"           xml:"City"`
	ID          int      `json:"id"          xml:"Id"`
	Name        string   `json:"name"        xml:"Name"`
	Description *string  `json:"description" xml:"Description,omitempty"`
}

// PointOfInterestDto represents a point of interest in responses.
type PointOfInterestDto struct {
	XMLName     xml.Name `json:"-"           xml:"PointOfInterest"`
	ID          int      `json:"id"          xml:"Id"`
	Name        string   `json:"name"        xml:"Name"`
	Description *string  `json:"description" xml:"Description,omitempty"`
}

// PointOfInterestForCreation is the request body for creating a point of interest.
type PointOfInterestForCreation struct {
	Name        string  `json:"name"        xml:"Name"        validate:"required,max=50"`
	Description *string `json:"description" xml:"Description" validate:"omitempty,max=200"`
}

// ValidationMessages implements shared.MessageProvider.
func (PointOfInterestForCreation) ValidationMessages() map[string]string {
	return map[string]string{"name.required": nameRequiredMessage}
}

// Validate rejects names made only of whitespace.
func (p PointOfInterestForCreation) Validate() error {
	return validateName(p.Name)
}

// PointOfInterestForUpdate is the request body for replacing a point of
// interest, and the view a patch document is applied to.
type PointOfInterestForUpdate struct {
	Name        string  `json:"name"        xml:"Name"        validate:"required,max=50"`
	Description *string `json:"description" xml:"Description" validate:"omitempty,max=200"`
}

// ValidationMessages implements shared.MessageProvider.
func (PointOfInterestForUpdate) ValidationMessages() map[string]string {
	return map[string]string{"name.required": nameRequiredMessage}
}

// Validate rejects names made only of whitespace.
func (p PointOfInterestForUpdate) Validate() error {
	return validateName(p.Name)
}

// validateName reports a name that passed the required rule but is blank.
func validateName(name string) error {
	if name != "" && strings.TrimSpace(name) == "" {
		return domain.NewValidationError("name", nameRequiredMessage)
	}
	return nil
}
