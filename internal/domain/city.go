package domain

// Field limits shared by entities and transfer objects.
const (
	// MaxNameLength is the maximum length of a city or point of interest name.
	MaxNameLength = 50

	// MaxDescriptionLength is the maximum length of a description.
	MaxDescriptionLength = 200
)

// City is a named place that owns an ordered collection of points of interest.
// PointsOfInterest is only populated when the city was loaded with its points
// of interest; otherwise it is nil.
type City struct {
	ID               int
	Name             string
	Description      *string
	PointsOfInterest []PointOfInterest
}

// PointOfInterest is a named place belonging to exactly one city. CityID is
// fixed when the point of interest is created.
type PointOfInterest struct {
	ID          int
	CityID      int
	Name        string
	Description *string
}

// NewPointOfInterest creates a point of interest that has not been stored yet.
// The ID and CityID are assigned by the store when it is attached to a city.
func NewPointOfInterest(name string, description *string) *PointOfInterest {
	return &PointOfInterest{
		Name:        name,
		Description: description,
	}
}

// DescriptionOrEmpty returns the description, or "" when it is absent.
func (c *City) DescriptionOrEmpty() string {
	if c.Description == nil {
		return ""
	}
	return *c.Description
}

// Clone returns a deep copy of the city, including its points of interest.
func (c City) Clone() City {
	out := c
	out.Description = cloneString(c.Description)
	if c.PointsOfInterest != nil {
		out.PointsOfInterest = make([]PointOfInterest, len(c.PointsOfInterest))
		for i, p := range c.PointsOfInterest {
			out.PointsOfInterest[i] = p.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the point of interest.
func (p PointOfInterest) Clone() PointOfInterest {
	out := p
	out.Description = cloneString(p.Description)
	return out
}

// Equal reports whether p and other hold the same identity and content.
func (p PointOfInterest) Equal(other PointOfInterest) bool {
	if p.ID != other.ID || p.CityID != other.CityID || p.Name != other.Name {
		return false
	}
	if p.Description == nil || other.Description == nil {
		return p.Description == nil && other.Description == nil
	}
	return *p.Description == *other.Description
}

// StringPtr returns a pointer to s. It is a convenience for optional fields.
func StringPtr(s string) *string {
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
