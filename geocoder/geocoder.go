package geocoder

import "context"

// Point is a resolved place. Name is the provider's canonical place name.
type Point struct {
	Lat  float64
	Lon  float64
	Name string
}

// Geocoder resolves a landmark or address to coordinates. A nil Point with a
// nil error means "no result"; callers fall back to text search.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (*Point, error)
}
