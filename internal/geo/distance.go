// internal/geo/distance.go
// Great-circle distance between coordinates

package geo

import "math"

const earthRadiusKm = 6371.0

// Distance returns the haversine distance in kilometers between two points.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Point is a latitude/longitude pair.
type Point struct {
	Lat float64 `json:"lat" db:"location_lat"`
	Lon float64 `json:"lon" db:"location_lng"`
}

// DistanceBetween returns the distance between two optional points.
// The second return value is false when either point is missing.
func DistanceBetween(a, b *Point) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	return Distance(a.Lat, a.Lon, b.Lat, b.Lon), true
}
