package distance

import (
	"math"
	"store-rebalance-service/internal/domain"
)

// Mean Earth radius in kilometres (IUGG).
const earthRadiusKm = 6371.0088

// GreatCircleKm returns the haversine distance between two coordinates.
func GreatCircleKm(a, b domain.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
