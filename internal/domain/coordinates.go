package domain

import "fmt"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Format coordinates as the "lon,lat" path segment used by directions APIs.
func (c Coordinates) PathSegment() string {
	return fmt.Sprintf("%g,%g", c.Lon, c.Lat)
}
