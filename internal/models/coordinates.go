package models

import "github.com/paulmach/orb"

// Coordinates represents a geographical point defined by its longitude and latitude.
type Coordinates struct {
	Longitude float64 // Longitude of the geographical point.
	Latitude  float64 // Latitude of the geographical point.
}

// Point returns the coordinates as an orb point in [lon, lat] order.
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// CoordinatesFromPoint converts a WGS84 orb point back to Coordinates.
func CoordinatesFromPoint(p orb.Point) Coordinates {
	return Coordinates{Longitude: p.Lon(), Latitude: p.Lat()}
}
