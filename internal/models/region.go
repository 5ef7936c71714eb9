package models

import "github.com/paulmach/orb"

// Region is one of Chile's top-level administrative divisions.
type Region struct {
	Code      string           // Code is the roman-numeral region code (e.g. "RM", "XV").
	Name      string           // Name is the display name resolved from the code table.
	Geometry  orb.MultiPolygon // Geometry in WGS84 (EPSG:4326).
	Projected orb.MultiPolygon // Projected is the geometry in UTM 19S (EPSG:32719).
}
