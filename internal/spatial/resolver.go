// Package spatial answers the two geometric questions of a search: which region contains a
// point and which deposits are closest to it.
package spatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/valegio/MapaRelaveCL/internal/models"
)

// Resolve returns the region whose WGS84 geometry contains point.
// When several regions contain it the one with the smallest area wins; equal areas keep
// collection order. Points on a boundary count as inside.
func Resolve(point orb.Point, regions []models.Region) (*models.Region, bool) {
	best := -1
	bestArea := math.Inf(1)

	for i := range regions {
		geometry := regions[i].Geometry
		if len(geometry) == 0 || !geometry.Bound().Contains(point) {
			continue
		}
		if !planar.MultiPolygonContains(geometry, point) {
			continue
		}

		area := math.Abs(planar.Area(geometry))
		if area < bestArea {
			best, bestArea = i, area
		}
	}

	if best < 0 {
		return nil, false
	}

	return &regions[best], true
}
