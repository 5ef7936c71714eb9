package projection

import (
	"github.com/paulmach/orb"
	"github.com/wroge/wgs84"
)

const (
	utmZone     = 19
	utmNorthern = false
)

var (
	lonLatToUTM19S = wgs84.LonLat().To(wgs84.UTM(utmZone, utmNorthern))
	utm19SToLonLat = wgs84.UTM(utmZone, utmNorthern).To(wgs84.LonLat())
)

// ToUTM19S projects a WGS84 [lon, lat] point to UTM zone 19S [easting, northing] in metres.
// Points outside the zone are still projected against the zone's central meridian, the way
// EPSG:32719 is applied to the whole country.
func ToUTM19S(p orb.Point) orb.Point {
	east, north, _ := lonLatToUTM19S(p.Lon(), p.Lat(), 0)
	return orb.Point{east, north}
}

// FromUTM19S converts a UTM zone 19S [easting, northing] point back to WGS84 [lon, lat].
func FromUTM19S(p orb.Point) orb.Point {
	lon, lat, _ := utm19SToLonLat(p[0], p[1], 0)
	return orb.Point{lon, lat}
}
