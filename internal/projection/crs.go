// Package projection converts geometries between the geographic WGS84 system used for display
// and the UTM zone 19 south system used for metric distances.
package projection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// CRS identifies a coordinate reference system by its EPSG code.
type CRS int

const (
	// WGS84 is the geographic longitude/latitude system (EPSG:4326).
	WGS84 CRS = 4326
	// UTM19S is WGS84 / UTM zone 19S (EPSG:32719), metres.
	UTM19S CRS = 32719
)

// ErrUnsupportedCRS is returned for EPSG codes without a known transformation.
var ErrUnsupportedCRS = errors.New("unsupported coordinate reference system")

func (c CRS) String() string {
	return "EPSG:" + strconv.Itoa(int(c))
}

// ParseCRS accepts "4326", "EPSG:4326", "urn:ogc:def:crs:EPSG::32719" and the OGC CRS84
// identifiers, which name WGS84 in longitude/latitude order.
func ParseCRS(value string) (CRS, error) {
	code := strings.ToUpper(strings.TrimSpace(value))
	if strings.HasSuffix(code, "CRS84") {
		return WGS84, nil
	}
	if i := strings.LastIndex(code, ":"); i >= 0 {
		code = code[i+1:]
	}

	num, err := strconv.Atoi(code)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCRS, value)
	}

	crs := CRS(num)
	switch crs {
	case WGS84, UTM19S:
		return crs, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCRS, crs)
	}
}

// Transform returns the point projection from one system to another.
func Transform(from, to CRS) (orb.Projection, error) {
	switch {
	case from == to && (from == WGS84 || from == UTM19S):
		return func(p orb.Point) orb.Point { return p }, nil
	case from == WGS84 && to == UTM19S:
		return ToUTM19S, nil
	case from == UTM19S && to == WGS84:
		return FromUTM19S, nil
	default:
		return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedCRS, from, to)
	}
}

// Geometry returns a reprojected copy of g. The input is never modified.
func Geometry(g orb.Geometry, from, to CRS) (orb.Geometry, error) {
	proj, err := Transform(from, to)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, nil
	}

	return project.Geometry(orb.Clone(g), proj), nil
}

// Point reprojects a single point.
func Point(p orb.Point, from, to CRS) (orb.Point, error) {
	proj, err := Transform(from, to)
	if err != nil {
		return orb.Point{}, err
	}

	return proj(p), nil
}
