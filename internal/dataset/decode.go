package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/valegio/MapaRelaveCL/internal/projection"
)

const (
	extGeoJSON   = ".geojson"
	extJSON      = ".json"
	extShapefile = ".shp"
	extZip       = ".zip"
	extParquet   = ".parquet"
)

// crsMember is the legacy GeoJSON member naming the coordinate reference system.
const crsMember = "crs"

// Decode reads a dataset file into a feature collection, choosing the decoder by extension.
func Decode(path string) (*geojson.FeatureCollection, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case extGeoJSON, extJSON:
		return decodeGeoJSON(path)
	case extParquet:
		return decodeParquet(path)
	case extShapefile:
		reader, err := shp.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open shapefile %s: %w", path, err)
		}
		defer func() { _ = reader.Close() }()

		return decodeShapes(reader)
	case extZip:
		reader, err := shp.OpenZip(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open zipped shapefile %s: %w", path, err)
		}
		defer func() { _ = reader.Close() }()

		return decodeShapes(reader)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func decodeGeoJSON(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode GeoJSON %s: %w", path, err)
	}

	return fc, nil
}

func namedCRS(name string) map[string]any {
	return map[string]any{"type": "name", "properties": map[string]any{"name": name}}
}

// CollectionCRS returns the coordinate system declared by the collection's "crs" member, or
// fallback when it declares none.
func CollectionCRS(fc *geojson.FeatureCollection, fallback projection.CRS) (projection.CRS, error) {
	member, ok := fc.ExtraMembers[crsMember].(map[string]any)
	if !ok {
		return fallback, nil
	}
	props, _ := member["properties"].(map[string]any)
	name, _ := props["name"].(string)
	if name == "" {
		return fallback, nil
	}

	return projection.ParseCRS(name)
}

// shapeReader is the part of shp.Reader and shp.ZipReader used for decoding.
type shapeReader interface {
	Fields() []shp.Field
	Next() bool
	Shape() (int, shp.Shape)
	Attribute(n int) string
}

func decodeShapes(reader shapeReader) (*geojson.FeatureCollection, error) {
	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	fc := geojson.NewFeatureCollection()
	for reader.Next() {
		row, shape := reader.Shape()
		if shape == nil {
			continue
		}

		geometry, err := shapeGeometry(shape)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", row, err)
		}

		feature := geojson.NewFeature(geometry)
		for i, name := range names {
			feature.Properties[name] = strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
		}
		fc.Append(feature)
	}

	return fc, nil
}

func shapeGeometry(shape shp.Shape) (orb.Geometry, error) {
	switch s := shape.(type) {
	case *shp.Point:
		return orb.Point{s.X, s.Y}, nil
	case *shp.PointZ:
		return orb.Point{s.X, s.Y}, nil
	case *shp.PointM:
		return orb.Point{s.X, s.Y}, nil
	case *shp.Polygon:
		return polygonParts(s.Parts, s.Points), nil
	case *shp.PolygonZ:
		return polygonParts(s.Parts, s.Points), nil
	default:
		return nil, fmt.Errorf("%w: shapefile %T", ErrUnsupportedGeometry, shape)
	}
}

// polygonParts groups shapefile rings into polygons. Clockwise rings start a new polygon and
// counter-clockwise rings are holes of the polygon before them.
func polygonParts(parts []int32, points []shp.Point) orb.MultiPolygon {
	var mp orb.MultiPolygon
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start >= end || end > int32(len(points)) {
			continue
		}

		ring := make(orb.Ring, 0, end-start)
		for _, p := range points[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}

		if len(mp) == 0 || ring.Orientation() == orb.CW {
			mp = append(mp, orb.Polygon{ring})
			continue
		}
		mp[len(mp)-1] = append(mp[len(mp)-1], ring)
	}

	return mp
}
