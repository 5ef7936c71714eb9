package repository

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

var ErrUnexpectedGeometry = errors.New("unexpected geometry type")

func decodePoint(data []byte) (orb.Point, error) {
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return orb.Point{}, fmt.Errorf("failed to decode EWKB: %w", err)
	}

	p, ok := g.(*geom.Point)
	if !ok {
		return orb.Point{}, fmt.Errorf("%w: want point, got %T", ErrUnexpectedGeometry, g)
	}

	return orb.Point{p.X(), p.Y()}, nil
}

func decodeMultiPolygon(data []byte) (orb.MultiPolygon, error) {
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode EWKB: %w", err)
	}

	switch v := g.(type) {
	case *geom.MultiPolygon:
		mp := make(orb.MultiPolygon, 0, v.NumPolygons())
		for i := range v.NumPolygons() {
			mp = append(mp, polygon(v.Polygon(i)))
		}
		return mp, nil
	case *geom.Polygon:
		return orb.MultiPolygon{polygon(v)}, nil
	default:
		return nil, fmt.Errorf("%w: want polygon, got %T", ErrUnexpectedGeometry, g)
	}
}

func polygon(p *geom.Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, p.NumLinearRings())
	for i := range p.NumLinearRings() {
		coords := p.LinearRing(i).Coords()
		ring := make(orb.Ring, 0, len(coords))
		for _, c := range coords {
			ring = append(ring, orb.Point{c.X(), c.Y()})
		}
		out = append(out, ring)
	}

	return out
}
