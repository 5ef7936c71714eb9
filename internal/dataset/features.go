package dataset

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/valegio/MapaRelaveCL/internal/models"
)

// Registry column names. The published files carry keys such as "REGION " and "RECURSO ".
const (
	propID          = "ID"
	propName        = "NOMBRE INSTALACION"
	propCompany     = "NOMBRE_EMPRESA_O_PRODUCTOR_MINERO"
	propSite        = "NOMBRE_FAENA"
	propDepositType = "TIPO_DEPOSITO"
	propResource    = "RECURSO"
	propRegion      = "REGION"
)

// properties resolves registry columns by exact key first, then by trimmed case-insensitive
// key. Columns that collide after folding are visited in sorted key order.
type properties struct {
	raw    geojson.Properties
	folded map[string][]string
}

func normalizeProperties(p geojson.Properties) properties {
	folded := make(map[string][]string, len(p))
	for k := range p {
		key := foldKey(k)
		folded[key] = append(folded[key], k)
	}
	for _, keys := range folded {
		slices.Sort(keys)
	}

	return properties{raw: p, folded: folded}
}

func foldKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// values returns every non-empty value stored under key, the exact column first.
func (p properties) values(key string) []string {
	var out []string
	if v := stringValue(p.raw[key]); v != "" {
		out = append(out, v)
	}
	for _, k := range p.folded[foldKey(key)] {
		if k == key {
			continue
		}
		if v := stringValue(p.raw[k]); v != "" {
			out = append(out, v)
		}
	}

	return out
}

func (p properties) text(key string) string {
	if values := p.values(key); len(values) > 0 {
		return values[0]
	}

	return ""
}

// regionCode picks the region column holding a known code, then one holding a known region
// name. The registry publishes both "REGION " (codes) and "REGION".
func (p properties) regionCode() string {
	values := p.values(propRegion)
	for _, v := range values {
		if _, ok := RegionName(v); ok {
			return strings.ToUpper(v)
		}
	}
	for _, v := range values {
		if code, ok := RegionCode(v); ok {
			return code
		}
	}

	return strings.ToUpper(p.text(propRegion))
}

func stringValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// depositFromFeatures builds a deposit from the same registry row in WGS84 and UTM 19S.
func depositFromFeatures(index int, wgs, utm *geojson.Feature) (models.Deposit, error) {
	location, ok := wgs.Geometry.(orb.Point)
	if !ok {
		return models.Deposit{}, fmt.Errorf("%w: deposit %d has %T", ErrUnsupportedGeometry, index, wgs.Geometry)
	}
	projected, ok := utm.Geometry.(orb.Point)
	if !ok {
		return models.Deposit{}, fmt.Errorf("%w: deposit %d has %T", ErrUnsupportedGeometry, index, utm.Geometry)
	}

	props := normalizeProperties(wgs.Properties)
	id := props.text(propID)
	if id == "" {
		id = strconv.Itoa(index)
	}

	code := props.regionCode()
	region, _ := RegionName(code)

	return models.Deposit{
		ID:          id,
		Name:        props.text(propName),
		Company:     props.text(propCompany),
		Site:        props.text(propSite),
		DepositType: props.text(propDepositType),
		Resource:    props.text(propResource),
		RegionCode:  code,
		Region:      region,
		Location:    location,
		Projected:   projected,
	}, nil
}

// regionFromFeatures builds a region from the same boundary row in WGS84 and UTM 19S.
// The "Region" column holds either the display name or the code.
func regionFromFeatures(index int, wgs, utm *geojson.Feature) (models.Region, error) {
	geometry, err := multiPolygon(wgs.Geometry)
	if err != nil {
		return models.Region{}, fmt.Errorf("region %d: %w", index, err)
	}
	projected, err := multiPolygon(utm.Geometry)
	if err != nil {
		return models.Region{}, fmt.Errorf("region %d: %w", index, err)
	}

	value := normalizeProperties(wgs.Properties).text(propRegion)
	region := models.Region{Name: value, Geometry: geometry, Projected: projected}

	if code, ok := RegionCode(value); ok {
		region.Code = code
		region.Name = regionNames[code]
	} else if name, ok := RegionName(value); ok {
		region.Code = strings.ToUpper(value)
		region.Name = name
	}

	return region, nil
}

func multiPolygon(g orb.Geometry) (orb.MultiPolygon, error) {
	switch v := g.(type) {
	case orb.MultiPolygon:
		return v, nil
	case orb.Polygon:
		return orb.MultiPolygon{v}, nil
	default:
		return nil, fmt.Errorf("%w: expected polygon, got %T", ErrUnsupportedGeometry, g)
	}
}
