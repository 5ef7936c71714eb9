package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"
)

const (
	geoMetadataKey        = "geo"
	defaultGeometryColumn = "geometry"
	encodingWKB           = "WKB"
	parquetBatchSize      = 128
)

// geoMetadata is the GeoParquet file metadata stored under the "geo" key.
type geoMetadata struct {
	PrimaryColumn string                       `json:"primary_column"`
	Columns       map[string]geoColumnMetadata `json:"columns"`
}

type geoColumnMetadata struct {
	Encoding string    `json:"encoding"`
	CRS      *projJSON `json:"crs"`
}

// projJSON keeps only the identifier of a PROJJSON CRS definition.
type projJSON struct {
	ID *struct {
		Authority string `json:"authority"`
		Code      any    `json:"code"`
	} `json:"id"`
}

func (p *projJSON) name() string {
	if p == nil || p.ID == nil {
		return ""
	}

	return fmt.Sprintf("%s:%v", p.ID.Authority, p.ID.Code)
}

func decodeParquet(path string) (*geojson.FeatureCollection, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file %s: %w", path, err)
	}

	meta, err := readGeoMetadata(pf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	columns := pf.Schema().Columns()
	names := make([]string, len(columns))
	geometryIndex := -1
	for i, column := range columns {
		names[i] = strings.Join(column, ".")
		if names[i] == meta.PrimaryColumn {
			geometryIndex = i
		}
	}
	if geometryIndex < 0 {
		return nil, fmt.Errorf("%w: %s has no %q column", ErrUnsupportedFormat, path, meta.PrimaryColumn)
	}

	fc := geojson.NewFeatureCollection()
	if crs := meta.Columns[meta.PrimaryColumn].CRS.name(); crs != "" {
		fc.ExtraMembers = geojson.Properties{crsMember: namedCRS(crs)}
	}

	for i, group := range pf.RowGroups() {
		if err = decodeRowGroup(group, names, geometryIndex, fc); err != nil {
			return nil, fmt.Errorf("failed to decode %s row group %d: %w", path, i, err)
		}
	}

	return fc, nil
}

func readGeoMetadata(pf *parquet.File) (geoMetadata, error) {
	meta := geoMetadata{PrimaryColumn: defaultGeometryColumn}

	raw, ok := pf.Lookup(geoMetadataKey)
	if !ok {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return meta, fmt.Errorf("failed to decode GeoParquet metadata: %w", err)
	}
	if meta.PrimaryColumn == "" {
		meta.PrimaryColumn = defaultGeometryColumn
	}

	if enc := meta.Columns[meta.PrimaryColumn].Encoding; enc != "" && !strings.EqualFold(enc, encodingWKB) {
		return meta, fmt.Errorf("%w: geometry encoding %q", ErrUnsupportedFormat, enc)
	}

	return meta, nil
}

func decodeRowGroup(group parquet.RowGroup, names []string, geometryIndex int, fc *geojson.FeatureCollection) error {
	rows := group.Rows()
	defer func() { _ = rows.Close() }()

	buf := make([]parquet.Row, parquetBatchSize)
	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			feature, ferr := parquetFeature(row, names, geometryIndex)
			if ferr != nil {
				return ferr
			}
			if feature != nil {
				fc.Append(feature)
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// parquetFeature converts one row. Rows without geometry are skipped.
func parquetFeature(row parquet.Row, names []string, geometryIndex int) (*geojson.Feature, error) {
	props := make(geojson.Properties, len(names))
	var geometryValue []byte

	for _, v := range row {
		column := v.Column()
		if column < 0 || column >= len(names) {
			continue
		}
		if column == geometryIndex {
			if !v.IsNull() {
				geometryValue = v.ByteArray()
			}
			continue
		}
		if _, seen := props[names[column]]; !seen {
			props[names[column]] = parquetValue(v)
		}
	}

	if len(geometryValue) == 0 {
		return nil, nil
	}

	geometry, err := wkb.Unmarshal(geometryValue)
	if err != nil {
		return nil, fmt.Errorf("failed to decode WKB geometry: %w", err)
	}

	feature := geojson.NewFeature(geometry)
	feature.Properties = props

	return feature, nil
}

// parquetValue maps a column value to the types GeoJSON decoding produces.
func parquetValue(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}

	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return float64(v.Int32())
	case parquet.Int64:
		return float64(v.Int64())
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
