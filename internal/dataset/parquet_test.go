package dataset_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Flaque/filet"
	"github.com/parquet-go/parquet-go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valegio/MapaRelaveCL/internal/dataset"
	"github.com/valegio/MapaRelaveCL/internal/projection"
)

const utmGeoMetadata = `{"version":"1.0.0","primary_column":"geometry","columns":{"geometry":` +
	`{"encoding":"WKB","geometry_types":["Polygon"],"crs":{"id":{"authority":"EPSG","code":32719}}}}}`

type boundaryRow struct {
	Region   string `parquet:"Region"`
	Geometry []byte `parquet:"geometry"`
}

type registryRow struct {
	ID       int64  `parquet:"ID"`
	Company  string `parquet:"NOMBRE_EMPRESA_O_PRODUCTOR_MINERO"`
	Site     string `parquet:"NOMBRE_FAENA"`
	Region   string `parquet:"REGION"`
	Geometry []byte `parquet:"geometry"`
}

func parquetBytes[T any](t *testing.T, rows []T, geo string) []byte {
	t.Helper()

	var opts []parquet.WriterOption
	if geo != "" {
		opts = append(opts, parquet.KeyValueMetadata("geo", geo))
	}

	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[T](&buf, opts...)
	_, err := writer.Write(rows)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return buf.Bytes()
}

func wkbBytes(t *testing.T, g orb.Geometry) []byte {
	t.Helper()

	data, err := wkb.Marshal(g)
	require.NoError(t, err)

	return data
}

var atacama = orb.Polygon{{{-71.5, -29.5}, {-68.5, -29.5}, {-68.5, -26}, {-71.5, -26}, {-71.5, -29.5}}}

// newDriveServer serves GeoParquet files the way the shared Drive links do: no extension in
// the URL path, the file selected by the id query parameter.
func newDriveServer(t *testing.T) *httptest.Server {
	t.Helper()

	projected, err := projection.Geometry(atacama, projection.WGS84, projection.UTM19S)
	require.NoError(t, err)

	regions := parquetBytes(t, []boundaryRow{
		{Region: "Región de Atacama", Geometry: wkbBytes(t, projected)},
	}, utmGeoMetadata)
	deposits := parquetBytes(t, []registryRow{
		{ID: 101, Company: "Minera Norte", Site: "Faena A", Region: "III", Geometry: wkbBytes(t, orb.Point{-70.33, -27.37})},
		{ID: 102, Company: "Minera Norte", Site: "Faena B", Region: "III", Geometry: nil},
	}, "")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id") {
		case "regiones":
			_, _ = w.Write(regions)
		case "relaves":
			_, _ = w.Write(deposits)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestFileSource_GeoParquet(t *testing.T) {
	defer filet.CleanUp(t)
	server := newDriveServer(t)
	files := dataset.DefaultFiles(
		server.URL+"/uc?export=download&id=regiones",
		server.URL+"/uc?export=download&id=relaves",
	)
	dir := filet.TmpDir(t, "")
	loader := dataset.NewLoader(dir, files, server.Client(), slog.Default(), nil)
	source := dataset.NewFileSource(loader)

	t.Run("stored as parquet", func(t *testing.T) {
		fc, err := loader.Load(t.Context(), dataset.Regions)

		require.NoError(t, err)
		require.Len(t, fc.Features, 1)
		assert.FileExists(t, filepath.Join(dir, "Regiones_Chile.parquet"))

		crs, err := dataset.CollectionCRS(fc, projection.WGS84)
		require.NoError(t, err)
		assert.Equal(t, projection.UTM19S, crs)
	})

	t.Run("regions declared in utm are reprojected", func(t *testing.T) {
		regions, err := source.Regions(t.Context())

		require.NoError(t, err)
		require.Len(t, regions, 1)
		assert.Equal(t, "III", regions[0].Code)
		assert.Equal(t, "Región de Atacama", regions[0].Name)

		ring := regions[0].Geometry[0][0]
		for i, p := range ring {
			assert.InDelta(t, atacama[0][i].Lon(), p.Lon(), 1e-6)
			assert.InDelta(t, atacama[0][i].Lat(), p.Lat(), 1e-6)
		}
	})

	t.Run("deposits without geo metadata are wgs84", func(t *testing.T) {
		deposits, err := source.Deposits(t.Context())

		require.NoError(t, err)
		require.Len(t, deposits, 1, "rows without geometry are skipped")
		assert.Equal(t, "101", deposits[0].ID)
		assert.Equal(t, "Minera Norte", deposits[0].Company)
		assert.Equal(t, "Faena A", deposits[0].Site)
		assert.Equal(t, "III", deposits[0].RegionCode)
		assert.Equal(t, orb.Point{-70.33, -27.37}, deposits[0].Location)
	})
}

func TestDecode_Parquet(t *testing.T) {
	defer filet.CleanUp(t)

	write := func(t *testing.T, data []byte) string {
		t.Helper()
		path := filepath.Join(filet.TmpDir(t, ""), "relaves.parquet")
		filet.File(t, path, string(data))
		return path
	}

	t.Run("corrupt file", func(t *testing.T) {
		_, err := dataset.Decode(write(t, []byte("PAR1")))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open parquet file")
	})

	t.Run("missing geometry column", func(t *testing.T) {
		type row struct {
			Region string `parquet:"Region"`
		}

		_, err := dataset.Decode(write(t, parquetBytes(t, []row{{Region: "RM"}}, "")))

		require.ErrorIs(t, err, dataset.ErrUnsupportedFormat)
	})

	t.Run("non wkb encoding", func(t *testing.T) {
		geo := `{"version":"1.1.0","primary_column":"geometry","columns":{"geometry":{"encoding":"point"}}}`
		rows := []boundaryRow{{Region: "RM", Geometry: []byte{1}}}

		_, err := dataset.Decode(write(t, parquetBytes(t, rows, geo)))

		require.ErrorIs(t, err, dataset.ErrUnsupportedFormat)
	})

	t.Run("invalid wkb", func(t *testing.T) {
		rows := []boundaryRow{{Region: "RM", Geometry: []byte{1, 2, 3}}}

		_, err := dataset.Decode(write(t, parquetBytes(t, rows, "")))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode WKB geometry")
	})
}
