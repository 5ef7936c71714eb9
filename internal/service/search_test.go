package service_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valegio/MapaRelaveCL/internal/dataset"
	"github.com/valegio/MapaRelaveCL/internal/geocoding"
	"github.com/valegio/MapaRelaveCL/internal/metrics"
	"github.com/valegio/MapaRelaveCL/internal/models"
	"github.com/valegio/MapaRelaveCL/internal/projection"
	"github.com/valegio/MapaRelaveCL/internal/service"
	"github.com/valegio/MapaRelaveCL/test/mocks"
)

const (
	atacama   = "Región de Atacama"
	coquimbo  = "Región de Coquimbo"
	copiapo   = "Los Carrera 120, Copiapó"
	laSerena  = "Av. Francisco de Aguirre 300, La Serena"
	mendoza   = "Av. San Martín 1000, Mendoza"
	nowhere   = "calle inexistente 123"
	otherWork = "Minera Norte"
)

func square(minLon, minLat, maxLon, maxLat float64) orb.MultiPolygon {
	return orb.MultiPolygon{{{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}}
}

func deposit(id, region, code string, lon, lat float64) models.Deposit {
	location := orb.Point{lon, lat}
	return models.Deposit{
		ID:          id,
		Name:        "Relave " + id,
		Company:     otherWork,
		DepositType: "Tranque",
		RegionCode:  code,
		Region:      region,
		Location:    location,
		Projected:   projection.ToUTM19S(location),
	}
}

// testCatalog has three Atacama deposits, none in Coquimbo and 100 nationally.
func testCatalog() *dataset.Catalog {
	regions := []models.Region{
		{Code: "III", Name: atacama, Geometry: square(-71.5, -29.5, -68.5, -26)},
		{Code: "IV", Name: coquimbo, Geometry: square(-71.8, -32.2, -69.8, -29.5)},
	}

	deposits := []models.Deposit{
		deposit("far", atacama, "III", -70.0, -27.0),
		deposit("near", atacama, "III", -70.32, -27.36),
		deposit("mid", atacama, "III", -70.2, -27.3),
	}
	for i := range 97 {
		deposits = append(deposits, deposit(fmt.Sprintf("rm-%d", i), "Región Metropolitana de Santiago", "RM", -70.6, -33.4))
	}

	return dataset.NewCatalog(regions, deposits)
}

func newSearcher(t *testing.T, provider geocoding.Provider) (*service.Searcher, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewMetrics(prometheus.NewRegistry())

	return service.NewSearcher(slog.Default(), provider, "openrouteservice", testCatalog(), m, 0), m
}

func TestSearch(t *testing.T) {
	ctx := t.Context()

	t.Run("three deposits in the region", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		searcher, m := newSearcher(t, provider)
		provider.On("Geocode", ctx, copiapo).Return(&models.Coordinates{Latitude: -27.37, Longitude: -70.33}, nil).Once()

		result, err := searcher.Search(ctx, "  "+copiapo+" ")

		require.NoError(t, err)
		assert.Equal(t, service.OutcomeFound, result.Outcome)
		assert.Equal(t, copiapo, result.Address)
		require.NotNil(t, result.Region)
		assert.Equal(t, "III", result.Region.Code)
		assert.Equal(t, 3, result.RegionCount)
		assert.Equal(t, 100, result.TotalDeposits)
		assert.InDelta(t, 3.0, result.RegionShare, 1e-9)
		require.Len(t, result.Nearest, 3)
		assert.Equal(t, "near", result.Closest().ID)
		assert.Len(t, result.RegionDeposits, 3)
		assert.Equal(t,
			"En la Región de Atacama se registran 3 relaves, que corresponde a un 3.00% del catastro nacional",
			result.Message())
		assert.Equal(t, "📍 Ubicación encontrada: -27.37000, -70.33000", result.LocationMessage())
		assert.InDelta(t, 1, testutil.ToFloat64(m.Searches.WithLabelValues("found")), 0)
	})

	t.Run("region without deposits", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		searcher, m := newSearcher(t, provider)
		provider.On("Geocode", ctx, laSerena).Return(&models.Coordinates{Latitude: -29.9, Longitude: -71.25}, nil).Once()

		result, err := searcher.Search(ctx, laSerena)

		require.NoError(t, err)
		assert.Equal(t, service.OutcomeNoDeposits, result.Outcome)
		assert.Equal(t, "IV", result.Region.Code)
		assert.Zero(t, result.RegionCount)
		assert.Empty(t, result.Nearest)
		assert.Nil(t, result.Closest())
		assert.Equal(t, "No se encontraron relaves registrados en la Región de Coquimbo.", result.Message())
		assert.InDelta(t, 1, testutil.ToFloat64(m.Searches.WithLabelValues("no_deposits")), 0)
	})

	t.Run("location outside every region", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		searcher, _ := newSearcher(t, provider)
		provider.On("Geocode", ctx, mendoza).Return(&models.Coordinates{Latitude: -32.89, Longitude: -68.84}, nil).Once()

		result, err := searcher.Search(ctx, mendoza)

		require.NoError(t, err)
		assert.Equal(t, service.OutcomeRegionNotFound, result.Outcome)
		assert.NotNil(t, result.Location)
		assert.Nil(t, result.Region)
		assert.Empty(t, result.Nearest)
		assert.Contains(t, result.Message(), "No se encontró la región")
	})

	t.Run("geocoder has no candidates", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		searcher, m := newSearcher(t, provider)
		provider.On("Geocode", ctx, nowhere).Return(nil, fmt.Errorf("%w: no features", geocoding.ErrNotFound)).Once()

		result, err := searcher.Search(ctx, nowhere)

		require.NoError(t, err)
		assert.Equal(t, service.OutcomeLocationNotFound, result.Outcome)
		assert.Nil(t, result.Location)
		assert.Nil(t, result.Region)
		assert.Empty(t, result.Nearest)
		assert.Empty(t, result.LocationMessage())
		assert.Equal(t,
			"No se pudo encontrar la ubicación. Por favor, verifica la dirección e intenta nuevamente.",
			result.Message())
		assert.Zero(t, testutil.ToFloat64(m.APIErrors))
	})

	t.Run("geocoder unavailable", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		searcher, m := newSearcher(t, provider)
		provider.On("Geocode", ctx, copiapo).Return(nil, errors.Join(geocoding.ErrUnavailable, assert.AnError)).Once()

		result, err := searcher.Search(ctx, copiapo)

		require.NoError(t, err)
		assert.Equal(t, service.OutcomeLocationNotFound, result.Outcome)
		assert.InDelta(t, 1, testutil.ToFloat64(m.APIErrors), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Searches.WithLabelValues("location_not_found")), 0)
	})

	t.Run("empty address", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		searcher, _ := newSearcher(t, provider)

		result, err := searcher.Search(ctx, "   ")

		require.ErrorIs(t, err, service.ErrEmptyAddress)
		assert.Nil(t, result)
	})

	t.Run("cancelled context", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		searcher, _ := newSearcher(t, provider)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		provider.On("Geocode", cancelled, copiapo).Return(nil, context.Canceled).Once()

		result, err := searcher.Search(cancelled, copiapo)

		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, result)
	})
}

func TestSearch_Limit(t *testing.T) {
	ctx := t.Context()
	regions := []models.Region{{Code: "II", Name: "Región de Antofagasta", Geometry: square(-71, -26, -67, -21)}}
	deposits := make([]models.Deposit, 0, 15)
	for i := range 15 {
		deposits = append(deposits, deposit(fmt.Sprintf("d%02d", i), "Región de Antofagasta", "II", -70.4+float64(i)*0.01, -23.6))
	}

	provider := mocks.NewProvider(t)
	provider.On("Geocode", ctx, "Antofagasta").Return(&models.Coordinates{Latitude: -23.6, Longitude: -70.4}, nil).Twice()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	catalog := dataset.NewCatalog(regions, deposits)

	result, err := service.NewSearcher(slog.Default(), provider, "test", catalog, m, 0).Search(ctx, "Antofagasta")
	require.NoError(t, err)
	assert.Len(t, result.Nearest, 10)
	assert.Len(t, result.RegionDeposits, 15)
	assert.Equal(t, "d00", result.Closest().ID)

	result, err = service.NewSearcher(slog.Default(), provider, "test", catalog, m, 3).Search(ctx, "Antofagasta")
	require.NoError(t, err)
	assert.Len(t, result.Nearest, 3)
}
