package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valegio/MapaRelaveCL/internal/geocoding"
	"github.com/valegio/MapaRelaveCL/test/mocks"
	"googlemaps.github.io/maps"
)

func TestGeocode(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, slog.Default())
	ctx := t.Context()

	t.Run("api returns error", func(t *testing.T) {
		address := "some invalid place"
		req := geocoding.GeocodingRequest(address)

		mockClient.On("Geocode", ctx, req).Return(nil, assert.AnError).Once()

		_, err := provider.Geocode(ctx, address)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		require.ErrorIs(t, err, geocoding.ErrUnavailable)
		mockClient.AssertExpectations(t)
	})

	t.Run("api return empty response", func(t *testing.T) {
		address := "some invalid place"
		req := geocoding.GeocodingRequest(address)

		mockClient.On("Geocode", ctx, req).Return(nil, nil).Once()

		coords, err := provider.Geocode(ctx, address)

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
		require.ErrorIs(t, err, geocoding.ErrNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("successfull geocoding", func(t *testing.T) {
		address := "Av. Libertador Bernardo O'Higgins 1058, Santiago"
		req := geocoding.GeocodingRequest(address)
		mockReponse := []maps.GeocodingResult{
			{Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: -33.4429, Lng: -70.6539}}},
		}

		mockClient.On("Geocode", ctx, req).Return(mockReponse, nil).Once()

		coords, err := provider.Geocode(ctx, address)

		require.NoError(t, err)
		require.NotNil(t, coords)
		require.InEpsilon(t, -33.4429, coords.Latitude, 0.0001)
		require.InEpsilon(t, -70.6539, coords.Longitude, 0.0001)
		mockClient.AssertExpectations(t)
	})
}

func TestGeocodingRequest_RestrictedToChile(t *testing.T) {
	req := geocoding.GeocodingRequest("Copiapó")

	assert.Equal(t, "Copiapó", req.Address)
	assert.Equal(t, "cl", req.Region)
	assert.Equal(t, "CL", req.Components[maps.ComponentCountry])
}
