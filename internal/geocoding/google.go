package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valegio/MapaRelaveCL/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient is the subset of *maps.Client used by GoogleProvider.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = fmt.Errorf("%w: get empty response from Google Maps API", ErrNotFound)

// NewGoogleProvider initializes a new GoogleProvider with the given client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// GeocodingRequest builds the request sent for an address, biased and restricted to Chile.
func GeocodingRequest(address string) *maps.GeocodingRequest {
	return &maps.GeocodingRequest{
		Address:    address,
		Region:     "cl",
		Language:   "es",
		Components: map[maps.Component]string{maps.ComponentCountry: "CL"},
	}
}

// Geocode takes a context and an address string as input, and returns the geographical coordinates
// (longitude and latitude) of the provided address using the Google Maps Geocoding API.
// If the address cannot be geocoded or if the response is empty, it returns an appropriate error.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	geocodeResponse, err := gp.client.Geocode(ctx, GeocodingRequest(address))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to geocode address: %w", ErrUnavailable, err)
	}

	if len(geocodeResponse) == 0 {
		return nil, ErrEmptyResponse
	}
	coords := geocodeResponse[0].Geometry.Location

	return &models.Coordinates{Longitude: coords.Lng, Latitude: coords.Lat}, nil
}
