package geocoding

import (
	"context"
	"errors"
	"net/http"

	"github.com/valegio/MapaRelaveCL/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the corresponding coordinates and an error if any occurs.
//
// Implementations report an empty result with an error wrapping ErrNotFound and
// any transport or upstream failure with an error wrapping ErrUnavailable.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var (
	// ErrNotFound is returned when the provider has no candidate for the address.
	ErrNotFound = errors.New("address not found")
	// ErrUnavailable is returned when the provider could not be queried or answered badly.
	ErrUnavailable = errors.New("geocoding provider unavailable")
)
