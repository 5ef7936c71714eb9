package geocoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/valegio/MapaRelaveCL/internal/models"
	"golang.org/x/time/rate"
)

// OpenRouteBaseURL is the OpenRouteService forward geocoding endpoint.
const OpenRouteBaseURL = "https://api.openrouteservice.org/geocode/search"

// defaultOpenRouteRateLimit keeps below the free plan allowance of 100 requests per minute.
const defaultOpenRouteRateLimit = 1

// OpenRouteProvider implements geocoding using the OpenRouteService (Pelias) API.
// Responses are GeoJSON feature collections; the first feature's point is used.
type OpenRouteProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the OpenRouteService API
	apiKey  string        // API key with geocoding access
	country string        // ISO country used as search boundary
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// Common errors for OpenRouteService provider.
var (
	ErrOpenRouteEmptyAddress  = fmt.Errorf("%w: openrouteservice provider got empty address", ErrNotFound)
	ErrOpenRouteEmptyResponse = fmt.Errorf("%w: openrouteservice API returned no features", ErrNotFound)
	ErrOpenRouteInvalidCoords = fmt.Errorf("%w: openrouteservice API returned invalid coordinates", ErrUnavailable)
	ErrOpenRouteUnauthorized  = fmt.Errorf("%w: openrouteservice API unauthorized (invalid API key)", ErrUnavailable)
)

// NewOpenRouteProvider creates a new OpenRouteService geocoding provider restricted to Chile.
func NewOpenRouteProvider(apiKey string, rateLimit int, log *slog.Logger) *OpenRouteProvider {
	const timeout = 10

	return NewOpenRouteProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		apiKey,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewOpenRouteProviderWithClient allows injecting custom HTTP client and limiter.
func NewOpenRouteProviderWithClient(
	client HTTPClient,
	apiKey string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *OpenRouteProvider {
	return &OpenRouteProvider{
		client:  client,
		baseURL: OpenRouteBaseURL,
		apiKey:  apiKey,
		country: "CL",
		log:     log,
		limiter: limiter,
	}
}

// Geocode converts address into geographic coordinates using OpenRouteService.
func (op *OpenRouteProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	if address == "" {
		return nil, ErrOpenRouteEmptyAddress
	}

	if err := op.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit exceeded: %w", ErrUnavailable, err)
	}

	op.log.DebugContext(ctx, "Geocoding using OpenRouteService", "address", address)

	reqURL, err := url.Parse(op.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("api_key", op.apiKey)
	query.Set("text", address)
	query.Set("boundary.country", op.country)
	query.Set("size", "1")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := op.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute geocoding request: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrOpenRouteUnauthorized
	default:
		body, _ := io.ReadAll(resp.Body)
		op.log.ErrorContext(ctx, "OpenRouteService API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: openrouteservice API returned status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrUnavailable, err)
	}

	collection, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode openrouteservice response: %w", ErrUnavailable, err)
	}

	if len(collection.Features) == 0 {
		return nil, ErrOpenRouteEmptyResponse
	}

	point, ok := collection.Features[0].Geometry.(orb.Point)
	if !ok {
		return nil, ErrOpenRouteInvalidCoords
	}

	if err = validateLonLat(point); err != nil {
		return nil, errors.Join(ErrOpenRouteInvalidCoords, err)
	}

	op.log.InfoContext(ctx, "OpenRouteService found result", "address", address, "lat", point.Lat(), "lon", point.Lon())

	coords := models.CoordinatesFromPoint(point)
	return &coords, nil
}

// validateLonLat rejects points outside the valid WGS84 range.
func validateLonLat(p orb.Point) error {
	const maxLon, maxLat = 180, 90
	if p.Lon() < -maxLon || p.Lon() > maxLon || p.Lat() < -maxLat || p.Lat() > maxLat {
		return fmt.Errorf("coordinates out of range: %v", p)
	}

	return nil
}
