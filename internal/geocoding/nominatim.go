package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/valegio/MapaRelaveCL/internal/models"
)

// NominatimProvider geocodes Chilean addresses with OpenStreetMap's Nominatim search API.
// The public instance allows about one request per second.
type NominatimProvider struct {
	client    HTTPClient
	baseURL   string
	log       *slog.Logger
	userAgent string // userAgent identifies the app, as the public instance requires.
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

var (
	ErrNominatimEmptyResponse = fmt.Errorf("%w: nominatim API returned empty response", ErrNotFound)
	ErrNominatimInvalidCoords = fmt.Errorf("%w: nominatim API returned invalid coordinates", ErrUnavailable)
)

const (
	nominatimBaseURL   = "https://nominatim.openstreetmap.org/search"
	nominatimUserAgent = "MapaRelaveCL/1.0 (https://github.com/valegio/MapaRelaveCL)"
	nominatimLanguage  = "es,en"
)

// NewNominatimProvider creates a provider for the public Nominatim endpoint.
func NewNominatimProvider(log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return NewNominatimProviderWithClient(&http.Client{Timeout: timeout * time.Second}, log)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
func NewNominatimProviderWithClient(client HTTPClient, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{
		client:    client,
		baseURL:   nominatimBaseURL,
		log:       log,
		userAgent: nominatimUserAgent,
	}
}

// Geocode resolves address, widening the query when OSM has no exact match. Chilean addresses
// are written street first ("Los Carrera 120, Copiapó, Atacama"), so the query first loses the
// house number and then its leading components, never going below the commune.
func (np *NominatimProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	queries := addressQueries(address)

	for level, query := range queries {
		coords, err := np.search(ctx, query)
		if errors.Is(err, ErrNominatimEmptyResponse) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if level > 0 {
			np.log.InfoContext(ctx, "Geocoded with a wider query", "address", address, "query", query)
		}
		return coords, nil
	}

	np.log.DebugContext(ctx, "Nominatim found no match", "address", address, "queries", len(queries))
	return nil, ErrNominatimEmptyResponse
}

// addressQueries lists the queries tried for address, most specific first.
func addressQueries(address string) []string {
	var parts []string
	for _, p := range strings.Split(address, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return []string{strings.TrimSpace(address)}
	}

	var queries []string
	add := func(q []string) {
		query := strings.Join(q, ", ")
		for _, seen := range queries {
			if seen == query {
				return
			}
		}
		queries = append(queries, query)
	}

	add(parts)
	if street := withoutHouseNumber(parts[0]); street != "" {
		add(append([]string{street}, parts[1:]...))
	}

	// A trailing region keeps the commune query unambiguous, so stop at two components then.
	minParts := 1
	if len(parts) > 2 {
		minParts = 2
	}
	for i := 1; len(parts)-i >= minParts; i++ {
		add(parts[i:])
	}

	return queries
}

// withoutHouseNumber strips a trailing number such as "120", "#120" or "120-B" from a street.
func withoutHouseNumber(street string) string {
	fields := strings.Fields(street)
	if len(fields) < 2 {
		return street
	}

	last := strings.TrimPrefix(fields[len(fields)-1], "#")
	if last == "" || !unicode.IsDigit([]rune(last)[0]) {
		return street
	}

	return strings.Join(fields[:len(fields)-1], " ")
}

func (np *NominatimProvider) search(ctx context.Context, query string) (*models.Coordinates, error) {
	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "cl")
	params.Set("accept-language", nominatimLanguage)
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept-Language", nominatimLanguage)

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute geocoding request: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: nominatim API returned status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var places []nominatimPlace
	if err = json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("%w: failed to decode nominatim response: %w", ErrUnavailable, err)
	}
	if len(places) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, places[0].Lat)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, places[0].Lon)
	}

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
