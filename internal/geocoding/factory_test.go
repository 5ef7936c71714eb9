package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valegio/MapaRelaveCL/internal/geocoding"
)

func TestNewProvider(t *testing.T) {
	logger := slog.Default()

	t.Run("create OpenRouteService provider successfully", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:      geocoding.ProviderTypeOpenRoute,
			APIKey:    "test-api-key",
			RateLimit: 2,
			Logger:    logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.NoError(t, err)
		_, ok := provider.(*geocoding.OpenRouteProvider)
		assert.True(t, ok, "expected provider to be *OpenRouteProvider")
	})

	t.Run("create OpenRouteService provider without rate limit uses default", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:   geocoding.ProviderTypeOpenRoute,
			APIKey: "test-api-key",
			Logger: logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.NoError(t, err)
		require.NotNil(t, provider)
	})

	t.Run("create OpenRouteService provider without API key fails", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:   geocoding.ProviderTypeOpenRoute,
			Logger: logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.Error(t, err)
		require.Nil(t, provider)
		assert.Contains(t, err.Error(), "API key is required for OpenRouteService provider")
	})

	t.Run("create Google provider successfully", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:      geocoding.ProviderTypeGoogle,
			APIKey:    "test-api-key",
			RateLimit: 10,
			Logger:    logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.NoError(t, err)
		require.NotNil(t, provider)
		_, ok := provider.(*geocoding.GoogleProvider)
		assert.True(t, ok, "expected provider to be *GoogleProvider")
	})

	t.Run("create Google provider without API key fails", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:      geocoding.ProviderTypeGoogle,
			APIKey:    "", // Empty API key
			RateLimit: 10,
			Logger:    logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.Error(t, err)
		require.Nil(t, provider)
		assert.Contains(t, err.Error(), "API key is required for Google provider")
	})

	t.Run("create Google provider without rate limit", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:      geocoding.ProviderTypeGoogle,
			APIKey:    "test-api-key",
			RateLimit: 0, // No rate limit
			Logger:    logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.NoError(t, err)
		require.NotNil(t, provider)
	})

	t.Run("create Nominatim provider without API key", func(t *testing.T) {
		// Nominatim doesn't require an API key
		config := geocoding.ProviderConfig{
			Type:   geocoding.ProviderTypeNominatim,
			APIKey: "",
			Logger: logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.NoError(t, err)
		_, ok := provider.(*geocoding.NominatimProvider)
		assert.True(t, ok, "expected provider to be *NominatimProvider")
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{Type: geocoding.ProviderTypeNominatim})

		require.NoError(t, err)
		require.NotNil(t, provider)
	})

	t.Run("unsupported provider type", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:   geocoding.ProviderType("visicom"),
			Logger: logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.Error(t, err)
		require.Nil(t, provider)
		assert.Contains(t, err.Error(), "unsupported provider type: visicom")
	})

	t.Run("empty provider type", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:   geocoding.ProviderType(""),
			Logger: logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.Error(t, err)
		require.Nil(t, provider)
		assert.Contains(t, err.Error(), "unsupported provider type")
	})
}

func TestProviderType_Constants(t *testing.T) {
	assert.Equal(t, "openrouteservice", string(geocoding.ProviderTypeOpenRoute))
	assert.Equal(t, "google", string(geocoding.ProviderTypeGoogle))
	assert.Equal(t, "nominatim", string(geocoding.ProviderTypeNominatim))
}
