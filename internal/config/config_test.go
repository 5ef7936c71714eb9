package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valegio/MapaRelaveCL/internal/config"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("RELAVES_ENV", "local")
	t.Setenv("RELAVES_PORT", "9090")
	t.Setenv("ORS_API_KEY", "testAPIKey")
	t.Setenv("RELAVES_CACHE_TTL", "10m")
	t.Setenv("RELAVES_REDIS_ADDR", "localhost:6379")
	t.Setenv("RELAVES_DATA_SOURCE", "POSTGRES")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "testAPIKey", cfg.APIKey)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, config.SourcePostgres, cfg.Data.Source)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
}

func TestMustLoad_Defaults(t *testing.T) {
	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "openrouteservice", cfg.ProviderType)
	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, 10, cfg.NearestLimit)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 1024, cfg.Cache.Size)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, config.SourceRemote, cfg.Data.Source)
	assert.Equal(t, "5432", cfg.Database.Port)
}

func TestMustLoad_ProviderKeyPrecedence(t *testing.T) {
	t.Setenv("ORS_API_KEY", "ors")
	t.Setenv("RELAVES_PROVIDER_KEY", "explicit")

	assert.Equal(t, "explicit", config.MustLoad().APIKey)
}

func TestMustLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relaves.yaml")
	content := "provider_type: nominatim\nnearest_limit: 5\ndata_dir: /var/lib/relaves\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("RELAVES_CONFIG", path)
	t.Setenv("RELAVES_NEAREST_LIMIT", "7")

	cfg := config.MustLoad()

	assert.Equal(t, "nominatim", cfg.ProviderType)
	assert.Equal(t, "/var/lib/relaves", cfg.Data.Dir)
	assert.Equal(t, 7, cfg.NearestLimit, "environment overrides the file")
}

func TestMustLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		panic string
	}{
		{"ttl", "RELAVES_CACHE_TTL", "error_value", "failed to parse cache ttl from configuration"},
		{"port", "RELAVES_PORT", "error_value", "failed to parse port for http server from configuration"},
		{"rate limit", "RELAVES_PROVIDER_RATE_LIMIT", "fast",
			"failed to parse provider rate limit from configuration, must be an integer"},
		{"cache size", "RELAVES_CACHE_SIZE", "big", "failed to parse cache size from configuration, must be an integer"},
		{"nearest limit", "RELAVES_NEAREST_LIMIT", "0",
			"failed to parse nearest limit from configuration, must be a positive integer"},
		{"data source", "RELAVES_DATA_SOURCE", "s3", "unsupported data source in configuration, must be remote or postgres"},
		{"config file", "RELAVES_CONFIG", "/nonexistent/relaves.yaml", "failed to read configuration file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			assert.PanicsWithValue(t, tt.panic, func() {
				config.MustLoad()
			})
		})
	}
}
