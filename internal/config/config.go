package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Data sources for the reference datasets.
const (
	SourceRemote   = "remote"
	SourcePostgres = "postgres"
)

// Config holds the configuration settings for the relaves finder.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port of the HTTP server (pages, API, health and metrics).
// - ProviderType: The geocoding provider to use (openrouteservice, google, nominatim).
// - APIKey: The API key of the geocoding provider.
// - RateLimit: Maximum geocoding requests per second.
// - NearestLimit: Number of nearest deposits listed per search.
// - Cache: Geocode cache settings.
// - Data: Reference dataset settings.
// - Database: Configuration settings for the PostGIS database.
type Config struct {
	Env          string
	Port         int
	ProviderType string
	APIKey       string
	RateLimit    int
	NearestLimit int
	Cache        CacheConfig
	Data         DataConfig
	Database     PostgresConfig
}

// CacheConfig configures memoization of geocoding lookups.
type CacheConfig struct {
	TTL       time.Duration // TTL is how long a lookup is remembered.
	Size      int           // Size bounds the in-process store.
	RedisAddr string        // RedisAddr selects a shared Redis store when set.
}

// DataConfig configures where the reference datasets come from.
type DataConfig struct {
	Dir         string // Dir is the local download cache.
	Source      string // Source is remote (downloaded files) or postgres.
	RegionsURL  string // RegionsURL overrides the region boundaries download.
	DepositsURL string // DepositsURL overrides the deposit registry download.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad reads .env, an optional relaves.yaml file and RELAVES_* environment variables.
// Environment variables take precedence over the file. It panics on malformed values.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := newViper()

	ttl, err := time.ParseDuration(v.GetString("cache_ttl"))
	if err != nil {
		panic("failed to parse cache ttl from configuration")
	}

	port, err := strconv.Atoi(v.GetString("port"))
	if err != nil {
		panic("failed to parse port for http server from configuration")
	}

	rateLimit, err := strconv.Atoi(v.GetString("provider_rate_limit"))
	if err != nil {
		panic("failed to parse provider rate limit from configuration, must be an integer")
	}

	cacheSize, err := strconv.Atoi(v.GetString("cache_size"))
	if err != nil {
		panic("failed to parse cache size from configuration, must be an integer")
	}

	nearest, err := strconv.Atoi(v.GetString("nearest_limit"))
	if err != nil || nearest <= 0 {
		panic("failed to parse nearest limit from configuration, must be a positive integer")
	}

	source := strings.ToLower(v.GetString("data_source"))
	if source != SourceRemote && source != SourcePostgres {
		panic("unsupported data source in configuration, must be remote or postgres")
	}

	return &Config{
		Env:          v.GetString("env"),
		Port:         port,
		ProviderType: v.GetString("provider_type"),
		APIKey:       v.GetString("provider_key"),
		RateLimit:    rateLimit,
		NearestLimit: nearest,
		Cache: CacheConfig{
			TTL:       ttl,
			Size:      cacheSize,
			RedisAddr: v.GetString("redis_addr"),
		},
		Data: DataConfig{
			Dir:         v.GetString("data_dir"),
			Source:      source,
			RegionsURL:  v.GetString("regions_url"),
			DepositsURL: v.GetString("deposits_url"),
		},
		Database: PostgresConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_username"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("env", "production")
	v.SetDefault("port", "8080")
	v.SetDefault("provider_type", "openrouteservice")
	v.SetDefault("provider_rate_limit", "10")
	v.SetDefault("cache_ttl", "1h")
	v.SetDefault("cache_size", "1024")
	v.SetDefault("data_dir", "data")
	v.SetDefault("data_source", SourceRemote)
	v.SetDefault("nearest_limit", "10")
	v.SetDefault("db_port", "5432")

	v.SetEnvPrefix("RELAVES")
	v.AutomaticEnv()

	_ = v.BindEnv("provider_key", "RELAVES_PROVIDER_KEY", "ORS_API_KEY")
	for _, key := range []string{"db_host", "db_port", "db_username", "db_password", "db_name"} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
		return v
	}

	v.SetConfigName("relaves")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("failed to read configuration file")
		}
	}

	return v
}
