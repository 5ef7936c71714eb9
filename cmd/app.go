package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/valegio/MapaRelaveCL/internal/config"
	"github.com/valegio/MapaRelaveCL/internal/dataset"
	"github.com/valegio/MapaRelaveCL/internal/geocoding"
	"github.com/valegio/MapaRelaveCL/internal/metrics"
	"github.com/valegio/MapaRelaveCL/internal/repository"
	"github.com/valegio/MapaRelaveCL/internal/service"
	"github.com/valegio/MapaRelaveCL/internal/web"
)

const redisKeyPrefix = "relaves:geocode:"

// app holds what every command shares: configuration, logger and metrics.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	closers []func()
}

func newApp() *app {
	// Load application configuration.
	cfg := config.MustLoad()

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &app{
		cfg:     cfg,
		log:     setupLogger(cfg.Env),
		reg:     reg,
		metrics: metrics.NewMetrics(reg),
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) loader() *dataset.Loader {
	files := dataset.DefaultFiles(a.cfg.Data.RegionsURL, a.cfg.Data.DepositsURL)
	return dataset.NewLoader(a.cfg.Data.Dir, files, nil, a.log, a.metrics)
}

// catalog builds the reference data from the configured source. The returned pinger is nil
// unless the data lives in PostGIS.
func (a *app) catalog(ctx context.Context) (*dataset.Catalog, web.Pinger, error) {
	var (
		source dataset.Source
		health web.Pinger
	)

	switch a.cfg.Data.Source {
	case config.SourcePostgres:
		db := a.cfg.Database
		pool, err := repository.NewDatabase(ctx, db.Host, db.Port, db.User, db.Password, db.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		source, health = repository.NewRepository(pool, a.log), pool
	default:
		loader := a.loader()
		if err := loader.Fetch(ctx, false); err != nil {
			return nil, nil, err
		}
		source = dataset.NewFileSource(loader)
	}

	catalog, err := dataset.BuildCatalog(ctx, source, a.log, a.metrics)
	if err != nil {
		return nil, nil, err
	}

	return catalog, health, nil
}

// provider creates the configured geocoding provider wrapped in the lookup cache.
func (a *app) provider() (geocoding.Provider, error) {
	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(a.cfg.ProviderType),
		APIKey:    a.cfg.APIKey,
		RateLimit: a.cfg.RateLimit,
		Logger:    a.log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoding provider: %w", err)
	}

	var store geocoding.Store = geocoding.NewMemoryStore(a.cfg.Cache.Size)
	if addr := a.cfg.Cache.RedisAddr; addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		a.closers = append(a.closers, func() { _ = client.Close() })
		store = geocoding.NewRedisStore(client, redisKeyPrefix)
	}

	return geocoding.NewCache(provider, store, a.cfg.Cache.TTL, a.log, a.metrics), nil
}

func (a *app) searcher(ctx context.Context) (*service.Searcher, *dataset.Catalog, web.Pinger, error) {
	provider, err := a.provider()
	if err != nil {
		return nil, nil, nil, err
	}

	catalog, health, err := a.catalog(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	searcher := service.NewSearcher(a.log, provider, a.cfg.ProviderType, catalog, a.metrics, a.cfg.NearestLimit)

	return searcher, catalog, health, nil
}

// serve runs the HTTP server until ctx is cancelled.
func (a *app) serve(ctx context.Context, handler http.Handler) error {
	readTimeout := 5
	writeTimeout := 60
	shutdownTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Port),
		Handler:      handler,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.InfoContext(ctx, "Starting HTTP server", "port", a.cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	// Log that a shutdown signal has been received.
	a.log.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Duration(shutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	// Log graceful shutdown completion.
	a.log.InfoContext(ctx, "Application stopped gracefully.")

	return nil
}
