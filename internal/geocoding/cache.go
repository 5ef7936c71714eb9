package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valegio/MapaRelaveCL/internal/metrics"
	"github.com/valegio/MapaRelaveCL/internal/models"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// sharedLookupTimeout bounds a provider call that concurrent callers wait on together.
const sharedLookupTimeout = 15 * time.Second

// Entry is a memoized geocoding outcome. Not-found answers are cached too.
type Entry struct {
	Found       bool               `json:"found"`
	Coordinates models.Coordinates `json:"coordinates"`
}

// Store persists memoized entries for a bounded time.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
}

// Cache is a Provider decorator that memoizes lookups of identical addresses within a TTL window.
// Only definitive answers are cached; ErrUnavailable failures always reach the provider again.
type Cache struct {
	next    Provider
	store   Store
	ttl     time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics
	group   singleflight.Group
}

// NewCache wraps next with a memoizing layer backed by store.
func NewCache(next Provider, store Store, ttl time.Duration, log *slog.Logger, m *metrics.Metrics) *Cache {
	return &Cache{next: next, store: store, ttl: ttl, log: log, metrics: m}
}

// CacheKey normalizes an address so that spacing, case and Unicode composition differences
// map to the same entry.
func CacheKey(address string) string {
	collapsed := strings.Join(strings.Fields(address), " ")

	return cases.Fold().String(norm.NFC.String(collapsed))
}

// Geocode returns the memoized answer for address or asks the wrapped provider.
func (c *Cache) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	key := CacheKey(address)

	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.WarnContext(ctx, "Geocode cache read failed", "key", key, "error", err)
	}
	if ok {
		c.observe("hit")
		c.log.DebugContext(ctx, "Geocode cache hit", "key", key, "found", entry.Found)
		return entry.result(address)
	}
	c.observe("miss")

	// The shared lookup outlives any single caller, so one cancelled request does not fail the
	// others waiting on the same address.
	flight := c.group.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()

		coords, geoErr := c.next.Geocode(shared, address)
		switch {
		case geoErr == nil:
			c.remember(shared, key, Entry{Found: true, Coordinates: *coords})
		case errors.Is(geoErr, ErrNotFound):
			c.remember(shared, key, Entry{Found: false})
		}

		return coords, geoErr
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-flight:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	coords, _ := res.Val.(*models.Coordinates)
	if coords == nil {
		return nil, fmt.Errorf("%w: provider returned no coordinates", ErrUnavailable)
	}
	result := *coords

	return &result, nil
}

func (c *Cache) remember(ctx context.Context, key string, entry Entry) {
	if err := c.store.Set(ctx, key, entry, c.ttl); err != nil {
		c.log.WarnContext(ctx, "Geocode cache write failed", "key", key, "error", err)
	}
}

func (c *Cache) observe(result string) {
	if c.metrics != nil {
		c.metrics.GeocodeCache.WithLabelValues(result).Inc()
	}
}

func (e Entry) result(address string) (*models.Coordinates, error) {
	if !e.Found {
		return nil, fmt.Errorf("%w: cached result for %q", ErrNotFound, address)
	}
	coords := e.Coordinates

	return &coords, nil
}
