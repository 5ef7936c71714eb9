package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valegio/MapaRelaveCL/internal/geocoding"
	"github.com/valegio/MapaRelaveCL/internal/metrics"
	"github.com/valegio/MapaRelaveCL/internal/models"
	"github.com/valegio/MapaRelaveCL/internal/spatial"
)

var ErrEmptyAddress = errors.New("address is empty")

// Outcome classifies how a search ended.
type Outcome string

const (
	OutcomeFound            Outcome = "found"
	OutcomeLocationNotFound Outcome = "location_not_found"
	OutcomeRegionNotFound   Outcome = "region_not_found"
	OutcomeNoDeposits       Outcome = "no_deposits"
)

// Catalog is the reference data a search reads from.
type Catalog interface {
	Regions() []models.Region
	DepositsIn(region string) []models.Deposit
	Statistics() models.Statistics
}

// Result is everything the presentation layer needs to render one search.
type Result struct {
	Address        string
	Outcome        Outcome
	Location       *models.Coordinates    // Location is the geocoded query point, nil when not found.
	Region         *models.Region         // Region containing Location, nil when none does.
	RegionCount    int                    // RegionCount is the number of deposits in Region.
	RegionShare    float64                // RegionShare is RegionCount as a percentage of the national total.
	TotalDeposits  int                    // TotalDeposits is the national total.
	Nearest        []models.RankedDeposit // Nearest deposits of the region, closest first.
	RegionDeposits []models.Deposit       // RegionDeposits are all deposits of Region.
}

// Closest returns the nearest deposit, or nil when there is none.
func (r *Result) Closest() *models.RankedDeposit {
	if len(r.Nearest) == 0 {
		return nil
	}

	return &r.Nearest[0]
}

// Searcher runs the address search pipeline: geocode, resolve the region, rank deposits.
type Searcher struct {
	log          *slog.Logger       // Logger for logging search activities
	provider     geocoding.Provider // Geocoding provider for external geocoding services
	providerName string             // Name of the provider for metrics labeling
	catalog      Catalog            // Immutable reference data
	metrics      *metrics.Metrics   // Metrics for tracking search outcomes
	limit        int                // Number of nearest deposits to return
}

// NewSearcher creates a new Searcher. A non-positive limit selects spatial.DefaultLimit.
func NewSearcher(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	catalog Catalog,
	metrics *metrics.Metrics,
	limit int,
) *Searcher {
	if limit <= 0 {
		limit = spatial.DefaultLimit
	}

	return &Searcher{
		log:          log,
		provider:     provider,
		providerName: providerName,
		catalog:      catalog,
		metrics:      metrics,
		limit:        limit,
	}
}

// Search geocodes address and collects the region and nearest deposits around it.
// Lookup failures are reported through Result.Outcome; the returned error is reserved for
// invalid input and cancellation.
func (s *Searcher) Search(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyAddress
	}

	stats := s.catalog.Statistics()
	result := &Result{Address: address, TotalDeposits: stats.TotalDeposits}

	startTime := time.Now()
	coords, err := s.provider.Geocode(ctx, address)
	s.metrics.RequestSeconds.WithLabelValues(s.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("search cancelled: %w", ctxErr)
		}
		if errors.Is(err, geocoding.ErrNotFound) {
			s.log.InfoContext(ctx, "Address not found", "address", address, "error", err)
		} else {
			s.metrics.APIErrors.Inc()
			s.log.ErrorContext(ctx, "Failed to geocode", "address", address, "error", err)
		}

		return s.finish(result, OutcomeLocationNotFound), nil
	}
	result.Location = coords

	region, ok := spatial.Resolve(coords.Point(), s.catalog.Regions())
	if !ok {
		s.log.InfoContext(ctx, "No region contains the location", "lat", coords.Latitude, "lon", coords.Longitude)
		return s.finish(result, OutcomeRegionNotFound), nil
	}
	result.Region = region

	deposits := s.catalog.DepositsIn(region.Name)
	result.RegionCount = len(deposits)
	result.RegionShare = models.RegionShare(len(deposits), stats.TotalDeposits)
	if len(deposits) == 0 {
		return s.finish(result, OutcomeNoDeposits), nil
	}

	result.RegionDeposits = deposits
	result.Nearest = spatial.Nearest(coords.Point(), deposits, s.limit)
	s.log.DebugContext(ctx, "Search completed",
		"address", address, "region", region.Code, "deposits", len(deposits), "closest", result.Nearest[0].ID)

	return s.finish(result, OutcomeFound), nil
}

func (s *Searcher) finish(result *Result, outcome Outcome) *Result {
	result.Outcome = outcome
	s.metrics.Searches.WithLabelValues(string(outcome)).Inc()

	return result
}
