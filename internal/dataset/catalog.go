package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valegio/MapaRelaveCL/internal/metrics"
	"github.com/valegio/MapaRelaveCL/internal/models"
)

// Catalog is the immutable reference data shared by every search. It is built once at
// startup and safe for concurrent use.
type Catalog struct {
	regions  []models.Region
	deposits []models.Deposit
	byRegion map[string][]models.Deposit
	orphans  int
	stats    models.Statistics
}

// NewCatalog indexes deposits by region name and computes national statistics.
// Deposits whose region code matches no region are kept in the national totals but belong
// to no region subset.
func NewCatalog(regions []models.Region, deposits []models.Deposit) *Catalog {
	c := &Catalog{
		regions:  regions,
		deposits: deposits,
		byRegion: make(map[string][]models.Deposit, len(regions)),
	}

	known := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		known[r.Name] = struct{}{}
	}

	codes := make(map[string]struct{})
	companies := make(map[string]struct{})
	for _, d := range deposits {
		if d.RegionCode != "" {
			codes[d.RegionCode] = struct{}{}
		}
		if d.Company != "" {
			companies[d.Company] = struct{}{}
		}

		if _, ok := known[d.Region]; !ok || d.Region == "" {
			c.orphans++
			continue
		}
		c.byRegion[d.Region] = append(c.byRegion[d.Region], d)
	}

	c.stats = models.Statistics{
		TotalDeposits:      len(deposits),
		RegionsWithDeposit: len(codes),
		Companies:          len(companies),
	}

	return c
}

// BuildCatalog reads regions and deposits from src. m may be nil.
func BuildCatalog(ctx context.Context, src Source, log *slog.Logger, m *metrics.Metrics) (*Catalog, error) {
	regions, err := src.Regions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load regions: %w", err)
	}

	deposits, err := src.Deposits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load deposits: %w", err)
	}

	c := NewCatalog(regions, deposits)
	if c.orphans > 0 {
		log.DebugContext(ctx, "Orphan deposits without a matching region", "count", c.orphans)
	}
	if len(regions) != RegionCount() {
		log.WarnContext(ctx, "Region dataset does not match the region code table",
			"regions", len(regions), "known", RegionCount())
	}
	log.InfoContext(ctx, "Catalog ready", "regions", len(regions), "deposits", len(deposits))

	if m != nil {
		m.ReferenceObjects.WithLabelValues("regions").Set(float64(len(regions)))
		m.ReferenceObjects.WithLabelValues("deposits").Set(float64(len(deposits)))
	}

	return c, nil
}

// Regions returns every region in collection order.
func (c *Catalog) Regions() []models.Region { return c.regions }

// Deposits returns every deposit in collection order.
func (c *Catalog) Deposits() []models.Deposit { return c.deposits }

// DepositsIn returns the deposits of the named region in collection order.
func (c *Catalog) DepositsIn(region string) []models.Deposit { return c.byRegion[region] }

// Statistics returns the national totals.
func (c *Catalog) Statistics() models.Statistics { return c.stats }

// Orphans is the number of deposits that belong to no loaded region.
func (c *Catalog) Orphans() int { return c.orphans }
