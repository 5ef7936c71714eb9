package spatial

import (
	"cmp"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/valegio/MapaRelaveCL/internal/models"
	"github.com/valegio/MapaRelaveCL/internal/projection"
)

// DefaultLimit is the number of deposits listed for a search.
const DefaultLimit = 10

// Nearest ranks deposits by Euclidean distance in UTM 19S metres from point, given in WGS84.
// The sort is stable so equidistant deposits keep their collection order. At most limit
// results are returned; a non-positive limit returns all of them. The result is never nil.
func Nearest(point orb.Point, deposits []models.Deposit, limit int) []models.RankedDeposit {
	query := projection.ToUTM19S(point)

	ranked := make([]models.RankedDeposit, 0, len(deposits))
	for _, deposit := range deposits {
		ranked = append(ranked, models.RankedDeposit{
			Deposit:        deposit,
			DistanceMeters: planar.Distance(query, deposit.Projected),
		})
	}

	slices.SortStableFunc(ranked, func(a, b models.RankedDeposit) int {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}
