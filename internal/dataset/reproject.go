package dataset

import (
	"fmt"
	"sync"

	"github.com/paulmach/orb/geojson"
	"github.com/valegio/MapaRelaveCL/internal/projection"
)

type reprojectKey struct {
	name Name
	crs  projection.CRS
}

// Reprojector memoizes reprojected copies of datasets per (dataset, CRS) for the life of the
// process. Source collections are never modified.
type Reprojector struct {
	mu    sync.Mutex
	cache map[reprojectKey]*geojson.FeatureCollection
}

// NewReprojector creates an empty memo.
func NewReprojector() *Reprojector {
	return &Reprojector{cache: make(map[reprojectKey]*geojson.FeatureCollection)}
}

// Reproject returns fc, stored in from, converted to the target CRS. Repeated calls for the
// same dataset and target return the same collection.
func (r *Reprojector) Reproject(
	name Name, fc *geojson.FeatureCollection, from, to projection.CRS,
) (*geojson.FeatureCollection, error) {
	key := reprojectKey{name: name, crs: to}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[key]; ok {
		return cached, nil
	}

	out := geojson.NewFeatureCollection()
	for i, f := range fc.Features {
		geometry, err := projection.Geometry(f.Geometry, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to reproject %s feature %d: %w", name, i, err)
		}

		feature := geojson.NewFeature(geometry)
		feature.ID = f.ID
		feature.Properties = f.Properties.Clone()
		out.Append(feature)
	}

	r.cache[key] = out

	return out, nil
}
