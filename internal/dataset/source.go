package dataset

import (
	"context"
	"fmt"

	"github.com/paulmach/orb/geojson"
	"github.com/valegio/MapaRelaveCL/internal/models"
	"github.com/valegio/MapaRelaveCL/internal/projection"
)

// Source provides the reference data a Catalog is built from.
type Source interface {
	Regions(ctx context.Context) ([]models.Region, error)
	Deposits(ctx context.Context) ([]models.Deposit, error)
}

// FileSource reads the reference data from downloaded dataset files.
type FileSource struct {
	loader      *Loader
	reprojector *Reprojector
}

// NewFileSource creates a Source backed by loader.
func NewFileSource(loader *Loader) *FileSource {
	return &FileSource{loader: loader, reprojector: NewReprojector()}
}

// Regions loads the region polygons in both coordinate systems.
func (s *FileSource) Regions(ctx context.Context) ([]models.Region, error) {
	wgs, utm, err := s.load(ctx, Regions)
	if err != nil {
		return nil, err
	}

	regions := make([]models.Region, 0, len(wgs.Features))
	for i := range wgs.Features {
		region, err := regionFromFeatures(i, wgs.Features[i], utm.Features[i])
		if err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}

	return regions, nil
}

// Deposits loads the deposit registry in both coordinate systems.
func (s *FileSource) Deposits(ctx context.Context) ([]models.Deposit, error) {
	wgs, utm, err := s.load(ctx, Deposits)
	if err != nil {
		return nil, err
	}

	deposits := make([]models.Deposit, 0, len(wgs.Features))
	for i := range wgs.Features {
		deposit, err := depositFromFeatures(i, wgs.Features[i], utm.Features[i])
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, deposit)
	}

	return deposits, nil
}

func (s *FileSource) load(ctx context.Context, name Name) (wgs, utm *geojson.FeatureCollection, err error) {
	file, err := s.loader.File(name)
	if err != nil {
		return nil, nil, err
	}

	fc, err := s.loader.Load(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	from, err := CollectionCRS(fc, file.CRS)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare %s: %w", name, err)
	}

	if wgs, err = s.reprojector.Reproject(name, fc, from, projection.WGS84); err != nil {
		return nil, nil, fmt.Errorf("failed to prepare %s: %w", name, err)
	}
	if utm, err = s.reprojector.Reproject(name, fc, from, projection.UTM19S); err != nil {
		return nil, nil, fmt.Errorf("failed to prepare %s: %w", name, err)
	}

	return wgs, utm, nil
}
