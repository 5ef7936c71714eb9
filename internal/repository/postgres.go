package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/valegio/MapaRelaveCL/internal/dataset"
	"github.com/valegio/MapaRelaveCL/internal/models"
)

const regionsQuery = `
	SELECT
		code,
		name,
		ST_AsEWKB(ST_Multi(ST_Transform(geom, 4326))),
		ST_AsEWKB(ST_Multi(ST_Transform(geom, 32719)))
	FROM public.regiones
	ORDER BY id ASC;
`

const depositsQuery = `
	SELECT
		id::text,
		nombre_instalacion,
		COALESCE(empresa, ''),
		COALESCE(faena, ''),
		COALESCE(tipo_deposito, ''),
		COALESCE(recurso, ''),
		COALESCE(region, ''),
		ST_AsEWKB(ST_Transform(geom, 4326)),
		ST_AsEWKB(ST_Transform(geom, 32719))
	FROM public.relaves
	ORDER BY id ASC;
`

var _ dataset.Source = (*Repository)(nil)

// Regions retrieves the region boundaries in WGS84 and UTM 19S.
// Names of known codes are replaced by the display names of the code table.
func (r *Repository) Regions(ctx context.Context) ([]models.Region, error) {
	rows, err := r.db.Query(ctx, regionsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	var regions []models.Region
	for rows.Next() {
		var (
			region   models.Region
			wgs, utm []byte
		)
		if errScan := rows.Scan(&region.Code, &region.Name, &wgs, &utm); errScan != nil {
			return nil, fmt.Errorf("failed to scan region: %w", errScan)
		}

		if region.Geometry, err = decodeMultiPolygon(wgs); err != nil {
			return nil, fmt.Errorf("region %s: %w", region.Code, err)
		}
		if region.Projected, err = decodeMultiPolygon(utm); err != nil {
			return nil, fmt.Errorf("region %s: %w", region.Code, err)
		}

		region.Code = strings.ToUpper(strings.TrimSpace(region.Code))
		if name, ok := dataset.RegionName(region.Code); ok {
			region.Name = name
		}
		regions = append(regions, region)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}
	r.log.DebugContext(ctx, "Regions received from database", "count", len(regions))

	return regions, nil
}

// Deposits retrieves the deposit registry in WGS84 and UTM 19S.
func (r *Repository) Deposits(ctx context.Context) ([]models.Deposit, error) {
	rows, err := r.db.Query(ctx, depositsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposits: %w", err)
	}
	defer rows.Close()

	var deposits []models.Deposit
	for rows.Next() {
		var (
			deposit  models.Deposit
			wgs, utm []byte
		)
		errScan := rows.Scan(
			&deposit.ID, &deposit.Name, &deposit.Company, &deposit.Site,
			&deposit.DepositType, &deposit.Resource, &deposit.RegionCode, &wgs, &utm,
		)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", errScan)
		}

		if deposit.Location, err = decodePoint(wgs); err != nil {
			return nil, fmt.Errorf("deposit %s: %w", deposit.ID, err)
		}
		if deposit.Projected, err = decodePoint(utm); err != nil {
			return nil, fmt.Errorf("deposit %s: %w", deposit.ID, err)
		}

		deposit.RegionCode = strings.ToUpper(strings.TrimSpace(deposit.RegionCode))
		deposit.Region, _ = dataset.RegionName(deposit.RegionCode)
		deposits = append(deposits, deposit)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}
	r.log.DebugContext(ctx, "Deposits received from database", "count", len(deposits))

	return deposits, nil
}
