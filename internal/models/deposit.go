package models

import "github.com/paulmach/orb"

// Deposit is a tailings deposit ("relave") from the national registry.
type Deposit struct {
	ID          string    // ID is the registry identifier.
	Name        string    // Name of the facility.
	Company     string    // Company is the operating company or mining producer.
	Site        string    // Site is the mining operation ("faena") the deposit belongs to.
	DepositType string    // DepositType is the kind of deposit (embalse, tranque, ...).
	Resource    string    // Resource is the mineral resource processed.
	RegionCode  string    // RegionCode is the owning region's roman-numeral code.
	Region      string    // Region is the display name of the owning region, empty when the code is unknown.
	Location    orb.Point // Location in WGS84 ([lon, lat]).
	Projected   orb.Point // Projected is the location in UTM 19S metres.
}

// RankedDeposit is a Deposit annotated with its distance to a query point.
type RankedDeposit struct {
	Deposit
	DistanceMeters float64
}

// DistanceKm returns the distance in kilometres. Used for display only.
func (r RankedDeposit) DistanceKm() float64 {
	const metersPerKm = 1000
	return r.DistanceMeters / metersPerKm
}
