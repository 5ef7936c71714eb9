package models

// Statistics summarises the national deposit registry.
type Statistics struct {
	TotalDeposits      int `json:"total_deposits"`
	RegionsWithDeposit int `json:"regions_with_deposits"`
	Companies          int `json:"companies"`
}

// RegionShare returns the percentage of the national total that count represents.
// It returns zero when total is zero.
func RegionShare(count, total int) float64 {
	if total == 0 {
		return 0
	}
	const percent = 100

	return float64(count) / float64(total) * percent
}
