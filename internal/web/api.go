package web

import (
	"encoding/json"
	"net/http"

	"github.com/valegio/MapaRelaveCL/internal/service"
)

type locationJSON struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

type regionJSON struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type depositJSON struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Company        string       `json:"company"`
	Site           string       `json:"site"`
	DepositType    string       `json:"deposit_type"`
	Resource       string       `json:"resource"`
	Region         string       `json:"region"`
	Location       locationJSON `json:"location"`
	DistanceMeters float64      `json:"distance_m"`
	DistanceKm     float64      `json:"distance_km"`
}

type searchJSON struct {
	Address       string        `json:"address"`
	Outcome       string        `json:"outcome"`
	Message       string        `json:"message"`
	Location      *locationJSON `json:"location"`
	Region        *regionJSON   `json:"region"`
	RegionCount   int           `json:"region_count"`
	RegionShare   float64       `json:"region_share"`
	TotalDeposits int           `json:"total_deposits"`
	Nearest       []depositJSON `json:"nearest"`
}

func newSearchJSON(result *service.Result) searchJSON {
	out := searchJSON{
		Address:       result.Address,
		Outcome:       string(result.Outcome),
		Message:       result.Message(),
		RegionCount:   result.RegionCount,
		RegionShare:   result.RegionShare,
		TotalDeposits: result.TotalDeposits,
		Nearest:       make([]depositJSON, 0, len(result.Nearest)),
	}

	if result.Location != nil {
		out.Location = &locationJSON{Latitude: result.Location.Latitude, Longitude: result.Location.Longitude}
	}
	if result.Region != nil {
		out.Region = &regionJSON{Code: result.Region.Code, Name: result.Region.Name}
	}

	for _, r := range result.Nearest {
		out.Nearest = append(out.Nearest, depositJSON{
			ID:             r.ID,
			Name:           r.Name,
			Company:        r.Company,
			Site:           r.Site,
			DepositType:    r.DepositType,
			Resource:       r.Resource,
			Region:         r.Region,
			Location:       locationJSON{Latitude: r.Location.Lat(), Longitude: r.Location.Lon()},
			DistanceMeters: r.DistanceMeters,
			DistanceKm:     r.DistanceKm(),
		})
	}

	return out
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(data)
}
