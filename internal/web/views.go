package web

import (
	"fmt"
	"html"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/valegio/MapaRelaveCL/internal/models"
	"github.com/valegio/MapaRelaveCL/internal/service"
)

// Map defaults.
const (
	overviewLat  = -35.675147
	overviewLon  = -71.542969
	overviewZoom = 5
	focusedZoom  = 12
	fitPadding   = 20

	clusterDisableAtZoom = 12
	clusterMaxRadius     = 40
)

const dataSource = "Servicio Nacional de Geología y Minería (SERNAGEOMIN), " +
	"Catastro de Depósitos de Relaves en Chile (2024)"

// LatLng is a Leaflet coordinate pair.
type LatLng [2]float64

func latLng(p orb.Point) LatLng { return LatLng{p.Lat(), p.Lon()} }

// Marker is a map pin. Popup and Tooltip hold escaped HTML.
type Marker struct {
	Position LatLng `json:"position"`
	Popup    string `json:"popup,omitempty"`
	Tooltip  string `json:"tooltip,omitempty"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
}

// Polyline connects the query point with the closest deposit.
type Polyline struct {
	Points    []LatLng `json:"points"`
	Popup     string   `json:"popup"`
	Color     string   `json:"color"`
	Weight    int      `json:"weight"`
	Opacity   float64  `json:"opacity"`
	DashArray string   `json:"dashArray"`
}

// OverviewMap is the national map with clustered deposits loaded from LayerURL.
type OverviewMap struct {
	Center   LatLng         `json:"center"`
	Zoom     int            `json:"zoom"`
	LayerURL string         `json:"layerUrl"`
	Cluster  ClusterOptions `json:"cluster"`
}

// ClusterOptions are passed to Leaflet.markercluster.
type ClusterOptions struct {
	DisableClusteringAtZoom int `json:"disableClusteringAtZoom"`
	MaxClusterRadius        int `json:"maxClusterRadius"`
}

// FocusedMap shows one search: the query point, the closest deposit and the region's deposits.
type FocusedMap struct {
	Center  LatLng   `json:"center"`
	Zoom    int      `json:"zoom"`
	Query   Marker   `json:"query"`
	Closest LatLng   `json:"closest"`
	Line    Polyline `json:"line"`
	Others  []Marker `json:"others"`
	Bounds  []LatLng `json:"bounds"`
	Padding int      `json:"padding"`
}

func newOverviewMap() *OverviewMap {
	return &OverviewMap{
		Center:   LatLng{overviewLat, overviewLon},
		Zoom:     overviewZoom,
		LayerURL: "/api/v1/map/overview",
		Cluster: ClusterOptions{
			DisableClusteringAtZoom: clusterDisableAtZoom,
			MaxClusterRadius:        clusterMaxRadius,
		},
	}
}

// newFocusedMap builds the per-search map. It returns nil unless the search found deposits.
// The region's deposits are drawn individually only when more than one was ranked.
func newFocusedMap(result *service.Result) *FocusedMap {
	closest := result.Closest()
	if result.Outcome != service.OutcomeFound || closest == nil || result.Location == nil {
		return nil
	}

	query := latLng(result.Location.Point())
	target := latLng(closest.Location)

	m := &FocusedMap{
		Center: query,
		Zoom:   focusedZoom,
		Query: Marker{
			Position: query,
			Popup:    "<b>Dirección ingresada:</b><br>" + html.EscapeString(result.Address),
			Tooltip:  "Tu ubicación",
			Color:    "green",
			Icon:     "home",
		},
		Closest: target,
		Line: Polyline{
			Points:    []LatLng{query, target},
			Popup:     fmt.Sprintf("Distancia: %.0f metros", closest.DistanceMeters),
			Color:     "blue",
			Weight:    3,
			Opacity:   0.8,
			DashArray: "10, 5",
		},
		Others:  []Marker{},
		Bounds:  []LatLng{query, target},
		Padding: fitPadding,
	}

	if len(result.Nearest) > 1 {
		for _, d := range result.RegionDeposits {
			m.Others = append(m.Others, Marker{
				Position: latLng(d.Location),
				Tooltip:  depositTooltip(d),
				Color:    "blue",
				Icon:     "map-pin",
			})
		}
	}

	return m
}

func depositTooltip(d models.Deposit) string {
	return fmt.Sprintf("<b>%s</b><br>Región: %s<br>Empresa: %s",
		html.EscapeString(d.Name), html.EscapeString(d.Region), html.EscapeString(d.Company))
}

// overviewLayer renders every deposit as a GeoJSON point with its popup text.
func overviewLayer(deposits []models.Deposit) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, d := range deposits {
		f := geojson.NewFeature(d.Location)
		f.ID = d.ID
		f.Properties["name"] = d.Name
		f.Properties["region"] = d.Region
		f.Properties["company"] = d.Company
		f.Properties["popup"] = fmt.Sprintf("<b>%s</b><br>Región: %s",
			html.EscapeString(d.Name), html.EscapeString(d.Region))
		fc.Append(f)
	}

	return fc
}

// Table row and detail panel of a successful search.
type depositRow struct {
	Name       string
	Company    string
	Type       string
	DistanceKm string
}

type depositDetail struct {
	Distance string
	Type     string
	Name     string
	Company  string
	Site     string
	Resource string
}

type resultView struct {
	Level           string // Level selects the alert style: success, info, warning or error.
	LocationMessage string
	RegionHeading   string
	Message         string
	Rows            []depositRow
	Detail          *depositDetail
}

func newResultView(result *service.Result) *resultView {
	view := &resultView{LocationMessage: result.LocationMessage(), Message: result.Message()}
	if result.Region != nil {
		view.RegionHeading = "Región: " + result.Region.Name
	}

	switch result.Outcome {
	case service.OutcomeLocationNotFound:
		view.Level = "error"
	case service.OutcomeRegionNotFound, service.OutcomeNoDeposits:
		view.Level = "warning"
	default:
		view.Level = "info"
	}

	for _, r := range result.Nearest {
		view.Rows = append(view.Rows, depositRow{
			Name:       r.Name,
			Company:    r.Company,
			Type:       r.DepositType,
			DistanceKm: fmt.Sprintf("%.2f", r.DistanceKm()),
		})
	}

	if closest := result.Closest(); closest != nil {
		view.Detail = &depositDetail{
			Distance: fmt.Sprintf("%.0f metros", closest.DistanceMeters),
			Type:     closest.DepositType,
			Name:     closest.Name,
			Company:  closest.Company,
			Site:     closest.Site,
			Resource: closest.Resource,
		}
	}

	return view
}
