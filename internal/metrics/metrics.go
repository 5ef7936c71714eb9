package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Searches         *prometheus.CounterVec
	APIErrors        prometheus.Counter
	RequestSeconds   *prometheus.HistogramVec
	GeocodeCache     *prometheus.CounterVec
	DatasetDownloads *prometheus.CounterVec
	ReferenceObjects *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Searches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "relaves_searches_total",
			Help: "Total number of address searches by outcome.",
		}, []string{"outcome"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "relaves_geocoding_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relaves_geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		GeocodeCache: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "relaves_geocode_cache_requests_total",
			Help: "Geocode cache lookups by result (hit, miss).",
		}, []string{"result"}),
		DatasetDownloads: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "relaves_dataset_downloads_total",
			Help: "Reference dataset downloads by dataset and status.",
		}, []string{"dataset", "status"}),
		ReferenceObjects: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "relaves_reference_objects",
			Help: "Number of loaded reference objects by kind (regions, deposits).",
		}, []string{"kind"}),
	}
}
