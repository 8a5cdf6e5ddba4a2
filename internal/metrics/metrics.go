package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radio_landing_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "radio_landing_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	VisitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radio_landing_visits_total",
			Help: "Homepage visits by client type.",
		},
		[]string{"client"},
	)

	DirectoryLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radio_landing_ipdir_lookups_total",
			Help: "IP directory lookups by result.",
		},
		[]string{"result"}, // hit, miss, error
	)

	GeoLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radio_landing_geo_lookups_total",
			Help: "Geolocation lookups by provider and status.",
		},
		[]string{"provider", "status"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radio_landing_notifications_total",
			Help: "Visit notifications by status.",
		},
		[]string{"status"},
	)

	TrackPicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radio_landing_random_music_total",
			Help: "Random track selections by result.",
		},
		[]string{"result"}, // ok, empty, error
	)
)

func Handler() http.Handler { return promhttp.Handler() }
