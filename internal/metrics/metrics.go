package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NotesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notes_created_total",
		Help: "Notes created.",
	})
	NotesConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notes_consumed_total",
		Help: "Successful note consumptions.",
	})
	NotesExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notes_expired_total",
		Help: "Notes found expired on access and deleted.",
	})
	AnalyticsEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analytics_events_total",
		Help: "Analytics events recorded.",
	})
	AnalyticsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analytics_events_dropped_total",
		Help: "Best-effort analytics appends that failed and were swallowed.",
	})
	CreateRateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "create_rate_limited_total",
		Help: "Create requests rejected by the rate limiter.",
	})
	JanitorPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "janitor_purged_rows_total",
		Help: "Expired rows removed by the janitor sweep.",
	})
)

func init() {
	prometheus.MustRegister(
		NotesCreated, NotesConsumed, NotesExpired,
		AnalyticsEvents, AnalyticsDropped,
		CreateRateLimited, JanitorPurged,
	)
}

func Handler(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
