package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Session metrics
	ConnectionState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reportwatch_connection_state",
			Help: "Connection state (0 = disconnected, 1 = connecting, 2 = connected)",
		},
	)

	ConnectAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportwatch_connect_attempts_total",
			Help: "Total number of connection attempts by result",
		},
		[]string{"result"},
	)

	SessionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportwatch_session_errors_total",
			Help: "Total number of session errors by kind",
		},
		[]string{"kind"},
	)

	// Fetch metrics
	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportwatch_fetches_total",
			Help: "Total number of event list fetches by source and status",
		},
		[]string{"source", "status"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reportwatch_fetch_duration_seconds",
			Help:    "Event list fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// Snapshot metrics
	RowsInserted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reportwatch_rows_inserted_total",
			Help: "Total number of snapshot rows inserted",
		},
	)

	RowsRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reportwatch_rows_removed_total",
			Help: "Total number of snapshot rows removed",
		},
	)

	SnapshotSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reportwatch_snapshot_events",
			Help: "Number of events in the local snapshot",
		},
	)

	CategoriesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reportwatch_categories_total",
			Help: "Number of known categories by enabled flag",
		},
		[]string{"enabled"},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportwatch_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reportwatch_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	LogEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reportwatch_api_log_entries",
			Help: "Number of entries held by the simulated log by list",
		},
		[]string{"list"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(ConnectionState)
	prometheus.MustRegister(ConnectAttempts)
	prometheus.MustRegister(SessionErrors)
	prometheus.MustRegister(FetchesTotal)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(RowsInserted)
	prometheus.MustRegister(RowsRemoved)
	prometheus.MustRegister(SnapshotSize)
	prometheus.MustRegister(CategoriesTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(LogEntries)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures the duration of an operation
type Timer struct {
	start time.Time
}

// NewTimer starts a timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the time elapsed since the timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time in a histogram
func (t *Timer) ObserveDuration(h prometheus.Observer) {
	h.Observe(t.Duration().Seconds())
}

// ObserveDurationVec records the elapsed time in a histogram vec
func (t *Timer) ObserveDurationVec(h *prometheus.HistogramVec, labels ...string) {
	h.WithLabelValues(labels...).Observe(t.Duration().Seconds())
}
