// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the SDK and its tools.
type Metrics struct {
	// Service API metrics
	APIRequestsTotal  *prometheus.CounterVec
	APIRetriesTotal   *prometheus.CounterVec
	APIRequestLatency *prometheus.HistogramVec

	// Routing metrics
	RoutesComputed *prometheus.CounterVec
	RouteHops      prometheus.Histogram
	RouteLatency   prometheus.Histogram
	EligibleEdges  prometheus.Histogram

	// Solana metrics
	RPCCallLatency  *prometheus.HistogramVec
	WSReconnects    prometheus.Counter
	HighestSlotSeen prometheus.Gauge

	// Recorder metrics
	SnapshotsRecorded  *prometheus.CounterVec
	EdgesObserved      prometheus.Counter
	LastSnapshotAsOfMs prometheus.Gauge

	// Verification metrics
	SnapshotsVerified *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "xolium"
	}

	return &Metrics{
		APIRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of service API requests by outcome",
		}, []string{"service", "route", "outcome"}),
		APIRetriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "retries_total",
			Help:      "Total number of service API retry attempts",
		}, []string{"service", "route"}),
		APIRequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_latency_seconds",
			Help:      "Service API latency including retries in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "route"}),

		RoutesComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "routes_computed_total",
			Help:      "Total number of route computations by result code",
		}, []string{"result"}),
		RouteHops: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "route_hops",
			Help:      "Number of hops in returned routes",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
		RouteLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "compute_latency_seconds",
			Help:      "Route computation latency in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		EligibleEdges: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "graph_edges",
			Help:      "Number of edges in graphs submitted for routing",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		WSReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "ws_reconnects_total",
			Help:      "Total number of WebSocket reconnections",
		}),
		HighestSlotSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "highest_slot_seen",
			Help:      "Highest Solana slot number seen",
		}),

		SnapshotsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "snapshots_total",
			Help:      "Total number of graph snapshots by status",
		}, []string{"status"}),
		EdgesObserved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "edges_observed_total",
			Help:      "Total number of edge observations stored",
		}),
		LastSnapshotAsOfMs: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "last_snapshot_as_of_ms",
			Help:      "As-of timestamp of the last recorded snapshot",
		}),

		SnapshotsVerified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "verification",
			Name:      "snapshots_total",
			Help:      "Total number of snapshots replayed by outcome",
		}, []string{"outcome"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordAPIRequest records the final outcome and total latency of an API call.
func RecordAPIRequest(service, route, outcome string, seconds float64) {
	DefaultMetrics.APIRequestsTotal.WithLabelValues(service, route, outcome).Inc()
	DefaultMetrics.APIRequestLatency.WithLabelValues(service, route).Observe(seconds)
}

// RecordAPIRetry increments the retry counter.
func RecordAPIRetry(service, route string) {
	DefaultMetrics.APIRetriesTotal.WithLabelValues(service, route).Inc()
}

// RecordRoute records a route computation. hops is ignored unless result is "ok".
func RecordRoute(result string, hops, edges int, seconds float64) {
	DefaultMetrics.RoutesComputed.WithLabelValues(result).Inc()
	DefaultMetrics.RouteLatency.Observe(seconds)
	DefaultMetrics.EligibleEdges.Observe(float64(edges))
	if result == "ok" {
		DefaultMetrics.RouteHops.Observe(float64(hops))
	}
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordWSReconnect increments the reconnect counter.
func RecordWSReconnect() {
	DefaultMetrics.WSReconnects.Inc()
}

// UpdateHighestSlot updates the highest slot seen gauge.
func UpdateHighestSlot(slot int64) {
	DefaultMetrics.HighestSlotSeen.Set(float64(slot))
}

// RecordSnapshot records a recorder cycle outcome ("stored", "duplicate", "error").
func RecordSnapshot(status string, edges int, asOfMs int64) {
	DefaultMetrics.SnapshotsRecorded.WithLabelValues(status).Inc()
	if status == "stored" {
		DefaultMetrics.EdgesObserved.Add(float64(edges))
		DefaultMetrics.LastSnapshotAsOfMs.Set(float64(asOfMs))
	}
}

// RecordVerification records a replay outcome ("matched", "divergent").
func RecordVerification(outcome string) {
	DefaultMetrics.SnapshotsVerified.WithLabelValues(outcome).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
