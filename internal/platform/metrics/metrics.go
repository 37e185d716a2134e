package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// DistanceLookups counts distance resolutions by outcome:
	// cache_hit, store_hit, live, or fallback_<kind>.
	DistanceLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "distance_lookups_total", Help: "Distance resolutions by outcome."},
		[]string{"outcome"},
	)
	// LiveLookupDuration records round-trip time of live route lookups.
	LiveLookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "distance_live_lookup_seconds", Help: "Live route lookup latency in seconds.", Buckets: prometheus.DefBuckets},
	)
	TransfersEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "transfers_emitted_total", Help: "Transfers produced by the matcher."},
	)
	UnitsTransferred = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "transfer_units_total", Help: "Units moved by emitted transfers."},
	)
	RouteDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_decisions_total", Help: "Route strategy decisions by chosen strategy."},
		[]string{"strategy"},
	)
	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)
)

var regOnce sync.Once

// Register adds all collectors to Registry. Safe to call more than once.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(
			DistanceLookups,
			LiveLookupDuration,
			TransfersEmitted,
			UnitsTransferred,
			RouteDecisions,
			HTTPRequests,
			HTTPDuration,
		)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// WriteTextfile writes the current value of every registered collector to
// path in the Prometheus text format, for the node_exporter textfile
// collector. Batch runs exit before any scrape could reach them.
func WriteTextfile(path string) error {
	Register()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write metrics textfile: create dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
