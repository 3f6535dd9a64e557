package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Pipeline metrics
	packetsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packets_generated_total",
			Help: "Total number of expert witness packets generated",
		},
		[]string{"liability_level", "compliance_status"},
	)

	packetGenerationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "packet_generation_failures_total",
			Help: "Total number of failed packet generation attempts",
		},
	)

	packetGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "packet_generation_duration_seconds",
			Help:    "Packet pipeline duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	reportsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_rendered_total",
			Help: "Total number of report renditions served",
		},
		[]string{"format"},
	)

	// Ledger metrics
	ledgerEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_entries_total",
			Help: "Total number of session ledger entries appended",
		},
	)

	chainVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chain_verifications_total",
			Help: "Total number of hash chain verifications",
		},
		[]string{"status"},
	)

	attestationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attestation_requests_total",
			Help: "Total number of timestamp attestation requests",
		},
		[]string{"authority", "status"},
	)

	ehrExports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ehr_exports_total",
			Help: "Total number of EHR reporting exports",
		},
		[]string{"status"},
	)

	// Database metrics
	dbConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware creates HTTP metrics middleware
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath normalizes URL paths for metrics to avoid cardinality explosion
func normalizePath(path string) string {
	// Packet and report paths embed generated ids; anything longer than a
	// route prefix is collapsed.
	if len(path) > 100 {
		return "/api/..."
	}
	return path
}

// --- Pipeline metric helpers ---

// PacketGenerated records a successful packet generation
func PacketGenerated(liabilityLevel, complianceStatus string) {
	packetsGenerated.WithLabelValues(liabilityLevel, complianceStatus).Inc()
}

// PacketGenerationFailed records a failed packet generation attempt
func PacketGenerationFailed() {
	packetGenerationFailures.Inc()
}

// ObservePacketGeneration records the pipeline duration
func ObservePacketGeneration(duration time.Duration) {
	packetGenerationDuration.Observe(duration.Seconds())
}

// ReportRendered records a served report rendition
func ReportRendered(format string) {
	reportsRendered.WithLabelValues(format).Inc()
}

// RecordLedgerEntry records a ledger entry append
func RecordLedgerEntry() {
	ledgerEntriesTotal.Inc()
}

// RecordChainVerification records a hash chain verification outcome
func RecordChainVerification(status string) {
	chainVerifications.WithLabelValues(status).Inc()
}

// RecordAttestation records a timestamp attestation attempt
func RecordAttestation(authority string, ok bool) {
	status := "failed"
	if ok {
		status = "ok"
	}
	attestationRequests.WithLabelValues(authority, status).Inc()
}

// RecordEHRExport records an EHR reporting export attempt
func RecordEHRExport(ok bool) {
	status := "failed"
	if ok {
		status = "ok"
	}
	ehrExports.WithLabelValues(status).Inc()
}

// RecordDBConnections records active database connections
func RecordDBConnections(count int) {
	dbConnectionsActive.Set(float64(count))
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
