package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusExporter exports metrics to Prometheus format.
type PrometheusExporter struct {
	grpcRequests *prometheus.CounterVec
	grpcDuration *prometheus.HistogramVec
	grpcErrors   *prometheus.CounterVec
	decisions    *prometheus.CounterVec
}

// NewPrometheusExporter creates a new Prometheus exporter whose metrics are registered with reg.
func NewPrometheusExporter(reg prometheus.Registerer) *PrometheusExporter {
	factory := promauto.With(reg)

	return &PrometheusExporter{
		grpcRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolegate_grpc_requests_total",
				Help: "Total number of gRPC requests",
			},
			[]string{"method"},
		),
		grpcDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rolegate_grpc_request_duration_seconds",
				Help:    "Duration of gRPC requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
			},
			[]string{"method"},
		),
		grpcErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolegate_grpc_errors_total",
				Help: "Total number of gRPC errors",
			},
			[]string{"method"},
		),
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rolegate_access_decisions_total",
				Help: "Total number of access decisions by deciding rule and outcome",
			},
			[]string{"reason", "allowed"},
		),
	}
}

// RecordRequest records a request in Prometheus.
func (e *PrometheusExporter) RecordRequest(method string) {
	e.grpcRequests.WithLabelValues(method).Inc()
}

// RecordDuration records a duration in Prometheus.
func (e *PrometheusExporter) RecordDuration(method string, durationSeconds float64) {
	e.grpcDuration.WithLabelValues(method).Observe(durationSeconds)
}

// RecordError records an error in Prometheus.
func (e *PrometheusExporter) RecordError(method string) {
	e.grpcErrors.WithLabelValues(method).Inc()
}

// RecordDecision records an access decision in Prometheus.
func (e *PrometheusExporter) RecordDecision(reason string, allowed bool) {
	e.decisions.WithLabelValues(reason, strconv.FormatBool(allowed)).Inc()
}
